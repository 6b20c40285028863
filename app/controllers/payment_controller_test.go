package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/ShopFox/app/models"
	"github.com/ManuelReschke/ShopFox/internal/pkg/orders"
	"github.com/ManuelReschke/ShopFox/internal/pkg/orderstatus"
	"github.com/ManuelReschke/ShopFox/internal/pkg/payment"
)

const webhookTestSecret = "whsec_controller_test"

type memOrderRepo struct {
	mu            sync.Mutex
	orders        map[uint]*models.Order
	claims        map[string]bool
	webhookEvents map[string]*models.PaymentWebhookEvent
	nextID        uint
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		orders:        make(map[uint]*models.Order),
		claims:        make(map[string]bool),
		webhookEvents: make(map[string]*models.PaymentWebhookEvent),
	}
}

func (r *memOrderRepo) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	order.ID = r.nextID
	if order.UUID == "" {
		order.UUID = fmt.Sprintf("uuid-%d", order.ID)
	}
	if order.Status == "" {
		order.Status = orderstatus.PENDING
	}
	r.orders[order.ID] = order
	return nil
}

func (r *memOrderRepo) GetByID(id uint) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order, ok := r.orders[id]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memOrderRepo) GetByUUID(uuid string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.UUID == uuid {
			copied := *order
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memOrderRepo) GetByUUIDAndNumber(uuid, orderNumber string) (*models.Order, error) {
	order, err := r.GetByUUID(uuid)
	if err != nil || order.OrderNumber != orderNumber {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (r *memOrderRepo) GetByCheckoutSessionID(sessionID string) (*models.Order, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *memOrderRepo) ListByUserID(userID uint, offset, limit int) ([]models.Order, error) {
	return nil, nil
}

func (r *memOrderRepo) List(offset, limit int) ([]models.Order, error) { return nil, nil }

func (r *memOrderRepo) Count() (int64, error) { return 0, nil }

func (r *memOrderRepo) UpdateStatusConditional(orderID uint, fromStatus, toStatus string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok || order.Status != fromStatus {
		return false, nil
	}
	order.Status = toStatus
	return true, nil
}

func (r *memOrderRepo) SetCheckoutSession(orderID uint, sessionID string) error { return nil }

func (r *memOrderRepo) AppendStatusEvent(event *models.OrderStatusEvent) error { return nil }

func (r *memOrderRepo) ListStatusEvents(orderID uint) ([]models.OrderStatusEvent, error) {
	return nil, nil
}

func (r *memOrderRepo) ClaimNotification(orderID uint, notificationType string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := fmt.Sprintf("%d/%s", orderID, notificationType)
	if r.claims[key] {
		return false, nil
	}
	r.claims[key] = true
	return true, nil
}

func (r *memOrderRepo) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.webhookEvents[event.ExternalEventID]; ok {
		copied := *stored
		return false, &copied, nil
	}
	event.ID = uint(len(r.webhookEvents) + 1)
	r.webhookEvents[event.ExternalEventID] = event
	copied := *event
	return true, &copied, nil
}

func (r *memOrderRepo) MarkWebhookProcessed(id uint, processingError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, stored := range r.webhookEvents {
		if stored.ID == id {
			stored.ProcessedAt = &now
			stored.ProcessingError = processingError
		}
	}
	return nil
}

func (r *memOrderRepo) UpsertPaymentReference(ref *models.PaymentReference) error { return nil }

type memProductRepo struct{}

func (memProductRepo) GetByID(id uint) (*models.Product, error) { return nil, gorm.ErrRecordNotFound }

func (memProductRepo) GetActiveByIDs(ids []uint) ([]models.Product, error) { return nil, nil }

func (memProductRepo) DecrementStock(productID uint, quantity int) (bool, error) { return true, nil }

func (memProductRepo) IncrementStock(productID uint, quantity int) error { return nil }

func newWebhookTestApp(t *testing.T) (*fiber.App, *memOrderRepo) {
	t.Helper()
	repo := newMemOrderRepo()
	products := memProductRepo{}
	orderSvc := orders.NewService(repo, products, nil)
	cfg := payment.Config{WebhookSecret: webhookTestSecret, MaxBodyBytes: 256 * 1024}
	paymentSvc := payment.NewService(cfg, repo, products, orderSvc, nil)
	SetServices(orderSvc, paymentSvc)

	app := fiber.New()
	app.Post("/api/v1/payment/webhook", HandlePaymentWebhook)
	return app, repo
}

func webhookRequest(t *testing.T, eventID, eventType, orderUUID string) *http.Request {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":   eventID,
		"type": eventType,
		"data": map[string]any{
			"object": map[string]any{
				"id":                  "cs_webhook",
				"client_reference_id": orderUUID,
			},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/webhook", strings.NewReader(string(payload)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", payment.SignPayload(payload, webhookTestSecret))
	return req
}

func TestHandlePaymentWebhookConfirmsOrder(t *testing.T) {
	app, repo := newWebhookTestApp(t)
	order := &models.Order{Status: orderstatus.PENDING}
	require.NoError(t, repo.Create(order))

	resp, err := app.Test(webhookRequest(t, "evt_1", payment.EventCheckoutCompleted, order.UUID), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	stored, err := repo.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, orderstatus.CONFIRMED, stored.Status)
}

func TestHandlePaymentWebhookDuplicateStillAcknowledged(t *testing.T) {
	app, repo := newWebhookTestApp(t)
	order := &models.Order{Status: orderstatus.PENDING}
	require.NoError(t, repo.Create(order))

	resp, err := app.Test(webhookRequest(t, "evt_1", payment.EventCheckoutCompleted, order.UUID), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(webhookRequest(t, "evt_1", payment.EventCheckoutCompleted, order.UUID), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "duplicate")
}

func TestHandlePaymentWebhookRejectsBadSignature(t *testing.T) {
	app, _ := newWebhookTestApp(t)

	req := webhookRequest(t, "evt_1", payment.EventCheckoutCompleted, "some-uuid")
	req.Header.Set("X-Webhook-Signature", "deadbeef")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHandlePaymentWebhookRejectsMalformedBody(t *testing.T) {
	app, _ := newWebhookTestApp(t)

	payload := []byte("][ not json")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/webhook", strings.NewReader(string(payload)))
	req.Header.Set("X-Webhook-Signature", payment.SignPayload(payload, webhookTestSecret))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandlePaymentWebhookUnknownEventTypeIgnored(t *testing.T) {
	app, _ := newWebhookTestApp(t)

	resp, err := app.Test(webhookRequest(t, "evt_2", "refund.created", "some-uuid"), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ignored")
}
