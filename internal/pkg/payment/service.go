package payment

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ManuelReschke/ShopFox/app/models"
	"github.com/ManuelReschke/ShopFox/app/repository"
	"github.com/ManuelReschke/ShopFox/internal/pkg/orders"
	"github.com/ManuelReschke/ShopFox/internal/pkg/orderstatus"
)

// Outcome classifies one webhook delivery for the HTTP layer. Everything
// except a returned error is acknowledged to the gateway as success, so
// redelivery stops.
type Outcome int

const (
	// OutcomeProcessed means this delivery applied a state transition.
	OutcomeProcessed Outcome = iota
	// OutcomeDuplicate means the event id was seen before; nothing ran.
	OutcomeDuplicate
	// OutcomeIgnored means the event type or order is not ours to handle.
	OutcomeIgnored
	// OutcomeNoOp means the conditional update found the order already
	// moved elsewhere; the delivery is acknowledged without effects.
	OutcomeNoOp
)

func (o Outcome) String() string {
	switch o {
	case OutcomeProcessed:
		return "processed"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeIgnored:
		return "ignored"
	case OutcomeNoOp:
		return "noop"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidSignature rejects a delivery before any business logic.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrPayloadTooLarge rejects oversized bodies before parsing.
	ErrPayloadTooLarge = errors.New("webhook payload too large")
	// ErrMalformedPayload rejects bodies the parser cannot read.
	ErrMalformedPayload = errors.New("malformed webhook payload")
	// ErrProductUnavailable rejects checkouts referencing unknown or
	// inactive products.
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrInsufficientStock rejects checkouts the stock cannot cover.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// CheckoutGateway is the outbound dependency for session creation.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*CheckoutSession, error)
}

// Service is the webhook ingestion pipeline plus checkout-session
// creation. All collaborators are injected; the service reads no global
// state at call time.
type Service struct {
	cfg         Config
	orders      repository.OrderRepository
	products    repository.ProductRepository
	transitions *orders.Service
	gateway     CheckoutGateway
}

// NewService wires the payment service from its collaborators.
func NewService(cfg Config, orderRepo repository.OrderRepository, productRepo repository.ProductRepository, transitions *orders.Service, gateway CheckoutGateway) *Service {
	return &Service{
		cfg:         cfg,
		orders:      orderRepo,
		products:    productRepo,
		transitions: transitions,
		gateway:     gateway,
	}
}

// ProcessWebhook runs the full ingestion pipeline for one delivery:
// size and signature checks, dedup, event mapping, conditional
// transition, side effects, audit. The raw body must be the exact bytes
// the gateway signed.
//
// Returned errors are classified for the HTTP layer: signature/payload
// errors are client failures, orderstatus.ErrInvalidTransition is a
// fatal mapping inconsistency, everything else is transient and should
// make the gateway retry.
func (s *Service) ProcessWebhook(ctx context.Context, rawBody []byte, signatureHeader string) (Outcome, error) {
	if len(rawBody) > s.cfg.MaxBodyBytes {
		return OutcomeIgnored, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(rawBody))
	}
	if !VerifyWebhookSignature(rawBody, signatureHeader, s.cfg.WebhookSecret) {
		return OutcomeIgnored, ErrInvalidSignature
	}

	event, err := ParseWebhookEvent(rawBody)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	// Dedup is a best-effort accelerator on top of the conditional
	// update. If the store is unreachable we log and keep going; a
	// replay would still end in a harmless no-op.
	created, stored, dedupErr := s.orders.CreateWebhookEventIfNotExists(&models.PaymentWebhookEvent{
		ExternalEventID: event.ID,
		EventType:       event.Type,
		PayloadJSON:     string(rawBody),
	})
	if dedupErr != nil {
		log.Printf("webhook %s: dedup store unavailable, processing anyway: %v", event.ID, dedupErr)
	} else if !created {
		// Only a completed event is a duplicate. If the earlier
		// delivery failed after the dedup insert, the gateway's retry
		// carries the only chance to finish the work.
		if stored.Completed() {
			log.Printf("webhook %s: duplicate delivery acknowledged", event.ID)
			return OutcomeDuplicate, nil
		}
		log.Printf("webhook %s: redelivery of unfinished event, reprocessing", event.ID)
	}

	outcome, processErr := s.processFreshEvent(ctx, event)
	s.markProcessed(ctx, stored, processErr)
	return outcome, processErr
}

func (s *Service) processFreshEvent(ctx context.Context, event *WebhookEvent) (Outcome, error) {
	targetStatus, known := TargetStatusForEventType(event.Type)
	if !known {
		log.Printf("webhook %s: unhandled event type %q acknowledged", event.ID, event.Type)
		return OutcomeIgnored, nil
	}

	order, err := s.resolveOrder(event)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("webhook %s: no local order for session %q, acknowledged", event.ID, event.SessionID)
			return OutcomeIgnored, nil
		}
		return OutcomeIgnored, err
	}

	applied, err := s.transitions.ExecuteTransition(ctx, orders.TransitionRequest{
		OrderID:         order.ID,
		FromStatus:      orderstatus.PENDING,
		ToStatus:        targetStatus,
		Actor:           models.ActorGateway,
		ExternalEventID: event.ID,
		RequestID:       uuid.New().String(),
	})
	if err != nil {
		// A denied edge here means the event mapping and the state
		// machine disagree. That is a logic inconsistency worth
		// surfacing loudly, not an idempotent no-op.
		return OutcomeIgnored, err
	}
	if !applied {
		log.Printf("webhook %s: order %d already left pending, no-op", event.ID, order.ID)
		return OutcomeNoOp, nil
	}

	order.Status = targetStatus
	s.transitions.RunTransitionSideEffects(ctx, order, targetStatus)
	s.updatePaymentReference(order, event)
	return OutcomeProcessed, nil
}

func (s *Service) resolveOrder(event *WebhookEvent) (*models.Order, error) {
	if event.OrderUUID != "" {
		order, err := s.orders.GetByUUID(event.OrderUUID)
		if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
			return order, err
		}
	}
	if event.SessionID != "" {
		return s.orders.GetByCheckoutSessionID(event.SessionID)
	}
	return nil, gorm.ErrRecordNotFound
}

// updatePaymentReference refreshes the latest-known-state cache. Best
// effort: a failure is logged, the transition stays committed.
func (s *Service) updatePaymentReference(order *models.Order, event *WebhookEvent) {
	ref := &models.PaymentReference{
		OrderID:         order.ID,
		LastEventID:     event.ID,
		LastEventType:   event.Type,
		SessionID:       event.SessionID,
		PaymentIntentID: event.PaymentIntentID,
	}
	if err := s.orders.UpsertPaymentReference(ref); err != nil {
		log.Printf("order %d: payment reference upsert failed: %v", order.ID, err)
	}
}

// markProcessed stamps the dedup row with the processing outcome.
func (s *Service) markProcessed(ctx context.Context, stored *models.PaymentWebhookEvent, processErr error) {
	if stored == nil {
		return
	}
	msg := ""
	if processErr != nil {
		msg = processErr.Error()
	}
	if err := s.orders.MarkWebhookProcessed(stored.ID, msg); err != nil {
		log.Printf("webhook %s: failed to mark processed: %v", stored.ExternalEventID, err)
	}
}
