package repository

import (
	"time"

	"github.com/ManuelReschke/ShopFox/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// orderRepository implements the OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByUUID(uuid string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Where("uuid = ?", uuid).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByUUIDAndNumber(uuid, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").
		Where("uuid = ? AND order_number = ?", uuid, orderNumber).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByCheckoutSessionID(sessionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").
		Where("checkout_session_id = ?", sessionID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByUserID(userID uint, offset, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) List(offset, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Order{}).Count(&count).Error
	return count, err
}

// UpdateStatusConditional is the single concurrency-control primitive of
// the status engine. RowsAffected == 1 means this call moved the order;
// 0 means another writer won or the order was already elsewhere.
func (r *orderRepository) UpdateStatusConditional(orderID uint, fromStatus, toStatus string) (bool, error) {
	tx := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, fromStatus).
		Update("status", toStatus)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *orderRepository) SetCheckoutSession(orderID uint, sessionID string) error {
	return r.db.Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("checkout_session_id", sessionID).Error
}

func (r *orderRepository) AppendStatusEvent(event *models.OrderStatusEvent) error {
	return r.db.Create(event).Error
}

func (r *orderRepository) ListStatusEvents(orderID uint) ([]models.OrderStatusEvent, error) {
	var events []models.OrderStatusEvent
	err := r.db.Where("order_id = ?", orderID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	return events, err
}

// ClaimNotification relies on the unique (order_id, type) index: the
// insert is dropped on conflict and RowsAffected tells us who won.
func (r *orderRepository) ClaimNotification(orderID uint, notificationType string) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "order_id"},
			{Name: "type"},
		},
		DoNothing: true,
	}).Create(&models.OrderNotification{
		OrderID: orderID,
		Type:    notificationType,
	})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *orderRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "external_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("external_event_id = ?", event.ExternalEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *orderRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

func (r *orderRepository) UpsertPaymentReference(ref *models.PaymentReference) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "order_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"last_event_id",
			"last_event_type",
			"session_id",
			"payment_intent_id",
			"updated_at",
		}),
	}).Create(ref).Error
}
