package repository

import (
	"github.com/ManuelReschke/ShopFox/app/models"
	"gorm.io/gorm"
)

// OrderRepository defines the interface for order-related database operations.
type OrderRepository interface {
	Create(order *models.Order) error
	GetByID(id uint) (*models.Order, error)
	GetByUUID(uuid string) (*models.Order, error)
	GetByUUIDAndNumber(uuid, orderNumber string) (*models.Order, error)
	GetByCheckoutSessionID(sessionID string) (*models.Order, error)
	ListByUserID(userID uint, offset, limit int) ([]models.Order, error)
	List(offset, limit int) ([]models.Order, error)
	Count() (int64, error)

	// UpdateStatusConditional performs the atomic
	// "UPDATE orders SET status = to WHERE id = ? AND status = from"
	// mutation and reports whether this call changed the row. False is
	// not an error: the order is gone, already in the target status, or
	// another writer won the race.
	UpdateStatusConditional(orderID uint, fromStatus, toStatus string) (bool, error)

	SetCheckoutSession(orderID uint, sessionID string) error
	AppendStatusEvent(event *models.OrderStatusEvent) error
	ListStatusEvents(orderID uint) ([]models.OrderStatusEvent, error)

	// ClaimNotification inserts the (order, type) reservation row.
	// True means the caller holds the exclusive right to send; false
	// means the notification was already claimed.
	ClaimNotification(orderID uint, notificationType string) (bool, error)

	// CreateWebhookEventIfNotExists inserts the dedup row for an
	// external event id. created=false classifies the delivery as a
	// duplicate.
	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
	UpsertPaymentReference(ref *models.PaymentReference) error
}

// ProductRepository defines the interface for product-related database operations.
type ProductRepository interface {
	GetByID(id uint) (*models.Product, error)
	GetActiveByIDs(ids []uint) ([]models.Product, error)
	DecrementStock(productID uint, quantity int) (bool, error)
	IncrementStock(productID uint, quantity int) error
}

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, error)
	Update(user *models.User) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Order   OrderRepository
	Product ProductRepository
	User    UserRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Order:   NewOrderRepository(db),
		Product: NewProductRepository(db),
		User:    NewUserRepository(db),
	}
}
