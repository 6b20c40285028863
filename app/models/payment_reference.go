package models

import "time"

// PaymentReference caches the latest known gateway state per order. It
// is an upsertable snapshot keyed by order, not an audit log; the audit
// trail lives in OrderStatusEvent.
type PaymentReference struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OrderID         uint      `gorm:"not null;uniqueIndex:ux_payment_references_order_id" json:"order_id"`
	LastEventID     string    `gorm:"type:varchar(191);default:''" json:"last_event_id"`
	LastEventType   string    `gorm:"type:varchar(100);default:''" json:"last_event_type"`
	SessionID       string    `gorm:"type:varchar(191);default:''" json:"session_id"`
	PaymentIntentID string    `gorm:"type:varchar(191);default:''" json:"payment_intent_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
