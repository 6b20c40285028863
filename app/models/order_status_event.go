package models

import "time"

// Actors recorded on the audit trail. Closed set.
const (
	ActorGateway = "gateway"
	ActorAdmin   = "admin"
	ActorUser    = "user"
	ActorSystem  = "system"
)

// OrderStatusEvent is one append-only audit row per structurally valid
// transition attempt, whether or not the conditional update applied.
// Rows are never edited or deleted.
type OrderStatusEvent struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	OrderID    uint   `gorm:"not null;index" json:"order_id"`
	FromStatus string `gorm:"type:varchar(20);not null" json:"from_status"`
	ToStatus   string `gorm:"type:varchar(20);not null" json:"to_status"`
	Actor      string `gorm:"type:varchar(20);not null;index" json:"actor" validate:"oneof=gateway admin user system"`
	// Applied records whether this attempt was the one that changed the row.
	Applied         bool      `gorm:"not null;default:false" json:"applied"`
	ExternalEventID string    `gorm:"type:varchar(191);default:'';index" json:"external_event_id,omitempty"`
	RequestID       string    `gorm:"type:char(36);default:''" json:"request_id,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
