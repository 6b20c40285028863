package models

import "time"

// PaymentWebhookEvent stores gateway webhook payloads with deduplication
// metadata for idempotent processing. The unique index on the external
// event id is the dedup mechanism: a second insert for the same id is a
// no-op and classifies the delivery as a duplicate.
type PaymentWebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	ExternalEventID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_payment_webhook_events_event_id" json:"external_event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	OrderID         uint       `gorm:"index" json:"order_id"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Completed reports whether an earlier delivery of this event finished
// processing without error. A redelivery of an uncompleted event must
// run the pipeline again instead of being acknowledged as a duplicate.
func (e *PaymentWebhookEvent) Completed() bool {
	return e.ProcessedAt != nil && e.ProcessingError == ""
}
