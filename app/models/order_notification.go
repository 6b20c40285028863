package models

import "time"

// Notification types guarded by the reservation table.
const (
	NotificationOrderConfirmed = "order_confirmed"
	NotificationOrderCancelled = "order_cancelled"
	NotificationOrderShipped   = "order_shipped"
	NotificationOrderDelivered = "order_delivered"
)

// OrderNotification is a reservation row: its existence means the
// (order, type) notification has been claimed and must not be sent
// again. The claim happens before the send, so a crash in between loses
// the mail instead of duplicating it.
type OrderNotification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index:ux_order_notifications_order_type,unique,priority:1" json:"order_id"`
	Type      string    `gorm:"type:varchar(50);not null;index:ux_order_notifications_order_type,unique,priority:2" json:"type" validate:"oneof=order_confirmed order_cancelled order_shipped order_delivered"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
