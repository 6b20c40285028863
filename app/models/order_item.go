package models

import "time"

// OrderItem is a priced snapshot of a product at checkout time. Price
// changes on the product never alter existing orders.
type OrderItem struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrderID        uint      `gorm:"not null;index" json:"order_id"`
	ProductID      uint      `gorm:"not null;index" json:"product_id"`
	Product        Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	ProductName    string    `gorm:"type:varchar(255);not null" json:"product_name"`
	Quantity       int       `gorm:"not null" json:"quantity" validate:"gt=0"`
	UnitPriceCents int64     `gorm:"type:bigint;not null" json:"unit_price_cents"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
