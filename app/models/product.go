package models

import (
	"time"

	"gorm.io/gorm"
)

// Product carries the bits of the catalog this service touches: pricing
// for checkout snapshots and stock for cancellation restores. Catalog
// management itself lives elsewhere.
type Product struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	SKU        string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"sku"`
	PriceCents int64          `gorm:"type:bigint;not null" json:"price_cents" validate:"gte=0"`
	Stock      int            `gorm:"not null;default:0" json:"stock"`
	IsActive   bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
