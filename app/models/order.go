package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ManuelReschke/ShopFox/internal/pkg/orderstatus"
)

// Order is the aggregate mutated by the conditional status executor.
// Rows are created at checkout-session creation time in status pending
// and are never physically deleted.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UUID        string `gorm:"type:char(36) CHARACTER SET utf8 COLLATE utf8_bin;uniqueIndex;not null" json:"uuid"`
	OrderNumber string `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_number"`
	UserID      uint   `gorm:"index" json:"user_id"`
	User        User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status      string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status" validate:"oneof=pending confirmed processing shipped delivered cancelled refunded"`
	// TotalCents is the order total in the smallest currency unit.
	TotalCents int64  `gorm:"type:bigint;not null;default:0" json:"total_cents"`
	Currency   string `gorm:"type:char(3);not null;default:'EUR'" json:"currency" validate:"len=3"`

	// Shipping snapshot, frozen at checkout.
	ShippingName    string `gorm:"type:varchar(150)" json:"-"`
	ShippingStreet  string `gorm:"type:varchar(255)" json:"-"`
	ShippingZip     string `gorm:"type:varchar(20)" json:"-"`
	ShippingCity    string `gorm:"type:varchar(100)" json:"-"`
	ShippingCountry string `gorm:"type:char(2)" json:"-"`

	// Gateway linkage, set when the checkout session is created.
	CheckoutSessionID string `gorm:"type:varchar(191);default:'';index" json:"checkout_session_id,omitempty"`

	// LookupCount is maintained by the metrics counter flush, not by handlers.
	LookupCount uint64 `gorm:"default:0" json:"-"`

	Items     []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate fills in the public identifiers for new orders.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.UUID == "" {
		o.UUID = uuid.New().String()
	}
	if o.OrderNumber == "" {
		number, err := GenerateOrderNumber()
		if err != nil {
			return err
		}
		o.OrderNumber = number
	}
	if o.Status == "" {
		o.Status = orderstatus.PENDING
	}
	return nil
}

func (o *Order) Validate() error {
	v := validator.New()
	return v.Struct(o)
}

// GenerateOrderNumber builds a human-readable order number like
// SF-20260830-4F2A1C. The random suffix keeps numbers non-guessable.
func GenerateOrderNumber() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("SF-%s-%s", time.Now().UTC().Format("20060102"), strings.ToUpper(hex.EncodeToString(b))), nil
}
