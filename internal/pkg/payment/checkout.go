package payment

import (
	"context"
	"fmt"
	"log"

	"github.com/ManuelReschke/ShopFox/app/models"
	"github.com/ManuelReschke/ShopFox/internal/pkg/orders"
	"github.com/ManuelReschke/ShopFox/internal/pkg/orderstatus"
)

// CheckoutItemInput is one requested line item.
type CheckoutItemInput struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// ShippingInput is the address snapshot frozen onto the order.
type ShippingInput struct {
	Name    string `json:"name" validate:"required,max=150"`
	Street  string `json:"street" validate:"required,max=255"`
	Zip     string `json:"zip" validate:"required,max=20"`
	City    string `json:"city" validate:"required,max=100"`
	Country string `json:"country" validate:"required,len=2"`
}

// CreateCheckout reserves stock, creates the order in pending and opens
// a gateway checkout session. It returns the order and the redirect URL
// for the hosted payment page.
func (s *Service) CreateCheckout(ctx context.Context, userID uint, items []CheckoutItemInput, shipping ShippingInput) (*models.Order, string, error) {
	if len(items) == 0 {
		return nil, "", fmt.Errorf("%w: no items", ErrProductUnavailable)
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.GetActiveByIDs(ids)
	if err != nil {
		return nil, "", err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var orderItems []models.OrderItem
	var totalCents int64
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, "", fmt.Errorf("%w: product %d", ErrProductUnavailable, item.ProductID)
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: product.PriceCents,
		})
		totalCents += product.PriceCents * int64(item.Quantity)
	}

	reserved, err := s.reserveStock(items)
	if err != nil {
		return nil, "", err
	}

	order := &models.Order{
		UserID:          userID,
		Status:          orderstatus.PENDING,
		TotalCents:      totalCents,
		Currency:        "EUR",
		ShippingName:    shipping.Name,
		ShippingStreet:  shipping.Street,
		ShippingZip:     shipping.Zip,
		ShippingCity:    shipping.City,
		ShippingCountry: shipping.Country,
		Items:           orderItems,
	}
	if err := s.orders.Create(order); err != nil {
		s.releaseStock(reserved)
		return nil, "", err
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, CheckoutSessionInput{
		OrderUUID:   order.UUID,
		AmountCents: totalCents,
		Currency:    order.Currency,
		SuccessURL:  s.cfg.SuccessURL,
		CancelURL:   s.cfg.CancelURL,
	})
	if err != nil {
		// The order exists but can never be paid. Cancel it through the
		// executor so the audit trail and stock stay consistent.
		s.abortCheckout(ctx, order)
		return nil, "", err
	}

	if err := s.orders.SetCheckoutSession(order.ID, session.ID); err != nil {
		log.Printf("order %d: failed to store checkout session %s: %v", order.ID, session.ID, err)
	}
	order.CheckoutSessionID = session.ID
	s.updatePaymentReference(order, &WebhookEvent{
		SessionID:       session.ID,
		PaymentIntentID: session.PaymentIntent,
	})

	return order, session.URL, nil
}

// reserveStock decrements stock per line item and undoes partial
// reservations when one item cannot be covered.
func (s *Service) reserveStock(items []CheckoutItemInput) ([]CheckoutItemInput, error) {
	var reserved []CheckoutItemInput
	for _, item := range items {
		ok, err := s.products.DecrementStock(item.ProductID, item.Quantity)
		if err != nil {
			s.releaseStock(reserved)
			return nil, err
		}
		if !ok {
			s.releaseStock(reserved)
			return nil, fmt.Errorf("%w: product %d", ErrInsufficientStock, item.ProductID)
		}
		reserved = append(reserved, item)
	}
	return reserved, nil
}

func (s *Service) releaseStock(reserved []CheckoutItemInput) {
	for _, item := range reserved {
		if err := s.products.IncrementStock(item.ProductID, item.Quantity); err != nil {
			log.Printf("stock release for product %d (+%d) failed: %v", item.ProductID, item.Quantity, err)
		}
	}
}

// abortCheckout cancels a freshly created order whose gateway session
// could not be opened. Runs through the conditional executor like every
// other transition; side effects restore the reserved stock.
func (s *Service) abortCheckout(ctx context.Context, order *models.Order) {
	applied, err := s.transitions.ExecuteTransition(ctx, orders.TransitionRequest{
		OrderID:    order.ID,
		FromStatus: orderstatus.PENDING,
		ToStatus:   orderstatus.CANCELLED,
		Actor:      models.ActorSystem,
	})
	if err != nil {
		log.Printf("order %d: checkout abort failed: %v", order.ID, err)
		return
	}
	if applied {
		order.Status = orderstatus.CANCELLED
		s.transitions.RunTransitionSideEffects(ctx, order, orderstatus.CANCELLED)
	}
}
