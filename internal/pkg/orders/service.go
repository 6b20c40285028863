package orders

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ManuelReschke/ShopFox/app/models"
	"github.com/ManuelReschke/ShopFox/app/repository"
	"github.com/ManuelReschke/ShopFox/internal/pkg/orderstatus"
)

// Service runs order status transitions. All concurrency control is
// delegated to the store's conditional update; the service itself holds
// no locks and is safe to share across handlers.
type Service struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	notifier Notifier
}

// NewService creates an order transition service from injected collaborators.
func NewService(orders repository.OrderRepository, products repository.ProductRepository, notifier Notifier) *Service {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Service{orders: orders, products: products, notifier: notifier}
}

// ExecuteTransition validates the edge, performs the conditional update
// and appends the audit row. It returns whether this call applied the
// change. Denied edges fail before any storage access; a lost race is a
// no-op, not an error.
func (s *Service) ExecuteTransition(ctx context.Context, req TransitionRequest) (bool, error) {
	if err := orderstatus.ValidateTransition(req.FromStatus, req.ToStatus); err != nil {
		return false, err
	}

	applied, err := s.orders.UpdateStatusConditional(req.OrderID, req.FromStatus, req.ToStatus)
	if err != nil {
		return false, err
	}

	s.recordAudit(req, applied)
	return applied, nil
}

// recordAudit appends the audit row for a structurally valid attempt.
// Audit is observability, not a gate: failures are logged and swallowed.
func (s *Service) recordAudit(req TransitionRequest, applied bool) {
	event := &models.OrderStatusEvent{
		OrderID:         req.OrderID,
		FromStatus:      req.FromStatus,
		ToStatus:        req.ToStatus,
		Actor:           req.Actor,
		Applied:         applied,
		ExternalEventID: req.ExternalEventID,
		RequestID:       req.RequestID,
	}
	if err := s.orders.AppendStatusEvent(event); err != nil {
		log.Printf("order %d: failed to write status audit event %s -> %s: %v",
			req.OrderID, req.FromStatus, req.ToStatus, err)
	}
}

// UpdateStatusAsAdmin moves an order to the target status on behalf of
// an admin. The expected source status is the order's current one, so a
// concurrent writer turns this into a reported no-op instead of a
// double transition.
func (s *Service) UpdateStatusAsAdmin(ctx context.Context, orderID uint, targetStatus string) (*models.Order, bool, error) {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrOrderNotFound
		}
		return nil, false, err
	}

	applied, err := s.ExecuteTransition(ctx, TransitionRequest{
		OrderID:    order.ID,
		FromStatus: order.Status,
		ToStatus:   targetStatus,
		Actor:      models.ActorAdmin,
		RequestID:  uuid.New().String(),
	})
	if err != nil {
		return nil, false, err
	}

	if applied {
		order.Status = targetStatus
		s.RunTransitionSideEffects(ctx, order, targetStatus)
	}

	updated, err := s.orders.GetByID(orderID)
	if err != nil {
		// The transition is committed; return the in-memory view.
		return order, applied, nil
	}
	return updated, applied, nil
}

// CancelAsUser cancels a pending order on behalf of its owner.
func (s *Service) CancelAsUser(ctx context.Context, orderUUID string, userID uint) (*models.Order, bool, error) {
	order, err := s.orders.GetByUUID(orderUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrOrderNotFound
		}
		return nil, false, err
	}
	if order.UserID != userID {
		return nil, false, ErrNotOwner
	}

	applied, err := s.ExecuteTransition(ctx, TransitionRequest{
		OrderID:    order.ID,
		FromStatus: orderstatus.PENDING,
		ToStatus:   orderstatus.CANCELLED,
		Actor:      models.ActorUser,
		RequestID:  uuid.New().String(),
	})
	if err != nil {
		return nil, false, err
	}

	if applied {
		order.Status = orderstatus.CANCELLED
		s.RunTransitionSideEffects(ctx, order, orderstatus.CANCELLED)
	}
	return order, applied, nil
}

// RunTransitionSideEffects triggers the best-effort consequences of an
// applied transition: reservation-guarded notification and, for
// cancellations, stock restore. Must only be called by the writer that
// actually applied the change.
func (s *Service) RunTransitionSideEffects(ctx context.Context, order *models.Order, newStatus string) {
	if notificationType, ok := NotificationTypeForStatus(newStatus); ok {
		s.sendNotificationOnce(ctx, order, notificationType)
	}
	if newStatus == orderstatus.CANCELLED {
		s.restoreStock(order)
	}
}

// sendNotificationOnce claims the (order, type) reservation before
// sending. Losing the claim means the notification was already handled;
// a send failure after a won claim drops the mail rather than risking a
// duplicate on retry.
func (s *Service) sendNotificationOnce(ctx context.Context, order *models.Order, notificationType string) {
	claimed, err := s.orders.ClaimNotification(order.ID, notificationType)
	if err != nil {
		log.Printf("order %d: notification reservation %s failed: %v", order.ID, notificationType, err)
		return
	}
	if !claimed {
		log.Printf("order %d: notification %s already claimed, skipping", order.ID, notificationType)
		return
	}
	if err := s.notifier.Send(ctx, order, notificationType); err != nil {
		log.Printf("order %d: notification %s send failed: %v", order.ID, notificationType, err)
	}
}

// restoreStock returns the reserved quantities of a cancelled order.
// Failures are logged; the committed cancellation is never rolled back.
func (s *Service) restoreStock(order *models.Order) {
	if s.products == nil {
		return
	}
	for _, item := range order.Items {
		if err := s.products.IncrementStock(item.ProductID, item.Quantity); err != nil {
			log.Printf("order %d: stock restore for product %d (+%d) failed: %v",
				order.ID, item.ProductID, item.Quantity, err)
		}
	}
}

// NotificationTypeForStatus maps an applied target status to the
// customer notification it triggers. Statuses without a mapping stay
// silent.
func NotificationTypeForStatus(status string) (string, bool) {
	switch status {
	case orderstatus.CONFIRMED:
		return models.NotificationOrderConfirmed, true
	case orderstatus.CANCELLED:
		return models.NotificationOrderCancelled, true
	case orderstatus.SHIPPED:
		return models.NotificationOrderShipped, true
	case orderstatus.DELIVERED:
		return models.NotificationOrderDelivered, true
	default:
		return "", false
	}
}
