package orders

import (
	"context"

	"github.com/ManuelReschke/ShopFox/app/models"
)

// TransitionRequest describes one attempted status change. The caller
// names the status it believes the order is in; the conditional update
// only applies if that is still true.
type TransitionRequest struct {
	OrderID         uint
	FromStatus      string
	ToStatus        string
	Actor           string
	ExternalEventID string
	RequestID       string
}

// Notifier sends a customer-facing notification for an order. Sends are
// fire-and-forget from the engine's point of view: failures are logged
// and never affect the committed transition.
type Notifier interface {
	Send(ctx context.Context, order *models.Order, notificationType string) error
}

// NoopNotifier satisfies Notifier without side effects, for tests and
// for deployments without a mail channel.
type NoopNotifier struct{}

func (NoopNotifier) Send(ctx context.Context, order *models.Order, notificationType string) error {
	return nil
}
