package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/ManuelReschke/ShopFox/app/models"
	"github.com/ManuelReschke/ShopFox/app/repository"
	"github.com/ManuelReschke/ShopFox/internal/pkg/mail"
)

// SendMailFunc matches mail.SendMail and is swappable in tests.
type SendMailFunc func(to, subject, body string) error

// Mailer turns order lifecycle notifications into customer emails.
type Mailer struct {
	users    repository.UserRepository
	sendMail SendMailFunc
	shopName string
}

// NewMailer builds a Mailer backed by the SMTP relay. sendMail may be
// nil, in which case mail.SendMail is used.
func NewMailer(users repository.UserRepository, shopName string, sendMail SendMailFunc) *Mailer {
	if sendMail == nil {
		sendMail = mail.SendMail
	}
	if shopName == "" {
		shopName = "ShopFox"
	}
	return &Mailer{users: users, sendMail: sendMail, shopName: shopName}
}

// Send emails the order's customer about a lifecycle change. Guest
// orders without a user account are skipped silently.
func (m *Mailer) Send(ctx context.Context, order *models.Order, notificationType string) error {
	if order.UserID == 0 {
		log.Printf("[Notification] order %s has no user, skipping %s email", order.UUID, notificationType)
		return nil
	}

	user, err := m.users.GetByID(order.UserID)
	if err != nil {
		return fmt.Errorf("load user %d for order %s: %w", order.UserID, order.UUID, err)
	}

	subject, body, err := m.render(user, order, notificationType)
	if err != nil {
		return err
	}

	if err := m.sendMail(user.Email, subject, body); err != nil {
		return fmt.Errorf("send %s email for order %s: %w", notificationType, order.OrderNumber, err)
	}
	return nil
}

func (m *Mailer) render(user *models.User, order *models.Order, notificationType string) (string, string, error) {
	total := fmt.Sprintf("%d.%02d %s", order.TotalCents/100, order.TotalCents%100, order.Currency)

	switch notificationType {
	case models.NotificationOrderConfirmed:
		subject := fmt.Sprintf("%s: order %s confirmed", m.shopName, order.OrderNumber)
		body := fmt.Sprintf("<p>Hello %s,</p><p>we received your payment. Your order <strong>%s</strong> (%s) is confirmed and will be prepared for shipping.</p>",
			user.Name, order.OrderNumber, total)
		return subject, body, nil
	case models.NotificationOrderCancelled:
		subject := fmt.Sprintf("%s: order %s cancelled", m.shopName, order.OrderNumber)
		body := fmt.Sprintf("<p>Hello %s,</p><p>your order <strong>%s</strong> was cancelled. If you were charged, the amount will be refunded.</p>",
			user.Name, order.OrderNumber)
		return subject, body, nil
	case models.NotificationOrderShipped:
		subject := fmt.Sprintf("%s: order %s shipped", m.shopName, order.OrderNumber)
		body := fmt.Sprintf("<p>Hello %s,</p><p>your order <strong>%s</strong> is on its way to %s, %s %s.</p>",
			user.Name, order.OrderNumber, order.ShippingStreet, order.ShippingZip, order.ShippingCity)
		return subject, body, nil
	case models.NotificationOrderDelivered:
		subject := fmt.Sprintf("%s: order %s delivered", m.shopName, order.OrderNumber)
		body := fmt.Sprintf("<p>Hello %s,</p><p>your order <strong>%s</strong> was delivered. Thank you for shopping with us!</p>",
			user.Name, order.OrderNumber)
		return subject, body, nil
	default:
		return "", "", fmt.Errorf("unknown notification type %q", notificationType)
	}
}
