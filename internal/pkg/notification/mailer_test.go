package notification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/ManuelReschke/ShopFox/app/models"
)

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (f *fakeUserRepo) Create(user *models.User) error { return nil }

func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByAPIKeyHash(hash string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Update(user *models.User) error { return nil }

type sentMail struct {
	to      string
	subject string
	body    string
}

func TestMailerSendsOrderConfirmedEmail(t *testing.T) {
	users := &fakeUserRepo{users: map[uint]*models.User{
		7: {ID: 7, Name: "Jo Doe", Email: "jo@example.test"},
	}}
	var sent []sentMail
	mailer := NewMailer(users, "ShopFox", func(to, subject, body string) error {
		sent = append(sent, sentMail{to, subject, body})
		return nil
	})

	order := &models.Order{UserID: 7, OrderNumber: "SF-20260830-ABCDEF", TotalCents: 2499, Currency: "EUR"}
	if err := mailer.Send(context.Background(), order, models.NotificationOrderConfirmed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sent))
	}
	if sent[0].to != "jo@example.test" {
		t.Fatalf("to = %s", sent[0].to)
	}
	if !strings.Contains(sent[0].subject, "SF-20260830-ABCDEF") || !strings.Contains(sent[0].subject, "confirmed") {
		t.Fatalf("subject = %s", sent[0].subject)
	}
	if !strings.Contains(sent[0].body, "24.99 EUR") {
		t.Fatalf("body missing total: %s", sent[0].body)
	}
}

func TestMailerSkipsGuestOrders(t *testing.T) {
	users := &fakeUserRepo{users: map[uint]*models.User{}}
	called := false
	mailer := NewMailer(users, "", func(to, subject, body string) error {
		called = true
		return nil
	})

	order := &models.Order{UserID: 0, OrderNumber: "SF-20260830-ABCDEF"}
	if err := mailer.Send(context.Background(), order, models.NotificationOrderShipped); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatal("guest orders must not trigger emails")
	}
}

func TestMailerPropagatesSendFailure(t *testing.T) {
	users := &fakeUserRepo{users: map[uint]*models.User{
		7: {ID: 7, Name: "Jo Doe", Email: "jo@example.test"},
	}}
	mailer := NewMailer(users, "ShopFox", func(to, subject, body string) error {
		return errors.New("relay refused")
	})

	order := &models.Order{UserID: 7, OrderNumber: "SF-20260830-ABCDEF"}
	if err := mailer.Send(context.Background(), order, models.NotificationOrderCancelled); err == nil {
		t.Fatal("expected error from failing relay")
	}
}

func TestMailerRejectsUnknownNotificationType(t *testing.T) {
	users := &fakeUserRepo{users: map[uint]*models.User{
		7: {ID: 7, Name: "Jo Doe", Email: "jo@example.test"},
	}}
	mailer := NewMailer(users, "ShopFox", func(to, subject, body string) error { return nil })

	order := &models.Order{UserID: 7}
	if err := mailer.Send(context.Background(), order, "order_exploded"); err == nil {
		t.Fatal("expected error for unknown type")
	}
}
