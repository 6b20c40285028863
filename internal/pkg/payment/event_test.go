package payment

import (
	"strings"
	"testing"

	"github.com/ManuelReschke/ShopFox/internal/pkg/orderstatus"
)

func TestParseWebhookEvent(t *testing.T) {
	raw := []byte(`{
		"id": "evt_123",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_456",
				"payment_intent": "pi_789",
				"client_reference_id": "order-uuid-1"
			}
		}
	}`)

	ev, err := ParseWebhookEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.ID != "evt_123" || ev.Type != EventCheckoutCompleted {
		t.Fatalf("unexpected event identity: %+v", ev)
	}
	if ev.SessionID != "cs_456" || ev.PaymentIntentID != "pi_789" || ev.OrderUUID != "order-uuid-1" {
		t.Fatalf("unexpected references: %+v", ev)
	}
}

func TestParseWebhookEventMissingIDFallsBackToHash(t *testing.T) {
	raw := []byte(`{"type":"payment.failed","data":{"object":{"id":"cs_1"}}}`)
	ev, err := ParseWebhookEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !strings.HasPrefix(ev.ID, "hash:") {
		t.Fatalf("expected hash fallback id, got %q", ev.ID)
	}

	// Identical bytes must produce the identical fallback id.
	again, err := ParseWebhookEvent(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if again.ID != ev.ID {
		t.Fatalf("fallback id not stable: %q vs %q", again.ID, ev.ID)
	}
}

func TestParseWebhookEventRejectsGarbage(t *testing.T) {
	if _, err := ParseWebhookEvent([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if _, err := ParseWebhookEvent([]byte(`{"id":"evt_1"}`)); err == nil {
		t.Fatal("expected error for missing event type")
	}
}

func TestTargetStatusForEventType(t *testing.T) {
	tests := []struct {
		eventType string
		want      string
		known     bool
	}{
		{EventCheckoutCompleted, orderstatus.CONFIRMED, true},
		{EventCheckoutExpired, orderstatus.CANCELLED, true},
		{EventPaymentFailed, orderstatus.CANCELLED, true},
		{"refund.created", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, known := TargetStatusForEventType(tt.eventType)
		if got != tt.want || known != tt.known {
			t.Fatalf("TargetStatusForEventType(%q) = (%q, %v), want (%q, %v)",
				tt.eventType, got, known, tt.want, tt.known)
		}
	}
}
