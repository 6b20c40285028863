package payment

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ManuelReschke/ShopFox/internal/pkg/orderstatus"
)

// Event types delivered by the payment gateway.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
	EventPaymentFailed     = "payment.failed"
)

// WebhookEvent is the normalized shape of one verified gateway delivery.
type WebhookEvent struct {
	ID              string
	Type            string
	SessionID       string
	PaymentIntentID string
	// OrderUUID is the client reference we handed to the gateway at
	// checkout-session creation time.
	OrderUUID string
}

// ParseWebhookEvent extracts the stable identifiers from a verified
// payload. Events without an id fall back to a payload hash so replayed
// bodies still deduplicate.
func ParseWebhookEvent(payload []byte) (*WebhookEvent, error) {
	var raw struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID                string `json:"id"`
				PaymentIntent     string `json:"payment_intent"`
				ClientReferenceID string `json:"client_reference_id"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.Type) == "" {
		return nil, errors.New("webhook payload missing event type")
	}

	eventID := strings.TrimSpace(raw.ID)
	if eventID == "" {
		sum := sha256.Sum256(payload)
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	return &WebhookEvent{
		ID:              eventID,
		Type:            strings.TrimSpace(raw.Type),
		SessionID:       strings.TrimSpace(raw.Data.Object.ID),
		PaymentIntentID: strings.TrimSpace(raw.Data.Object.PaymentIntent),
		OrderUUID:       strings.TrimSpace(raw.Data.Object.ClientReferenceID),
	}, nil
}

// TargetStatusForEventType maps a gateway event type to the status the
// order should move to. Unlisted types are acknowledged and ignored,
// which keeps the pipeline forward-compatible with new gateway events.
func TargetStatusForEventType(eventType string) (string, bool) {
	switch eventType {
	case EventCheckoutCompleted:
		return orderstatus.CONFIRMED, true
	case EventCheckoutExpired, EventPaymentFailed:
		return orderstatus.CANCELLED, true
	default:
		return "", false
	}
}
