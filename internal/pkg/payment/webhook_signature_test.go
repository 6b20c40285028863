package payment

import "testing"

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)
	secret := "top-secret"

	validSig := SignPayload(payload, secret)
	if !VerifyWebhookSignature(payload, validSig, secret) {
		t.Fatal("expected signature to validate")
	}
	if !VerifyWebhookSignature(payload, "sha256="+validSig, secret) {
		t.Fatal("expected prefixed signature to validate")
	}
	if VerifyWebhookSignature(payload, "deadbeef", secret) {
		t.Fatal("expected invalid signature to fail")
	}
	if VerifyWebhookSignature(payload, validSig, "other-secret") {
		t.Fatal("expected wrong secret to fail")
	}
	if VerifyWebhookSignature(payload, "", secret) {
		t.Fatal("expected empty signature to fail")
	}
	if VerifyWebhookSignature(payload, validSig, "") {
		t.Fatal("expected empty secret to fail")
	}
	if VerifyWebhookSignature(payload, "not-hex!", secret) {
		t.Fatal("expected undecodable signature to fail")
	}

	// The signature covers the exact raw bytes; any mutation breaks it.
	mutated := append([]byte(nil), payload...)
	mutated[0] = ' '
	if VerifyWebhookSignature(mutated, validSig, secret) {
		t.Fatal("expected mutated payload to fail verification")
	}
}
