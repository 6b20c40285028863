package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// GatewayClient talks to the payment provider's checkout-session API.
// URLs and credentials are injected so tests can point it at a local
// server.
type GatewayClient struct {
	BaseURL string
	APIKey  string

	MaxRetries     int
	RetryBaseDelay time.Duration

	HTTPClient *http.Client
}

// NewGatewayClient builds a client from the payment configuration.
func NewGatewayClient(cfg Config) *GatewayClient {
	return &GatewayClient{
		BaseURL:        strings.TrimRight(cfg.GatewayBaseURL, "/"),
		APIKey:         cfg.GatewayAPIKey,
		MaxRetries:     cfg.MaxRetries,
		RetryBaseDelay: cfg.RetryBaseDelay,
		HTTPClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

// CheckoutSessionInput describes the session to create for an order.
type CheckoutSessionInput struct {
	OrderUUID   string `json:"client_reference_id"`
	AmountCents int64  `json:"amount"`
	Currency    string `json:"currency"`
	SuccessURL  string `json:"success_url"`
	CancelURL   string `json:"cancel_url"`
}

// CheckoutSession is the gateway's response for a created session.
type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentIntent string `json:"payment_intent"`
}

// CreateCheckoutSession creates a hosted checkout session. Transient
// network and 5xx failures are retried with bounded exponential
// backoff; client errors are surfaced immediately.
func (c *GatewayClient) CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*CheckoutSession, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return nil, errors.New("payment gateway base URL is not configured")
	}
	if strings.TrimSpace(in.OrderUUID) == "" {
		return nil, errors.New("order reference is required")
	}

	body, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	var session *CheckoutSession
	attempts := c.MaxRetries + 1
	delay := c.RetryBaseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		session, err = c.postCheckoutSession(ctx, body)
		if err == nil {
			return session, nil
		}
		var permanent *gatewayClientError
		if errors.As(err, &permanent) {
			return nil, err
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return nil, fmt.Errorf("checkout session creation failed after %d attempts: %w", attempts, err)
}

// gatewayClientError marks a non-retryable 4xx response.
type gatewayClientError struct {
	status int
	body   string
}

func (e *gatewayClientError) Error() string {
	return fmt.Sprintf("gateway rejected request: status=%d body=%s", e.status, e.body)
}

func (c *GatewayClient) postCheckoutSession(ctx context.Context, body []byte) (*CheckoutSession, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, &gatewayClientError{status: resp.StatusCode, body: string(respBody)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var out CheckoutSession
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, err
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, errors.New("gateway response missing session id")
	}
	return &out, nil
}
