package payment

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ManuelReschke/ShopFox/internal/pkg/env"
)

const (
	defaultMaxBodyBytes   = 256 * 1024
	defaultRequestTimeout = 15 * time.Second
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
)

// Config collects every payment-related knob in one validated place.
// It is built once at startup and injected; handlers never read the
// environment themselves.
type Config struct {
	// WebhookSecret is the shared HMAC secret for inbound gateway events.
	WebhookSecret string
	// MaxBodyBytes bounds the raw webhook payload size before parsing.
	MaxBodyBytes int
	// GatewayBaseURL and GatewayAPIKey configure the checkout-session client.
	GatewayBaseURL string
	GatewayAPIKey  string
	// SuccessURL and CancelURL are the storefront redirect targets
	// passed to the gateway when creating a checkout session.
	SuccessURL string
	CancelURL  string
	// RequestTimeout bounds each outbound gateway call.
	RequestTimeout time.Duration
	// MaxRetries and RetryBaseDelay bound the exponential backoff used
	// for transient gateway failures. Validation failures are never retried.
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// NewConfigFromEnv assembles the payment configuration from the
// environment. The result still needs Validate before use.
func NewConfigFromEnv() Config {
	return Config{
		WebhookSecret:  env.GetEnv("PAYMENT_WEBHOOK_SECRET", ""),
		MaxBodyBytes:   envInt("PAYMENT_MAX_BODY_BYTES", defaultMaxBodyBytes),
		GatewayBaseURL: env.GetEnv("PAYMENT_GATEWAY_URL", ""),
		GatewayAPIKey:  env.GetEnv("PAYMENT_GATEWAY_API_KEY", ""),
		SuccessURL:     env.GetEnv("PAYMENT_SUCCESS_URL", ""),
		CancelURL:      env.GetEnv("PAYMENT_CANCEL_URL", ""),
		RequestTimeout: defaultRequestTimeout,
		MaxRetries:     envInt("PAYMENT_MAX_RETRIES", defaultMaxRetries),
		RetryBaseDelay: defaultRetryBaseDelay,
	}
}

// Validate checks the configuration for the options that have no usable
// zero value.
func (c Config) Validate() error {
	if c.WebhookSecret == "" {
		return errors.New("PAYMENT_WEBHOOK_SECRET is not configured")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("PAYMENT_MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	if c.GatewayBaseURL == "" {
		return errors.New("PAYMENT_GATEWAY_URL is not configured")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("PAYMENT_MAX_RETRIES must not be negative, got %d", c.MaxRetries)
	}
	return nil
}

func envInt(key string, def int) int {
	raw := env.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
