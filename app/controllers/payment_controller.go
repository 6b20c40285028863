package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/ShopFox/internal/pkg/payment"
	"github.com/ManuelReschke/ShopFox/internal/pkg/usercontext"
)

// HandlePaymentWebhook receives gateway callbacks. The raw body is kept
// byte-for-byte because the signature covers it.
func HandlePaymentWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("X-Webhook-Signature")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	outcome, err := paymentService.ProcessWebhook(ctx, rawBody, signature)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrPayloadTooLarge):
			return jsonError(c, fiber.StatusRequestEntityTooLarge, "payload_too_large", "Webhook payload exceeds the size limit")
		case errors.Is(err, payment.ErrInvalidSignature):
			return jsonError(c, fiber.StatusUnauthorized, "invalid_signature", "Webhook signature verification failed")
		case errors.Is(err, payment.ErrMalformedPayload):
			return jsonError(c, fiber.StatusBadRequest, "invalid_payload", "Webhook payload could not be parsed")
		}
		log.Printf("webhook processing failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "webhook_failed", "Webhook could not be processed")
	}

	switch outcome {
	case payment.OutcomeDuplicate:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "duplicate": true})
	case payment.OutcomeIgnored:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "ignored": true})
	default:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "outcome": outcome.String()})
	}
}

type checkoutRequest struct {
	Items    []payment.CheckoutItemInput `json:"items" validate:"required,min=1,max=50,dive"`
	Shipping payment.ShippingInput       `json:"shipping" validate:"required"`
}

var checkoutValidator = validator.New()

// HandleCheckout creates a pending order and opens a hosted payment
// session for it.
func HandleCheckout(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Login required")
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Request body could not be parsed")
	}
	if err := checkoutValidator.Struct(req); err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	order, redirectURL, err := paymentService.CreateCheckout(ctx, userCtx.UserID, req.Items, req.Shipping)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrProductUnavailable):
			return jsonError(c, fiber.StatusUnprocessableEntity, "product_unavailable", "One or more products are not available")
		case errors.Is(err, payment.ErrInsufficientStock):
			return jsonError(c, fiber.StatusConflict, "insufficient_stock", "Not enough stock for the requested quantities")
		}
		log.Printf("checkout failed for user %d: %v", userCtx.UserID, err)
		return jsonError(c, fiber.StatusBadGateway, "checkout_failed", "Checkout could not be started")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order": fiber.Map{
			"uuid":         order.UUID,
			"order_number": order.OrderNumber,
			"status":       order.Status,
			"total_cents":  order.TotalCents,
			"currency":     order.Currency,
		},
		"payment_url": redirectURL,
	})
}
