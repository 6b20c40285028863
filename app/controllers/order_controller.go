package controllers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ManuelReschke/ShopFox/app/models"
	"github.com/ManuelReschke/ShopFox/app/repository"
	"github.com/ManuelReschke/ShopFox/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/ShopFox/internal/pkg/orders"
	"github.com/ManuelReschke/ShopFox/internal/pkg/orderstatus"
	"github.com/ManuelReschke/ShopFox/internal/pkg/usercontext"
)

// HandleOrderLookup is the public status endpoint. It requires both the
// order UUID and the order number so the URL alone is not guessable.
func HandleOrderLookup(c *fiber.Ctx) error {
	uuid := c.Query("uuid")
	number := c.Query("number")
	if uuid == "" || number == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "uuid and number query parameters are required")
	}

	repo := repository.GetGlobalFactory().GetOrderRepository()
	order, err := repo.GetByUUIDAndNumber(uuid, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Order not found")
		}
		log.Printf("order lookup failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Order lookup failed")
	}

	// Best-effort lookup metric, flushed to the orders table periodically.
	if err := counter.AddOrderLookup(order.ID); err != nil {
		log.Printf("failed to count lookup for order %d: %v", order.ID, err)
	}

	events, err := repo.ListStatusEvents(order.ID)
	if err != nil {
		log.Printf("failed to load status events for order %d: %v", order.ID, err)
	}

	return c.JSON(fiber.Map{
		"order_number": order.OrderNumber,
		"status":       order.Status,
		"total_cents":  order.TotalCents,
		"currency":     order.Currency,
		"created_at":   order.CreatedAt.UTC().Format(time.RFC3339),
		"items":        orderItemsJSON(order.Items),
		"history":      statusHistoryJSON(events),
	})
}

// HandleUserOrders lists the authenticated user's orders.
func HandleUserOrders(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Login required")
	}

	offset, limit := parsePagination(c)
	repo := repository.GetGlobalFactory().GetOrderRepository()
	list, err := repo.ListByUserID(userCtx.UserID, offset, limit)
	if err != nil {
		log.Printf("failed to list orders for user %d: %v", userCtx.UserID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load orders")
	}

	out := make([]fiber.Map, 0, len(list))
	for i := range list {
		out = append(out, orderSummaryJSON(&list[i]))
	}
	return c.JSON(fiber.Map{"orders": out})
}

// HandleUserCancelOrder cancels one of the caller's own pending orders.
func HandleUserCancelOrder(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Login required")
	}

	uuid := c.Params("uuid")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	order, applied, err := orderService.CancelAsUser(ctx, uuid, userCtx.UserID)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "Order not found")
		case errors.Is(err, orders.ErrNotOwner):
			return jsonError(c, fiber.StatusForbidden, "forbidden", "Order belongs to another account")
		case errors.Is(err, orderstatus.ErrInvalidTransition):
			return jsonError(c, fiber.StatusConflict, "invalid_transition", "Order can no longer be cancelled")
		}
		log.Printf("cancel failed for order %s: %v", uuid, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Cancellation failed")
	}

	return c.JSON(fiber.Map{
		"order":   orderSummaryJSON(order),
		"applied": applied,
	})
}

func orderSummaryJSON(order *models.Order) fiber.Map {
	return fiber.Map{
		"uuid":         order.UUID,
		"order_number": order.OrderNumber,
		"status":       order.Status,
		"total_cents":  order.TotalCents,
		"currency":     order.Currency,
		"created_at":   order.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// orderItemsJSON exposes the priced line-item snapshot. No shipping
// fields leave through the public lookup.
func orderItemsJSON(items []models.OrderItem) []fiber.Map {
	out := make([]fiber.Map, 0, len(items))
	for _, item := range items {
		out = append(out, fiber.Map{
			"product_name":     item.ProductName,
			"quantity":         item.Quantity,
			"unit_price_cents": item.UnitPriceCents,
		})
	}
	return out
}

func statusHistoryJSON(events []models.OrderStatusEvent) []fiber.Map {
	out := make([]fiber.Map, 0, len(events))
	for _, e := range events {
		if !e.Applied {
			continue
		}
		out = append(out, fiber.Map{
			"from":        e.FromStatus,
			"to":          e.ToStatus,
			"occurred_at": e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
