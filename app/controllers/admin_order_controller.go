package controllers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/ManuelReschke/ShopFox/app/repository"
	"github.com/ManuelReschke/ShopFox/internal/pkg/orders"
	"github.com/ManuelReschke/ShopFox/internal/pkg/orderstatus"
)

// HandleAdminListOrders returns a paginated order list for the backoffice.
func HandleAdminListOrders(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)
	repo := repository.GetGlobalFactory().GetOrderRepository()

	list, err := repo.List(offset, limit)
	if err != nil {
		log.Printf("admin order list failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load orders")
	}
	total, err := repo.Count()
	if err != nil {
		log.Printf("admin order count failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to count orders")
	}

	out := make([]fiber.Map, 0, len(list))
	for i := range list {
		out = append(out, orderSummaryJSON(&list[i]))
	}
	return c.JSON(fiber.Map{"orders": out, "total": total})
}

// HandleAdminGetOrder returns one order with items and its full status history.
func HandleAdminGetOrder(c *fiber.Ctx) error {
	orderID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Order id must be numeric")
	}

	repo := repository.GetGlobalFactory().GetOrderRepository()
	order, err := repo.GetByID(uint(orderID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "not_found", "Order not found")
		}
		log.Printf("admin order load failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Failed to load order")
	}

	events, err := repo.ListStatusEvents(order.ID)
	if err != nil {
		log.Printf("failed to load status events for order %d: %v", order.ID, err)
	}

	items := make([]fiber.Map, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, fiber.Map{
			"product_id":       item.ProductID,
			"product_name":     item.ProductName,
			"quantity":         item.Quantity,
			"unit_price_cents": item.UnitPriceCents,
		})
	}

	history := make([]fiber.Map, 0, len(events))
	for _, e := range events {
		history = append(history, fiber.Map{
			"from":              e.FromStatus,
			"to":                e.ToStatus,
			"actor":             e.Actor,
			"applied":           e.Applied,
			"external_event_id": e.ExternalEventID,
			"occurred_at":       e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	detail := orderSummaryJSON(order)
	detail["user_id"] = order.UserID
	detail["shipping"] = fiber.Map{
		"name":    order.ShippingName,
		"street":  order.ShippingStreet,
		"zip":     order.ShippingZip,
		"city":    order.ShippingCity,
		"country": order.ShippingCountry,
	}
	detail["lookup_count"] = order.LookupCount
	detail["items"] = items
	detail["history"] = history

	return c.JSON(detail)
}

type adminStatusUpdateRequest struct {
	Status string `json:"status"`
}

// HandleAdminUpdateOrderStatus moves an order along the lifecycle on
// behalf of a backoffice user.
func HandleAdminUpdateOrderStatus(c *fiber.Ctx) error {
	orderID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Order id must be numeric")
	}

	var req adminStatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "Request body could not be parsed")
	}
	if !orderstatus.IsValid(req.Status) {
		return jsonError(c, fiber.StatusUnprocessableEntity, "invalid_status", "Unknown order status")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	order, applied, err := orderService.UpdateStatusAsAdmin(ctx, uint(orderID), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			return jsonError(c, fiber.StatusNotFound, "not_found", "Order not found")
		case errors.Is(err, orderstatus.ErrInvalidTransition):
			return jsonError(c, fiber.StatusConflict, "invalid_transition", "Status change not allowed from the current state")
		}
		log.Printf("admin status update failed for order %d: %v", orderID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Status update failed")
	}

	return c.JSON(fiber.Map{
		"order":   orderSummaryJSON(order),
		"applied": applied,
	})
}
