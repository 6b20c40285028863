package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/ShopFox/app/controllers"
	"github.com/ManuelReschke/ShopFox/internal/pkg/constants"
	"github.com/ManuelReschke/ShopFox/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute, limiter.New(limiter.Config{
		// Webhook retries must never be throttled away.
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/api/v1/payment/webhook"
		},
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group(constants.APIV1Route)

	// Payment gateway callbacks, signature-verified in the controller.
	v1.Post("/payment/webhook", controllers.HandlePaymentWebhook)

	// Public order status lookup (uuid + order number required).
	v1.Get("/orders/lookup", controllers.HandleOrderLookup)

	// Session-authenticated storefront operations.
	v1.Post("/checkout", middleware.RequireAPISessionAuth, controllers.HandleCheckout)
	v1.Post("/orders/:uuid/cancel", middleware.RequireAPISessionAuth, controllers.HandleUserCancelOrder)

	// API-key authenticated user endpoints.
	userAPI := v1.Group("/user", middleware.APIKeyAuthMiddleware())
	userAPI.Get("/orders", controllers.HandleUserOrders)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
