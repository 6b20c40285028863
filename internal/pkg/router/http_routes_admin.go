package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/ShopFox/app/controllers"
	"github.com/ManuelReschke/ShopFox/internal/pkg/constants"
	"github.com/ManuelReschke/ShopFox/internal/pkg/middleware"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group(constants.AdminAPIRoute, middleware.RequireAPISessionAuth, middleware.RequireAPIAdmin)

	// Order management
	adminGroup.Get("/orders", controllers.HandleAdminListOrders)
	adminGroup.Get("/orders/:id", controllers.HandleAdminGetOrder)
	adminGroup.Patch("/orders/:id/status", controllers.HandleAdminUpdateOrderStatus)
}
