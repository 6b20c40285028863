package controllers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/ShopFox/app/repository"
	"github.com/ManuelReschke/ShopFox/internal/pkg/notification"
	"github.com/ManuelReschke/ShopFox/internal/pkg/orders"
	"github.com/ManuelReschke/ShopFox/internal/pkg/payment"
)

// Session keys shared with the user context middleware.
const (
	AUTH_KEY       string = "authenticated"
	USER_ID        string = "user_id"
	USER_NAME      string = "username"
	USER_IS_ADMIN  string = "isAdmin"
	FROM_PROTECTED string = "from_protected"
)

var (
	orderService   *orders.Service
	paymentService *payment.Service
)

// InitializeControllers wires the order and payment services from the
// global repository factory. Must run after the factory is initialized.
func InitializeControllers() {
	factory := repository.GetGlobalFactory()
	orderRepo := factory.GetOrderRepository()
	productRepo := factory.GetProductRepository()

	mailer := notification.NewMailer(factory.GetUserRepository(), "ShopFox", nil)
	orderService = orders.NewService(orderRepo, productRepo, mailer)

	cfg := payment.NewConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Printf("payment config incomplete: %v", err)
	}
	gateway := payment.NewGatewayClient(cfg)
	paymentService = payment.NewService(cfg, orderRepo, productRepo, orderService, gateway)
}

// SetServices overrides the wired services. Used by tests.
func SetServices(orderSvc *orders.Service, paymentSvc *payment.Service) {
	orderService = orderSvc
	paymentService = paymentSvc
}

func isLoggedIn(c *fiber.Ctx) bool {
	var fromProtected bool
	if protectedValue := c.Locals(FROM_PROTECTED); protectedValue != nil {
		fromProtected = protectedValue.(bool)
	}

	return fromProtected
}

// ExtractUsername gets the username from Locals (set by middleware)
func ExtractUsername(c *fiber.Ctx) string {
	if userNameValue := c.Locals(USER_NAME); userNameValue != nil {
		if userName, ok := userNameValue.(string); ok {
			return userName
		}
	}

	return ""
}

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

// parsePagination reads page/per_page query params with sane bounds.
func parsePagination(c *fiber.Ctx) (offset, limit int) {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(c.Query("per_page", "25"))
	if perPage < 1 || perPage > 100 {
		perPage = 25
	}
	return (page - 1) * perPage, perPage
}
