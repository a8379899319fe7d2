package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sarmatovd/shop-services/pkg/logging"
	"github.com/sarmatovd/shop-services/pkg/middleware"
	"github.com/sarmatovd/shop-services/services/order/internal/service"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service service.FulfillmentService
	logger  *zap.Logger
}

func NewOrderHandler(service service.FulfillmentService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

func (h *OrderHandler) ListMine(c *fiber.Ctx) error {
	ctx := c.UserContext()

	email, ok := c.Locals("userEmail").(string)
	if !ok || email == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized: missed user",
		})
	}

	orders, err := h.service.ListByPurchaser(ctx, email)
	if err != nil {
		logging.Error(
			ctx,
			h.logger,
			"list orders failed",
			zap.String("purchaser", email),
			zap.Error(err),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"orders": orders,
	})
}

func RegisterRoutes(app *fiber.App, h *OrderHandler) {
	orders := app.Group("/orders", middleware.NewAuthMiddleware())

	orders.Get("", h.ListMine)
}
