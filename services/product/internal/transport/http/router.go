package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sarmatovd/shop-services/pkg/middleware"
)

func RegisterRoutes(app *fiber.App, h *ProductHandler) {
	products := app.Group("/products")

	products.Get("", h.List)
	products.Get("/:id", h.FindByID)

	protected := products.Group("", middleware.NewAuthMiddleware())
	protected.Post("", h.Create)
	protected.Delete("/:id", h.Delete)
	protected.Post("/buy", h.Buy)
}
