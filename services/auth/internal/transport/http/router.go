package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sarmatovd/shop-services/pkg/middleware"
)

func RegisterRoutes(app *fiber.App, h *AuthHandler) {
	authGroup := app.Group("/auth")

	authGroup.Post("/register", h.Register)
	authGroup.Post("/login", h.Login)
	authGroup.Get("/me", middleware.NewAuthMiddleware(), h.Me)
}
