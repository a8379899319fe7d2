package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sarmatovd/shop-services/services/product/internal/repository"
	"github.com/sarmatovd/shop-services/services/product/internal/service"
)

func statusFromError(err error) int {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrEmptyPurchase):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrFulfillmentTimeout):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, service.ErrPublishFailed):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
