package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sarmatovd/shop-services/services/auth/internal/repository"
	"github.com/sarmatovd/shop-services/services/auth/internal/service"
	"github.com/sarmatovd/shop-services/services/auth/pkg/validator"
)

func statusFromError(err error) int {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrWrongPassword):
		return fiber.StatusUnauthorized
	case errors.Is(err, repository.ErrUserAlreadyExists):
		return fiber.StatusConflict
	case errors.Is(err, validator.ErrPasswordTooShort),
		errors.Is(err, validator.ErrPasswordTooWeak):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
