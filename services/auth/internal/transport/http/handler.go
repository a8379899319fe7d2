package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sarmatovd/shop-services/pkg/logging"
	"github.com/sarmatovd/shop-services/pkg/utils"
	"github.com/sarmatovd/shop-services/services/auth/internal/service"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service  service.AuthService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewAuthHandler(service service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	ctx := c.UserContext()

	input := new(RegisterInput)
	if err := c.BodyParser(input); err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"body parsing failed",
			zap.Error(err),
		)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.validate.Struct(input); err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"register input validation failed",
			zap.Error(err),
		)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	user, token, err := h.service.Register(ctx, input.Name, input.Email, input.Password)
	if err != nil {
		status := statusFromError(err)

		logging.Warn(
			ctx,
			h.logger,
			"register failed",
			zap.String("email", input.Email),
			zap.Int("http_status", status),
			zap.Error(err),
		)

		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	logging.Info(
		ctx,
		h.logger,
		"user registered",
		zap.Int64("user_id", user.ID),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"token": token,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	ctx := c.UserContext()

	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"body parsing failed",
			zap.Error(err),
		)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": utils.FormatValidationError(err),
		})
	}

	token, err := h.service.Login(ctx, input.Email, input.Password)
	if err != nil {
		status := statusFromError(err)

		logging.Warn(
			ctx,
			h.logger,
			"login failed",
			zap.String("email", input.Email),
			zap.Int("http_status", status),
			zap.Error(err),
		)

		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	logging.Info(
		ctx,
		h.logger,
		"user logged in",
		zap.String("email", input.Email),
	)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token": token,
	})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"name":  c.Locals("userName"),
		"email": c.Locals("userEmail"),
	})
}
