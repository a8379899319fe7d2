package http

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sarmatovd/shop-services/pkg/logging"
	"github.com/sarmatovd/shop-services/pkg/utils"
	"github.com/sarmatovd/shop-services/services/product/internal/domain"
	"github.com/sarmatovd/shop-services/services/product/internal/service"
	"go.uber.org/zap"
)

type ProductHandler struct {
	products       service.ProductService
	purchases      service.PurchaseService
	validate       *validator.Validate
	logger         *zap.Logger
	purchasesTotal *prometheus.CounterVec
}

func NewProductHandler(
	products service.ProductService,
	purchases service.PurchaseService,
	purchasesTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *ProductHandler {
	return &ProductHandler{
		products:       products,
		purchases:      purchases,
		validate:       validator.New(),
		logger:         logger,
		purchasesTotal: purchasesTotal,
	}
}

type CreateProductInput struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Price       int64  `json:"price" validate:"required,gt=0"`
}

type BuyInput struct {
	ProductIDs []int64 `json:"product_ids" validate:"required,min=1,dive,gt=0"`
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	ctx := c.UserContext()

	input := new(CreateProductInput)
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

	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
	}

	id, err := h.products.Create(ctx, product)
	if err != nil {
		status := statusFromError(err)

		logging.Warn(
			ctx,
			h.logger,
			"create product failed",
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
		"product created",
		zap.Int64("product_id", id),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":     id,
		"status": "success",
	})
}

func (h *ProductHandler) FindByID(c *fiber.Ctx) error {
	ctx := c.UserContext()

	idStr := c.Params("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		logging.Warn(
			ctx,
			h.logger,
			"invalid product id",
			zap.String("id", idStr),
		)

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid id",
		})
	}

	product, err := h.products.FindByID(ctx, id)
	if err != nil {
		status := statusFromError(err)

		logging.Warn(
			ctx,
			h.logger,
			"find by id failed",
			zap.Int64("id", id),
			zap.Int("http_status", status),
			zap.Error(err),
		)

		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(product)
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()

	limit := int64(c.QueryInt("limit", 20))
	offset := int64(c.QueryInt("offset", 0))
	search := c.Query("search")

	products, total, err := h.products.List(ctx, limit, offset, search)
	if err != nil {
		status := statusFromError(err)

		logging.Warn(
			ctx,
			h.logger,
			"list products failed",
			zap.Int("http_status", status),
			zap.Error(err),
		)

		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"products":    products,
		"total_count": total,
	})
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	ctx := c.UserContext()

	idStr := c.Params("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid id",
		})
	}

	if err := h.products.Delete(ctx, id); err != nil {
		status := statusFromError(err)

		logging.Warn(
			ctx,
			h.logger,
			"delete product failed",
			zap.Int64("id", id),
			zap.Int("http_status", status),
			zap.Error(err),
		)

		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}

func (h *ProductHandler) Buy(c *fiber.Ctx) error {
	ctx := c.UserContext()

	email, ok := c.Locals("userEmail").(string)
	if !ok || email == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized: missed user",
		})
	}

	input := new(BuyInput)
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

	order, err := h.purchases.Buy(ctx, input.ProductIDs, email)
	if err != nil {
		status := statusFromError(err)

		h.purchasesTotal.WithLabelValues("error").Inc()

		logging.Warn(
			ctx,
			h.logger,
			"buy failed",
			zap.String("purchaser", email),
			zap.Int("http_status", status),
			zap.Error(err),
		)

		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.purchasesTotal.WithLabelValues("success").Inc()

	logging.Info(
		ctx,
		h.logger,
		"purchase confirmed",
		zap.Int64("order_id", order.ID),
		zap.String("purchaser", email),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order": order,
	})
}
