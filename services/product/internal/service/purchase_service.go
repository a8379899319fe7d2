package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sarmatovd/shop-services/pkg/domain"
	"github.com/sarmatovd/shop-services/pkg/logging"
	"github.com/sarmatovd/shop-services/pkg/rabbitmq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	ErrEmptyPurchase      = errors.New("purchase must contain at least one product")
	ErrFulfillmentTimeout = errors.New("timed out waiting for order confirmation")
	ErrPublishFailed      = errors.New("failed to publish purchase request")
)

type PurchaseService interface {
	Buy(ctx context.Context, productIDs []int64, purchaserEmail string) (*domain.OrderPayload, error)
	HandleResult(ctx context.Context, correlationID string, payload domain.OrderPayload) bool
}

type purchaseService struct {
	products  ProductService
	publisher rabbitmq.Publisher
	waiters   *waiterRegistry
	timeout   time.Duration
	tracer    trace.Tracer
	logger    *zap.Logger
}

func NewPurchaseService(
	products ProductService,
	publisher rabbitmq.Publisher,
	timeout time.Duration,
	logger *zap.Logger,
) PurchaseService {
	return &purchaseService{
		products:  products,
		publisher: publisher,
		waiters:   newWaiterRegistry(),
		timeout:   timeout,
		tracer:    otel.Tracer("service/purchase"),
		logger:    logger,
	}
}

// Buy snapshots current prices, publishes a purchase request and blocks
// until the order service confirms it, the timeout fires, or the caller
// cancels. The waiter is registered before publishing so a fast reply
// can never race past it.
func (s *purchaseService) Buy(ctx context.Context, productIDs []int64, purchaserEmail string) (*domain.OrderPayload, error) {
	ctx, span := s.tracer.Start(ctx, "PurchaseService.Buy")
	defer span.End()

	span.SetAttributes(
		attribute.Int("product_count", len(productIDs)),
	)

	if len(productIDs) == 0 {
		return nil, ErrEmptyPurchase
	}

	products, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	lineItems := make([]domain.PurchaseLineItem, len(products))
	for i, p := range products {
		lineItems[i] = domain.PurchaseLineItem{
			ProductID: p.ID,
			Price:     p.Price,
		}
	}

	message := domain.PurchaseRequestMessage{
		Products:       lineItems,
		PurchaserEmail: purchaserEmail,
		RequestedAt:    time.Now().UTC(),
	}

	correlationID := uuid.New().String()
	span.SetAttributes(
		attribute.String("correlation_id", correlationID),
	)

	resultCh := s.waiters.Register(correlationID)

	if err := s.publisher.Publish(ctx, domain.PurchaseRequestQueue, correlationID, message); err != nil {
		s.waiters.Remove(correlationID)

		logging.Error(
			ctx,
			s.logger,
			"Failed to publish purchase request",
			zap.String("correlation_id", correlationID),
			zap.Error(err),
		)

		return nil, ErrPublishFailed
	}

	logging.Info(
		ctx,
		s.logger,
		"Purchase request published",
		zap.String("correlation_id", correlationID),
		zap.String("purchaser", purchaserEmail),
	)

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case payload := <-resultCh:
		return &payload, nil
	case <-timer.C:
		s.waiters.Remove(correlationID)

		logging.Warn(
			ctx,
			s.logger,
			"Purchase confirmation timed out",
			zap.String("correlation_id", correlationID),
			zap.Duration("timeout", s.timeout),
		)

		return nil, ErrFulfillmentTimeout
	case <-ctx.Done():
		s.waiters.Remove(correlationID)

		return nil, ctx.Err()
	}
}

// HandleResult hands a confirmation to the waiter registered for the
// correlation id. A false return means nobody is waiting anymore, which
// happens when the reply arrives after the purchase timed out.
func (s *purchaseService) HandleResult(ctx context.Context, correlationID string, payload domain.OrderPayload) bool {
	resolved := s.waiters.Resolve(correlationID, payload)
	if !resolved {
		logging.Warn(
			ctx,
			s.logger,
			"No waiter for purchase result",
			zap.String("correlation_id", correlationID),
			zap.Int64("order_id", payload.ID),
		)
	}

	return resolved
}
