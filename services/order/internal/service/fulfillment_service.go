package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	generalDomain "github.com/sarmatovd/shop-services/pkg/domain"
	"github.com/sarmatovd/shop-services/pkg/logging"
	outboxDomain "github.com/sarmatovd/shop-services/pkg/outbox/domain"
	"github.com/sarmatovd/shop-services/pkg/outbox/worker"
	"github.com/sarmatovd/shop-services/services/order/internal/domain"
	"github.com/sarmatovd/shop-services/services/order/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type FulfillmentService interface {
	Fulfill(ctx context.Context, correlationID string, message generalDomain.PurchaseRequestMessage) (*generalDomain.OrderPayload, error)
	ListByPurchaser(ctx context.Context, email string) ([]domain.Order, error)
}

type fulfillmentService struct {
	orderRepo  repository.OrderRepository
	outboxRepo worker.OutboxRepository
	pool       *pgxpool.Pool
	logger     *zap.Logger
	tracer     trace.Tracer
}

func NewFulfillmentService(
	orderRepo repository.OrderRepository,
	outboxRepo worker.OutboxRepository,
	pool *pgxpool.Pool,
	logger *zap.Logger,
) FulfillmentService {
	return &fulfillmentService{
		orderRepo:  orderRepo,
		outboxRepo: outboxRepo,
		pool:       pool,
		logger:     logger,
		tracer:     otel.Tracer("service/fulfillment"),
	}
}

// Fulfill persists an order for the purchase request. The correlation id
// carries a unique constraint, so a redelivered request resolves to the
// order created the first time around instead of a duplicate.
func (s *fulfillmentService) Fulfill(ctx context.Context, correlationID string, message generalDomain.PurchaseRequestMessage) (*generalDomain.OrderPayload, error) {
	ctx, span := s.tracer.Start(ctx, "FulfillmentService.Fulfill")
	defer span.End()

	span.SetAttributes(
		attribute.String("correlation_id", correlationID),
		attribute.Int("product_count", len(message.Products)),
	)

	var total int64
	products := make([]domain.OrderProduct, len(message.Products))
	for i, item := range message.Products {
		total += item.Price
		products[i] = domain.OrderProduct{
			ProductID: item.ProductID,
			Price:     item.Price,
		}
	}

	order := &domain.Order{
		CorrelationID:  correlationID,
		PurchaserEmail: message.PurchaserEmail,
		TotalPrice:     total,
		Products:       products,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logging.Error(
			ctx,
			s.logger,
			"Failed to begin transaction",
			zap.Error(err),
		)

		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)

		err := tx.Rollback(cleanupCtx)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logging.Error(
				cleanupCtx,
				s.logger,
				"Error rolling back transaction",
				zap.Error(err),
			)
		}
	}()

	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		if errors.Is(err, repository.ErrOrderAlreadyExists) {
			existing, getErr := s.orderRepo.GetByCorrelationID(ctx, correlationID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to load existing order: %w", getErr)
			}

			logging.Info(
				ctx,
				s.logger,
				"Reusing order from earlier delivery",
				zap.String("correlation_id", correlationID),
				zap.Int64("order_id", existing.ID),
			)

			return orderPayload(existing), nil
		}

		return nil, err
	}

	event := generalDomain.OrderCreatedEvent{
		OrderID:        order.ID,
		PurchaserEmail: order.PurchaserEmail,
		TotalPrice:     order.TotalPrice,
		CreatedAt:      order.CreatedAt,
	}

	payloadBytes, _ := json.Marshal(event)
	outboxEvent := &outboxDomain.OutboxEvent{
		AggregateType: "Order",
		AggregateID:   fmt.Sprintf("%d", order.ID),
		EventType:     "OrderCreated",
		Payload:       payloadBytes,
		Topic:         generalDomain.OrderEventsTopic,
	}

	if err := s.outboxRepo.SaveOutboxEvent(ctx, tx, outboxEvent); err != nil {
		logging.Error(
			ctx,
			s.logger,
			"Error saving outbox event",
			zap.Error(err),
		)

		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction failed: %w", err)
	}

	logging.Info(
		ctx,
		s.logger,
		"Order created",
		zap.Int64("order_id", order.ID),
		zap.String("correlation_id", correlationID),
		zap.Int64("total_price", order.TotalPrice),
	)

	return orderPayload(order), nil
}

func (s *fulfillmentService) ListByPurchaser(ctx context.Context, email string) ([]domain.Order, error) {
	return s.orderRepo.ListByPurchaser(ctx, email)
}

func orderPayload(order *domain.Order) *generalDomain.OrderPayload {
	productIDs := make([]int64, len(order.Products))
	for i, p := range order.Products {
		productIDs[i] = p.ProductID
	}

	return &generalDomain.OrderPayload{
		ID:             order.ID,
		ProductIDs:     productIDs,
		PurchaserEmail: order.PurchaserEmail,
		TotalPrice:     order.TotalPrice,
		CreatedAt:      order.CreatedAt,
	}
}
