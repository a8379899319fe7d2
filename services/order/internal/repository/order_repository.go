package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sarmatovd/shop-services/pkg/logging"
	"github.com/sarmatovd/shop-services/services/order/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, tx pgx.Tx, order *domain.Order) error
	GetByCorrelationID(ctx context.Context, correlationID string) (*domain.Order, error)
	ListByPurchaser(ctx context.Context, email string) ([]domain.Order, error)
}

type orderRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewOrderRepository(pool *pgxpool.Pool, logger *zap.Logger) OrderRepository {
	return &orderRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/order_repo"),
	}
}

func (r *orderRepo) CreateOrder(ctx context.Context, tx pgx.Tx, order *domain.Order) error {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.CreateOrder")
	defer span.End()

	span.SetAttributes(
		attribute.String("correlation_id", order.CorrelationID),
		attribute.Int("product_count", len(order.Products)),
	)

	queryOrder := `
		INSERT INTO orders (correlation_id, purchaser_email, total_price)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	if err := tx.QueryRow(
		ctx,
		queryOrder,
		order.CorrelationID,
		order.PurchaserEmail,
		order.TotalPrice,
	).Scan(
		&order.ID,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		span.RecordError(err)

		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			logging.Info(
				ctx,
				r.logger,
				"Order already persisted for correlation id",
				zap.String("correlation_id", order.CorrelationID),
			)

			return ErrOrderAlreadyExists
		}

		logging.Error(
			ctx,
			r.logger,
			"Failed to insert order",
			zap.String("correlation_id", order.CorrelationID),
			zap.Error(err),
		)

		return fmt.Errorf("failed to insert order: %w", err)
	}

	queryProduct := `
		INSERT INTO order_products (order_id, product_id, price)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	for i := range order.Products {
		order.Products[i].OrderID = order.ID

		if err := tx.QueryRow(
			ctx,
			queryProduct,
			order.ID,
			order.Products[i].ProductID,
			order.Products[i].Price,
		).Scan(&order.Products[i].ID); err != nil {
			span.RecordError(err)

			logging.Error(
				ctx,
				r.logger,
				"Failed to insert order product",
				zap.Int64("order_id", order.ID),
				zap.Int64("product_id", order.Products[i].ProductID),
				zap.Error(err),
			)

			return fmt.Errorf("failed to insert order product: %w", err)
		}
	}

	return nil
}

func (r *orderRepo) GetByCorrelationID(ctx context.Context, correlationID string) (*domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.GetByCorrelationID")
	defer span.End()

	span.SetAttributes(
		attribute.String("correlation_id", correlationID),
	)

	query := `
		SELECT id, correlation_id, purchaser_email, total_price, created_at, updated_at
		FROM orders
		WHERE correlation_id = $1;
	`

	var order domain.Order
	if err := r.pool.QueryRow(ctx, query, correlationID).
		Scan(&order.ID, &order.CorrelationID, &order.PurchaserEmail,
			&order.TotalPrice, &order.CreatedAt, &order.UpdatedAt,
		); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		span.RecordError(err)

		return nil, fmt.Errorf("error getting order: %w", err)
	}

	products, err := r.productsOfOrder(ctx, order.ID)
	if err != nil {
		span.RecordError(err)

		return nil, err
	}
	order.Products = products

	return &order, nil
}

func (r *orderRepo) ListByPurchaser(ctx context.Context, email string) ([]domain.Order, error) {
	ctx, span := r.tracer.Start(ctx, "OrderRepository.ListByPurchaser")
	defer span.End()

	span.SetAttributes(
		attribute.String("purchaser", email),
	)

	query := `
		SELECT id, correlation_id, purchaser_email, total_price, created_at, updated_at
		FROM orders
		WHERE purchaser_email = $1
		ORDER BY created_at DESC;
	`

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to list orders",
			zap.String("purchaser", email),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error listing orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.CorrelationID,
			&order.PurchaserEmail,
			&order.TotalPrice,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			span.RecordError(err)

			return nil, fmt.Errorf("error scanning order: %w", err)
		}

		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	for i := range orders {
		products, err := r.productsOfOrder(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Products = products
	}

	return orders, nil
}

func (r *orderRepo) productsOfOrder(ctx context.Context, orderID int64) ([]domain.OrderProduct, error) {
	query := `
		SELECT id, order_id, product_id, price
		FROM order_products
		WHERE order_id = $1
		ORDER BY id;
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("error querying order products: %w", err)
	}
	defer rows.Close()

	var products []domain.OrderProduct
	for rows.Next() {
		var p domain.OrderProduct
		if err := rows.Scan(&p.ID, &p.OrderID, &p.ProductID, &p.Price); err != nil {
			return nil, fmt.Errorf("error scanning order product: %w", err)
		}

		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return products, nil
}
