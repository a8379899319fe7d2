package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sarmatovd/shop-services/pkg/logging"
	"github.com/sarmatovd/shop-services/services/product/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	List(ctx context.Context, limit, offset int64, search string) ([]domain.Product, int64, error)
	DeleteByID(ctx context.Context, id int64) error
}

type productRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewProductRepository(pool *pgxpool.Pool, logger *zap.Logger) ProductRepository {
	return &productRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/product_repo"),
	}
}

func (r *productRepo) Create(ctx context.Context, product *domain.Product) (int64, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("name", product.Name),
	)

	query := `
		INSERT INTO products (name, description, price)
		VALUES ($1, $2, $3)
		RETURNING id;
	`

	err := r.pool.QueryRow(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
	).Scan(&product.ID)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error creating product",
			zap.Error(err),
		)

		return 0, fmt.Errorf("error creating product: %w", err)
	}

	return product.ID, nil
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.GetByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		SELECT id, name, description, price, created_at, updated_at
		FROM products
		WHERE id = $1 AND deleted_at IS NULL;
	`

	var res domain.Product
	if err := r.pool.QueryRow(ctx, query, id).
		Scan(&res.ID, &res.Name, &res.Description, &res.Price,
			&res.CreatedAt, &res.UpdatedAt,
		); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}

		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error getting product by id",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting product: %w", err)
	}

	return &res, nil
}

func (r *productRepo) GetByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.GetByIDs")
	defer span.End()

	span.SetAttributes(
		attribute.Int("count", len(ids)),
	)

	query := `
		SELECT id, name, description, price, created_at, updated_at
		FROM products
		WHERE id = ANY($1) AND deleted_at IS NULL;
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error getting products by ids",
			zap.Error(err),
		)

		return nil, fmt.Errorf("error selecting products: %w", err)
	}
	defer rows.Close()

	found := make(map[int64]domain.Product, len(ids))
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			span.RecordError(err)

			return nil, fmt.Errorf("error scanning rows: %w", err)
		}
		found[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	products := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		p, ok := found[id]
		if !ok {
			return nil, ErrProductNotFound
		}
		products = append(products, p)
	}

	return products, nil
}

func (r *productRepo) List(ctx context.Context, limit, offset int64, search string) ([]domain.Product, int64, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.List")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("limit", limit),
		attribute.Int64("offset", offset),
		attribute.String("search", search),
	)

	var products []domain.Product
	var totalCount int64

	baseQuery := `SELECT id, name, description, price, created_at, updated_at
		FROM products
		WHERE deleted_at IS NULL`
	countQuery := `SELECT COUNT(*) FROM products WHERE deleted_at IS NULL`

	var args []interface{}
	argId := 1

	if search != "" {
		filter := fmt.Sprintf(" AND name ILIKE $%d", argId)
		baseQuery += filter
		countQuery += filter

		args = append(args, "%"+search+"%")
		argId++
	}

	baseQuery += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argId, argId+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, baseQuery, args...)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error listing products",
			zap.String("search", search),
			zap.Error(err),
		)

		return nil, 0, fmt.Errorf("error selecting products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			span.RecordError(err)

			return nil, 0, fmt.Errorf("error scanning rows: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)

		return nil, 0, fmt.Errorf("rows iteration error: %w", err)
	}

	var countArgs []interface{}
	if search != "" {
		countArgs = append(countArgs, args[0])
	}

	err = r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&totalCount)
	if err != nil {
		span.RecordError(err)

		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	return products, totalCount, nil
}

func (r *productRepo) DeleteByID(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.DeleteByID")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("id", id),
	)

	query := `
		UPDATE products
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	commandTag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Error deleting product by id",
			zap.Int64("id", id),
			zap.Error(err),
		)

		return fmt.Errorf("error deleting product by id: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}

	return nil
}
