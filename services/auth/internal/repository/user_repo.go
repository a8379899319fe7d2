package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sarmatovd/shop-services/pkg/logging"
	"github.com/sarmatovd/shop-services/services/auth/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type UserRepository interface {
	Create(ctx context.Context, tx pgx.Tx, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type userRepository struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewUserRepository(pool *pgxpool.Pool, logger *zap.Logger) UserRepository {
	return &userRepository{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("repository/user_repo"),
	}
}

func (r *userRepository) Create(ctx context.Context, tx pgx.Tx, user *domain.User) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.Create")
	defer span.End()

	span.SetAttributes(
		attribute.String("user.email", user.Email),
	)

	query := `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at;
	`

	err := tx.QueryRow(ctx, query, user.Name, user.Email, user.Password).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		span.RecordError(err)

		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			logging.Warn(
				ctx,
				r.logger,
				"User already exists",
				zap.String("email", user.Email),
			)

			return nil, ErrUserAlreadyExists
		}

		logging.Error(
			ctx,
			r.logger,
			"Failed to create user",
			zap.String("email", user.Email),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := r.tracer.Start(ctx, "UserRepository.GetByEmail")
	defer span.End()

	span.SetAttributes(
		attribute.String("email", email),
	)

	query := `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1;
	`

	var user domain.User
	if err := r.pool.QueryRow(ctx, query, email).
		Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.RecordError(err)
			return nil, ErrUserNotFound
		}

		span.RecordError(err)

		logging.Error(
			ctx,
			r.logger,
			"Failed to get user by email",
			zap.String("email", email),
			zap.Error(err),
		)

		return nil, fmt.Errorf("error getting user: %w", err)
	}

	return &user, nil
}
