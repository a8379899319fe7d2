package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sarmatovd/shop-services/pkg/logging"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ProcessWithDeduplication records the event id in processed_events inside a
// transaction, runs the action with retries, and commits only when both
// succeed. A duplicate id means the event was already handled and is skipped.
func ProcessWithDeduplication(
	ctx context.Context,
	pool *pgxpool.Pool,
	logger *zap.Logger,
	eventID int64,
	action func() error,
) error {
	span := trace.SpanFromContext(ctx)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)

		err = tx.Rollback(shutdownCtx)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			logging.Error(
				shutdownCtx,
				logger,
				"Error rolling back transaction",
				zap.Error(err),
			)
		}
	}()

	query := `
		INSERT INTO processed_events (event_id)
		VALUES ($1)
	`

	_, err = tx.Exec(ctx, query, eventID)
	if err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == "23505" {
			logging.Info(
				ctx,
				logger,
				"Event already processed, skipping",
				zap.Int64("event_id", eventID),
			)

			return nil
		}

		span.RecordError(err)
		return err
	}

	sent := false
	for i := 0; i < 3; i++ {
		err = action()
		if err == nil {
			sent = true
			break
		}

		if i < 2 {
			time.Sleep(500 * time.Millisecond)
		}
	}

	if !sent {
		logging.Error(ctx, logger, "Failed to sent after retries", zap.Error(err))

		return fmt.Errorf("failed to sent: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)

		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}
