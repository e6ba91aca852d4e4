package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	outboxDomain "github.com/Kedar-sonavani/Kalashree-Collection/pkg/outbox/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/outbox/worker"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// inTx runs fn inside a transaction and commits only when fn succeeds.
func inTx(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		mylogger.Error(ctx, logger, "Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)

		if err := tx.Rollback(cleanupCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Warn(cleanupCtx, logger, "Error rolling back transaction", zap.Error(err))
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		mylogger.Error(ctx, logger, "Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func emitEvent[T any](
	ctx context.Context,
	tx pgx.Tx,
	repo worker.OutboxRepository,
	topic, aggregateType, aggregateID, eventType string,
	payload T,
) error {
	event, err := outboxDomain.NewEvent(topic, aggregateType, aggregateID, eventType, payload)
	if err != nil {
		return err
	}

	if err := repo.SaveOutboxEvent(ctx, tx, event); err != nil {
		return fmt.Errorf("failed to save %s outbox event: %w", eventType, err)
	}

	return nil
}
