package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/outbox/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type OutboxRepository interface {
	SaveOutboxEvent(ctx context.Context, tx pgx.Tx, event *domain.OutboxEvent) error
	GetUnpublishedEvents(ctx context.Context, tx pgx.Tx, batchSize int) ([]*domain.OutboxEvent, error)
	MarkEventPublished(ctx context.Context, tx pgx.Tx, eventID int64) error
	MarkEventFailed(ctx context.Context, tx pgx.Tx, eventID int64, error string) error
}

type KafkaProducer interface {
	ProduceMessage(ctx context.Context, topic, key string, message interface{}) error
}

type Options struct {
	BatchSize int
	Interval  time.Duration
}

type OutboxProcessor struct {
	pool          *pgxpool.Pool
	repo          OutboxRepository
	kafkaProducer KafkaProducer
	logger        *zap.Logger
	batchSize     int
	interval      time.Duration
	tracer        trace.Tracer
}

func NewOutboxProcessor(
	pool *pgxpool.Pool,
	repo OutboxRepository,
	producer KafkaProducer,
	logger *zap.Logger,
	opts Options,
) *OutboxProcessor {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.Interval <= 0 {
		opts.Interval = 500 * time.Millisecond
	}

	return &OutboxProcessor{
		pool:          pool,
		repo:          repo,
		kafkaProducer: producer,
		logger:        logger,
		batchSize:     opts.BatchSize,
		interval:      opts.Interval,
		tracer:        otel.Tracer("outbox-worker"),
	}
}

// Start polls the outbox until ctx is cancelled.
func (p *OutboxProcessor) Start(ctx context.Context) {
	mylogger.Info(ctx, p.logger, "Starting outbox processor",
		zap.Int("batch_size", p.batchSize),
		zap.Duration("interval", p.interval),
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			mylogger.Info(ctx, p.logger, "Outbox processor stopping")
			return
		case <-ticker.C:
			if _, err := p.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
				mylogger.Error(ctx, p.logger, "Error processing outbox batch", zap.Error(err))
			}
		}
	}
}

// ProcessBatch publishes at most one batch and returns how many events were
// published. Locked rows are skipped so several processors can run at once.
func (p *OutboxProcessor) ProcessBatch(ctx context.Context) (int, error) {
	ctx, span := p.tracer.Start(ctx, "OutboxProcessor.ProcessBatch")
	defer span.End()

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)

		if err := tx.Rollback(cleanupCtx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			mylogger.Error(cleanupCtx, p.logger, "Outbox worker failed to rollback transaction", zap.Error(err))
		}
	}()

	events, err := p.repo.GetUnpublishedEvents(ctx, tx, p.batchSize)
	if err != nil {
		return 0, err
	}

	if len(events) == 0 {
		return 0, nil
	}

	span.SetAttributes(attribute.Int("outbox.batch", len(events)))

	published := 0
	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			mylogger.Warn(ctx, p.logger, "outbox worker produce message failed",
				zap.Int64("id", event.Id),
				zap.String("event_type", event.EventType),
				zap.Int64("attempts", event.Attempts+1),
				zap.Error(err),
			)

			if dbErr := p.repo.MarkEventFailed(ctx, tx, event.Id, err.Error()); dbErr != nil {
				return published, dbErr
			}

			continue
		}

		if err := p.repo.MarkEventPublished(ctx, tx, event.Id); err != nil {
			return published, err
		}

		published++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit outbox batch: %w", err)
	}

	mylogger.Debug(ctx, p.logger, "outbox batch published", zap.Int("published", published))

	return published, nil
}

func (p *OutboxProcessor) publish(ctx context.Context, event *domain.OutboxEvent) error {
	var payload map[string]any
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	payload["event_id"] = event.Id

	return p.kafkaProducer.ProduceMessage(ctx, event.Topic, event.AggregateID, payload)
}
