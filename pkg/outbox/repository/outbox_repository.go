package repository

import (
	"context"
	"fmt"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/outbox/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/outbox/worker"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxAttempts bounds redelivery of a poisoned event.
const maxAttempts = 10

type outboxRepo struct {
	tracer trace.Tracer
}

// NewOutboxRepository returns a repository that only ever runs inside the
// caller's transaction, so an event commits or rolls back with the business
// write that produced it.
func NewOutboxRepository() worker.OutboxRepository {
	return &outboxRepo{
		tracer: otel.Tracer("contract/outbox_repo"),
	}
}

func (r *outboxRepo) SaveOutboxEvent(ctx context.Context, tx pgx.Tx, event *domain.OutboxEvent) error {
	ctx, span := r.tracer.Start(ctx, "OutboxRepository.SaveOutboxEvent")
	defer span.End()

	span.SetAttributes(
		attribute.String("aggregate_id", event.AggregateID),
		attribute.String("aggregate_type", event.AggregateType),
		attribute.String("event_type", event.EventType),
	)

	query := `
		INSERT INTO outbox (aggregate_type, aggregate_id, event_type, payload, topic)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := tx.QueryRow(
		ctx,
		query,
		event.AggregateType,
		event.AggregateID,
		event.EventType,
		event.Payload,
		event.Topic,
	).Scan(&event.Id, &event.CreatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save outbox event")

		return fmt.Errorf("save outbox event %s: %w", event.EventType, err)
	}

	return nil
}

func (r *outboxRepo) GetUnpublishedEvents(ctx context.Context, tx pgx.Tx, batchSize int) ([]*domain.OutboxEvent, error) {
	ctx, span := r.tracer.Start(ctx, "OutboxRepository.GetUnpublishedEvents")
	defer span.End()

	span.SetAttributes(attribute.Int("batch_size", batchSize))

	query := `
		SELECT id, aggregate_type, aggregate_id, event_type, payload, created_at, attempts, topic
		FROM outbox
		WHERE published_at IS NULL AND attempts < $2
		ORDER BY id ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`

	rows, err := tx.Query(ctx, query, batchSize, maxAttempts)
	if err != nil {
		span.RecordError(err)

		return nil, fmt.Errorf("failed to query unpublished events: %w", err)
	}
	defer rows.Close()

	var events []*domain.OutboxEvent
	for rows.Next() {
		var e domain.OutboxEvent
		if err := rows.Scan(
			&e.Id,
			&e.AggregateType,
			&e.AggregateID,
			&e.EventType,
			&e.Payload,
			&e.CreatedAt,
			&e.Attempts,
			&e.Topic,
		); err != nil {
			span.RecordError(err)

			return nil, fmt.Errorf("error scanning event: %w", err)
		}

		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("iterate unpublished events: %w", err)
	}

	span.SetAttributes(attribute.Int("result_count", len(events)))

	return events, nil
}

func (r *outboxRepo) MarkEventPublished(ctx context.Context, tx pgx.Tx, eventID int64) error {
	ctx, span := r.tracer.Start(ctx, "OutboxRepository.MarkEventPublished")
	defer span.End()

	span.SetAttributes(attribute.Int64("event_id", eventID))

	query := `
		UPDATE outbox
		SET published_at = NOW(), last_error = NULL
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, query, eventID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("mark event %d published: %w", eventID, err)
	}

	return nil
}

func (r *outboxRepo) MarkEventFailed(ctx context.Context, tx pgx.Tx, eventID int64, errMsg string) error {
	ctx, span := r.tracer.Start(ctx, "OutboxRepository.MarkEventFailed")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("event_id", eventID),
		attribute.String("outbox.error_message", errMsg),
	)

	query := `
		UPDATE outbox
		SET published_at = NULL,
			last_error = $1,
			attempts = attempts + 1
		WHERE id = $2
	`

	if _, err := tx.Exec(ctx, query, errMsg, eventID); err != nil {
		span.RecordError(err)
		return fmt.Errorf("mark event %d failed: %w", eventID, err)
	}

	return nil
}
