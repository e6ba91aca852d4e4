package domain

import (
	"encoding/json"
	"fmt"
	"time"

	eventsDomain "github.com/Kedar-sonavani/Kalashree-Collection/pkg/domain"
)

type OutboxEvent struct {
	Id            int64           `db:"id"`
	AggregateType string          `db:"aggregate_type"`
	AggregateID   string          `db:"aggregate_id"`
	EventType     string          `db:"event_type"`
	Payload       json.RawMessage `db:"payload"`
	Headers       json.RawMessage `db:"headers"`
	CreatedAt     time.Time       `db:"created_at"`
	PublishedAt   *time.Time      `db:"published_at"`
	Attempts      int64           `db:"attempts"`
	LastError     *string         `db:"last_error"`
	Topic         string          `db:"topic"`
}

// NewEvent wraps payload in the {event, payload} envelope consumers switch on.
func NewEvent[T any](topic, aggregateType, aggregateID, eventType string, payload T) (*OutboxEvent, error) {
	data, err := json.Marshal(eventsDomain.EventEnvelope[T]{
		Event:   eventType,
		Payload: payload,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	return &OutboxEvent{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       data,
		Topic:         topic,
	}, nil
}
