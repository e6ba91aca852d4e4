package kafka

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	events "github.com/Kedar-sonavani/Kalashree-Collection/pkg/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/kafka"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"go.uber.org/zap"
)

type OrderNotifier interface {
	HandleOrderPlaced(ctx context.Context, eventID int64, event events.OrderPlacedEvent) error
	HandleOrderStatusChanged(ctx context.Context, eventID int64, event events.OrderStatusChangedEvent) error
}

type Consumer struct {
	service OrderNotifier
	logger  *zap.Logger
}

func NewConsumer(service OrderNotifier, logger *zap.Logger) *Consumer {
	return &Consumer{
		service: service,
		logger:  logger,
	}
}

// Start blocks until ctx is cancelled or the group cannot be created.
func (c *Consumer) Start(ctx context.Context, brokers []string, groupID, topic string) error {
	consumerGroup := kafka.NewConsumerGroup(
		brokers,
		groupID,
		[]string{topic},
		c.processMessage,
		c.logger,
	)

	return consumerGroup.Run(ctx)
}

// processMessage returns an error only for failures worth redelivering.
// Malformed and unknown events are logged and dropped.
func (c *Consumer) processMessage(ctx context.Context, msg *sarama.ConsumerMessage) error {
	mylogger.Info(ctx, c.logger, "Processing message",
		zap.String("topic", msg.Topic),
		zap.Int64("offset", msg.Offset),
	)

	var wrapper events.EventEnvelope[json.RawMessage]
	if err := json.Unmarshal(msg.Value, &wrapper); err != nil {
		mylogger.Error(ctx, c.logger, "Error unmarshalling wrapper", zap.Error(err))
		return nil
	}

	if wrapper.EventID == 0 {
		mylogger.Warn(ctx, c.logger, "Event without id, skipping", zap.String("event", wrapper.Event))
		return nil
	}

	switch wrapper.Event {
	case events.EventOrderPlaced:
		var event events.OrderPlacedEvent
		if err := json.Unmarshal(wrapper.Payload, &event); err != nil {
			mylogger.Error(ctx, c.logger, "Error parsing order placed event", zap.Error(err))
			return nil
		}

		if err := c.service.HandleOrderPlaced(ctx, wrapper.EventID, event); err != nil {
			mylogger.Error(ctx, c.logger, "Error processing order placed event", zap.Error(err))
			return err
		}
	case events.EventOrderStatusChanged:
		var event events.OrderStatusChangedEvent
		if err := json.Unmarshal(wrapper.Payload, &event); err != nil {
			mylogger.Error(ctx, c.logger, "Error parsing status changed event", zap.Error(err))
			return nil
		}

		if err := c.service.HandleOrderStatusChanged(ctx, wrapper.EventID, event); err != nil {
			mylogger.Error(ctx, c.logger, "Error processing status changed event", zap.Error(err))
			return err
		}
	default:
		mylogger.Debug(ctx, c.logger, "Ignored event type", zap.String("event", wrapper.Event))
	}

	return nil
}
