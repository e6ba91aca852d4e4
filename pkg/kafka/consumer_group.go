package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type HandlerFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

type ConsumerGroup struct {
	brokers     []string
	groupID     string
	topics      []string
	handlerFunc HandlerFunc
	logger      *zap.Logger
}

func NewConsumerGroup(
	brokers []string,
	groupID string,
	topics []string,
	handlerFunc HandlerFunc,
	logger *zap.Logger,
) *ConsumerGroup {
	return &ConsumerGroup{
		brokers:     brokers,
		groupID:     groupID,
		topics:      topics,
		handlerFunc: handlerFunc,
		logger:      logger,
	}
}

// Run consumes until ctx is cancelled. Messages whose handler fails are left
// unmarked so they are redelivered after a rebalance or restart.
func (c *ConsumerGroup) Run(ctx context.Context) error {
	config := sarama.NewConfig()
	config.Version = sarama.V3_0_0_0
	config.Consumer.Return.Errors = true
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}

	group, err := sarama.NewConsumerGroup(c.brokers, c.groupID, config)
	if err != nil {
		return fmt.Errorf("create consumer group %s: %w", c.groupID, err)
	}
	defer func() {
		if err := group.Close(); err != nil {
			c.logger.Warn("error closing consumer group", zap.Error(err))
		}
	}()

	go func() {
		for err := range group.Errors() {
			mylogger.Warn(ctx, c.logger, "consumer group error", zap.Error(err))
		}
	}()

	handler := &saramaHandler{
		handler: c.handlerFunc,
		logger:  c.logger,
		tracer:  otel.Tracer("pkg/kafka/consumer"),
	}

	for {
		if err := group.Consume(ctx, c.topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}

			mylogger.Error(ctx, c.logger, "Error consuming in consumer loop", zap.Error(err))
		}

		if ctx.Err() != nil {
			mylogger.Info(ctx, c.logger, "Context cancelled, shutting down consumer")
			return nil
		}
	}
}

type saramaHandler struct {
	handler HandlerFunc
	logger  *zap.Logger
	tracer  trace.Tracer
}

func (h *saramaHandler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *saramaHandler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (h *saramaHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		ctx, span := h.startSpan(session.Context(), msg)

		if err := h.handler(ctx, msg); err != nil {
			span.RecordError(err)
			mylogger.Error(
				ctx,
				h.logger,
				"Failed to process message",
				zap.String("topic", msg.Topic),
				zap.Int32("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		} else {
			session.MarkMessage(msg, "")
		}

		span.End()
	}

	return nil
}

func (h *saramaHandler) startSpan(ctx context.Context, msg *sarama.ConsumerMessage) (context.Context, trace.Span) {
	carrier := propagation.MapCarrier{}
	for _, header := range msg.Headers {
		carrier[string(header.Key)] = string(header.Value)
	}

	ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)

	return h.tracer.Start(ctx, "kafka_process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.destination", msg.Topic),
			attribute.Int64("messaging.kafka.offset", msg.Offset),
		),
	)
}
