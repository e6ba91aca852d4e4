package service

import (
	"context"

	events "github.com/Kedar-sonavani/Kalashree-Collection/pkg/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	outboxUtils "github.com/Kedar-sonavani/Kalashree-Collection/pkg/outbox/utils"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/notification/internal/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/notification/internal/infrastructure/email"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ConsumerName keys this service's rows in processed_events.
const ConsumerName = "notification-service"

type NotificationService struct {
	emailSender email.Sender
	logger      *zap.Logger
	pool        *pgxpool.Pool
	tracer      trace.Tracer
}

func NewNotificationService(emailSender email.Sender, logger *zap.Logger, pool *pgxpool.Pool) *NotificationService {
	return &NotificationService{
		emailSender: emailSender,
		logger:      logger,
		pool:        pool,
		tracer:      otel.Tracer("notification-service"),
	}
}

func (s *NotificationService) HandleOrderPlaced(ctx context.Context, eventID int64, event events.OrderPlacedEvent) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleOrderPlaced")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("event_id", eventID),
		attribute.String("order_id", event.OrderID),
	)

	msg, err := domain.OrderConfirmation(event)
	if err != nil {
		span.RecordError(err)
		return err
	}

	return s.deliver(ctx, eventID, msg)
}

func (s *NotificationService) HandleOrderStatusChanged(ctx context.Context, eventID int64, event events.OrderStatusChangedEvent) error {
	ctx, span := s.tracer.Start(ctx, "NotificationService.HandleOrderStatusChanged")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("event_id", eventID),
		attribute.String("order_id", event.OrderID),
		attribute.String("status", event.To),
	)

	msg, err := domain.StatusUpdate(event)
	if err != nil {
		span.RecordError(err)
		return err
	}

	return s.deliver(ctx, eventID, msg)
}

func (s *NotificationService) deliver(ctx context.Context, eventID int64, msg domain.Message) error {
	if msg.To == "" {
		mylogger.Warn(ctx, s.logger, "Event has no recipient, skipping", zap.Int64("event_id", eventID))
		return nil
	}

	return outboxUtils.ProcessWithDeduplication(ctx, s.pool, s.logger, ConsumerName, eventID, func(ctx context.Context) error {
		return s.emailSender.Send(ctx, msg)
	})
}
