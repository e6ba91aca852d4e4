package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/config"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/db"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/utils"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/notification/internal/infrastructure/email"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/notification/internal/service"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/notification/transport/kafka"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := utils.InitTracer(ctx, "notification-service", cfg.Env)
	if err != nil {
		log.Fatalf("Error starting telemetry: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogConfig())
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	pool, err := db.NewPostgresDB(ctx, cfg.Postgres.URL, logger)
	if err != nil {
		logger.Fatal("Error creating postgres db", zap.Error(err))
	}

	emailSender := email.NewSMTPSender(cfg.SMTP, logger)
	notificationService := service.NewNotificationService(emailSender, logger, pool)

	consumer := kafka.NewConsumer(notificationService, logger)

	logger.Info("Notification worker consuming",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.OrderTopic),
		zap.String("group", cfg.Kafka.GroupID),
	)

	if err := consumer.Start(ctx, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.OrderTopic); err != nil {
		logger.Error("Consumer stopped", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error closing telemetry", zap.Error(err))
	}

	pool.Close()
	logger.Info("Notification worker stopped")
}
