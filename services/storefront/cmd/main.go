package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/config"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/db"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/kafka"
	outbox "github.com/Kedar-sonavani/Kalashree-Collection/pkg/outbox/repository"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/outbox/worker"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/utils"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/identity"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/media"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/repository"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/service"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/transport/http"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/transport/http/handler"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/middleware"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const localFrontend = "http://localhost:3000"

func main() {
	migrate := flag.Bool("migrate", false, "apply database migrations before serving")
	migrationsDir := flag.String("migrations", "./migrations", "directory holding the migration files")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf(".env not found: %v\n", err)
	}

	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.LogConfig())
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	tp, err := utils.InitTracer(ctx, "storefront-service", cfg.Env)
	if err != nil {
		log.Fatalf("Failed to init trace: %v", err)
	}

	if *migrate {
		if err := db.MigrateUp(cfg.Postgres.URL, *migrationsDir); err != nil {
			logger.Fatal("Migrations failed", zap.Error(err))
		}
		logger.Info("Migrations applied", zap.String("dir", *migrationsDir))
	}

	pool, err := db.NewPostgresDB(ctx, cfg.Postgres.URL, logger)
	if err != nil {
		logger.Fatal("Error connecting to postgres", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})

	kafkaProducer, err := kafka.NewProducer(cfg.Kafka.Brokers, logger)
	if err != nil {
		logger.Fatal("Error creating kafka producer", zap.Error(err))
	}

	uploader, err := media.NewUploader(cfg.Cloudinary.URL, cfg.Cloudinary.Folder, logger)
	if err != nil {
		logger.Fatal("Error creating image uploader", zap.Error(err))
	}

	productRepository := repository.NewProductRepository(pool, logger)
	categoryRepository := repository.NewCategoryRepository(pool, logger)
	orderRepository := repository.NewOrderRepository(pool, logger)
	settingsRepository := repository.NewSettingsRepository(pool, logger)
	outboxRepository := outbox.NewOutboxRepository()

	productService := service.NewProductService(productRepository, categoryRepository, outboxRepository, pool, logger, service.ProductServiceOptions{
		Topic: cfg.Kafka.OrderTopic,
	})
	categoryService := service.NewCategoryService(categoryRepository, logger)
	orderService := service.NewOrderService(pool, logger, orderRepository, productRepository, outboxRepository, cfg.Kafka.OrderTopic)
	settingsService := service.NewCachedSettingsService(
		service.NewSettingsService(settingsRepository, logger),
		rdb,
		cfg.Redis.SettingsTTL,
		logger,
	)

	outboxProcessor := worker.NewOutboxProcessor(pool, outboxRepository, kafkaProducer, logger, worker.Options{
		BatchSize: cfg.Outbox.BatchSize,
		Interval:  cfg.Outbox.Interval,
	})
	go outboxProcessor.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      "kalashree-storefront",
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		BodyLimit:    cfg.HTTP.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(otelfiber.Middleware())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: allowOrigin(cfg.CORS.AllowedOrigins),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization," + middleware.AdminSecretHeader,
		AllowCredentials: true,
	}))
	app.Use(middleware.NewLoggingMiddleware(logger))

	handlers := &http.Handlers{
		Product:  handler.NewProductHandler(productService, logger),
		Category: handler.NewCategoryHandler(categoryService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Settings: handler.NewSettingsHandler(settingsService, logger),
		Upload:   handler.NewUploadHandler(uploader, logger),
	}

	http.RegisterRoutes(app, handlers, http.Gates{
		Resolver:       identity.NewResolver(cfg.Identity, logger),
		AdminSecret:    cfg.Admin.Secret,
		CheckoutMax:    cfg.Limiter.Max,
		CheckoutWindow: cfg.Limiter.Window,
	}, logger)

	go func() {
		logger.Info("HTTP storefront listening", zap.String("port", cfg.HTTP.Port))
		if err := app.Listen(cfg.HTTP.Port); err != nil {
			logger.Fatal("Error listening on HTTP port", zap.String("port", cfg.HTTP.Port), zap.Error(err))
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Error shutting down HTTP server", zap.Error(err))
	}

	if err := kafkaProducer.Close(); err != nil {
		logger.Error("Error closing kafka producer", zap.Error(err))
	}

	if err := rdb.Close(); err != nil {
		logger.Error("Error closing redis client", zap.Error(err))
	}

	pool.Close()

	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error stopping telemetry", zap.Error(err))
	}

	logger.Info("Storefront stopped")
}

// allowOrigin admits the configured origins, the local frontend and any
// Vercel preview deployment.
func allowOrigin(allowed []string) func(origin string) bool {
	return func(origin string) bool {
		if origin == localFrontend || slices.Contains(allowed, origin) {
			return true
		}

		return strings.HasPrefix(origin, "https://") && strings.HasSuffix(origin, ".vercel.app")
	}
}
