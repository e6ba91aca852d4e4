package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	events "github.com/Kedar-sonavani/Kalashree-Collection/pkg/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/outbox/worker"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Related(ctx context.Context, id uuid.UUID, limit int) ([]domain.Product, error)
	Create(ctx context.Context, input *domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, input *domain.ProductInput) (*domain.Product, error)
	AdjustStock(ctx context.Context, id uuid.UUID, adjustment int) (int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ProductServiceOptions struct {
	Topic  string
	Now    func() time.Time
	Jitter func() float64
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	outboxRepo   worker.OutboxRepository
	pool         *pgxpool.Pool
	logger       *zap.Logger
	tracer       trace.Tracer
	topic        string
	now          func() time.Time
	jitter       func() float64
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	outboxRepo worker.OutboxRepository,
	pool *pgxpool.Pool,
	logger *zap.Logger,
	opts ProductServiceOptions,
) ProductService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Jitter == nil {
		opts.Jitter = rand.Float64
	}

	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		outboxRepo:   outboxRepo,
		pool:         pool,
		logger:       logger,
		tracer:       otel.Tracer("product_service"),
		topic:        opts.Topic,
		now:          opts.Now,
		jitter:       opts.Jitter,
	}
}

func (s *productService) List(ctx context.Context) ([]domain.Product, error) {
	products, err := s.productRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	return s.stamp(products), nil
}

func (s *productService) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]domain.Product, error) {
	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		return nil, err
	}

	products, err := s.productRepo.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	return s.stamp(products), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p.IsNew = p.IsNewAt(s.now())
	return p, nil
}

func (s *productService) Related(ctx context.Context, id uuid.UUID, limit int) ([]domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.Related")
	defer span.End()

	limit = NormalizeRelatedLimit(limit)
	span.SetAttributes(
		attribute.String("id", id.String()),
		attribute.Int("limit", limit),
	)

	source, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	candidates, err := s.productRepo.ListSharingCategories(ctx, id, relatedCandidateCap)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		candidates, err = s.productRepo.ListRandom(ctx, id, limit*relatedPoolFactor)
		if err != nil {
			return nil, err
		}
		span.SetAttributes(attribute.Bool("random_pool", true))
	}

	return s.stamp(RankRelated(*source, candidates, limit, s.jitter)), nil
}

func (s *productService) Create(ctx context.Context, input *domain.ProductInput) (*domain.Product, error) {
	var id uuid.UUID

	err := inTx(ctx, s.pool, s.logger, func(tx pgx.Tx) error {
		var err error
		if id, err = s.productRepo.Create(ctx, tx, input); err != nil {
			return err
		}

		return s.productRepo.ReplaceCategories(ctx, tx, id, input.CategoryIDs)
	})
	if err != nil {
		mylogger.Warn(ctx, s.logger, "Failed to create product", zap.String("title", input.Title), zap.Error(err))
		return nil, err
	}

	mylogger.Info(ctx, s.logger, "Product created", zap.Stringer("id", id))

	return s.Get(ctx, id)
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, input *domain.ProductInput) (*domain.Product, error) {
	err := inTx(ctx, s.pool, s.logger, func(tx pgx.Tx) error {
		if err := s.productRepo.Update(ctx, tx, id, input); err != nil {
			return err
		}

		return s.productRepo.ReplaceCategories(ctx, tx, id, input.CategoryIDs)
	})
	if err != nil {
		if !errors.Is(err, repository.ErrProductNotFound) {
			mylogger.Warn(ctx, s.logger, "Failed to update product", zap.Stringer("id", id), zap.Error(err))
		}

		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, adjustment int) (int, error) {
	ctx, span := s.tracer.Start(ctx, "ProductService.AdjustStock")
	defer span.End()

	span.SetAttributes(
		attribute.String("id", id.String()),
		attribute.Int("adjustment", adjustment),
	)

	var stock int
	err := inTx(ctx, s.pool, s.logger, func(tx pgx.Tx) error {
		var err error
		if stock, err = s.productRepo.IncrementStock(ctx, tx, id, adjustment); err != nil {
			return err
		}

		return emitEvent(ctx, tx, s.outboxRepo, s.topic, "Product", id.String(), events.EventStockAdjusted, events.StockAdjustedEvent{
			ProductID:  id.String(),
			Adjustment: adjustment,
			Stock:      stock,
			AdjustedAt: s.now().UTC(),
		})
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	mylogger.Info(ctx, s.logger, "Stock adjusted",
		zap.Stringer("id", id),
		zap.Int("adjustment", adjustment),
		zap.Int("stock", stock),
	)

	return stock, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	err := inTx(ctx, s.pool, s.logger, func(tx pgx.Tx) error {
		if err := s.productRepo.LockByID(ctx, tx, id); err != nil {
			return err
		}

		active, err := s.productRepo.HasActiveOrders(ctx, tx, id)
		if err != nil {
			return err
		}
		if active {
			return ErrProductInActiveOrder
		}

		return s.productRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		if errors.Is(err, ErrProductInActiveOrder) {
			mylogger.Warn(ctx, s.logger, "Refusing to delete product in active order", zap.Stringer("id", id))
		}

		return fmt.Errorf("delete product %s: %w", id, err)
	}

	return nil
}

func (s *productService) stamp(products []domain.Product) []domain.Product {
	now := s.now()
	for i := range products {
		products[i].IsNew = products[i].IsNewAt(now)
	}

	return products
}
