package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]domain.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryRepo struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *zap.Logger
}

func NewCategoryRepository(pool *pgxpool.Pool, logger *zap.Logger) CategoryRepository {
	return &categoryRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("contract/category_repo"),
	}
}

func (r *categoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.List")
	defer span.End()

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, slug, description, created_at
		FROM categories
		ORDER BY name ASC
	`)
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Error listing categories", zap.Error(err))
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("error scanning category: %w", err)
		}

		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error listing categories: %w", err)
	}

	span.SetAttributes(attribute.Int("result_count", len(categories)))

	return categories, nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.GetByID")
	defer span.End()

	span.SetAttributes(attribute.String("id", id.String()))

	var c domain.Category
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, slug, description, created_at
		FROM categories
		WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}

		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Error getting category", zap.Stringer("id", id), zap.Error(err))
		return nil, fmt.Errorf("error getting category: %w", err)
	}

	return &c, nil
}

func (r *categoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Create")
	defer span.End()

	span.SetAttributes(attribute.String("slug", category.Slug))

	res := *category
	err := r.pool.QueryRow(ctx, `
		INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, category.Name, category.Slug, category.Description).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, ErrCategorySlugTaken
		}

		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Error creating category", zap.String("slug", category.Slug), zap.Error(err))
		return nil, fmt.Errorf("error creating category: %w", err)
	}

	return &res, nil
}

func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := r.tracer.Start(ctx, "CategoryRepository.Delete")
	defer span.End()

	commandTag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Error deleting category", zap.Stringer("id", id), zap.Error(err))
		return fmt.Errorf("error deleting category: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
