package service

import (
	"context"
	"strings"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo   repository.CategoryRepository
	logger *zap.Logger
}

func NewCategoryService(repo repository.CategoryRepository, logger *zap.Logger) CategoryService {
	return &categoryService{
		repo:   repo,
		logger: logger,
	}
}

func (s *categoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}

func (s *categoryService) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	category.Name = strings.TrimSpace(category.Name)
	category.Slug = strings.ToLower(strings.TrimSpace(category.Slug))

	created, err := s.repo.Create(ctx, category)
	if err != nil {
		return nil, err
	}

	mylogger.Info(ctx, s.logger, "Category created",
		zap.Stringer("id", created.ID),
		zap.String("slug", created.Slug),
	)

	return created, nil
}

// Delete removes the category; products keep existing and only lose the link.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
