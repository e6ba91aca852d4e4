package service

import (
	"context"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/repository"
	"go.uber.org/zap"
)

type SettingsService interface {
	Get(ctx context.Context) (domain.SiteSettings, error)
	Update(ctx context.Context, update domain.SettingsUpdate) (domain.SiteSettings, error)
}

type settingsService struct {
	repo   repository.SettingsRepository
	logger *zap.Logger
}

func NewSettingsService(repo repository.SettingsRepository, logger *zap.Logger) SettingsService {
	return &settingsService{
		repo:   repo,
		logger: logger,
	}
}

func (s *settingsService) Get(ctx context.Context) (domain.SiteSettings, error) {
	return s.repo.Get(ctx)
}

// Update applies only the fields that are present. An update carrying
// nothing returns the current settings untouched.
func (s *settingsService) Update(ctx context.Context, update domain.SettingsUpdate) (domain.SiteSettings, error) {
	update = update.Normalize()
	if update.Empty() {
		return s.repo.Get(ctx)
	}

	settings, err := s.repo.Upsert(ctx, update)
	if err != nil {
		return domain.SiteSettings{}, err
	}

	mylogger.Info(ctx, s.logger, "Site settings updated",
		zap.Bool("is_ecommerce_active", settings.IsEcommerceActive),
	)

	return settings, nil
}
