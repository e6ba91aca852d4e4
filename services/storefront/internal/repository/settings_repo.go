package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type SettingsRepository interface {
	Get(ctx context.Context) (domain.SiteSettings, error)
	Upsert(ctx context.Context, update domain.SettingsUpdate) (domain.SiteSettings, error)
}

type settingsRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
	tracer trace.Tracer
}

func NewSettingsRepository(pool *pgxpool.Pool, logger *zap.Logger) SettingsRepository {
	return &settingsRepo{
		pool:   pool,
		logger: logger,
		tracer: otel.Tracer("contract/settings_repo"),
	}
}

// Get returns the stored settings, or the defaults when none were ever saved.
func (r *settingsRepo) Get(ctx context.Context) (domain.SiteSettings, error) {
	ctx, span := r.tracer.Start(ctx, "SettingsRepository.Get")
	defer span.End()

	var s domain.SiteSettings
	err := r.pool.QueryRow(ctx, `
		SELECT is_ecommerce_active, whatsapp_number, updated_at
		FROM site_settings
		WHERE id = 1
	`).Scan(&s.IsEcommerceActive, &s.WhatsappNumber, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DefaultSiteSettings(), nil
		}

		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to read site settings", zap.Error(err))
		return domain.SiteSettings{}, fmt.Errorf("failed to read site settings: %w", err)
	}

	return s, nil
}

func (r *settingsRepo) Upsert(ctx context.Context, update domain.SettingsUpdate) (domain.SiteSettings, error) {
	ctx, span := r.tracer.Start(ctx, "SettingsRepository.Upsert")
	defer span.End()

	defaults := domain.DefaultSiteSettings()

	query := `
		INSERT INTO site_settings (id, is_ecommerce_active, whatsapp_number, updated_at)
		VALUES (1, COALESCE($1::boolean, $3::boolean), COALESCE($2::text, $4::text), NOW())
		ON CONFLICT (id) DO UPDATE SET
			is_ecommerce_active = COALESCE($1::boolean, site_settings.is_ecommerce_active),
			whatsapp_number = COALESCE($2::text, site_settings.whatsapp_number),
			updated_at = NOW()
		RETURNING is_ecommerce_active, whatsapp_number, updated_at
	`

	var s domain.SiteSettings
	err := r.pool.QueryRow(
		ctx,
		query,
		update.IsEcommerceActive,
		update.WhatsappNumber,
		defaults.IsEcommerceActive,
		defaults.WhatsappNumber,
	).Scan(&s.IsEcommerceActive, &s.WhatsappNumber, &s.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		mylogger.Error(ctx, r.logger, "Failed to save site settings", zap.Error(err))
		return domain.SiteSettings{}, fmt.Errorf("failed to save site settings: %w", err)
	}

	return s, nil
}
