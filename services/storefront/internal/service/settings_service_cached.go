package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const SettingsCacheKey = "settings:site"

type cachedSettingsService struct {
	next        SettingsService
	redisClient *redis.Client
	cacheTTL    time.Duration
	logger      *zap.Logger
}

func NewCachedSettingsService(next SettingsService, redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) SettingsService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &cachedSettingsService{
		next:        next,
		redisClient: redisClient,
		cacheTTL:    ttl,
		logger:      logger,
	}
}

func (s *cachedSettingsService) Get(ctx context.Context) (domain.SiteSettings, error) {
	val, err := s.redisClient.Get(ctx, SettingsCacheKey).Bytes()
	if err == nil {
		var settings domain.SiteSettings
		if err := json.Unmarshal(val, &settings); err == nil {
			return settings, nil
		}
	}

	settings, err := s.next.Get(ctx)
	if err != nil {
		return domain.SiteSettings{}, err
	}

	if data, err := json.Marshal(settings); err == nil {
		if err := s.redisClient.Set(ctx, SettingsCacheKey, data, s.cacheTTL).Err(); err != nil {
			mylogger.Warn(ctx, s.logger, "Failed to cache site settings", zap.Error(err))
		}
	}

	return settings, nil
}

func (s *cachedSettingsService) Update(ctx context.Context, update domain.SettingsUpdate) (domain.SiteSettings, error) {
	settings, err := s.next.Update(ctx, update)
	if err != nil {
		return domain.SiteSettings{}, err
	}

	if err := s.redisClient.Del(ctx, SettingsCacheKey).Err(); err != nil {
		mylogger.Warn(ctx, s.logger, "Failed to invalidate site settings cache", zap.Error(err))
	}

	return settings, nil
}
