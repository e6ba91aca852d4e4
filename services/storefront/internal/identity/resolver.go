// Package identity turns a bearer token into a domain.Identity, either by
// asking the external identity provider or by verifying its signed tokens
// locally.
package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/config"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

type Resolver interface {
	Resolve(ctx context.Context, token string) (domain.Identity, error)
}

// NewResolver verifies tokens locally when a JWT secret is configured and
// calls the provider otherwise.
func NewResolver(cfg config.Identity, logger *zap.Logger) Resolver {
	if cfg.JWTSecret != "" {
		return NewJWTResolver(cfg.JWTSecret, cfg.AdminEmail)
	}

	return NewRemoteResolver(cfg.URL, cfg.APIKey, cfg.AdminEmail, cfg.Timeout, logger)
}

// metadata is the provider's free-form user metadata. Only the role is read.
type metadata map[string]any

func (m metadata) role() string {
	if m == nil {
		return ""
	}

	role, _ := m["role"].(string)
	return strings.TrimSpace(role)
}

// roleClaim prefers app_metadata, which only the provider's admins can
// write, over user_metadata.
func roleClaim(app, user metadata) string {
	if role := app.role(); role != "" {
		return role
	}

	return user.role()
}

func newIdentity(userID, email string, app, user metadata, adminEmail string) domain.Identity {
	return domain.Identity{
		UserID: userID,
		Email:  email,
		Role:   domain.ResolveRole(roleClaim(app, user), email, adminEmail),
	}
}
