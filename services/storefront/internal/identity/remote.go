package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/utils"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type providerUser struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	AppMetadata  metadata `json:"app_metadata"`
	UserMetadata metadata `json:"user_metadata"`
}

// lookup separates a rejected token from a provider failure so only the
// latter counts against the breaker.
type lookup struct {
	user     *providerUser
	rejected bool
}

type RemoteResolver struct {
	userURL    string
	apiKey     string
	adminEmail string
	timeout    time.Duration
	cb         *gobreaker.CircuitBreaker
	logger     *zap.Logger
	tracer     trace.Tracer
}

func NewRemoteResolver(baseURL, apiKey, adminEmail string, timeout time.Duration, logger *zap.Logger) *RemoteResolver {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	return &RemoteResolver{
		userURL:    strings.TrimRight(baseURL, "/") + "/auth/v1/user",
		apiKey:     apiKey,
		adminEmail: adminEmail,
		timeout:    timeout,
		cb:         utils.NewBreaker("IdentityProvider", logger),
		logger:     logger,
		tracer:     otel.Tracer("identity/remote"),
	}
}

func (r *RemoteResolver) Resolve(ctx context.Context, token string) (domain.Identity, error) {
	ctx, span := r.tracer.Start(ctx, "RemoteResolver.Resolve")
	defer span.End()

	res, err := utils.ExecuteWithBreaker(r.cb, func() (lookup, error) {
		return r.fetch(token)
	})
	if err != nil {
		span.RecordError(err)

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			mylogger.Warn(ctx, r.logger, "Circuit breaker open")
		} else {
			mylogger.Error(ctx, r.logger, "Identity provider call failed", zap.Error(err))
		}

		return domain.Identity{}, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	if res.rejected || res.user == nil || res.user.ID == "" {
		return domain.Identity{}, ErrInvalidToken
	}

	u := res.user
	return newIdentity(u.ID, u.Email, u.AppMetadata, u.UserMetadata, r.adminEmail), nil
}

func (r *RemoteResolver) fetch(token string) (lookup, error) {
	agent := fiber.Get(r.userURL)
	agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	if r.apiKey != "" {
		agent.Set("apikey", r.apiKey)
	}
	agent.Timeout(r.timeout)
	if err := agent.Parse(); err != nil {
		return lookup{}, fmt.Errorf("build provider request: %w", err)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return lookup{}, errors.Join(errs...)
	}

	switch {
	case status == fiber.StatusUnauthorized || status == fiber.StatusForbidden || status == fiber.StatusNotFound:
		return lookup{rejected: true}, nil
	case status >= fiber.StatusInternalServerError:
		return lookup{}, fmt.Errorf("identity provider responded %d", status)
	case status != fiber.StatusOK:
		return lookup{rejected: true}, nil
	}

	var user providerUser
	if err := json.Unmarshal(body, &user); err != nil {
		return lookup{}, fmt.Errorf("decode provider user: %w", err)
	}

	return lookup{user: &user}, nil
}
