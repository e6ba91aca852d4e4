package middleware

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/mylogger"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/identity"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	LocalsIdentity    = "identity"
	AdminSecretHeader = "x-admin-secret"
)

var errNoToken = errors.New("no bearer token")

func NewAuthMiddleware(resolver identity.Resolver, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := authenticate(c, resolver)
		if err != nil {
			return reject(c, logger, err)
		}

		attach(c, id)
		return c.Next()
	}
}

// NewAdminMiddleware admits requests carrying the shared admin secret, or a
// bearer token that resolves to an admin. An empty secret disables the
// header path entirely.
func NewAdminMiddleware(resolver identity.Resolver, secret string, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if secretMatches(c.Get(AdminSecretHeader), secret) {
			attach(c, domain.Identity{UserID: "admin-secret", Role: domain.RoleAdmin})
			return c.Next()
		}

		id, err := authenticate(c, resolver)
		if err != nil {
			return reject(c, logger, err)
		}

		if !id.IsAdmin() {
			mylogger.Warn(c.UserContext(), logger, "Admin route refused", zap.String("user_id", id.UserID))
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden: Admin Privileges Required"})
		}

		attach(c, id)
		return c.Next()
	}
}

// CurrentIdentity returns the identity an auth or admin gate attached.
func CurrentIdentity(c *fiber.Ctx) (domain.Identity, bool) {
	id, ok := c.Locals(LocalsIdentity).(domain.Identity)
	return id, ok
}

func secretMatches(provided, secret string) bool {
	if secret == "" || provided == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) == 1
}

func authenticate(c *fiber.Ctx, resolver identity.Resolver) (domain.Identity, error) {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))

	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return domain.Identity{}, errNoToken
	}

	return resolver.Resolve(c.UserContext(), token)
}

func reject(c *fiber.Ctx, logger *zap.Logger, err error) error {
	switch {
	case errors.Is(err, errNoToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: No Token Provided"})
	case errors.Is(err, identity.ErrProviderUnavailable):
		mylogger.Warn(c.UserContext(), logger, "Identity provider unavailable", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "identity provider unavailable"})
	default:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized: Invalid Token"})
	}
}

func attach(c *fiber.Ctx, id domain.Identity) {
	c.Locals(LocalsIdentity, id)
	c.SetUserContext(domain.WithIdentity(c.UserContext(), id))
}
