package identity

import (
	"context"

	"github.com/Kedar-sonavani/Kalashree-Collection/services/storefront/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims mirrors the access tokens the provider signs.
type Claims struct {
	Email        string   `json:"email"`
	AppMetadata  metadata `json:"app_metadata,omitempty"`
	UserMetadata metadata `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

type JWTResolver struct {
	secret     []byte
	adminEmail string
	parser     *jwt.Parser
}

func NewJWTResolver(secret, adminEmail string) *JWTResolver {
	return &JWTResolver{
		secret:     []byte(secret),
		adminEmail: adminEmail,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

func (r *JWTResolver) Resolve(_ context.Context, token string) (domain.Identity, error) {
	claims := &Claims{}

	parsed, err := r.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return r.secret, nil
	})
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return domain.Identity{}, ErrInvalidToken
	}

	return newIdentity(claims.Subject, claims.Email, claims.AppMetadata, claims.UserMetadata, r.adminEmail), nil
}
