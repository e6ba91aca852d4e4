package domain

import (
	"context"
	"strings"
)

type Role int

const (
	RoleCustomer Role = iota
	RoleAdmin
)

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}

	return "customer"
}

// Identity is the caller as resolved from a bearer token, or the synthetic
// admin admitted by the shared secret.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// ResolveRole grants admin to the admin role claim or to the configured admin
// email, compared without regard to case.
func ResolveRole(roleClaim, email, adminEmail string) Role {
	if strings.EqualFold(strings.TrimSpace(roleClaim), "admin") {
		return RoleAdmin
	}
	if adminEmail != "" && strings.EqualFold(strings.TrimSpace(email), strings.TrimSpace(adminEmail)) {
		return RoleAdmin
	}

	return RoleCustomer
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
