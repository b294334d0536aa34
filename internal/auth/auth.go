package auth

import (
	"context"
	"slices"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleUser     Role = "user"
	RoleReadonly Role = "readonly"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser || r == RoleReadonly
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// HasRole reports whether the principal's role is in the allow-list.
func (p Principal) HasRole(allowed ...Role) bool {
	return slices.Contains(allowed, p.Role)
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
