package webutil

import (
	"context"

	"github.com/jobportal/jobportal/models"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated caller, taken from a verified access token.
// Admin is set for admin accounts and for superusers of any role.
type Principal struct {
	UserID string
	Role   models.Role
	Admin  bool
}

// HasRole reports whether the caller holds role. Admin satisfies RoleAdmin.
func (p Principal) HasRole(role models.Role) bool {
	return p.Role == role || (role == models.RoleAdmin && p.Admin)
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok && p.UserID != ""
}

// RequirePrincipal returns the caller or a 401 HTTPError.
func RequirePrincipal(ctx context.Context) (Principal, error) {
	p, ok := PrincipalFrom(ctx)
	if !ok {
		return Principal{}, ErrUnauthorized("")
	}
	return p, nil
}
