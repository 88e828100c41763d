package auth

import (
	"context"

	"github.com/vidtube/backend/internal/models"
)

type principalKey struct{}

// WithPrincipal attaches the authenticated account to ctx without its password
// hash or refresh token.
func WithPrincipal(ctx context.Context, user models.User) context.Context {
	user.Password = ""
	user.RefreshToken = ""
	return context.WithValue(ctx, principalKey{}, user)
}

// PrincipalFromContext returns the authenticated account, if any.
func PrincipalFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(principalKey{}).(models.User)
	return user, ok && user.ID != ""
}
