package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/respond"
)

// AccessTokenCookie is the cookie carrying the access token.
const AccessTokenCookie = "accessToken"

// TokenVerifier validates access tokens.
type TokenVerifier interface {
	VerifyAccess(token string) (*auth.Claims, error)
}

// AccountLoader loads the account referenced by a verified token.
type AccountLoader interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// Authenticate resolves the principal from the access token cookie or bearer
// header and stores it on the request context.
func Authenticate(tokens TokenVerifier, accounts AccountLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := accessToken(r)
			if token == "" {
				respond.Error(ctx, w, apierror.Unauthenticated("unauthorized request"))
				return
			}

			claims, err := tokens.VerifyAccess(token)
			if err != nil {
				respond.Error(ctx, w, apierror.Wrap(apierror.KindUnauthenticated, "invalid access token", err))
				return
			}

			user, err := accounts.FindByID(ctx, claims.Subject)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					respond.Error(ctx, w, apierror.Wrap(apierror.KindUnauthenticated, "invalid access token", err))
					return
				}
				respond.Error(ctx, w, err)
				return
			}

			ctx = auth.WithPrincipal(ctx, user)
			ctx = logging.With(ctx, "user_id", user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func accessToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return strings.TrimSpace(cookie.Value)
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > len("Bearer ") && strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return ""
}
