package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

type verifierStub struct{}

func (verifierStub) VerifyAccess(token string) (*auth.Claims, error) {
	switch token {
	case "good":
		c := &auth.Claims{}
		c.Subject = "user-1"
		return c, nil
	case "orphan":
		c := &auth.Claims{}
		c.Subject = "deleted"
		return c, nil
	case "expired":
		return nil, auth.ErrTokenExpired
	default:
		return nil, auth.ErrInvalidToken
	}
}

type loaderStub struct{}

func (loaderStub) FindByID(_ context.Context, id string) (models.User, error) {
	if id == "user-1" {
		return models.User{ID: "user-1", Username: "alice", Password: "hash", RefreshToken: "rt"}, nil
	}
	return models.User{}, repositories.ErrNotFound
}

func TestAuthenticate(t *testing.T) {
	cases := []struct {
		name       string
		cookie     string
		header     string
		wantStatus int
	}{
		{"cookie", "good", "", http.StatusOK},
		{"bearer", "", "Bearer good", http.StatusOK},
		{"bearerLowercase", "", "bearer good", http.StatusOK},
		{"missing", "", "", http.StatusUnauthorized},
		{"expired", "expired", "", http.StatusUnauthorized},
		{"tampered", "", "Bearer forged", http.StatusUnauthorized},
		{"deletedAccount", "orphan", "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var principal models.User
			handler := Authenticate(verifierStub{}, loaderStub{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				principal, _ = auth.PrincipalFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/users/current-user", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tc.cookie})
			}
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d got %d (%s)", tc.wantStatus, rec.Code, rec.Body.String())
			}
			if tc.wantStatus == http.StatusOK && (principal.ID != "user-1" || principal.Password != "" || principal.RefreshToken != "") {
				t.Fatalf("expected principal without credentials, got %+v", principal)
			}
		})
	}
}

type failingLoader struct{}

func (failingLoader) FindByID(context.Context, string) (models.User, error) {
	return models.User{}, errors.New("connection refused")
}

func TestAuthenticateStoreFailure(t *testing.T) {
	handler := Authenticate(verifierStub{}, failingLoader{})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}
