package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
)

// idParam returns the named URL parameter in canonical form. Absent values are
// reported as missing, malformed ones as invalid.
func idParam(r *http.Request, name string) (string, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return "", apierror.MissingField(name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apierror.InvalidID(name)
	}
	return id.String(), nil
}

// principal returns the authenticated account placed on the context by the
// authentication middleware.
func principal(r *http.Request) (models.User, error) {
	user, ok := auth.PrincipalFromContext(r.Context())
	if !ok || user.ID == "" {
		return models.User{}, apierror.Unauthenticated("unauthorized request")
	}
	return user, nil
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched so
// required-field validation reports what is missing.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apierror.Wrap(apierror.KindInvalidArgument, "invalid request body", err)
	}
	return nil
}
