package auth

import (
	"strings"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/apierror"
)

// IsOwner reports whether principalID is the recorded owner. Identifiers are
// compared in canonical form; an empty identifier never matches.
func IsOwner(ownerID, principalID string) bool {
	owner := normalizeID(ownerID)
	principal := normalizeID(principalID)
	return owner != "" && owner == principal
}

// RequireOwner returns a Forbidden error unless principalID owns the resource.
func RequireOwner(ownerID, principalID, resource string) error {
	if IsOwner(ownerID, principalID) {
		return nil
	}
	return apierror.Forbidden("you are not the owner of this " + resource)
}

func normalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if parsed, err := uuid.Parse(id); err == nil {
		return parsed.String()
	}
	return id
}
