package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/respond"
)

// HealthHandler responds with service health information.
type HealthHandler struct {
	Ping func(ctx context.Context) error
}

// Handle implements GET /api/v1/healthcheck.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.Ping != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := h.Ping(pingCtx); err != nil {
			respond.Error(ctx, w, apierror.Wrap(apierror.KindInternal, "database unavailable", err))
			return
		}
	}

	respond.Success(ctx, w, http.StatusOK, map[string]string{"status": "ok"}, "OK")
}
