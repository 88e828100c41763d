// Package respond writes the JSON envelopes returned by every endpoint.
package respond

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/vidtube/backend/internal/apierror"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/repositories"
)

// Envelope is the body shape shared by success and error responses.
type Envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// JSON encodes payload with the given status and logs client and server failures.
func JSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	logger := logging.FromContext(ctx)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("encode response body", "status", status, "error", err)
		return
	}

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status)
	}
}

// Success writes the success envelope.
func Success(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	JSON(ctx, w, status, Envelope{StatusCode: status, Data: data, Message: message, Success: true})
}

// Error translates err into the error envelope. Unclassified errors are logged
// with their cause and reported as a generic internal failure.
func Error(ctx context.Context, w http.ResponseWriter, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(ctx).Error("request error", "error", err)
	} else {
		logging.FromContext(ctx).Warn("request rejected", "error", err)
	}
	JSON(ctx, w, status, Envelope{StatusCode: status, Data: nil, Message: message, Success: false})
}

// PageNotFound writes the bare page-not-found body used by paginated listings.
func PageNotFound(ctx context.Context, w http.ResponseWriter, page int) {
	JSON(ctx, w, http.StatusNotFound, map[string]string{"message": fmt.Sprintf("page %d not found", page)})
}

func classify(err error) (int, string) {
	if apiErr, ok := apierror.As(err); ok {
		if apiErr.Kind == apierror.KindInternal {
			return http.StatusInternalServerError, orDefault(apiErr.Message, "internal server error")
		}
		return apiErr.Kind.Status(), apiErr.Message
	}
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound, "resource not found"
	case errors.Is(err, repositories.ErrConflict):
		return http.StatusConflict, "resource already exists"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
