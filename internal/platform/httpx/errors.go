// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/odyssey-bakery/internal/shared"
)

// RetryAfterSeconds is advertised on responses for transaction conflicts.
const RetryAfterSeconds = "1"

// Status returns the HTTP status a domain error maps to.
func Status(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrDuplicate), errors.Is(err, shared.ErrReferenced):
		return http.StatusConflict
	case errors.Is(err, shared.ErrRetryable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to HTTP responses using RFC7807. Unexpected failures are logged
// in full and answered with a generic detail.
func RespondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := Status(err)
	switch status {
	case http.StatusNotFound:
		Problem(w, status, "Not Found", err.Error())
	case http.StatusBadRequest:
		title := "Invalid Argument"
		if errors.Is(err, shared.ErrInsufficientStock) {
			title = "Insufficient Stock"
		}
		Problem(w, status, title, err.Error())
	case http.StatusConflict:
		title := "Duplicate"
		if errors.Is(err, shared.ErrReferenced) {
			title = "Referenced"
		}
		Problem(w, status, title, err.Error())
	case http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", RetryAfterSeconds)
		Problem(w, status, "Conflict", "the request conflicted with a concurrent update, retry later")
	default:
		if logger == nil {
			logger = slog.Default()
		}
		attrs := []any{slog.Any("error", err)}
		if r != nil {
			attrs = append(attrs, slog.String("method", r.Method), slog.String("path", r.URL.Path))
		}
		logger.Error("request failed", attrs...)
		Problem(w, status, "Internal Error", "an unexpected error occurred")
	}
}
