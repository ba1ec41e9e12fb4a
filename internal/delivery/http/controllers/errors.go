package controllers

import (
	"log/slog"
	"net/http"

	"tablereservations/internal/delivery/http/helpers"
)

// writeError maps err onto the response and logs anything that is not a known domain error.
func writeError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if !helpers.WriteDomainError(w, err) {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
}
