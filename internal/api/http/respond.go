package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Bukenyae/medical-rentals-sub002/internal/logger"
	"github.com/Bukenyae/medical-rentals-sub002/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps the service error taxonomy onto HTTP statuses.
// Upstream processor details are logged, never serialized to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *service.ValidationError
		notFound   *service.NotFoundError
		conflict   *service.ConflictError
		upstream   *service.UpstreamError
	)
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validation.Msg})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: notFound.Msg})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: conflict.Msg})
	case errors.As(err, &upstream):
		logger.ErrorContext(r.Context(), "payment processor error", "op", upstream.Op, "error", upstream.Err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "payment processor is unavailable"})
	default:
		logger.ErrorContext(r.Context(), "internal error", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
