package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tinytales/tinytales-server/internal/errs"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeServiceError maps service sentinels to HTTP statuses. Unknown errors
// become 500 with a generic body so internals never leak to clients.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, errs.ErrUnauthorized):
		writeError(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, errs.ErrNotFound):
		writeError(w, "not found", http.StatusNotFound)
	case errors.Is(err, errs.ErrAlreadyExists):
		writeError(w, "already exists", http.StatusConflict)
	case errors.Is(err, errs.ErrRateLimited):
		writeError(w, "too many attempts, try again later", http.StatusTooManyRequests)
	case errors.Is(err, errs.ErrGenerationFailed):
		writeError(w, "story generation failed", http.StatusBadGateway)
	case errors.Is(err, errs.ErrUnavailable):
		writeError(w, "temporarily unavailable", http.StatusServiceUnavailable)
	default:
		writeError(w, "internal error", http.StatusInternalServerError)
	}
}
