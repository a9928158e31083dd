package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/flexhire/flexhire/internal/storage"
)

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// storeError maps storage sentinels onto HTTP responses. The fallback is a
// 500 with the given verb in the message.
func storeError(w http.ResponseWriter, err error, verb string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httpError(w, http.StatusNotFound, "not_found", "%s: not found", verb)
	case errors.Is(err, storage.ErrDuplicate):
		httpError(w, http.StatusConflict, "conflict", "%s: already exists", verb)
	case errors.Is(err, storage.ErrInvalidTransition):
		httpError(w, http.StatusConflict, "conflict", "%s: %v", verb, err)
	case errors.Is(err, storage.ErrNotApplied):
		httpError(w, http.StatusConflict, "conflict", "%s: %v", verb, err)
	default:
		httpError(w, http.StatusInternalServerError, "api_error", "failed to %s: %v", verb, err)
	}
}
