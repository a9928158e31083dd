package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/flexhire/flexhire/internal/auth"
)

type contextKey int

const identityKey contextKey = 0

// SessionAuth verifies the bearer token and stores the session identity in
// the request context.
func SessionAuth(signer *auth.Signer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(header, prefix) {
				httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or missing bearer token")
				return
			}
			id, err := signer.Verify(header[len(prefix):])
			if err != nil {
				httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or missing bearer token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
		})
	}
}

// identityFrom returns the verified session identity. The zero Identity means
// the request skipped SessionAuth.
func identityFrom(r *http.Request) auth.Identity {
	id, _ := r.Context().Value(identityKey).(auth.Identity)
	return id
}
