package http

import (
	"context"
	"net/http"
	"strings"

	"qcm-challenge/internal/domain"
)

type contextKey string

const adminKey contextKey = "admin"

// RequireAdmin rejects requests without a valid "Bearer <token>" header.
func RequireAdmin(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, domain.ErrUnauthorized)
				return
			}
			subject, err := tokens.Validate(token)
			if err != nil {
				writeError(w, domain.ErrUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), adminKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
