package httpapi

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"qrmenu/internal/auth"
)

type contextKey string

const ownerIDKey contextKey = "ownerID"

// RequireOwner rejects requests without a valid owner token and stashes
// the owner id in the request context.
func RequireOwner(tokens *auth.TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := auth.TokenFromRequest(r)
			if err != nil {
				http.Error(w, "Missing token", http.StatusUnauthorized)
				return
			}
			claims, err := tokens.Parse(tokenString)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ownerIDKey, claims.OwnerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OwnerID returns the authenticated owner id set by RequireOwner.
func OwnerID(r *http.Request) string {
	id, _ := r.Context().Value(ownerIDKey).(string)
	return id
}
