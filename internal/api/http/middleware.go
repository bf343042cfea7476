package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/Bukenyae/medical-rentals-sub002/internal/security"
	"github.com/Bukenyae/medical-rentals-sub002/internal/service"
)

type contextKey string

const callerKey contextKey = "caller"

// AuthMiddleware validates the bearer token and attaches the caller
// identity to the request context.
func AuthMiddleware(tokens security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
				return
			}

			claims, err := tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid or expired token"})
				return
			}

			caller := service.Caller{ID: claims.UserID, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, caller)))
		})
	}
}

func callerFrom(r *http.Request) service.Caller {
	caller, _ := r.Context().Value(callerKey).(service.Caller)
	return caller
}
