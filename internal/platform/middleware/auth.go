package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

// JWTValidator defines the interface for validating admin bearer tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	ActorID string
	Role    string
}

type contextKeyActorID struct{}

// GetActorID retrieves the authenticated actor id from the context.
func GetActorID(ctx context.Context) string {
	if actor, ok := ctx.Value(contextKeyActorID{}).(string); ok {
		return actor
	}
	return ""
}

// WithActorID injects an actor id into a context. Useful for service unit
// tests that don't run the full HTTP middleware chain.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, contextKeyActorID{}, actorID)
}

// RequireAdmin validates the bearer token and requires the admin role before
// letting the request through. The actor id from the token subject is placed
// in the request context for handlers.
func RequireAdmin(validator JWTValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := validator.ValidateToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				log.WarnContext(r.Context(), "token validation failed",
					"request_id", GetRequestID(r.Context()),
					"error", err.Error(),
				)
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if claims.Role != "admin" {
				writeAuthError(w, http.StatusForbidden, "admin role required")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActorID(r.Context(), claims.ActorID)))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             "unauthorized",
		"error_description": desc,
	})
}
