// Package testutil provides common helpers for handler and middleware tests.
package testutil

import (
	"io"
	"log/slog"
	"net/http"

	"janseva/internal/platform/middleware"
)

// WithActor adds an authenticated actor id to the request context,
// simulating what the admin auth middleware does after verifying a
// token.
func WithActor(req *http.Request, actorID string) *http.Request {
	if actorID == "" {
		return req
	}
	return req.WithContext(middleware.WithActorID(req.Context(), actorID))
}

// WithRequestID stamps a request id on the request context.
func WithRequestID(req *http.Request, id string) *http.Request {
	return req.WithContext(middleware.WithRequestID(req.Context(), id))
}

// SilentLogger returns a logger that discards everything, for tests
// that only care about behavior.
func SilentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
