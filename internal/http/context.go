package http

import (
	"context"
	"log/slog"

	"github.com/example/easyride/internal/application"
	"github.com/example/easyride/internal/logging"
)

type contextKey string

const (
	clientIDContextKey contextKey = "client_id"
	sessionContextKey  contextKey = "session"
)

// ContextWithLogger returns a derived context carrying the request logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request logger, or nil.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithClientID injects the client identifier read from the cookie.
func ContextWithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDContextKey, clientID)
}

// ClientIDFromContext extracts the client identifier, if any.
func ClientIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(clientIDContextKey).(string)
	return id, ok && id != ""
}

// ContextWithSession injects the client's session store.
func ContextWithSession(ctx context.Context, store *application.SessionStore) context.Context {
	return context.WithValue(ctx, sessionContextKey, store)
}

// SessionFromContext extracts the client's session store, if any.
func SessionFromContext(ctx context.Context) (*application.SessionStore, bool) {
	store, ok := ctx.Value(sessionContextKey).(*application.SessionStore)
	return store, ok && store != nil
}

// currentUser returns the signed-in user of the request, or nil.
func currentUser(ctx context.Context) *application.User {
	store, ok := SessionFromContext(ctx)
	if !ok {
		return nil
	}
	user, ok := store.User()
	if !ok {
		return nil
	}
	return &user
}
