package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/example/easyride/internal/application"
)

// ClientCookieName names the cookie identifying a browser.
const ClientCookieName = "easyride_client"

const clientCookieMaxAge = 365 * 24 * time.Hour

// ClientIdentity reads the client cookie, issuing a fresh random identifier
// when it is missing or malformed, and stores the identifier in the request
// context.
func ClientIdentity(secure bool, logger *slog.Logger) func(http.Handler) http.Handler {
	base := defaultLogger(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := ""
			if cookie, err := r.Cookie(ClientCookieName); err == nil {
				if parsed, err := uuid.Parse(cookie.Value); err == nil {
					clientID = parsed.String()
				}
			}
			if clientID == "" {
				clientID = uuid.NewString()
				setClientCookie(w, clientID, secure)
				handlerLogger(r.Context(), base, "ClientIdentity", "").DebugContext(r.Context(), "issued client id", "client_id", clientID)
			}

			ctx := ContextWithClientID(r.Context(), clientID)
			if logger := LoggerFromContext(ctx); logger != nil {
				ctx = ContextWithLogger(ctx, logger.With("client_id", clientID))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func setClientCookie(w http.ResponseWriter, clientID string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     ClientCookieName,
		Value:    clientID,
		Path:     "/",
		MaxAge:   int(clientCookieMaxAge / time.Second),
		Expires:  time.Now().Add(clientCookieMaxAge).UTC(),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type sessionProvider interface {
	Store(ctx context.Context, clientID string) (*application.SessionStore, error)
}

// LoadSession attaches the client's session store to the request context.
// It must run after ClientIdentity. A store that cannot be opened leaves the
// request anonymous.
func LoadSession(sessions sessionProvider, logger *slog.Logger) func(http.Handler) http.Handler {
	base := defaultLogger(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if clientID, ok := ClientIDFromContext(ctx); ok && sessions != nil {
				store, err := sessions.Store(ctx, clientID)
				if err != nil {
					handlerLogger(ctx, base, "LoadSession", "").ErrorContext(ctx, "failed to open session store", "error", err)
				} else {
					ctx = ContextWithSession(ctx, store)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger tags every request with a sequential id and logs its start
// and completion with the response status.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(recorder, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "status", recorder.status, "duration", time.Since(start))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(status int) {
	if !s.wroteHeader {
		s.status = status
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wroteHeader = true
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
