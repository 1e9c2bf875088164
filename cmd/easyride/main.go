package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/easyride/internal/application"
	"github.com/example/easyride/internal/catalog"
	"github.com/example/easyride/internal/config"
	httptransport "github.com/example/easyride/internal/http"
	"github.com/example/easyride/internal/persistence"
	"github.com/example/easyride/internal/persistence/memory"
	"github.com/example/easyride/internal/persistence/sqlite"
	"github.com/example/easyride/internal/view"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("easyride listening", "addr", server.Addr, "in_memory", cfg.InMemory())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// app is the wired handler tree together with the storage it owns.
type app struct {
	handler  http.Handler
	storage  persistence.Storage
	sessions *application.SessionManager
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	storage, health, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	demo, err := application.NewDemoAccount(application.DefaultArgon2idParams)
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("prepare demo account: %w", err)
	}
	// Registration waits as long as a booking submission.
	sessions, err := application.NewSessionManager(storage, application.SessionConfig{
		Demo:          demo,
		LoginDelay:    application.Delay{Duration: cfg.AuthDelay},
		RegisterDelay: application.Delay{Duration: cfg.SubmitDelay},
	}, cfg.ClientCacheSize, logger)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}

	renderer, err := view.New()
	if err != nil {
		_ = storage.Close()
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	c := catalog.Default()
	submitDelay := application.Delay{Duration: cfg.SubmitDelay}
	booking := application.NewBookingService(c, submitDelay, nil, time.Now, logger)
	contact := application.NewContactService(submitDelay, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Pages:   httptransport.NewPageHandler(c, renderer, logger),
		Auth:    httptransport.NewAuthHandler(renderer, logger),
		Rent:    httptransport.NewRentHandler(booking, c, renderer, logger),
		Contact: httptransport.NewContactHandler(contact, renderer, logger),
		API:     httptransport.NewAPIHandler(c, storage, health, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.ClientIdentity(cfg.CookieSecure, logger),
			httptransport.LoadSession(sessions, logger),
		},
	})
	return &app{handler: handler, storage: storage, sessions: sessions}, nil
}

func (a *app) Close() error {
	a.sessions.Close()
	return a.storage.Close()
}

// openStorage returns the local storage backend named by cfg. The health
// checker is nil for the in-process store.
func openStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.Storage, httptransport.HealthChecker, error) {
	if cfg.InMemory() {
		return memory.Open(), nil, nil
	}

	storage, err := sqlite.Open(ctx, cfg.SQLiteDSN, sqlite.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("open storage: %w", err)
	}
	if err := storage.Migrate(ctx); err != nil {
		_ = storage.Close()
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}
	return storage, storage, nil
}
