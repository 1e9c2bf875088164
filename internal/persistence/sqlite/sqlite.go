// Package sqlite persists client local storage in a SQLite database through
// the pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/easyride/internal/persistence"
)

// Storage implements persistence.Storage on top of a ConnectionPool.
type Storage struct {
	pool   *ConnectionPool
	retry  RetryConfig
	now    func() time.Time
	logger *slog.Logger
}

// Option customises a Storage.
type Option func(*Storage)

// WithLogger sets the logger used for migration and retry reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Storage) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source stamping updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRetryConfig overrides the lock retry policy.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(s *Storage) {
		s.retry = cfg
	}
}

// Open connects to the database named by dsn. ":memory:" selects a private
// in-memory database.
func Open(ctx context.Context, dsn string, opts ...Option) (*Storage, error) {
	cfg := DefaultConfig(dsn)
	if strings.TrimSpace(dsn) == ":memory:" {
		cfg = InMemoryConfig()
	}
	return OpenWithConfig(ctx, cfg, opts...)
}

// OpenWithConfig connects using an explicit configuration.
func OpenWithConfig(ctx context.Context, cfg Config, opts ...Option) (*Storage, error) {
	pool, err := NewConnectionPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := &Storage{
		pool:   pool,
		retry:  DefaultRetryConfig(),
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the underlying connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}

// Ping checks that the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ForClient returns the namespace owned by clientID.
func (s *Storage) ForClient(clientID string) persistence.LocalStorage {
	return &clientStorage{storage: s, clientID: strings.TrimSpace(clientID)}
}

// ListItems returns the client's entries ordered by key.
func (s *Storage) ListItems(ctx context.Context, clientID string) ([]persistence.Item, error) {
	rows, err := s.pool.DB().QueryContext(ctx, `
		SELECT client_id, key, value, updated_at
		FROM local_storage
		WHERE client_id = ?
		ORDER BY key
	`, strings.TrimSpace(clientID))
	if err != nil {
		return nil, fmt.Errorf("sqlite: list items: %w", mapError(err))
	}
	defer rows.Close()

	var items []persistence.Item
	for rows.Next() {
		var item persistence.Item
		var updatedAt string
		if err := rows.Scan(&item.ClientID, &item.Key, &item.Value, &updatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan item: %w", err)
		}
		if item.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// exec runs a write statement under the lock retry policy.
func (s *Storage) exec(ctx context.Context, query string, args ...any) error {
	attempt := 0
	return withRetry(ctx, s.retry, func() error {
		attempt++
		if attempt > 1 {
			s.logger.WarnContext(ctx, "retrying locked write", "attempt", attempt)
		}
		_, err := s.pool.DB().ExecContext(ctx, query, args...)
		return err
	})
}

type clientStorage struct {
	storage  *Storage
	clientID string
}

func (c *clientStorage) GetItem(ctx context.Context, key string) (string, error) {
	if c.clientID == "" || key == "" {
		return "", persistence.ErrInvalidKey
	}
	var value string
	err := c.storage.pool.DB().QueryRowContext(ctx,
		`SELECT value FROM local_storage WHERE client_id = ? AND key = ?`,
		c.clientID, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", persistence.ErrNotFound
		}
		return "", fmt.Errorf("sqlite: get item: %w", mapError(err))
	}
	return value, nil
}

func (c *clientStorage) SetItem(ctx context.Context, key, value string) error {
	if c.clientID == "" || key == "" {
		return persistence.ErrInvalidKey
	}
	err := c.storage.exec(ctx, `
		INSERT INTO local_storage (client_id, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (client_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, c.clientID, key, value, c.storage.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlite: set item: %w", err)
	}
	return nil
}

func (c *clientStorage) RemoveItem(ctx context.Context, key string) error {
	if c.clientID == "" || key == "" {
		return persistence.ErrInvalidKey
	}
	err := c.storage.exec(ctx,
		`DELETE FROM local_storage WHERE client_id = ? AND key = ?`,
		c.clientID, key,
	)
	if err != nil {
		return fmt.Errorf("sqlite: remove item: %w", err)
	}
	return nil
}
