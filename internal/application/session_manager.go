package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/example/easyride/internal/persistence"
)

// DefaultClientCacheSize bounds the number of session stores kept in memory.
const DefaultClientCacheSize = 1024

// SessionManager owns one SessionStore per client. A store is opened, and its
// persisted record read, the first time a client is seen; it is dropped when
// evicted from the cache and reopened from storage on the next visit.
type SessionManager struct {
	storage persistence.Storage
	cfg     SessionConfig
	logger  *slog.Logger

	mu    sync.Mutex
	cache *lru.Cache[string, *SessionStore]
}

// NewSessionManager wires a manager over storage keeping at most size stores.
func NewSessionManager(storage persistence.Storage, cfg SessionConfig, size int, logger *slog.Logger) (*SessionManager, error) {
	if storage == nil {
		return nil, fmt.Errorf("session manager: storage is required")
	}
	if size <= 0 {
		size = DefaultClientCacheSize
	}
	base := defaultLogger(logger)
	cache, err := lru.NewWithEvict(size, func(clientID string, _ *SessionStore) {
		base.Debug("session store evicted", "client_id", clientID)
	})
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}
	return &SessionManager{storage: storage, cfg: cfg, logger: base, cache: cache}, nil
}

// Store returns the session store of clientID, opening it on first use.
func (m *SessionManager) Store(ctx context.Context, clientID string) (*SessionStore, error) {
	if m == nil {
		return nil, fmt.Errorf("SessionManager is nil")
	}
	id := strings.TrimSpace(clientID)
	if id == "" {
		return nil, persistence.ErrInvalidKey
	}

	if store, ok := m.cache.Get(id); ok {
		return store, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if store, ok := m.cache.Get(id); ok {
		return store, nil
	}

	store := OpenSessionStore(ctx, m.storage.ForClient(id), m.cfg, m.logger)
	m.cache.Add(id, store)
	serviceLogger(ctx, m.logger, "SessionManager", "Store", "client_id", id).DebugContext(ctx, "session store opened", "logged_in", store.IsLoggedIn())
	return store, nil
}

// Len reports how many stores are held in memory.
func (m *SessionManager) Len() int {
	return m.cache.Len()
}

// Close drops every in-memory store. Persisted records are kept.
func (m *SessionManager) Close() {
	m.cache.Purge()
}
