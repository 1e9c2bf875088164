// Package memory provides a process local implementation of the persistence
// interfaces. State is lost on restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/easyride/internal/persistence"
)

// Storage keeps every client's local storage in maps guarded by a mutex.
type Storage struct {
	mu      sync.RWMutex
	now     func() time.Time
	clients map[string]map[string]persistence.Item
}

// Open returns an empty Storage.
func Open() *Storage {
	return NewWithClock(time.Now)
}

// NewWithClock returns an empty Storage stamping items with now.
func NewWithClock(now func() time.Time) *Storage {
	if now == nil {
		now = time.Now
	}
	return &Storage{now: now, clients: make(map[string]map[string]persistence.Item)}
}

// Close releases resources held by the storage. No-op for the in-memory implementation.
func (s *Storage) Close() error {
	return nil
}

// ForClient returns the namespace owned by clientID.
func (s *Storage) ForClient(clientID string) persistence.LocalStorage {
	return &clientStorage{storage: s, clientID: strings.TrimSpace(clientID)}
}

// ListItems returns the client's entries ordered by key.
func (s *Storage) ListItems(ctx context.Context, clientID string) ([]persistence.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.clients[strings.TrimSpace(clientID)]
	items := make([]persistence.Item, 0, len(entries))
	for _, item := range entries {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })
	return items, nil
}

type clientStorage struct {
	storage  *Storage
	clientID string
}

func (c *clientStorage) GetItem(ctx context.Context, key string) (string, error) {
	if c.clientID == "" || key == "" {
		return "", persistence.ErrInvalidKey
	}
	c.storage.mu.RLock()
	defer c.storage.mu.RUnlock()

	item, ok := c.storage.clients[c.clientID][key]
	if !ok {
		return "", persistence.ErrNotFound
	}
	return item.Value, nil
}

func (c *clientStorage) SetItem(ctx context.Context, key, value string) error {
	if c.clientID == "" || key == "" {
		return persistence.ErrInvalidKey
	}
	c.storage.mu.Lock()
	defer c.storage.mu.Unlock()

	entries, ok := c.storage.clients[c.clientID]
	if !ok {
		entries = make(map[string]persistence.Item)
		c.storage.clients[c.clientID] = entries
	}
	entries[key] = persistence.Item{
		ClientID:  c.clientID,
		Key:       key,
		Value:     value,
		UpdatedAt: c.storage.now().UTC(),
	}
	return nil
}

func (c *clientStorage) RemoveItem(ctx context.Context, key string) error {
	if c.clientID == "" || key == "" {
		return persistence.ErrInvalidKey
	}
	c.storage.mu.Lock()
	defer c.storage.mu.Unlock()

	entries, ok := c.storage.clients[c.clientID]
	if !ok {
		return nil
	}
	delete(entries, key)
	if len(entries) == 0 {
		delete(c.storage.clients, c.clientID)
	}
	return nil
}
