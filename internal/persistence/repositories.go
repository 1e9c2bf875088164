package persistence

import "context"

// LocalStorage is a string key/value store private to one browser client,
// mirroring the browser's per-origin local storage.
type LocalStorage interface {
	// GetItem returns ErrNotFound when the key holds no value.
	GetItem(ctx context.Context, key string) (string, error)
	// SetItem overwrites any previous value stored under key.
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error
}

// Storage hands out the local storage namespace of each client.
type Storage interface {
	ForClient(clientID string) LocalStorage
	ListItems(ctx context.Context, clientID string) ([]Item, error)
	Close() error
}
