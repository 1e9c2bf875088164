package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/easyride/internal/persistence"
	"github.com/example/easyride/internal/persistence/memory"
	"github.com/example/easyride/internal/persistence/sqlite"
)

// NewSQLiteStorage opens a migrated SQLite storage in a temporary directory
// and closes it when the test ends.
func NewSQLiteStorage(tb testing.TB) *sqlite.Storage {
	tb.Helper()

	ctx := context.Background()
	dsn := "file:" + filepath.Join(tb.TempDir(), "easyride.db") + "?_pragma=foreign_keys(1)"
	storage, err := sqlite.Open(ctx, dsn)
	if err != nil {
		tb.Fatalf("open sqlite storage: %v", err)
	}
	tb.Cleanup(func() {
		if err := storage.Close(); err != nil {
			tb.Errorf("close sqlite storage: %v", err)
		}
	})
	if err := storage.Migrate(ctx); err != nil {
		tb.Fatalf("migrate sqlite storage: %v", err)
	}
	return storage
}

// Backends returns one fresh storage per implementation, keyed by name.
func Backends(tb testing.TB) map[string]persistence.Storage {
	tb.Helper()
	return map[string]persistence.Storage{
		"memory": memory.Open(),
		"sqlite": NewSQLiteStorage(tb),
	}
}
