// Package storagetest holds the behavioural contract every
// persistence.Storage implementation must satisfy.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/example/easyride/internal/persistence"
)

// Run exercises storage against the local storage contract. The storage must
// be empty when passed in.
func Run(t *testing.T, storage persistence.Storage) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing keys report ErrNotFound", func(t *testing.T) {
		_, err := storage.ForClient("client-missing").GetItem(ctx, "t-glide-user")
		if !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("set then get round trips the value", func(t *testing.T) {
		ls := storage.ForClient("client-a")
		if err := ls.SetItem(ctx, "t-glide-user", `{"id":"user-1"}`); err != nil {
			t.Fatalf("SetItem failed: %v", err)
		}
		got, err := ls.GetItem(ctx, "t-glide-user")
		if err != nil {
			t.Fatalf("GetItem failed: %v", err)
		}
		if got != `{"id":"user-1"}` {
			t.Fatalf("unexpected value %q", got)
		}
	})

	t.Run("set overwrites the previous value", func(t *testing.T) {
		ls := storage.ForClient("client-b")
		for _, value := range []string{"first", "second"} {
			if err := ls.SetItem(ctx, "k", value); err != nil {
				t.Fatalf("SetItem(%q) failed: %v", value, err)
			}
		}
		got, err := ls.GetItem(ctx, "k")
		if err != nil || got != "second" {
			t.Fatalf("expected second, got %q (%v)", got, err)
		}
		items, err := storage.ListItems(ctx, "client-b")
		if err != nil {
			t.Fatalf("ListItems failed: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected a single record, got %d", len(items))
		}
	})

	t.Run("clients are isolated", func(t *testing.T) {
		if err := storage.ForClient("client-c").SetItem(ctx, "shared", "c"); err != nil {
			t.Fatalf("SetItem failed: %v", err)
		}
		if _, err := storage.ForClient("client-d").GetItem(ctx, "shared"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected other client to see nothing, got %v", err)
		}
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		ls := storage.ForClient("client-e")
		if err := ls.SetItem(ctx, "k", "v"); err != nil {
			t.Fatalf("SetItem failed: %v", err)
		}
		for i := 0; i < 2; i++ {
			if err := ls.RemoveItem(ctx, "k"); err != nil {
				t.Fatalf("RemoveItem #%d failed: %v", i+1, err)
			}
		}
		if _, err := ls.GetItem(ctx, "k"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after removal, got %v", err)
		}
	})

	t.Run("lists items ordered by key", func(t *testing.T) {
		ls := storage.ForClient("client-f")
		for _, key := range []string{"b", "a", "c"} {
			if err := ls.SetItem(ctx, key, key+"-value"); err != nil {
				t.Fatalf("SetItem failed: %v", err)
			}
		}
		items, err := storage.ListItems(ctx, "client-f")
		if err != nil {
			t.Fatalf("ListItems failed: %v", err)
		}
		if len(items) != 3 || items[0].Key != "a" || items[1].Key != "b" || items[2].Key != "c" {
			t.Fatalf("unexpected items %#v", items)
		}
		if items[0].ClientID != "client-f" || items[0].Value != "a-value" || items[0].UpdatedAt.IsZero() {
			t.Fatalf("unexpected item contents %#v", items[0])
		}
	})

	t.Run("rejects empty identifiers", func(t *testing.T) {
		if err := storage.ForClient("").SetItem(ctx, "k", "v"); !errors.Is(err, persistence.ErrInvalidKey) {
			t.Fatalf("expected ErrInvalidKey for empty client, got %v", err)
		}
		if err := storage.ForClient("client-g").SetItem(ctx, "", "v"); !errors.Is(err, persistence.ErrInvalidKey) {
			t.Fatalf("expected ErrInvalidKey for empty key, got %v", err)
		}
	})
}
