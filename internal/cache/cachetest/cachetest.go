// Package cachetest holds the behavior every cache.Cache backend must share.
package cachetest

import (
	"context"
	"testing"
	"time"

	"linkbrief/internal/cache"
)

// Factory returns a fresh, empty cache and a function that moves the
// backend's clock forward.
type Factory func(t *testing.T) (cache.Cache, func(time.Duration))

// Run exercises the cache.Cache contract against the backend built by newCache.
func Run(t *testing.T, newCache Factory) {
	t.Helper()

	ctx := context.Background()

	t.Run("Set then Get returns the value", func(t *testing.T) {
		c, _ := newCache(t)

		mustSet(t, c, "test_key", "test_value", 0)

		assertValue(t, c, "test_key", "test_value")
	})

	t.Run("Get of a missing key is absent", func(t *testing.T) {
		c, _ := newCache(t)

		assertAbsent(t, c, "non_existent_key")
	})

	t.Run("Exists reports presence", func(t *testing.T) {
		c, _ := newCache(t)

		mustSet(t, c, "test_key", "test_value", 0)

		if ok, err := c.Exists(ctx, "test_key"); err != nil || !ok {
			t.Fatalf("Exists(test_key) = (%v, %v), want (true, nil)", ok, err)
		}

		if ok, err := c.Exists(ctx, "nonexistent_key"); err != nil || ok {
			t.Fatalf("Exists(nonexistent_key) = (%v, %v), want (false, nil)", ok, err)
		}
	})

	t.Run("Set overwrites", func(t *testing.T) {
		c, _ := newCache(t)

		mustSet(t, c, "key", "first", time.Hour)
		mustSet(t, c, "key", "second", 0)

		assertValue(t, c, "key", "second")
	})

	t.Run("Entries expire after their TTL", func(t *testing.T) {
		c, advance := newCache(t)

		mustSet(t, c, "test_key", "test_value", time.Second)
		assertValue(t, c, "test_key", "test_value")

		advance(2 * time.Second)

		assertAbsent(t, c, "test_key")

		if ok, err := c.Exists(ctx, "test_key"); err != nil || ok {
			t.Fatalf("Exists() after TTL = (%v, %v), want (false, nil)", ok, err)
		}
	})

	t.Run("Entries without TTL do not expire", func(t *testing.T) {
		c, advance := newCache(t)

		mustSet(t, c, "key", "value", 0)

		advance(48 * time.Hour)

		assertValue(t, c, "key", "value")
	})

	t.Run("Clear removes every entry", func(t *testing.T) {
		c, _ := newCache(t)

		mustSet(t, c, "a", "1", 0)
		mustSet(t, c, "b", "2", time.Hour)

		if err := c.Clear(ctx); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}

		assertAbsent(t, c, "a")
		assertAbsent(t, c, "b")
	})

	t.Run("Keys are used verbatim", func(t *testing.T) {
		c, _ := newCache(t)

		mustSet(t, c, "https://example.com/article", "This is a summary", 0)

		assertAbsent(t, c, "https://example.com/article/")
		assertValue(t, c, "https://example.com/article", "This is a summary")
	})
}

func mustSet(t *testing.T, c cache.Cache, key string, value string, ttl time.Duration) {
	t.Helper()

	if err := c.Set(context.Background(), key, value, ttl); err != nil {
		t.Fatalf("Set(%q) error = %v", key, err)
	}
}

func assertValue(t *testing.T, c cache.Cache, key string, want string) {
	t.Helper()

	got, ok, err := c.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", key, err)
	}

	if !ok || got != want {
		t.Fatalf("Get(%q) = (%q, %v), want (%q, true)", key, got, ok, want)
	}
}

func assertAbsent(t *testing.T, c cache.Cache, key string) {
	t.Helper()

	got, ok, err := c.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", key, err)
	}

	if ok {
		t.Fatalf("Get(%q) = %q, expected absent", key, got)
	}
}
