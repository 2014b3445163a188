// Package kvtest holds the conformance tests every kv.Backend must pass.
package kvtest

import (
	"context"
	"testing"

	"relkv/internal/kv"
)

// Factory returns a fresh, empty backend scoped with prefix
type Factory func(t *testing.T, prefix string) kv.Backend

// Run exercises the backend contract
func Run(t *testing.T, newBackend Factory) {
	ctx := context.Background()

	t.Run("write then read", func(t *testing.T) {
		b := newBackend(t, "test::")
		if err := b.Write(ctx, "person:1", []byte(`{"id":"1"}`)); err != nil {
			t.Fatalf("write failed: %v", err)
		}

		got, ok, err := b.Read(ctx, "person:1")
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if !ok {
			t.Fatal("expected key to be present")
		}
		if string(got) != `{"id":"1"}` {
			t.Errorf("unexpected value %q", got)
		}
	})

	t.Run("read absent", func(t *testing.T) {
		b := newBackend(t, "test::")
		_, ok, err := b.Read(ctx, "missing")
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if ok {
			t.Error("expected absent key")
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		b := newBackend(t, "test::")
		_ = b.Write(ctx, "k", []byte("one"))
		_ = b.Write(ctx, "k", []byte("two"))

		got, _, _ := b.Read(ctx, "k")
		if string(got) != "two" {
			t.Errorf("expected two, got %q", got)
		}
	})

	t.Run("remove", func(t *testing.T) {
		b := newBackend(t, "test::")
		_ = b.Write(ctx, "k", []byte("v"))
		if err := b.Remove(ctx, "k"); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if _, ok, _ := b.Read(ctx, "k"); ok {
			t.Error("expected key to be removed")
		}
		if err := b.Remove(ctx, "k"); err != nil {
			t.Errorf("removing an absent key should succeed, got %v", err)
		}
	})

	t.Run("dump is prefix scoped", func(t *testing.T) {
		b := newBackend(t, "test::")
		_ = b.Write(ctx, "a", []byte("1"))
		_ = b.Write(ctx, "::index-of::b", []byte("[]"))

		dump, err := b.Dump(ctx)
		if err != nil {
			t.Fatalf("dump failed: %v", err)
		}
		if len(dump) != 2 {
			t.Fatalf("expected 2 entries, got %d: %v", len(dump), dump)
		}
		if string(dump["a"]) != "1" || string(dump["::index-of::b"]) != "[]" {
			t.Errorf("unexpected dump: %v", dump)
		}
	})

	t.Run("load restores dump", func(t *testing.T) {
		src := newBackend(t, "src::")
		_ = src.Write(ctx, "x", []byte("1"))
		_ = src.Write(ctx, "y", []byte("2"))
		dump, err := src.Dump(ctx)
		if err != nil {
			t.Fatalf("dump failed: %v", err)
		}

		dst := newBackend(t, "dst::")
		if err := dst.Load(ctx, dump); err != nil {
			t.Fatalf("load failed: %v", err)
		}
		got, ok, _ := dst.Read(ctx, "y")
		if !ok || string(got) != "2" {
			t.Errorf("expected restored value 2, got %q (present %v)", got, ok)
		}
	})
}
