// internal/store/sqlite_test.go
package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newSQLiteBackend(t *testing.T) *SQLiteBackend {
	t.Helper()
	b, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestSQLiteBackend_PutAndGet(t *testing.T) {
	b := newSQLiteBackend(t)
	ctx := context.Background()

	if err := b.Put(ctx, "scan_history", []byte(`[{"id":"x"}]`)); err != nil {
		t.Fatal(err)
	}
	data, err := b.Get(ctx, "scan_history")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `[{"id":"x"}]` {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestSQLiteBackend_PutReplaces(t *testing.T) {
	b := newSQLiteBackend(t)
	ctx := context.Background()

	if err := b.Put(ctx, "scan_history", []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := b.Put(ctx, "scan_history", []byte("second")); err != nil {
		t.Fatal(err)
	}
	data, err := b.Get(ctx, "scan_history")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("expected replaced value, got %s", data)
	}
}

func TestSQLiteBackend_GetMissing(t *testing.T) {
	b := newSQLiteBackend(t)

	_, err := b.Get(context.Background(), "absent")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteBackend_DeleteIdempotent(t *testing.T) {
	b := newSQLiteBackend(t)
	ctx := context.Background()

	if err := b.Put(ctx, "scan_history", []byte("[]")); err != nil {
		t.Fatal(err)
	}
	if err := b.Delete(ctx, "scan_history"); err != nil {
		t.Fatal(err)
	}
	if err := b.Delete(ctx, "scan_history"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Get(ctx, "scan_history"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteBackend_ReopenSeesData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	b, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Put(ctx, "scan_history", []byte("persisted")); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := NewSQLiteBackend(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	data, err := reopened.Get(ctx, "scan_history")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "persisted" {
		t.Errorf("unexpected data after reopen: %s", data)
	}
}
