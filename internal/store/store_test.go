package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"go.uber.org/zap/zaptest"
)

// exerciseKV runs the behaviour every backend must share.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, err := kv.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := kv.Set(ctx, "weatherFavorites", []byte(`["Paris"]`)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, err := kv.Get(ctx, "weatherFavorites")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != `["Paris"]` {
		t.Fatalf("unexpected value %q", got)
	}

	if err := kv.Set(ctx, "weatherFavorites", []byte(`["Paris","Rome"]`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	got, err = kv.Get(ctx, "weatherFavorites")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != `["Paris","Rome"]` {
		t.Fatalf("unexpected value after overwrite %q", got)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseKV(t, s)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	v := []byte("abc")
	if err := s.Set(ctx, "k", v); err != nil {
		t.Fatal(err)
	}
	v[0] = 'x'

	got, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value was aliased: %q", got)
	}
}

func TestSQLiteStoreInMemory(t *testing.T) {
	s, err := NewSQLiteStore(":memory:", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer s.Close()
	exerciseKV(t, s)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := s.Set(ctx, "weatherFavorites", []byte(`["Oslo"]`)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	reopened, err := NewSQLiteStore(path, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "weatherFavorites")
	if err != nil || string(got) != `["Oslo"]` {
		t.Fatalf("expected persisted value, got %q, %v", got, err)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	db, _ := strconv.Atoi(os.Getenv("REDIS_TEST_DB"))

	s, err := NewRedisStore(addr, os.Getenv("REDIS_TEST_PASSWORD"), db, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer s.Close()

	s.prefix = "test:" + t.Name() + ":"
	t.Cleanup(func() {
		s.client.Del(context.Background(), s.prefix+"weatherFavorites")
	})
	exerciseKV(t, s)
}
