package store

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestSQLiteStoreAttributes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	if err := store.SetAttribute(ctx, "user:alice", "role", "admin", 0); err != nil {
		t.Fatalf("SetAttribute failed: %v", err)
	}
	if err := store.SetAttribute(ctx, "user:alice", "password", "hash", 0); err != nil {
		t.Fatalf("SetAttribute failed: %v", err)
	}

	val, ok, err := store.GetAttribute(ctx, "user:alice", "role")
	if err != nil || !ok || val != "admin" {
		t.Fatalf("GetAttribute = %q, %v, %v", val, ok, err)
	}

	attrs, err := store.GetAllAttributes(ctx, "user:alice")
	if err != nil {
		t.Fatalf("GetAllAttributes failed: %v", err)
	}
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}

	if err := store.DeleteAttribute(ctx, "user:alice", "password"); err != nil {
		t.Fatalf("DeleteAttribute failed: %v", err)
	}
	if _, ok, _ := store.GetAttribute(ctx, "user:alice", "password"); ok {
		t.Fatal("attribute survived deletion")
	}

	if err := store.DeleteEntity(ctx, "user:alice"); err != nil {
		t.Fatalf("DeleteEntity failed: %v", err)
	}
	attrs, err = store.GetAllAttributes(ctx, "user:alice")
	if err != nil {
		t.Fatalf("GetAllAttributes failed: %v", err)
	}
	if len(attrs) != 0 {
		t.Fatalf("expected empty entity, got %v", attrs)
	}
}

func TestSQLiteStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	if err := store.SetAttribute(ctx, "user:bob", "role", "user", 0); err != nil {
		t.Fatalf("SetAttribute failed: %v", err)
	}
	if err := store.SetAttribute(ctx, "user:bob", "role", "admin", 0); err != nil {
		t.Fatalf("SetAttribute failed: %v", err)
	}
	val, _, err := store.GetAttribute(ctx, "user:bob", "role")
	if err != nil {
		t.Fatalf("GetAttribute failed: %v", err)
	}
	if val != "admin" {
		t.Fatalf("expected overwritten value, got %q", val)
	}
}

func TestSQLiteStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	if err := store.SetAttribute(ctx, "history:s1", "message:1", "{}", time.Millisecond); err != nil {
		t.Fatalf("SetAttribute failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	attrs, err := store.GetAllAttributes(ctx, "history:s1")
	if err != nil {
		t.Fatalf("GetAllAttributes failed: %v", err)
	}
	if len(attrs) != 0 {
		t.Fatalf("expected expired entity, got %v", attrs)
	}
}

func TestSQLiteStoreScanAndSets(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	for _, name := range []string{"user:alice", "user:bob", "model:llama-7b"} {
		if err := store.SetAttribute(ctx, name, "x", "1", 0); err != nil {
			t.Fatalf("SetAttribute failed: %v", err)
		}
	}
	users, err := store.ScanEntities(ctx, "user:")
	if err != nil {
		t.Fatalf("ScanEntities failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 user entities, got %v", users)
	}

	if err := store.AddToSet(ctx, "models:index", "llama-7b"); err != nil {
		t.Fatalf("AddToSet failed: %v", err)
	}
	if err := store.AddToSet(ctx, "models:index", "llama-7b"); err != nil {
		t.Fatalf("AddToSet duplicate failed: %v", err)
	}
	members, err := store.SetMembers(ctx, "models:index")
	if err != nil {
		t.Fatalf("SetMembers failed: %v", err)
	}
	if len(members) != 1 || members[0] != "llama-7b" {
		t.Fatalf("unexpected members: %v", members)
	}
	if err := store.RemoveFromSet(ctx, "models:index", "llama-7b"); err != nil {
		t.Fatalf("RemoveFromSet failed: %v", err)
	}
	members, _ = store.SetMembers(ctx, "models:index")
	if len(members) != 0 {
		t.Fatalf("expected empty set, got %v", members)
	}
}
