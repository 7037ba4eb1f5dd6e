package gitstore

import (
	"context"
	"testing"
)

func TestMemoryStoreTokenRotatesWithContent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	created, err := store.Write(ctx, "data/posts.json", []byte("[]"), testAuthorization())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	read, err := store.Read(ctx, "data/posts.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if read.Token != created.Token {
		t.Fatalf("token mismatch after read: %q != %q", read.Token, created.Token)
	}

	opts := testAuthorization()
	opts.Token = read.Token
	updated, err := store.Write(ctx, "data/posts.json", []byte(`[{"id":"a"}]`), opts)
	if err != nil {
		t.Fatalf("Write update: %v", err)
	}
	if updated.Token == created.Token {
		t.Fatal("token should rotate when content changes")
	}
}

func TestMemoryStoreConflictOnStaleToken(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Seed("data/posts.json", []byte("[]"))

	opts := testAuthorization()
	opts.Token = "stale"
	if _, err := store.Write(ctx, "data/posts.json", []byte("{}"), opts); !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestMemoryStoreFirstWriterRace(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Seed("data/posts.json", []byte("[]"))

	if _, err := store.Write(ctx, "data/posts.json", []byte("[]"), testAuthorization()); !IsAlreadyExists(err) {
		t.Fatalf("expected already-exists, got %v", err)
	}
}

func TestMemoryStoreReadMissingPath(t *testing.T) {
	store := NewMemoryStore()
	if _, err := store.Read(context.Background(), "data/missing.json"); !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
