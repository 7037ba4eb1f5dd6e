package media

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-gitcms/internal/gitstore"
	"github.com/goliatone/go-gitcms/pkg/interfaces"
)

func editorAuth() interfaces.WriteAuthorization {
	return interfaces.WriteAuthorization{
		Capability: "content:write",
		Committer:  interfaces.Committer{Name: "Editor", Email: "editor@example.com"},
	}
}

func newTestUploader(t *testing.T, cfg Config) (*Uploader, *gitstore.MemoryStore) {
	t.Helper()
	store := gitstore.NewMemoryStore()
	uploader, err := NewUploader(store, cfg,
		WithClock(func() time.Time { return time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC) }))
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}
	return uploader, store
}

func TestUploadCommitsUnderGeneratedName(t *testing.T) {
	uploader, store := newTestUploader(t, Config{RawBaseURL: "https://raw.example.com/owner/repo/main"})

	asset, err := uploader.Upload(context.Background(), "cover.PNG", []byte("png-bytes"), editorAuth())
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	if !strings.HasPrefix(asset.Path, "media/2024/07/") {
		t.Fatalf("expected timestamped directory, got %q", asset.Path)
	}
	if !strings.HasSuffix(asset.Path, ".png") {
		t.Fatalf("extension must be kept lowercased, got %q", asset.Path)
	}
	if asset.URL != "https://raw.example.com/owner/repo/main/"+asset.Path {
		t.Fatalf("unexpected url %q", asset.URL)
	}

	file, err := store.Read(context.Background(), asset.Path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(file.Content) != "png-bytes" {
		t.Fatalf("stored bytes differ: %q", file.Content)
	}
}

func TestUploadIdenticalBytesIsIdempotent(t *testing.T) {
	uploader, store := newTestUploader(t, Config{})

	first, err := uploader.Upload(context.Background(), "cover.png", []byte("png-bytes"), editorAuth())
	if err != nil {
		t.Fatalf("first Upload: %v", err)
	}
	second, err := uploader.Upload(context.Background(), "cover.png", []byte("png-bytes"), editorAuth())
	if err != nil {
		t.Fatalf("second Upload: %v", err)
	}

	if first.Path != second.Path {
		t.Fatalf("identical bytes must map to identical names: %q vs %q", first.Path, second.Path)
	}
	if store.Writes() != 1 {
		t.Fatalf("expected a single accepted write, got %d", store.Writes())
	}
}

func TestUploadDistinctBytesGetDistinctNames(t *testing.T) {
	uploader, _ := newTestUploader(t, Config{})

	first, err := uploader.Upload(context.Background(), "a.png", []byte("aaaa"), editorAuth())
	if err != nil {
		t.Fatalf("Upload a: %v", err)
	}
	second, err := uploader.Upload(context.Background(), "b.png", []byte("bbbb"), editorAuth())
	if err != nil {
		t.Fatalf("Upload b: %v", err)
	}
	if first.Path == second.Path {
		t.Fatalf("distinct content collided on %q", first.Path)
	}
}

func TestUploadValidatesInput(t *testing.T) {
	uploader, _ := newTestUploader(t, Config{})

	if _, err := uploader.Upload(context.Background(), "cover.png", nil, editorAuth()); err != ErrContentRequired {
		t.Fatalf("expected ErrContentRequired, got %v", err)
	}
	if _, err := uploader.Upload(context.Background(), "  ", []byte("x"), editorAuth()); err != ErrFilenameRequired {
		t.Fatalf("expected ErrFilenameRequired, got %v", err)
	}
	if _, err := uploader.Upload(context.Background(), "cover.png", []byte("x"), interfaces.WriteAuthorization{}); err == nil {
		t.Fatal("expected authorization error")
	}
}
