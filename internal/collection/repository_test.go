package collection

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-gitcms/internal/gitstore"
	"github.com/goliatone/go-gitcms/pkg/interfaces"
)

type testDoc struct {
	ID          string    `json:"id"`
	Body        string    `json:"body,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func testHandlers() Handlers[testDoc] {
	return Handlers[testDoc]{
		Resource: "doc",
		ID:       func(d testDoc) string { return d.ID },
		Less: func(a, b testDoc) bool {
			return a.PublishedAt.After(b.PublishedAt)
		},
		Touch: func(d testDoc, now time.Time) testDoc {
			d.UpdatedAt = now
			return d
		},
		PublishedAt: func(d testDoc) time.Time { return d.PublishedAt },
	}
}

func testAuth() interfaces.WriteAuthorization {
	return interfaces.WriteAuthorization{
		Capability: "editor-capability",
		Committer: interfaces.Committer{
			Name:  "Editor",
			Email: "editor@example.com",
		},
	}
}

func newTestRepository(t *testing.T, store *gitstore.MemoryStore, opts ...Option[testDoc]) *Repository[testDoc] {
	t.Helper()
	repo, err := NewRepository(store, "data/docs.json", testHandlers(), opts...)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	return repo
}

func mustEncode(t *testing.T, docs []testDoc) []byte {
	t.Helper()
	encoded, err := NewCodec(testHandlers().Less).Encode(docs)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	return encoded
}

func TestCodecRoundTripSortsNewestFirst(t *testing.T) {
	codec := NewCodec(testHandlers().Less)

	older := testDoc{ID: "a", PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := testDoc{ID: "b", PublishedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}

	encoded, err := codec.Encode([]testDoc{older, newer})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := codec.Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded) != 2 || decoded[0].ID != "b" || decoded[1].ID != "a" {
		t.Fatalf("expected newest-first order [b a], got %+v", decoded)
	}
}

func TestCodecDecodeEmptyIsEmptyCollection(t *testing.T) {
	codec := NewCodec[testDoc](nil)

	for _, content := range [][]byte{nil, {}, []byte("\n  \n")} {
		docs, err := codec.Decode(content)
		if err != nil {
			t.Fatalf("Decode(%q): %v", content, err)
		}
		if len(docs) != 0 {
			t.Fatalf("expected empty collection, got %+v", docs)
		}
	}
}

func TestCodecDecodeCorrupt(t *testing.T) {
	codec := NewCodec[testDoc](nil)
	if _, err := codec.Decode([]byte(`{"not":"an array"`)); !IsCorrupt(err) {
		t.Fatalf("expected corrupt-collection error, got %v", err)
	}
}

func TestRepositorySaveThenGetByID(t *testing.T) {
	ctx := context.Background()
	store := gitstore.NewMemoryStore()
	stamp := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	repo := newTestRepository(t, store, WithClock[testDoc](func() time.Time { return stamp }))

	doc := testDoc{
		ID:          "a",
		Body:        "hello",
		PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if _, err := repo.Save(ctx, doc, testAuth(), "save a"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	fetched, err := repo.GetByID(ctx, "a")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.Body != doc.Body || !fetched.PublishedAt.Equal(doc.PublishedAt) {
		t.Fatalf("fetched document diverged: %+v", fetched)
	}
	if !fetched.UpdatedAt.Equal(stamp) {
		t.Fatalf("expected refreshed UpdatedAt %v, got %v", stamp, fetched.UpdatedAt)
	}
}

func TestRepositorySaveOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := gitstore.NewMemoryStore()
	repo := newTestRepository(t, store)

	older := testDoc{ID: "a", PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	newer := testDoc{ID: "b", PublishedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}

	if _, err := repo.Save(ctx, older, testAuth(), "save a"); err != nil {
		t.Fatalf("Save a: %v", err)
	}
	if _, err := repo.Save(ctx, newer, testAuth(), "save b"); err != nil {
		t.Fatalf("Save b: %v", err)
	}

	docs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "b" || docs[1].ID != "a" {
		t.Fatalf("expected [b a], got %+v", docs)
	}
}

func TestRepositorySaveAppendRequiresPublishedAt(t *testing.T) {
	repo := newTestRepository(t, gitstore.NewMemoryStore())

	_, err := repo.Save(context.Background(), testDoc{ID: "a"}, testAuth(), "save a")
	if err != ErrPublishedAtRequired {
		t.Fatalf("expected ErrPublishedAtRequired, got %v", err)
	}
}

func TestRepositorySaveRequiresAuthorization(t *testing.T) {
	repo := newTestRepository(t, gitstore.NewMemoryStore())

	doc := testDoc{ID: "a", PublishedAt: time.Now()}
	if _, err := repo.Save(context.Background(), doc, interfaces.WriteAuthorization{}, "save"); err != ErrAuthorizationRequired {
		t.Fatalf("expected ErrAuthorizationRequired, got %v", err)
	}
}

func TestRepositoryConcurrentSavesBothLand(t *testing.T) {
	ctx := context.Background()
	store := gitstore.NewMemoryStore()
	repo := newTestRepository(t, store)

	docA := testDoc{ID: "a", PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	if _, err := repo.Save(ctx, docA, testAuth(), "save a"); err != nil {
		t.Fatalf("Save a: %v", err)
	}

	// A concurrent editor lands doc "c" between our read and our write; the
	// first write attempt must lose, the retry must re-read and keep "c".
	docC := testDoc{ID: "c", PublishedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	store.BeforeWrite = func(path string) {
		store.ApplyRacingWrite(path, func([]byte) []byte {
			return mustEncode(t, []testDoc{docA, docC})
		})
	}

	docB := testDoc{ID: "b", PublishedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	if _, err := repo.Save(ctx, docB, testAuth(), "save b"); err != nil {
		t.Fatalf("Save b: %v", err)
	}

	docs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %+v", docs)
	}
	if docs[0].ID != "b" || docs[1].ID != "c" || docs[2].ID != "a" {
		t.Fatalf("expected [b c a], got %+v", docs)
	}
}

func TestRepositoryWriteConflictAfterExhaustedRetries(t *testing.T) {
	ctx := context.Background()
	store := gitstore.NewMemoryStore()
	store.Seed("data/docs.json", mustEncode(t, []testDoc{
		{ID: "a", PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}))

	repo := newTestRepository(t, store,
		WithRetry[testDoc](RetryConfig{Attempts: 2, Backoff: time.Millisecond}))

	// Every attempt races: the hook re-arms itself so the token never matches.
	counter := 0
	var relentless func(string)
	relentless = func(path string) {
		counter++
		store.ApplyRacingWrite(path, func([]byte) []byte {
			return mustEncode(t, []testDoc{
				{ID: "a", Body: "rev", PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, counter, time.UTC)},
			})
		})
		store.BeforeWrite = relentless
	}
	store.BeforeWrite = relentless

	doc := testDoc{ID: "b", PublishedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	_, err := repo.Save(ctx, doc, testAuth(), "save b")
	if !IsWriteConflict(err) {
		t.Fatalf("expected write-conflict error, got %v", err)
	}
}

func TestRepositoryDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := gitstore.NewMemoryStore()
	repo := newTestRepository(t, store)

	doc := testDoc{ID: "a", PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	if _, err := repo.Save(ctx, doc, testAuth(), "save a"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	writesAfterSave := store.Writes()

	if err := repo.Delete(ctx, "missing", testAuth(), "delete missing"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
	if err := repo.Delete(ctx, "missing", testAuth(), "delete missing again"); err != nil {
		t.Fatalf("Delete missing twice: %v", err)
	}
	if store.Writes() != writesAfterSave {
		t.Fatal("no-op deletes must leave the store untouched")
	}

	if err := repo.Delete(ctx, "a", testAuth(), "delete a"); err != nil {
		t.Fatalf("Delete a: %v", err)
	}
	if _, err := repo.GetByID(ctx, "a"); !IsNotFound(err) {
		t.Fatalf("expected not-found after delete, got %v", err)
	}
}

func TestRepositoryFirstWriteRaceRecovers(t *testing.T) {
	ctx := context.Background()
	store := gitstore.NewMemoryStore()
	repo := newTestRepository(t, store)

	// Another first-writer creates the collection between our (empty) read
	// and our create; the tokenless write fails and the retry re-reads.
	docA := testDoc{ID: "a", PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store.BeforeWrite = func(path string) {
		store.ApplyRacingWrite(path, func([]byte) []byte {
			return mustEncode(t, []testDoc{docA})
		})
	}

	docB := testDoc{ID: "b", PublishedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
	if _, err := repo.Save(ctx, docB, testAuth(), "save b"); err != nil {
		t.Fatalf("Save b: %v", err)
	}

	docs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "b" || docs[1].ID != "a" {
		t.Fatalf("expected [b a], got %+v", docs)
	}
}
