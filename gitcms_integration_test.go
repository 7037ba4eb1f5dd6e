package gitcms

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-gitcms/internal/blog"
	"github.com/goliatone/go-gitcms/internal/gitstore"
	"github.com/goliatone/go-gitcms/internal/sitemap"
)

func newTestModule(t *testing.T) (*Module, *gitstore.MemoryStore) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Store.Owner = "example"
	cfg.Store.Repo = "content"
	cfg.Committer = CommitterConfig{Name: "Editor", Email: "editor@example.com"}
	cfg.Locales = LocalesConfig{Default: "en", Supported: []string{"en", "es"}}
	cfg.Sitemap.BaseURL = "https://example.com"

	store := gitstore.NewMemoryStore()
	module, err := New(cfg, WithStore(store))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return module, store
}

func samplePost() *Post {
	return &Post{
		ID:            blog.DeterministicID("hello-world"),
		PrimaryLocale: "en",
		Slugs:         map[string]string{"en": "hello-world", "es": "hola-mundo"},
		Titles:        map[string]string{"en": "Hello World", "es": "Hola Mundo"},
		Translations:  []string{"en", "es"},
		PublishedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestModuleContentLifecycle(t *testing.T) {
	module, _ := newTestModule(t)
	ctx := context.Background()

	saved, err := module.Posts().Save(ctx, samplePost(), module.Authorization())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	bySlug, err := module.Posts().GetBySlug(ctx, "hola-mundo", "es")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if bySlug.ID != saved.ID {
		t.Fatalf("slug lookup returned the wrong post: %s", bySlug.ID)
	}

	url, err := module.Resolver().URLFor(bySlug, "es")
	if err != nil {
		t.Fatalf("URLFor: %v", err)
	}
	if url != "/es/blog/hola-mundo/" {
		t.Fatalf("unexpected url %q", url)
	}

	if err := module.Posts().Delete(ctx, saved.ID, module.Authorization()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := module.Posts().GetByID(ctx, saved.ID); err == nil {
		t.Fatal("expected the post to be gone")
	}
}

func TestModuleSitemapIncludesSavedPosts(t *testing.T) {
	module, _ := newTestModule(t)
	ctx := context.Background()

	if _, err := module.Posts().Save(ctx, samplePost(), module.Authorization()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	records := module.Sitemap().Build(ctx)
	var found bool
	for _, record := range records {
		if record.URL == "https://example.com/es/blog/hola-mundo/" {
			found = true
			if record.Alternates["x-default"] != "https://example.com/en/blog/hello-world/" {
				t.Fatalf("x-default must point at the primary url, got %q", record.Alternates["x-default"])
			}
		}
	}
	if !found {
		t.Fatalf("missing es post record in %+v", records)
	}

	xml := sitemap.WriteXML(records)
	if !strings.Contains(xml, "<urlset") {
		t.Fatalf("unexpected sitemap output:\n%s", xml)
	}
}

func TestModuleMetadataAndTranslations(t *testing.T) {
	module, _ := newTestModule(t)
	ctx := context.Background()

	meta := &Metadata{Titles: map[string]string{"en": "Example Site"}}
	if err := module.Metadata().Save(ctx, meta, module.Authorization()); err != nil {
		t.Fatalf("Metadata Save: %v", err)
	}

	bundle := TranslationBundle{
		"en": {"nav.home": "Home"},
		"es": {"nav.home": "Inicio"},
	}
	if err := module.Translations().Save(ctx, bundle, module.Authorization()); err != nil {
		t.Fatalf("Translations Save: %v", err)
	}

	translator, err := module.Translator(ctx)
	if err != nil {
		t.Fatalf("Translator: %v", err)
	}
	if got := translator.Translate("es", "nav.home"); got != "Inicio" {
		t.Fatalf("expected translated string, got %q", got)
	}
	if got := translator.Translate("es", "nav.blog"); got != "nav.blog" {
		t.Fatalf("expected key echo, got %q", got)
	}
}

func TestModuleMediaUpload(t *testing.T) {
	module, store := newTestModule(t)
	ctx := context.Background()

	asset, err := module.Media().Upload(ctx, "cover.png", []byte("png-bytes"), module.Authorization())
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasPrefix(asset.Path, "media/") {
		t.Fatalf("unexpected asset path %q", asset.Path)
	}
	if _, err := store.Read(ctx, asset.Path); err != nil {
		t.Fatalf("asset must be readable from the store: %v", err)
	}
}

func TestModuleImportFlow(t *testing.T) {
	module, _ := newTestModule(t)
	ctx := context.Background()

	source := []byte("---\ntitle: Imported\nslug: imported\n---\nBody.\n")
	post, err := module.Importer().Import(source)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if _, err := module.Posts().Save(ctx, post, module.Authorization()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	stored, err := module.Posts().GetBySlug(ctx, "imported", "en")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if stored.Titles["en"] != "Imported" {
		t.Fatalf("unexpected stored post %+v", stored)
	}
}
