package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gitcms "github.com/goliatone/go-gitcms"
	"github.com/goliatone/go-gitcms/internal/blog"
	"github.com/goliatone/go-gitcms/internal/gitstore"
)

func newTestDeps(t *testing.T) (*Deps, *bytes.Buffer) {
	t.Helper()

	cfg := gitcms.DefaultConfig()
	cfg.Store.Owner = "example"
	cfg.Store.Repo = "content"
	cfg.Committer = gitcms.CommitterConfig{Name: "Editor", Email: "editor@example.com"}
	cfg.Locales = gitcms.LocalesConfig{Default: "en", Supported: []string{"en", "es"}}
	cfg.Sitemap.BaseURL = "https://example.com"

	module, err := gitcms.New(cfg, gitcms.WithStore(gitstore.NewMemoryStore()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	out := &bytes.Buffer{}
	return &Deps{Module: module, Out: out}, out
}

func runCommand(t *testing.T, deps *Deps, args ...string) error {
	t.Helper()
	root := NewRootCmd(deps)
	root.SetArgs(args)
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func seedPost(t *testing.T, deps *Deps) *gitcms.Post {
	t.Helper()
	post := &gitcms.Post{
		ID:            blog.DeterministicID("hello-world"),
		PrimaryLocale: "en",
		Slugs:         map[string]string{"en": "hello-world"},
		Titles:        map[string]string{"en": "Hello World"},
		Translations:  []string{"en"},
		PublishedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	saved, err := deps.Module.Posts().Save(context.Background(), post, deps.Module.Authorization())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	return saved
}

func TestListCommandPrintsPosts(t *testing.T) {
	deps, out := newTestDeps(t)
	seedPost(t, deps)

	if err := runCommand(t, deps, "list"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "Hello World") {
		t.Fatalf("missing title in output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "/en/blog/hello-world/") {
		t.Fatalf("missing url in output:\n%s", out.String())
	}
}

func TestGetCommandByIDAndSlug(t *testing.T) {
	deps, out := newTestDeps(t)
	post := seedPost(t, deps)

	if err := runCommand(t, deps, "get", post.ID.String()); err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if !strings.Contains(out.String(), `"hello-world"`) {
		t.Fatalf("missing slug in json output:\n%s", out.String())
	}

	out.Reset()
	if err := runCommand(t, deps, "get", "hello-world"); err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if !strings.Contains(out.String(), post.ID.String()) {
		t.Fatalf("missing id in json output:\n%s", out.String())
	}
}

func TestDeleteCommandRemovesPost(t *testing.T) {
	deps, _ := newTestDeps(t)
	post := seedPost(t, deps)

	if err := runCommand(t, deps, "delete", post.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := deps.Module.Posts().GetByID(context.Background(), post.ID); err == nil {
		t.Fatal("expected the post to be gone")
	}
}

func TestDeleteCommandRejectsInvalidID(t *testing.T) {
	deps, _ := newTestDeps(t)

	if err := runCommand(t, deps, "delete", "not-a-uuid"); err == nil {
		t.Fatal("expected an error for a malformed id")
	}
}

func TestImportCommandCreatesPost(t *testing.T) {
	deps, out := newTestDeps(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "imported-post.md")
	source := "---\ntitle: Imported Post\nslug: imported-post\n---\nBody text.\n"
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := runCommand(t, deps, "import", path); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out.String(), "imported "+path) {
		t.Fatalf("missing confirmation in output:\n%s", out.String())
	}

	if _, err := deps.Module.Posts().GetBySlug(context.Background(), "imported-post", "en"); err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
}

func TestSitemapCommandWritesXML(t *testing.T) {
	deps, out := newTestDeps(t)
	seedPost(t, deps)

	if err := runCommand(t, deps, "sitemap"); err != nil {
		t.Fatalf("sitemap: %v", err)
	}
	for _, fragment := range []string{
		"<urlset",
		"https://example.com/en/blog/hello-world/",
	} {
		if !strings.Contains(out.String(), fragment) {
			t.Fatalf("missing %q in output:\n%s", fragment, out.String())
		}
	}
}

func TestLoadConfigMapsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gitcms.yaml")
	data := `
store:
  owner: example
  repo: content
  branch: publish
  token: secret
committer:
  name: Editor
  email: editor@example.com
locales:
  default: en
  supported: [en, es]
retry:
  attempts: 5
  backoff: 20ms
sitemap:
  base_url: https://example.com
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Store.Branch != "publish" {
		t.Fatalf("expected branch override, got %q", cfg.Store.Branch)
	}
	if cfg.Retry.Attempts != 5 || cfg.Retry.Backoff != 20*time.Millisecond {
		t.Fatalf("unexpected retry config: %+v", cfg.Retry)
	}
	if len(cfg.Locales.Supported) != 2 {
		t.Fatalf("unexpected locales: %+v", cfg.Locales)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadConfigRejectsBadBackoff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gitcms.yaml")
	if err := os.WriteFile(path, []byte("retry:\n  backoff: soon\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected a parse error for a malformed backoff")
	}
}
