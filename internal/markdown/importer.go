package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-gitcms/internal/blog"
)

var (
	ErrTitleMissing = errors.New("markdown importer: frontmatter title is required")
	ErrSlugMissing  = errors.New("markdown importer: frontmatter slug is required")
)

// frontMatterEnvelope is the YAML header an imported post file carries.
type frontMatterEnvelope struct {
	Title    string    `yaml:"title"`
	Slug     string    `yaml:"slug"`
	Excerpt  string    `yaml:"excerpt"`
	Locale   string    `yaml:"locale"`
	Date     time.Time `yaml:"date"`
	Keywords []string  `yaml:"keywords"`
	Cover    string    `yaml:"cover"`
}

// Importer turns a Markdown file with YAML frontmatter into a post draft.
// The caller decides whether to persist the result.
type Importer struct {
	defaultLocale string
	renderer      *Renderer
	now           func() time.Time
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithClock overrides the timestamp used when the frontmatter has no date.
func WithClock(now func() time.Time) ImporterOption {
	return func(i *Importer) {
		if now != nil {
			i.now = now
		}
	}
}

// NewImporter constructs an importer. Files without a locale field are
// imported under defaultLocale.
func NewImporter(defaultLocale string, opts ...ImporterOption) *Importer {
	importer := &Importer{
		defaultLocale: strings.ToLower(strings.TrimSpace(defaultLocale)),
		renderer:      NewRenderer(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(importer)
	}
	return importer
}

// Import parses source into a post draft: frontmatter becomes the localized
// fields for the file's locale, the body is rendered to HTML, and the ID is
// derived from the slug so re-importing the same file updates in place.
func (i *Importer) Import(source []byte) (*blog.Post, error) {
	var meta frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, fmt.Errorf("markdown importer: parse frontmatter: %w", err)
	}

	if strings.TrimSpace(meta.Title) == "" {
		return nil, ErrTitleMissing
	}
	if strings.TrimSpace(meta.Slug) == "" {
		return nil, ErrSlugMissing
	}

	locale := strings.ToLower(strings.TrimSpace(meta.Locale))
	if locale == "" {
		locale = i.defaultLocale
	}

	html, err := i.renderer.Render(body)
	if err != nil {
		return nil, err
	}

	publishedAt := meta.Date
	if publishedAt.IsZero() {
		publishedAt = i.now().UTC()
	}

	post := &blog.Post{
		ID:            blog.DeterministicID(meta.Slug),
		PrimaryLocale: locale,
		Slugs:         map[string]string{locale: meta.Slug},
		Titles:        map[string]string{locale: meta.Title},
		Translations:  []string{locale},
		CoverImage:    meta.Cover,
		PublishedAt:   publishedAt,
	}
	if meta.Excerpt != "" {
		post.Excerpts = map[string]string{locale: meta.Excerpt}
	}
	if html != "" {
		post.Bodies = map[string]string{locale: html}
	}
	if len(meta.Keywords) > 0 {
		post.Keywords = map[string][]string{locale: append([]string(nil), meta.Keywords...)}
	}

	return post, nil
}
