package sitemeta

import (
	"context"
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-gitcms/internal/collection"
	"github.com/goliatone/go-gitcms/internal/logging"
	"github.com/goliatone/go-gitcms/pkg/interfaces"
)

// DefaultPath is where the metadata bundle lives inside the content
// repository.
const DefaultPath = "data/site.json"

var ErrMetadataRequired = errors.New("sitemeta: metadata is required")

// Metadata is the site-wide, locale-aware head bundle: titles and
// descriptions keyed by locale, shared branding, and verification tokens.
// It is stored as one JSON document and always replaced as a whole.
type Metadata struct {
	Titles        map[string]string   `json:"titles"`
	Descriptions  map[string]string   `json:"descriptions,omitempty"`
	Keywords      map[string][]string `json:"keywords,omitempty"`
	BaseURL       string              `json:"base_url,omitempty"`
	Author        string              `json:"author,omitempty"`
	DefaultImage  string              `json:"default_image,omitempty"`
	SocialLinks   map[string]string   `json:"social_links,omitempty"`
	Verifications map[string]string   `json:"verifications,omitempty"`
}

// Validate reports structural problems before the bundle reaches the store.
func (m *Metadata) Validate() error {
	errs := validation.Errors{}

	if len(m.Titles) == 0 {
		errs["titles"] = validation.NewError("titles_required", "at least one locale title is required")
	}
	for locale, title := range m.Titles {
		if strings.TrimSpace(title) == "" {
			errs["titles."+locale] = validation.NewError("title_blank", "locale title cannot be blank")
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Title returns the title for locale, falling back to fallbackLocale.
func (m *Metadata) Title(locale, fallbackLocale string) string {
	if title, ok := m.Titles[locale]; ok && title != "" {
		return title
	}
	return m.Titles[fallbackLocale]
}

// Description returns the description for locale, falling back to
// fallbackLocale. Missing in both means empty.
func (m *Metadata) Description(locale, fallbackLocale string) string {
	if desc, ok := m.Descriptions[locale]; ok && desc != "" {
		return desc
	}
	return m.Descriptions[fallbackLocale]
}

// Config parameterises the repository.
type Config struct {
	// Path inside the content repository. Defaults to DefaultPath.
	Path string
	// Retry overrides the write-conflict retry policy.
	Retry collection.RetryConfig
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Repository reads and replaces the site metadata document.
type Repository struct {
	doc    *collection.DocumentRepository[*Metadata]
	logger interfaces.Logger
}

// NewRepository constructs a metadata repository over the given store.
func NewRepository(store interfaces.FileStore, cfg Config, opts ...Option) (*Repository, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}

	repo := &Repository{logger: logging.NoOp()}
	for _, opt := range opts {
		opt(repo)
	}

	doc, err := collection.NewDocumentRepository[*Metadata](store, path,
		collection.WithDocumentRetry[*Metadata](cfg.Retry),
		collection.WithDocumentLogger[*Metadata](repo.logger),
	)
	if err != nil {
		return nil, err
	}
	repo.doc = doc

	return repo, nil
}

// Get returns the stored bundle. A site that never saved metadata gets an
// empty bundle, not an error.
func (r *Repository) Get(ctx context.Context) (*Metadata, error) {
	meta, exists, err := r.doc.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !exists || meta == nil {
		return &Metadata{Titles: map[string]string{}}, nil
	}
	return meta, nil
}

// Save validates and replaces the whole bundle.
func (r *Repository) Save(ctx context.Context, meta *Metadata, auth interfaces.WriteAuthorization) error {
	if meta == nil {
		return ErrMetadataRequired
	}
	if err := meta.Validate(); err != nil {
		return err
	}

	if err := r.doc.Put(ctx, meta, auth, "content: update site metadata"); err != nil {
		return err
	}
	r.logger.Info("sitemeta.saved", "locales", len(meta.Titles))
	return nil
}
