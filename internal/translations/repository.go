package translations

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-gitcms/internal/collection"
	"github.com/goliatone/go-gitcms/internal/logging"
	"github.com/goliatone/go-gitcms/pkg/interfaces"
)

// DefaultPath is where the translation bundle lives inside the content
// repository.
const DefaultPath = "data/translations.json"

var ErrBundleRequired = errors.New("translations: bundle is required")

// Bundle maps locale -> key -> translated string. The whole bundle is one
// JSON document replaced atomically on save.
type Bundle map[string]map[string]string

// Locales lists the locales the bundle carries strings for.
func (b Bundle) Locales() []string {
	locales := make([]string, 0, len(b))
	for locale := range b {
		locales = append(locales, locale)
	}
	return locales
}

// Lookup returns the string for key under locale and whether it exists.
func (b Bundle) Lookup(locale, key string) (string, bool) {
	entries, ok := b[locale]
	if !ok {
		return "", false
	}
	value, ok := entries[key]
	return value, ok && value != ""
}

// Set installs a key under locale, allocating the locale map if needed.
func (b Bundle) Set(locale, key, value string) {
	if b[locale] == nil {
		b[locale] = map[string]string{}
	}
	b[locale][key] = value
}

// normalize lowercases locale codes so lookups behave the same way the
// content repositories do.
func (b Bundle) normalize() Bundle {
	out := make(Bundle, len(b))
	for locale, entries := range b {
		lowered := strings.ToLower(strings.TrimSpace(locale))
		if lowered == "" {
			continue
		}
		if out[lowered] == nil {
			out[lowered] = make(map[string]string, len(entries))
		}
		for key, value := range entries {
			out[lowered][key] = value
		}
	}
	return out
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

// Repository reads and replaces the UI translation bundle.
type Repository struct {
	doc    *collection.DocumentRepository[Bundle]
	logger interfaces.Logger
}

// NewRepository constructs a translation repository over the given store.
func NewRepository(store interfaces.FileStore, cfg Config, opts ...Option) (*Repository, error) {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}

	repo := &Repository{logger: logging.NoOp()}
	for _, opt := range opts {
		opt(repo)
	}

	doc, err := collection.NewDocumentRepository[Bundle](store, path,
		collection.WithDocumentRetry[Bundle](cfg.Retry),
		collection.WithDocumentLogger[Bundle](repo.logger),
	)
	if err != nil {
		return nil, err
	}
	repo.doc = doc

	return repo, nil
}

// Get returns the stored bundle, or an empty one when nothing was saved yet.
func (r *Repository) Get(ctx context.Context) (Bundle, error) {
	bundle, exists, err := r.doc.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !exists || bundle == nil {
		return Bundle{}, nil
	}
	return bundle.normalize(), nil
}

// Save replaces the whole bundle.
func (r *Repository) Save(ctx context.Context, bundle Bundle, auth interfaces.WriteAuthorization) error {
	if bundle == nil {
		return ErrBundleRequired
	}
	normalized := bundle.normalize()

	if err := r.doc.Put(ctx, normalized, auth, "content: update translations"); err != nil {
		return err
	}
	r.logger.Info("translations.saved", "locales", len(normalized))
	return nil
}
