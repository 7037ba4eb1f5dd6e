// Package gitcms is a git-backed, localized content store: posts, site
// metadata, and UI translations live as JSON documents inside a git
// repository reached through its contents API, with optimistic concurrency
// on every write.
package gitcms

import (
	"context"

	"github.com/goliatone/go-gitcms/internal/blog"
	"github.com/goliatone/go-gitcms/internal/gitstore"
	"github.com/goliatone/go-gitcms/internal/locales"
	"github.com/goliatone/go-gitcms/internal/logging"
	"github.com/goliatone/go-gitcms/internal/logging/gologger"
	"github.com/goliatone/go-gitcms/internal/markdown"
	"github.com/goliatone/go-gitcms/internal/media"
	"github.com/goliatone/go-gitcms/internal/sitemap"
	"github.com/goliatone/go-gitcms/internal/sitemeta"
	"github.com/goliatone/go-gitcms/internal/translations"
	"github.com/goliatone/go-gitcms/pkg/interfaces"
)

// WriteCapability is the capability string stamped on the authorization the
// module derives from its configured committer.
const WriteCapability = "content:write"

// Post exports the content document type.
type Post = blog.Post

// Metadata exports the site metadata bundle type.
type Metadata = sitemeta.Metadata

// TranslationBundle exports the UI translation bundle type.
type TranslationBundle = translations.Bundle

// SitemapRecord exports the sitemap entry type.
type SitemapRecord = sitemap.Record

// MediaAsset exports the upload result type.
type MediaAsset = media.Asset

// Option overrides module wiring, primarily for embedding and tests.
type Option func(*Module)

// WithStore substitutes the remote store client, e.g. with an in-memory
// store for tests.
func WithStore(store interfaces.FileStore) Option {
	return func(m *Module) {
		if store != nil {
			m.store = store
		}
	}
}

// WithLoggerProvider substitutes the logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(m *Module) {
		if provider != nil {
			m.provider = provider
		}
	}
}

// Module is the runtime facade: it owns the store client and hands out the
// configured repositories and services.
type Module struct {
	cfg      Config
	provider interfaces.LoggerProvider
	store    interfaces.FileStore
	auth     interfaces.WriteAuthorization

	posts    *blog.Repository
	metadata *sitemeta.Repository
	bundles  *translations.Repository
	resolver *locales.Resolver
	sitemap  *sitemap.Builder
	uploader *media.Uploader
	importer *markdown.Importer
}

// New constructs a module from configuration. Every component shares the
// same store client and write authorization.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Module{
		cfg: cfg,
		auth: interfaces.WriteAuthorization{
			Capability: WriteCapability,
			Committer: interfaces.Committer{
				Name:  cfg.Committer.Name,
				Email: cfg.Committer.Email,
			},
		},
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.provider == nil {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
		})
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}

	if m.store == nil {
		client, err := gitstore.New(gitstore.Config{
			Endpoint: cfg.Store.Endpoint,
			Owner:    cfg.Store.Owner,
			Repo:     cfg.Store.Repo,
			Branch:   cfg.Store.Branch,
			Token:    cfg.Store.Token,
			Logger:   logging.StoreLogger(m.provider),
		})
		if err != nil {
			return nil, err
		}
		m.store = client
	}

	resolver, err := locales.NewResolver(locales.Config{
		DefaultLocale: cfg.Locales.Default,
		Locales:       cfg.Locales.Supported,
		Routes:        cfg.Routes,
	})
	if err != nil {
		return nil, err
	}
	m.resolver = resolver

	posts, err := blog.NewRepository(m.store, blog.Config{
		Path:  cfg.Paths.Posts,
		Retry: cfg.CollectionRetry(),
	}, blog.WithLogger(logging.BlogLogger(m.provider)))
	if err != nil {
		return nil, err
	}
	m.posts = posts

	metadata, err := sitemeta.NewRepository(m.store, sitemeta.Config{
		Path:  cfg.Paths.SiteMetadata,
		Retry: cfg.CollectionRetry(),
	}, sitemeta.WithLogger(logging.MetadataLogger(m.provider)))
	if err != nil {
		return nil, err
	}
	m.metadata = metadata

	bundles, err := translations.NewRepository(m.store, translations.Config{
		Path:  cfg.Paths.Translations,
		Retry: cfg.CollectionRetry(),
	}, translations.WithLogger(logging.TranslationsLogger(m.provider)))
	if err != nil {
		return nil, err
	}
	m.bundles = bundles

	uploader, err := media.NewUploader(m.store, media.Config{
		Dir:        cfg.Paths.MediaDir,
		RawBaseURL: cfg.Media.RawBaseURL,
	}, media.WithLogger(logging.MediaLogger(m.provider)))
	if err != nil {
		return nil, err
	}
	m.uploader = uploader

	m.sitemap = sitemap.NewBuilder(m.posts, m.resolver, sitemap.Config{
		BaseURL: cfg.Sitemap.BaseURL,
	}, sitemap.WithLogger(logging.SitemapLogger(m.provider)))

	m.importer = markdown.NewImporter(cfg.Locales.Default)

	return m, nil
}

// Store exposes the underlying file store for advanced integrations.
func (m *Module) Store() interfaces.FileStore {
	return m.store
}

// Authorization returns the write authorization derived from the configured
// committer.
func (m *Module) Authorization() interfaces.WriteAuthorization {
	return m.auth
}

// Posts returns the content repository.
func (m *Module) Posts() *blog.Repository {
	return m.posts
}

// Metadata returns the site metadata repository.
func (m *Module) Metadata() *sitemeta.Repository {
	return m.metadata
}

// Translations returns the UI translation repository.
func (m *Module) Translations() *translations.Repository {
	return m.bundles
}

// Translator snapshots the current translation bundle for lookups with
// default-locale fallback.
func (m *Module) Translator(ctx context.Context) (*translations.Translator, error) {
	bundle, err := m.bundles.Get(ctx)
	if err != nil {
		return nil, err
	}
	return translations.NewTranslator(bundle, m.cfg.Locales.Default,
		translations.WithTranslatorLogger(logging.TranslationsLogger(m.provider))), nil
}

// Resolver returns the locale and URL resolver.
func (m *Module) Resolver() *locales.Resolver {
	return m.resolver
}

// Sitemap returns the sitemap builder.
func (m *Module) Sitemap() *sitemap.Builder {
	return m.sitemap
}

// Media returns the asset uploader.
func (m *Module) Media() *media.Uploader {
	return m.uploader
}

// Importer returns the Markdown post importer.
func (m *Module) Importer() *markdown.Importer {
	return m.importer
}
