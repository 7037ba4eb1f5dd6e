package blog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-slug"
	"github.com/google/uuid"

	"github.com/goliatone/go-gitcms/internal/collection"
	"github.com/goliatone/go-gitcms/internal/logging"
	"github.com/goliatone/go-gitcms/pkg/interfaces"
)

// DefaultPath is the logical store path of the blog collection file.
const DefaultPath = "data/posts.json"

var (
	ErrPostRequired = errors.New("blog: post is required")
	ErrSlugInvalid  = errors.New("blog: slug could not be normalized")
	ErrSlugExists   = errors.New("blog: slug already used by another post for this locale")
)

// Config parameterises the blog repository.
type Config struct {
	Path  string
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

// WithClock overrides the mutation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// Repository exposes read/write/delete operations over the blog collection.
// It owns the optimistic-concurrency contract through the underlying
// collection repository and adds the document-level invariants: slug
// normalisation, per-locale slug uniqueness (enforced at write time, inside
// the retry cycle) and schema validation before encode.
type Repository struct {
	docs   *collection.Repository[*Post]
	logger interfaces.Logger
	now    func() time.Time
}

// NewRepository constructs the blog repository over the provided store.
func NewRepository(store interfaces.FileStore, cfg Config, opts ...Option) (*Repository, error) {
	repo := &Repository{
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(repo)
	}

	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = DefaultPath
	}

	handlers := collection.Handlers[*Post]{
		Resource: "post",
		ID: func(p *Post) string {
			return p.ID.String()
		},
		Less: func(a, b *Post) bool {
			return a.PublishedAt.After(b.PublishedAt)
		},
		Touch: func(p *Post, now time.Time) *Post {
			copied := clonePost(p)
			copied.UpdatedAt = now
			return copied
		},
		PublishedAt: func(p *Post) time.Time {
			return p.PublishedAt
		},
		Check: checkSlugUniqueness,
	}

	collectionOpts := []collection.Option[*Post]{
		collection.WithRetry[*Post](cfg.Retry),
		collection.WithLogger[*Post](repo.logger),
	}
	if repo.now != nil {
		collectionOpts = append(collectionOpts, collection.WithClock[*Post](repo.now))
	}

	docs, err := collection.NewRepository(store, path, handlers, collectionOpts...)
	if err != nil {
		return nil, err
	}
	repo.docs = docs
	return repo, nil
}

// List returns all posts, newest first.
func (r *Repository) List(ctx context.Context) ([]*Post, error) {
	return r.docs.List(ctx)
}

// GetByID returns the post carrying id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	return r.docs.GetByID(ctx, id.String())
}

// GetBySlug is a locale-aware existence lookup: a post matches when rawSlug
// equals any of its locale slug values, so stale links using another
// locale's slug still resolve. When the post lacks a translation for the
// requested locale the post is still returned — deciding between fallback
// content and a hard miss belongs to the resolver, not here.
func (r *Repository) GetBySlug(ctx context.Context, rawSlug, locale string) (*Post, error) {
	needle := strings.TrimSpace(rawSlug)
	post, err := r.docs.Find(ctx, needle, func(p *Post) bool {
		for _, value := range p.Slugs {
			if value == needle {
				return true
			}
		}
		return false
	})
	if err != nil {
		return nil, err
	}

	if locale != "" && !post.HasTranslation(locale) {
		r.logger.Debug("blog.get_by_slug.untranslated",
			"slug", needle,
			"locale", locale,
			"primary_locale", post.PrimaryLocale,
		)
	}
	return post, nil
}

// Save normalises and validates the post, then runs the read-modify-write
// cycle: replace by id when present, append otherwise. UpdatedAt is
// refreshed on every save; new posts must carry PublishedAt.
func (r *Repository) Save(ctx context.Context, post *Post, auth interfaces.WriteAuthorization) (*Post, error) {
	if post == nil {
		return nil, ErrPostRequired
	}

	candidate, err := normalizePost(post)
	if err != nil {
		return nil, err
	}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}
	if err := validateSchema(candidate); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("content: save post %s", candidate.PrimarySlug())
	saved, err := r.docs.Save(ctx, candidate, auth, message)
	if err != nil {
		return nil, err
	}

	r.logger.Info("blog.save", "post_id", saved.ID.String(), "slug", saved.PrimarySlug())
	return saved, nil
}

// Delete removes the post with id. Deleting an id that is not present is a
// no-op success.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID, auth interfaces.WriteAuthorization) error {
	message := fmt.Sprintf("content: delete post %s", id.String())
	if err := r.docs.Delete(ctx, id.String(), auth, message); err != nil {
		return err
	}
	r.logger.Info("blog.delete", "post_id", id.String())
	return nil
}

// normalizePost lowercases locales, slugifies every slug value and makes
// sure the authoring locale is part of the translated set.
func normalizePost(post *Post) (*Post, error) {
	copied := clonePost(post)
	copied.PrimaryLocale = normalizeLocale(copied.PrimaryLocale)

	if copied.Slugs != nil {
		normalized := make(map[string]string, len(copied.Slugs))
		for locale, value := range copied.Slugs {
			cleaned, err := slug.Normalize(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrSlugInvalid, value)
			}
			normalized[normalizeLocale(locale)] = cleaned
		}
		copied.Slugs = normalized
	}

	seen := map[string]struct{}{}
	translations := make([]string, 0, len(copied.Translations)+1)
	for _, locale := range append([]string{copied.PrimaryLocale}, copied.Translations...) {
		cleaned := normalizeLocale(locale)
		if cleaned == "" {
			continue
		}
		if _, ok := seen[cleaned]; ok {
			continue
		}
		seen[cleaned] = struct{}{}
		translations = append(translations, cleaned)
	}
	copied.Translations = translations

	return copied, nil
}

// checkSlugUniqueness rejects a save whose slug values collide with another
// document's slug for the same locale. Uniqueness is per-locale, not global,
// and runs inside the write cycle so it holds against concurrent editors.
func checkSlugUniqueness(docs []*Post, candidate *Post) error {
	for _, existing := range docs {
		if existing.ID == candidate.ID {
			continue
		}
		for locale, value := range candidate.Slugs {
			if existing.Slugs[locale] == value {
				return fmt.Errorf("%w: %s/%s", ErrSlugExists, locale, value)
			}
		}
	}
	return nil
}
