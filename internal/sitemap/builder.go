package sitemap

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-gitcms/internal/blog"
	"github.com/goliatone/go-gitcms/internal/locales"
	"github.com/goliatone/go-gitcms/internal/logging"
	"github.com/goliatone/go-gitcms/pkg/interfaces"
)

const (
	homePriority    = "1.0"
	listingPriority = "0.8"
	postPriority    = "0.7"

	homeChangeFreq    = "weekly"
	listingChangeFreq = "daily"
	postChangeFreq    = "weekly"

	xDefault = "x-default"
)

// Record is one sitemap entry: a canonical absolute URL plus the
// locale-alternate declarations crawlers use to relate translated variants.
type Record struct {
	URL             string
	LastModified    time.Time
	ChangeFrequency string
	Priority        string
	// Alternates maps hreflang codes (locales plus "x-default") to the
	// absolute URL of the equivalent content in that locale.
	Alternates map[string]string
}

// PostLister is the slice of the blog repository the builder consumes.
type PostLister interface {
	List(ctx context.Context) ([]*blog.Post, error)
}

// Config parameterises the builder.
type Config struct {
	BaseURL string
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithClock overrides the timestamp used for static records.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// Builder assembles the full set of public URLs for crawler discovery. Post
// records exist only for locales the post is actually translated into;
// untranslated locales get no entry and no alternate, because a fallback
// page is not equivalent content. A content-store outage degrades to the
// static records instead of failing the whole sitemap.
type Builder struct {
	posts    PostLister
	resolver *locales.Resolver
	baseURL  string
	logger   interfaces.Logger
	now      func() time.Time
}

// NewBuilder constructs a sitemap builder.
func NewBuilder(posts PostLister, resolver *locales.Resolver, cfg Config, opts ...Option) *Builder {
	builder := &Builder{
		posts:    posts,
		resolver: resolver,
		baseURL:  strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		logger:   logging.NoOp(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder
}

// Build returns every sitemap record, static pages first, then one record
// per post per translated locale, deduplicated and sorted by URL.
func (b *Builder) Build(ctx context.Context) []Record {
	records := b.staticRecords()

	posts, err := b.postRecords(ctx)
	if err != nil {
		// Crawlability of the static site must survive a store outage;
		// document records are simply omitted until the store recovers.
		b.logger.Warn("sitemap.posts.omitted", "error", err)
	} else {
		records = append(records, posts...)
	}

	return dedupe(records)
}

func (b *Builder) staticRecords() []Record {
	now := b.now().UTC()
	records := make([]Record, 0, len(b.resolver.Locales())*2)

	for _, locale := range b.resolver.Locales() {
		if home, err := b.resolver.HomeURL(locale); err == nil {
			records = append(records, Record{
				URL:             b.absolute(home),
				LastModified:    now,
				ChangeFrequency: homeChangeFreq,
				Priority:        homePriority,
			})
		}
		if listing, err := b.resolver.ListingURL(locale); err == nil {
			records = append(records, Record{
				URL:             b.absolute(listing),
				LastModified:    now,
				ChangeFrequency: listingChangeFreq,
				Priority:        listingPriority,
			})
		}
	}
	return records
}

func (b *Builder) postRecords(ctx context.Context) ([]Record, error) {
	posts, err := b.posts.List(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(posts))
	for _, post := range posts {
		urls := make(map[string]string, len(post.Translations))
		for _, locale := range post.Translations {
			url, err := b.resolver.URLFor(post, locale)
			if err != nil {
				b.logger.Warn("sitemap.post.skipped",
					"post_id", post.ID.String(),
					"locale", locale,
					"error", err,
				)
				continue
			}
			urls[locale] = b.absolute(url)
		}

		defaultURL := urls[post.PrimaryLocale]
		for locale, url := range urls {
			alternates := make(map[string]string, len(urls))
			for other, otherURL := range urls {
				if other == locale {
					continue
				}
				alternates[other] = otherURL
			}
			if defaultURL != "" {
				alternates[xDefault] = defaultURL
			}

			records = append(records, Record{
				URL:             url,
				LastModified:    post.UpdatedAt,
				ChangeFrequency: postChangeFreq,
				Priority:        postPriority,
				Alternates:      alternates,
			})
		}
	}
	return records, nil
}

func (b *Builder) absolute(path string) string {
	if b.baseURL == "" {
		return path
	}
	return b.baseURL + path
}

func dedupe(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := records[:0]
	for _, record := range records {
		if _, ok := seen[record.URL]; ok {
			continue
		}
		seen[record.URL] = struct{}{}
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].URL < out[j].URL
	})
	return out
}
