package locales

import (
	"errors"
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-gitcms/internal/blog"
	"github.com/goliatone/go-gitcms/internal/logging"
	"github.com/goliatone/go-gitcms/pkg/interfaces"
)

const (
	publicGroup  = "public"
	postRoute    = "post"
	listingRoute = "listing"
	homeRoute    = "home"
)

var (
	ErrDefaultLocaleRequired = errors.New("locales: default locale is required")
	ErrNoSlug                = errors.New("locales: post carries no slug for any locale")
)

// Config describes the locale universe and, optionally, custom route
// templates. When Routes is nil the resolver registers the conventional
// locale-prefixed layout: /{locale}/blog/{slug}/.
type Config struct {
	DefaultLocale string
	Locales       []string
	Routes        *urlkit.Config
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver maps a post plus a requested locale to its canonical public path
// and back. It deliberately splits the three fallback behaviours the system
// needs: existence lookup lives on the repository, slug fallback in SlugFor,
// and field display fallback in the Display* helpers. Conflating them is how
// a missing translation turns into a silent wrong-locale page.
type Resolver struct {
	defaultLocale string
	locales       []string
	manager       *urlkit.RouteManager
	logger        interfaces.Logger
}

// NewResolver validates the locale configuration and registers the route
// groups, one per locale, with the shared route manager.
func NewResolver(cfg Config, opts ...Option) (*Resolver, error) {
	defaultLocale := strings.ToLower(strings.TrimSpace(cfg.DefaultLocale))
	if defaultLocale == "" {
		return nil, ErrDefaultLocaleRequired
	}

	seen := map[string]struct{}{defaultLocale: {}}
	locales := []string{defaultLocale}
	for _, raw := range cfg.Locales {
		locale := strings.ToLower(strings.TrimSpace(raw))
		if locale == "" {
			continue
		}
		if _, ok := seen[locale]; ok {
			continue
		}
		seen[locale] = struct{}{}
		locales = append(locales, locale)
	}

	routeConfig := cfg.Routes
	if routeConfig == nil {
		routeConfig = defaultRouteConfig(locales)
	}

	resolver := &Resolver{
		defaultLocale: defaultLocale,
		locales:       locales,
		manager:       urlkit.NewRouteManager(routeConfig),
		logger:        logging.NoOp(),
	}
	for _, opt := range opts {
		opt(resolver)
	}
	return resolver, nil
}

func defaultRouteConfig(locales []string) *urlkit.Config {
	children := make([]urlkit.GroupConfig, 0, len(locales))
	for _, locale := range locales {
		children = append(children, urlkit.GroupConfig{
			Name: locale,
			Path: "/" + locale,
			Paths: map[string]string{
				homeRoute:    "/",
				listingRoute: "/blog/",
				postRoute:    "/blog/:slug/",
			},
		})
	}
	return &urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:   publicGroup,
				Groups: children,
			},
		},
	}
}

// DefaultLocale returns the configured default locale.
func (r *Resolver) DefaultLocale() string {
	return r.defaultLocale
}

// Locales returns every configured locale, default first.
func (r *Resolver) Locales() []string {
	return append([]string(nil), r.locales...)
}

// SlugFor returns the post's slug for locale, falling back to the authoring
// locale when no translated slug exists. The fallback can never be empty:
// absence of a primary slug is a construction invariant violation surfaced
// at save time, not a runtime case.
func (r *Resolver) SlugFor(post *blog.Post, locale string) string {
	if post == nil {
		return ""
	}
	if value := post.Slugs[strings.ToLower(strings.TrimSpace(locale))]; value != "" {
		return value
	}
	return post.PrimarySlug()
}

// URLFor builds the canonical public path for the post in locale:
// /{locale}/blog/{slug}/ with a mandatory trailing slash. The sitemap and
// canonical-link consumers depend on this single form per path.
func (r *Resolver) URLFor(post *blog.Post, locale string) (string, error) {
	slugValue := r.SlugFor(post, locale)
	if slugValue == "" {
		return "", ErrNoSlug
	}
	return r.buildURL(locale, postRoute, map[string]any{"slug": slugValue})
}

// ListingURL returns the canonical blog index path for locale.
func (r *Resolver) ListingURL(locale string) (string, error) {
	return r.buildURL(locale, listingRoute, nil)
}

// HomeURL returns the canonical home path for locale.
func (r *Resolver) HomeURL(locale string) (string, error) {
	return r.buildURL(locale, homeRoute, nil)
}

// ResolveByPath performs the reverse lookup: the post whose slug value in
// any locale equals rawSlug, or nil. Matching every locale's slug keeps
// stale cross-locale links alive. When two posts collide on a slug (a
// data-integrity bug prevented at write time) the first match in collection
// order wins.
func (r *Resolver) ResolveByPath(posts []*blog.Post, rawSlug string) *blog.Post {
	needle := strings.Trim(strings.TrimSpace(rawSlug), "/")
	if needle == "" {
		return nil
	}
	for _, post := range posts {
		for _, value := range post.Slugs {
			if value == needle {
				return post
			}
		}
	}
	return nil
}

// DisplayTitle returns the localized title, falling back to the authoring
// locale's value when the translation is missing.
func (r *Resolver) DisplayTitle(post *blog.Post, locale string) string {
	return fallbackString(post, locale, post.Titles)
}

// DisplayExcerpt returns the localized excerpt with primary-locale fallback.
func (r *Resolver) DisplayExcerpt(post *blog.Post, locale string) string {
	return fallbackString(post, locale, post.Excerpts)
}

// DisplayBody returns the localized body with primary-locale fallback.
func (r *Resolver) DisplayBody(post *blog.Post, locale string) string {
	return fallbackString(post, locale, post.Bodies)
}

// DisplayKeywords returns the localized SEO keywords with primary-locale
// fallback.
func (r *Resolver) DisplayKeywords(post *blog.Post, locale string) []string {
	if post == nil {
		return nil
	}
	if words := post.Keywords[strings.ToLower(strings.TrimSpace(locale))]; len(words) > 0 {
		return append([]string(nil), words...)
	}
	return append([]string(nil), post.Keywords[post.PrimaryLocale]...)
}

func fallbackString(post *blog.Post, locale string, values map[string]string) string {
	if post == nil {
		return ""
	}
	if value := values[strings.ToLower(strings.TrimSpace(locale))]; value != "" {
		return value
	}
	return values[post.PrimaryLocale]
}

func (r *Resolver) buildURL(locale, route string, params map[string]any) (string, error) {
	group, err := r.localeGroup(locale)
	if err != nil {
		return "", err
	}

	builder, err := safeBuilder(group, route)
	if err != nil {
		return "", err
	}
	for key, value := range params {
		builder.WithParam(key, value)
	}

	built, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("locales: build %s url: %w", route, err)
	}
	return canonicalPath(built), nil
}

// canonicalPath enforces the single canonical form: leading and trailing
// slash, no duplicate separators.
func canonicalPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "/"
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	if !strings.HasSuffix(trimmed, "/") {
		trimmed += "/"
	}
	return trimmed
}

func (r *Resolver) localeGroup(locale string) (*urlkit.Group, error) {
	key := strings.ToLower(strings.TrimSpace(locale))
	if key == "" {
		key = r.defaultLocale
	}

	root, err := lookupGroup(r.manager, publicGroup)
	if err != nil {
		return nil, err
	}
	group, err := lookupChildGroup(root, key)
	if err != nil {
		// Unknown locale: fall back to the default locale's group so stale
		// or mistyped locale segments still resolve somewhere canonical.
		r.logger.Debug("locales.unknown_locale", "locale", key, "fallback", r.defaultLocale)
		return lookupChildGroup(root, r.defaultLocale)
	}
	return group, nil
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("locales: route group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("locales: route %q not registered: %v", route, rec)
		}
	}()
	builder = group.Builder(route)
	return builder, err
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, fmt.Errorf("locales: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("locales: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, err
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	if parent == nil {
		return nil, fmt.Errorf("locales: parent group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("locales: locale group %q not found", name)
		}
	}()
	group = parent.Group(name)
	return group, err
}
