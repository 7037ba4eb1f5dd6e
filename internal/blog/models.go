package blog

import (
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"github.com/google/uuid"
)

// Post is the localized blog document persisted in the collection file. A
// post is authored in PrimaryLocale, which always carries complete field
// values; the localized maps are partial and only hold locales with a
// committed translation. Translations is the authoritative set of locales
// the post is published in — it decides whether a locale-specific URL exists
// at all, as opposed to silently falling back to the primary locale.
type Post struct {
	ID            uuid.UUID           `json:"id"`
	PrimaryLocale string              `json:"primary_locale"`
	Slugs         map[string]string   `json:"slugs"`
	Titles        map[string]string   `json:"titles"`
	Excerpts      map[string]string   `json:"excerpts,omitempty"`
	Bodies        map[string]string   `json:"bodies,omitempty"`
	Keywords      map[string][]string `json:"keywords,omitempty"`
	Translations  []string            `json:"translations"`
	CoverImage    string              `json:"cover_image,omitempty"`
	PublishedAt   time.Time           `json:"published_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// HasTranslation reports whether locale is in the post's translated set.
func (p *Post) HasTranslation(locale string) bool {
	return slices.Contains(p.Translations, normalizeLocale(locale))
}

// PrimarySlug returns the slug of the authoring locale.
func (p *Post) PrimarySlug() string {
	if p == nil {
		return ""
	}
	return p.Slugs[p.PrimaryLocale]
}

// Validate enforces the construction invariants: a stable id, an authoring
// locale with a non-empty valid slug, a title for the authoring locale, and
// well-formed slugs for every locale that carries one.
func (p *Post) Validate() error {
	errs := validation.Errors{}

	if p.ID == uuid.Nil {
		errs["id"] = validation.NewError("gitcms.blog.id_required", "post id is required")
	}

	primary := normalizeLocale(p.PrimaryLocale)
	if primary == "" {
		errs["primary_locale"] = validation.NewError("gitcms.blog.primary_locale_required", "primary locale is required")
	} else {
		if strings.TrimSpace(p.Slugs[primary]) == "" {
			errs["slugs"] = validation.NewError("gitcms.blog.primary_slug_required", "primary locale slug is required")
		}
		if strings.TrimSpace(p.Titles[primary]) == "" {
			errs["titles"] = validation.NewError("gitcms.blog.primary_title_required", "primary locale title is required")
		}
	}

	for locale, value := range p.Slugs {
		if !slug.IsValid(value) {
			errs["slugs."+locale] = validation.NewError("gitcms.blog.slug_invalid", "slug contains invalid characters")
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func clonePost(src *Post) *Post {
	if src == nil {
		return nil
	}

	copied := *src
	copied.Slugs = cloneStringMap(src.Slugs)
	copied.Titles = cloneStringMap(src.Titles)
	copied.Excerpts = cloneStringMap(src.Excerpts)
	copied.Bodies = cloneStringMap(src.Bodies)
	copied.Translations = append([]string(nil), src.Translations...)
	if src.Keywords != nil {
		copied.Keywords = make(map[string][]string, len(src.Keywords))
		for locale, words := range src.Keywords {
			copied.Keywords[locale] = append([]string(nil), words...)
		}
	}
	return &copied
}

func cloneStringMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func normalizeLocale(locale string) string {
	return strings.ToLower(strings.TrimSpace(locale))
}
