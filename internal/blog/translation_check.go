package blog

import (
	"context"

	"github.com/google/uuid"
)

// CheckTranslations reports which of the required locales the post is not
// fully translated into. A locale counts as missing when it is absent from
// the post's translated set, or when it is declared translated but lacks a
// slug or title. This keeps translation drift visible at review time
// instead of surfacing as silent primary-locale fallback on the public site.
func (r *Repository) CheckTranslations(ctx context.Context, id uuid.UUID, required []string) ([]string, error) {
	post, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	missing := make([]string, 0)
	for _, raw := range required {
		locale := normalizeLocale(raw)
		if locale == "" {
			continue
		}
		if !post.HasTranslation(locale) {
			missing = append(missing, locale)
			continue
		}
		if post.Slugs[locale] == "" || post.Titles[locale] == "" {
			missing = append(missing, locale)
		}
	}

	if len(missing) > 0 {
		r.logger.Warn("blog.translations.incomplete",
			"post_id", id.String(),
			"missing", missing,
		)
	}
	return missing, nil
}
