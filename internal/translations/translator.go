package translations

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-gitcms/internal/logging"
	"github.com/goliatone/go-gitcms/pkg/interfaces"
)

// Translator resolves UI strings against a bundle snapshot with
// default-locale fallback: a key missing from the requested locale is served
// from the default locale, and a key missing from both echoes back so the
// page renders something instead of failing.
type Translator struct {
	bundle        Bundle
	defaultLocale string
	logger        interfaces.Logger
}

// TranslatorOption configures a Translator.
type TranslatorOption func(*Translator)

// WithTranslatorLogger attaches a logger.
func WithTranslatorLogger(logger interfaces.Logger) TranslatorOption {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTranslator snapshots bundle for lookup. The bundle is not re-read from
// the store; construct a new Translator after saving changes.
func NewTranslator(bundle Bundle, defaultLocale string, opts ...TranslatorOption) *Translator {
	translator := &Translator{
		bundle:        bundle.normalize(),
		defaultLocale: strings.ToLower(strings.TrimSpace(defaultLocale)),
		logger:        logging.NoOp(),
	}
	for _, opt := range opts {
		opt(translator)
	}
	return translator
}

// Translate resolves key for locale, applying fmt-style args when present.
func (t *Translator) Translate(locale, key string, args ...any) string {
	value, ok := t.bundle.Lookup(strings.ToLower(locale), key)
	if !ok {
		value, ok = t.bundle.Lookup(t.defaultLocale, key)
	}
	if !ok {
		t.logger.Debug("translations.key.missing", "locale", locale, "key", key)
		value = key
	}

	if len(args) > 0 {
		return fmt.Sprintf(value, args...)
	}
	return value
}

// Has reports whether key resolves for locale without the default-locale
// fallback. Useful for translation-completeness checks.
func (t *Translator) Has(locale, key string) bool {
	_, ok := t.bundle.Lookup(strings.ToLower(locale), key)
	return ok
}

// MissingKeys returns the keys the default locale defines that locale does
// not, sorted by the caller if order matters.
func (t *Translator) MissingKeys(locale string) []string {
	defaults := t.bundle[t.defaultLocale]
	if len(defaults) == 0 {
		return nil
	}

	lowered := strings.ToLower(locale)
	var missing []string
	for key := range defaults {
		if _, ok := t.bundle.Lookup(lowered, key); !ok {
			missing = append(missing, key)
		}
	}
	return missing
}
