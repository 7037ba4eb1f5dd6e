package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/goliatone/go-gitcms/internal/collection"
)

var ErrStoreOwnerRequired = errors.New("gitcms config: store owner is required")
var ErrStoreRepoRequired = errors.New("gitcms config: store repository is required")
var ErrCommitterRequired = errors.New("gitcms config: committer name and email are required")
var ErrDefaultLocaleRequired = errors.New("gitcms config: default locale is required")
var ErrDefaultLocaleNotListed = errors.New("gitcms config: default locale must be listed in locales")
var ErrRetryInvalid = errors.New("gitcms config: retry attempts and backoff must be zero or positive")
var ErrLoggingLevelInvalid = errors.New("gitcms config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("gitcms config: logging format is invalid")

// Config aggregates runtime bindings for the module. Fields intentionally use
// simple types so host applications can populate them from any source.
type Config struct {
	Store     StoreConfig
	Committer CommitterConfig
	Locales   LocalesConfig
	Paths     PathsConfig
	Retry     RetryConfig
	Sitemap   SitemapConfig
	Media     MediaConfig
	Routes    *urlkit.Config
	Logging   LoggingConfig
}

// StoreConfig identifies the git repository backing the content store.
type StoreConfig struct {
	Endpoint string
	Owner    string
	Repo     string
	Branch   string
	Token    string
}

// CommitterConfig is the audit identity stamped on every write.
type CommitterConfig struct {
	Name  string
	Email string
}

// LocalesConfig captures the locale surface of the public site.
type LocalesConfig struct {
	Default   string
	Supported []string
}

// PathsConfig locates the JSON documents inside the content repository.
// Empty fields fall back to the per-package defaults.
type PathsConfig struct {
	Posts        string
	SiteMetadata string
	Translations string
	MediaDir     string
}

// RetryConfig bounds the optimistic-concurrency write cycle.
type RetryConfig struct {
	Attempts int
	Backoff  time.Duration
}

// SitemapConfig parameterises sitemap generation.
type SitemapConfig struct {
	BaseURL string
}

// MediaConfig parameterises asset uploads.
type MediaConfig struct {
	RawBaseURL string
}

// LoggingConfig captures go-logger options.
type LoggingConfig struct {
	Level     string
	Format    string
	AddSource bool
}

// DefaultConfig returns opinionated defaults: main branch, English-only
// locale surface, standard document paths, console logging.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Branch: "main",
		},
		Locales: LocalesConfig{
			Default:   "en",
			Supported: []string{"en"},
		},
		Paths: PathsConfig{},
		Retry: RetryConfig{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate reports the first configuration inconsistency found.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Store.Owner) == "" {
		return ErrStoreOwnerRequired
	}
	if strings.TrimSpace(cfg.Store.Repo) == "" {
		return ErrStoreRepoRequired
	}
	if strings.TrimSpace(cfg.Committer.Name) == "" || strings.TrimSpace(cfg.Committer.Email) == "" {
		return ErrCommitterRequired
	}

	defaultLocale := strings.ToLower(strings.TrimSpace(cfg.Locales.Default))
	if defaultLocale == "" {
		return ErrDefaultLocaleRequired
	}
	if len(cfg.Locales.Supported) > 0 {
		listed := false
		for _, locale := range cfg.Locales.Supported {
			if strings.ToLower(strings.TrimSpace(locale)) == defaultLocale {
				listed = true
				break
			}
		}
		if !listed {
			return fmt.Errorf("%w: %s", ErrDefaultLocaleNotListed, defaultLocale)
		}
	}

	if cfg.Retry.Attempts < 0 || cfg.Retry.Backoff < 0 {
		return ErrRetryInvalid
	}

	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}

	return nil
}

// CollectionRetry converts the runtime retry bounds into the repository
// policy type. Zero values keep the package defaults.
func (cfg Config) CollectionRetry() collection.RetryConfig {
	return collection.RetryConfig{
		Attempts: cfg.Retry.Attempts,
		Backoff:  cfg.Retry.Backoff,
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
