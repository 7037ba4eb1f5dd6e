package gitcms

import "github.com/goliatone/go-gitcms/internal/runtimeconfig"

var (
	ErrStoreOwnerRequired     = runtimeconfig.ErrStoreOwnerRequired
	ErrStoreRepoRequired      = runtimeconfig.ErrStoreRepoRequired
	ErrCommitterRequired      = runtimeconfig.ErrCommitterRequired
	ErrDefaultLocaleRequired  = runtimeconfig.ErrDefaultLocaleRequired
	ErrDefaultLocaleNotListed = runtimeconfig.ErrDefaultLocaleNotListed
	ErrRetryInvalid           = runtimeconfig.ErrRetryInvalid
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config          = runtimeconfig.Config
	StoreConfig     = runtimeconfig.StoreConfig
	CommitterConfig = runtimeconfig.CommitterConfig
	LocalesConfig   = runtimeconfig.LocalesConfig
	PathsConfig     = runtimeconfig.PathsConfig
	RetryConfig     = runtimeconfig.RetryConfig
	SitemapConfig   = runtimeconfig.SitemapConfig
	MediaConfig     = runtimeconfig.MediaConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
)

// DefaultConfig returns the runtime defaults: main branch, English locale
// surface, standard document paths.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
