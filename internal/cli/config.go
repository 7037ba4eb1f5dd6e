package cli

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	gitcms "github.com/goliatone/go-gitcms"
)

// fileConfig mirrors the yaml layout of the CLI configuration file. It is a
// transport shape only; validation happens on the runtime config it maps to.
type fileConfig struct {
	Store struct {
		Endpoint string `yaml:"endpoint"`
		Owner    string `yaml:"owner"`
		Repo     string `yaml:"repo"`
		Branch   string `yaml:"branch"`
		Token    string `yaml:"token"`
	} `yaml:"store"`
	Committer struct {
		Name  string `yaml:"name"`
		Email string `yaml:"email"`
	} `yaml:"committer"`
	Locales struct {
		Default   string   `yaml:"default"`
		Supported []string `yaml:"supported"`
	} `yaml:"locales"`
	Paths struct {
		Posts        string `yaml:"posts"`
		SiteMetadata string `yaml:"site_metadata"`
		Translations string `yaml:"translations"`
		MediaDir     string `yaml:"media_dir"`
	} `yaml:"paths"`
	Retry struct {
		Attempts int    `yaml:"attempts"`
		Backoff  string `yaml:"backoff"`
	} `yaml:"retry"`
	Sitemap struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"sitemap"`
	Media struct {
		RawBaseURL string `yaml:"raw_base_url"`
	} `yaml:"media"`
	Logging struct {
		Level     string `yaml:"level"`
		Format    string `yaml:"format"`
		AddSource bool   `yaml:"add_source"`
	} `yaml:"logging"`
}

// LoadConfig reads a yaml configuration file and maps it onto the runtime
// defaults. Empty fields keep the default values.
func LoadConfig(path string) (gitcms.Config, error) {
	cfg := gitcms.DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cli: read config %q: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("cli: parse config %q: %w", path, err)
	}

	applyString(&cfg.Store.Endpoint, file.Store.Endpoint)
	applyString(&cfg.Store.Owner, file.Store.Owner)
	applyString(&cfg.Store.Repo, file.Store.Repo)
	applyString(&cfg.Store.Branch, file.Store.Branch)
	applyString(&cfg.Store.Token, file.Store.Token)

	applyString(&cfg.Committer.Name, file.Committer.Name)
	applyString(&cfg.Committer.Email, file.Committer.Email)

	applyString(&cfg.Locales.Default, file.Locales.Default)
	if len(file.Locales.Supported) > 0 {
		cfg.Locales.Supported = append([]string(nil), file.Locales.Supported...)
	}

	applyString(&cfg.Paths.Posts, file.Paths.Posts)
	applyString(&cfg.Paths.SiteMetadata, file.Paths.SiteMetadata)
	applyString(&cfg.Paths.Translations, file.Paths.Translations)
	applyString(&cfg.Paths.MediaDir, file.Paths.MediaDir)

	if file.Retry.Attempts > 0 {
		cfg.Retry.Attempts = file.Retry.Attempts
	}
	if file.Retry.Backoff != "" {
		backoff, err := time.ParseDuration(file.Retry.Backoff)
		if err != nil {
			return cfg, fmt.Errorf("cli: parse retry backoff %q: %w", file.Retry.Backoff, err)
		}
		cfg.Retry.Backoff = backoff
	}

	applyString(&cfg.Sitemap.BaseURL, file.Sitemap.BaseURL)
	applyString(&cfg.Media.RawBaseURL, file.Media.RawBaseURL)

	applyString(&cfg.Logging.Level, file.Logging.Level)
	applyString(&cfg.Logging.Format, file.Logging.Format)
	if file.Logging.AddSource {
		cfg.Logging.AddSource = true
	}

	return cfg, nil
}

func applyString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
