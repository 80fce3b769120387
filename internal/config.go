package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/language"

	"github.com/starford/folio/internal/curation"
	"github.com/starford/folio/internal/loader"
	"github.com/starford/folio/internal/parser"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Content  ContentConfig     `yaml:"content"`
	Curation CurationConfig    `yaml:"curation"`
	Render   RenderConfig      `yaml:"render"`
	SQLite   SQLiteConfig      `yaml:"sqlite"`
	Auth     AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if err := c.Curation.Validate(); err != nil {
		return fmt.Errorf("curation: %w", err)
	}
	if err := c.SQLite.Validate(); err != nil {
		return fmt.Errorf("sqlite: %w", err)
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig describes the notes directory and how missing metadata is derived.
type ContentConfig struct {
	Dir             string `yaml:"dir"`
	Reserved        string `yaml:"reserved"`
	FeaturedCount   int    `yaml:"featured_count"`
	WordsPerMinute  int    `yaml:"words_per_minute"`
	DescriptionMax  int    `yaml:"description_max"`
	Placeholder     string `yaml:"placeholder"`
	CollationLocale string `yaml:"collation_locale"`
	Watch           bool   `yaml:"watch"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.WordsPerMinute, validation.Required, validation.Min(1)),
		validation.Field(&c.DescriptionMax, validation.Required, validation.Min(1)),
		validation.Field(&c.CollationLocale, validation.By(func(v any) error {
			s, _ := v.(string)
			if s == "" {
				return nil
			}
			if _, err := language.Parse(s); err != nil {
				return fmt.Errorf("unknown locale %q", s)
			}
			return nil
		})),
	)
}

// LoaderOptions maps the content settings onto loader options. A featured
// count of 0 selects the default; a negative count features nothing unless
// a file asks for it.
func (c *ContentConfig) LoaderOptions() loader.Options {
	return loader.Options{
		FeaturedCount:   c.FeaturedCount,
		WordsPerMinute:  c.WordsPerMinute,
		MaxDescription:  c.DescriptionMax,
		Placeholder:     c.Placeholder,
		CollationLocale: c.CollationLocale,
	}
}

// CurationConfig overrides the built-in category tables. Entries are merged
// over the defaults unless Replace is set.
type CurationConfig struct {
	Replace         bool `yaml:"replace"`
	curation.Tables `yaml:",inline"`
}

// Validate validates the curation configuration.
func (c *CurationConfig) Validate() error {
	for category, slug := range c.Slugs {
		if slug == "" {
			return fmt.Errorf("empty slug for category %q", category)
		}
	}
	return validation.ValidateStruct(&c.Tables,
		validation.Field(&c.Tables.FallbackTags, validation.Each(validation.Required)),
	)
}

// Resolve returns the tables the loader should use.
func (c *CurationConfig) Resolve() curation.Tables {
	if c.Replace {
		return c.Tables
	}
	return curation.Defaults().Merge(c.Tables)
}

// RenderConfig controls Markdown to HTML conversion.
type RenderConfig struct {
	UnsafeHTML bool `yaml:"unsafe_html"`
	HardWraps  bool `yaml:"hard_wraps"`
}

// SQLiteConfig holds the search index database configuration.
type SQLiteConfig struct {
	DSN string `yaml:"dsn"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DSN, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Dir:             "./content/notes",
			Reserved:        "README.md",
			FeaturedCount:   loader.DefaultFeaturedCount,
			WordsPerMinute:  parser.DefaultWordsPerMinute,
			DescriptionMax:  parser.DefaultMaxDescription,
			Placeholder:     parser.DefaultPlaceholder,
			CollationLocale: "zh",
			Watch:           true,
		},
		SQLite: SQLiteConfig{
			DSN: "file:folio?mode=memory&cache=shared",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
