package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/language"

	"github.com/starford/scraps/internal/listing"
	"github.com/starford/scraps/internal/model"
	"github.com/starford/scraps/internal/render"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app" toml:"app"`
	Site   SiteConfig        `yaml:"site" toml:"site"`
	Scraps ScrapsConfig      `yaml:"scraps" toml:"scraps"`
	Public PublicConfig      `yaml:"public" toml:"public"`
	SQLite SQLiteConfig      `yaml:"sqlite" toml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth" toml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.Scraps.Validate(); err != nil {
		return err
	}
	if err := c.Public.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" toml:"log_level"`
	HTTP     HTTPConfig `yaml:"http" toml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" toml:"port"`
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

// SiteConfig describes the generated site.
type SiteConfig struct {
	BaseURL     string `yaml:"base_url" toml:"base_url"`
	Title       string `yaml:"title" toml:"title"`
	Description string `yaml:"description" toml:"description"`
	Favicon     string `yaml:"favicon" toml:"favicon"`
	Lang        string `yaml:"lang" toml:"lang"`
	Timezone    string `yaml:"timezone" toml:"timezone"`
	ColorScheme string `yaml:"color_scheme" toml:"color_scheme"`
	// StaticPath holds optional *.html and main.css files that override the
	// builtin templates.
	StaticPath string `yaml:"static_path" toml:"static_path"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, validation.By(isBaseURL)),
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.Lang, validation.By(isLanguageTag)),
		validation.Field(&c.Timezone, validation.By(isTimezone)),
		validation.Field(&c.ColorScheme, validation.In(
			string(render.OSSetting), string(render.OnlyLight), string(render.OnlyDark))),
	)
}

// ParsedBaseURL returns the validated base URL.
func (c *SiteConfig) ParsedBaseURL() model.BaseURL {
	b, err := model.ParseBaseURL(c.BaseURL)
	if err != nil {
		return model.MustParseBaseURL("http://localhost:1112/")
	}
	return b
}

// Location returns the configured timezone, UTC when unset.
func (c *SiteConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Scheme returns the configured color scheme, following the OS when unset.
func (c *SiteConfig) Scheme() render.ColorScheme {
	if c.ColorScheme == "" {
		return render.OSSetting
	}
	return render.ColorScheme(c.ColorScheme)
}

// ScrapsConfig holds the scraps directory and listing options.
type ScrapsConfig struct {
	Path             string `yaml:"path" toml:"path"`
	TemplatesPath    string `yaml:"templates_path" toml:"templates_path"`
	SortKey          string `yaml:"sort_key" toml:"sort_key"`
	PaginateBy       int    `yaml:"paginate_by" toml:"paginate_by"`
	BuildSearchIndex bool   `yaml:"build_search_index" toml:"build_search_index"`
}

// Validate validates the scraps configuration.
func (c *ScrapsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.SortKey, validation.By(isSortKey)),
		validation.Field(&c.PaginateBy, validation.Min(0)),
	)
}

// Sort returns the configured sort key, committed date when unset.
func (c *ScrapsConfig) Sort() listing.SortKey {
	if c.SortKey == "" {
		return listing.CommittedDate
	}
	k, err := listing.ParseSortKey(c.SortKey)
	if err != nil {
		return listing.CommittedDate
	}
	return k
}

// PublicConfig holds the output directory of the site build.
type PublicConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Validate validates the public configuration.
func (c *PublicConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds the commit timestamp cache database.
type SQLiteConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" toml:"mode"`
	Token string `yaml:"token" toml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled".
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

func isBaseURL(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := model.ParseBaseURL(s); err != nil {
		return errors.New("must be an absolute URL")
	}
	return nil
}

func isLanguageTag(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := language.Parse(s); err != nil {
		return errors.New("must be a BCP 47 language tag")
	}
	return nil
}

func isTimezone(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := time.LoadLocation(s); err != nil {
		return errors.New("must be an IANA time zone")
	}
	return nil
}

func isSortKey(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := listing.ParseSortKey(s); err != nil {
		return fmt.Errorf("must be %q or %q", listing.CommittedDate, listing.LinkedCount)
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 1112,
			},
		},
		Site: SiteConfig{
			BaseURL:     "http://127.0.0.1:1112/",
			Title:       "Scraps",
			Lang:        "en",
			ColorScheme: string(render.OSSetting),
		},
		Scraps: ScrapsConfig{
			Path:          "./scraps",
			TemplatesPath: "./templates",
			SortKey:       string(listing.CommittedDate),
			PaginateBy:    20,
		},
		Public: PublicConfig{
			Path: "./public",
		},
		SQLite: SQLiteConfig{
			Path: "./scraps.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
