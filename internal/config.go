package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Transport modes.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Pandoc  PandocConfig      `yaml:"pandoc"`
	Filters FiltersConfig     `yaml:"filters"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Pandoc.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	Transport string     `yaml:"transport"`
	HTTP      HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.Transport == "" {
		c.Transport = TransportStdio
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Transport, validation.Required, validation.In(TransportStdio, TransportHTTP)),
	); err != nil {
		return err
	}
	if c.Transport == TransportHTTP {
		return c.HTTP.Validate()
	}
	return nil
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

// PandocConfig controls where the pandoc binary comes from.
//
// BinaryPath, when set, is used verbatim. Otherwise the server looks for a
// previously downloaded binary under DataDir, then on PATH, and finally
// downloads a release build into DataDir when AutoDownload is enabled.
type PandocConfig struct {
	BinaryPath   string `yaml:"binary_path"`
	DataDir      string `yaml:"data_dir"`
	AutoDownload bool   `yaml:"auto_download"`
	DownloadURL  string `yaml:"download_url"`
}

// Validate validates the pandoc configuration.
func (c *PandocConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DataDir, validation.Required),
	)
}

// FiltersConfig holds the user-level pandoc filter directory.
// An empty UserDir falls back to ~/.pandoc/filters.
type FiltersConfig struct {
	UserDir string `yaml:"user_dir"`
}

// AuthConfig holds authentication configuration for the HTTP transport.
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
	// Normalise empty mode to "disabled" for backward compatibility.
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
			LogLevel:  slog.LevelInfo,
			Transport: TransportStdio,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Pandoc: PandocConfig{
			DataDir:      "./pandoc_bin",
			AutoDownload: true,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
