// Package config loads the store server configuration from YAML with
// environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Log formats.
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Validator is implemented by configuration types that check themselves
// after loading.
type Validator interface {
	Validate() error
}

// Load reads filename, expands ${VAR} references and decodes it into
// target. Targets implementing Validator are validated.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}
	return Parse(data, target)
}

// Parse is Load for in-memory data.
func Parse[T any](data []byte, target *T) error {
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}

// LoadOrDefault loads filename when it exists and leaves target untouched
// otherwise.
func LoadOrDefault[T any](filename string, target *T) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		if v, ok := any(target).(Validator); ok {
			return v.Validate()
		}
		return nil
	}
	return Load(filename, target)
}

// Config is the store server configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Log     LogConfig     `yaml:"log"`
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the listen address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig configures the SQLite component store.
//
// Key signs stored records; with Sensitive set it is also the source of
// the encryption key.
type StorageConfig struct {
	Path      string `yaml:"path"`
	Key       string `yaml:"key"`
	Sensitive bool   `yaml:"sensitive"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Key, validation.Required, validation.Length(16, 0)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode is "disabled" (default) or "token"; token mode requires Token.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
		validation.Field(&c.Token, validation.When(c.Mode == AuthModeToken, validation.Required)),
	)
}

// Enabled reports whether requests must carry a bearer token.
func (c *AuthConfig) Enabled() bool {
	return c.Mode == AuthModeToken
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  slog.Level `yaml:"level"`
	Format string     `yaml:"format"`
}

// Validate validates the log configuration.
func (c *LogConfig) Validate() error {
	if c.Format == "" {
		c.Format = LogFormatJSON
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Format, validation.In(LogFormatJSON, LogFormatText)),
	)
}

// NewLogger builds a logger writing to w.
func (c *LogConfig) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level}
	if c.Format == LogFormatText {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// NewDefault returns a configuration with local development defaults.
func NewDefault() *Config {
	return &Config{
		HTTP:    HTTPConfig{Port: 8080},
		Storage: StorageConfig{Path: "./wcx.db"},
		Auth:    AuthConfig{Mode: AuthModeDisabled},
		Log:     LogConfig{Level: slog.LevelInfo, Format: LogFormatJSON},
	}
}
