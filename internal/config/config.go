// Package config provides configuration management using the Singleton pattern.
// It loads configuration from environment variables and config.yaml using Viper.
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/nativex/ai-router/internal/domain"
)

// Configuration holds all application configuration values.
type Configuration struct {
	// Server configuration
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Backend credentials, one entry per supported vendor
	Providers ProvidersConfig `json:"providers" mapstructure:"providers"`

	// Dispatch defaults and rate limiting
	Router RouterConfig `json:"router" mapstructure:"router"`

	// Persona catalog location
	Personas PersonasConfig `json:"personas" mapstructure:"personas"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	// Host is the server bind address.
	Host string `json:"host" mapstructure:"host"`

	// Port is the server port number.
	Port int `json:"port" mapstructure:"port"`

	// ReadTimeoutSeconds is the maximum duration for reading the entire request.
	ReadTimeoutSeconds int `json:"read_timeout_seconds" mapstructure:"read_timeout_seconds"`

	// WriteTimeoutSeconds bounds writing the response. It must outlast the
	// 90 second backend timeout or slow completions are cut off.
	WriteTimeoutSeconds int `json:"write_timeout_seconds" mapstructure:"write_timeout_seconds"`

	// ShutdownTimeoutSeconds is the maximum duration to wait for active connections to finish.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" mapstructure:"shutdown_timeout_seconds"`
}

// ProvidersConfig holds the credential of each backend family.
// A backend whose API key is empty is not registered.
type ProvidersConfig struct {
	OpenAI    domain.Credential `json:"openai" mapstructure:"openai"`
	Anthropic domain.Credential `json:"anthropic" mapstructure:"anthropic"`
	Gemini    domain.Credential `json:"gemini" mapstructure:"gemini"`
	Grok      domain.Credential `json:"grok" mapstructure:"grok"`
}

// RouterConfig holds dispatch defaults.
type RouterConfig struct {
	// DefaultProvider is used when a command names none. Empty selects the
	// first registered provider.
	DefaultProvider string `json:"default_provider" mapstructure:"default_provider"`

	// DefaultModel is used when a command names none.
	DefaultModel string `json:"default_model" mapstructure:"default_model"`

	// RateLimit is the number of commands admitted per origin per window.
	RateLimit int `json:"rate_limit" mapstructure:"rate_limit"`

	// RateWindowSeconds is the sliding window length.
	RateWindowSeconds int `json:"rate_window_seconds" mapstructure:"rate_window_seconds"`

	// MaxTrackedKeys caps the origins the limiter remembers. 0 is unbounded.
	MaxTrackedKeys int `json:"max_tracked_keys" mapstructure:"max_tracked_keys"`
}

// RateWindow returns the window as a duration.
func (r RouterConfig) RateWindow() time.Duration {
	return time.Duration(r.RateWindowSeconds) * time.Second
}

// PersonasConfig locates the persona catalog.
type PersonasConfig struct {
	// Path is a YAML or JSON file mapping persona keys to instructions.
	Path string `json:"path" mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level" mapstructure:"level"`

	// Format is the log format (json, text).
	Format string `json:"format" mapstructure:"format"`

	// Console enables the colorized per-request status lines.
	Console bool `json:"console" mapstructure:"console"`
}

// configInstance holds the singleton configuration instance.
var (
	configInstance *Configuration
	configOnce     sync.Once
	configErr      error
)

// GetConfig returns the singleton Configuration instance.
// It initializes the configuration on first call using the default config path.
func GetConfig() (*Configuration, error) {
	configOnce.Do(func() {
		configInstance, configErr = loadConfig("")
	})
	return configInstance, configErr
}

// GetConfigWithPath returns the singleton Configuration instance with a custom config path.
func GetConfigWithPath(configPath string) (*Configuration, error) {
	configOnce.Do(func() {
		configInstance, configErr = loadConfig(configPath)
	})
	return configInstance, configErr
}

// MustGetConfig returns the singleton Configuration instance.
// It panics if the configuration cannot be loaded.
func MustGetConfig() *Configuration {
	cfg, err := GetConfig()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// ResetConfig resets the singleton instance.
// This is primarily used for testing purposes.
func ResetConfig() {
	configOnce = sync.Once{}
	configInstance = nil
	configErr = nil
}

// Validate validates the configuration and returns an error if required fields are missing.
func (c *Configuration) Validate() error {
	var validationErrors []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		validationErrors = append(validationErrors, "server.port must be between 1 and 65535")
	}

	if c.Router.RateLimit < 1 {
		validationErrors = append(validationErrors, "router.rate_limit must be at least 1")
	}
	if c.Router.RateWindowSeconds < 1 {
		validationErrors = append(validationErrors, "router.rate_window_seconds must be at least 1")
	}
	if c.Router.MaxTrackedKeys < 0 {
		validationErrors = append(validationErrors, "router.max_tracked_keys cannot be negative")
	}

	if c.Personas.Path == "" {
		validationErrors = append(validationErrors, (&MissingKeyError{Key: "personas.path"}).Error())
	}

	if c.Logging.Level != "" && !isValidLogLevel(c.Logging.Level) {
		validationErrors = append(validationErrors, (&InvalidValueError{
			Key:           "logging.level",
			Value:         c.Logging.Level,
			AllowedValues: []string{"debug", "info", "warn", "error"},
		}).Error())
	}

	if c.Logging.Format != "" && c.Logging.Format != "json" && c.Logging.Format != "text" {
		validationErrors = append(validationErrors, (&InvalidValueError{
			Key:           "logging.format",
			Value:         c.Logging.Format,
			AllowedValues: []string{"json", "text"},
		}).Error())
	}

	if len(validationErrors) > 0 {
		return &ValidationError{Errors: validationErrors}
	}

	return nil
}

// isValidLogLevel checks if the log level is valid.
func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// Credential returns the configured credential of a backend family.
func (c *Configuration) Credential(p domain.ProviderType) domain.Credential {
	switch p {
	case domain.ProviderOpenAI:
		return c.Providers.OpenAI
	case domain.ProviderAnthropic:
		return c.Providers.Anthropic
	case domain.ProviderGemini:
		return c.Providers.Gemini
	case domain.ProviderGrok:
		return c.Providers.Grok
	default:
		return domain.Credential{}
	}
}

// ConfiguredProviders returns the backend families that have an API key,
// in registration order.
func (c *Configuration) ConfiguredProviders() []domain.ProviderType {
	configured := make([]domain.ProviderType, 0, len(domain.KnownProviders))
	for _, p := range domain.KnownProviders {
		if c.Credential(p).IsConfigured() {
			configured = append(configured, p)
		}
	}
	return configured
}
