// Package config provides configuration management using the Singleton pattern.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/nativex/ai-router/internal/domain"
)

const (
	defaultConfigName = "config"
	defaultConfigType = "yaml"
	envPrefix         = "AI_ROUTER"
)

// envBindings maps configuration keys to the plain variable names operators
// already use for each vendor. Prefixed AI_ROUTER_* variables work as well.
var envBindings = map[string]string{
	"providers.openai.api_key":     "OPENAI_API_KEY",
	"providers.openai.base_url":    "OPENAI_BASE_URL",
	"providers.anthropic.api_key":  "ANTHROPIC_API_KEY",
	"providers.anthropic.base_url": "ANTHROPIC_BASE_URL",
	"providers.anthropic.version":  "ANTHROPIC_VERSION",
	"providers.gemini.api_key":     "GEMINI_API_KEY",
	"providers.gemini.base_url":    "GEMINI_BASE_URL",
	"providers.grok.api_key":       "GROK_API_KEY",
	"providers.grok.base_url":      "GROK_BASE_URL",
	"router.default_provider":      "DEFAULT_PROVIDER",
	"router.default_model":         "DEFAULT_MODEL",
	"router.rate_limit":            "AI_RATE_LIMIT",
	"router.rate_window_seconds":   "AI_RATE_WINDOW",
	"logging.level":                "LOG_LEVEL",
}

// loadConfig loads the configuration from environment variables and files.
// Priority order (highest to lowest):
// 1. AI_ROUTER_* prefixed environment variables
// 2. Plain vendor variables (OPENAI_API_KEY, AI_RATE_LIMIT, ...)
// 3. config.yaml
// 4. Default values
func loadConfig(configPath string) (*Configuration, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName(defaultConfigName)
	v.SetConfigType(defaultConfigType)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/ai-router")
		v.AddConfigPath("$HOME/.ai-router")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, &ConfigError{Op: "bind_env", Err: err}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "[CONFIG] No config file found, using environment variables only\n")
		} else {
			return nil, &ConfigError{
				Op:  "read",
				Err: fmt.Errorf("failed to read config file: %w", err),
			}
		}
	} else {
		fmt.Fprintf(os.Stderr, "[CONFIG] Using %s - keep API keys in the environment in production\n", v.ConfigFileUsed())
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{
			Op:  "unmarshal",
			Err: fmt.Errorf("failed to unmarshal config: %w", err),
		}
	}

	normalize(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout_seconds", 30)
	v.SetDefault("server.write_timeout_seconds", 120)
	v.SetDefault("server.shutdown_timeout_seconds", 15)

	// Router defaults
	v.SetDefault("router.default_provider", "")
	v.SetDefault("router.default_model", "gpt-4o-mini")
	v.SetDefault("router.rate_limit", 5)
	v.SetDefault("router.rate_window_seconds", 60)
	v.SetDefault("router.max_tracked_keys", 0)

	// Persona defaults
	v.SetDefault("personas.path", "prompts.json")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.console", true)
}

// normalize folds case-insensitive values and trims pasted whitespace.
func normalize(cfg *Configuration) {
	cfg.Router.DefaultProvider = strings.ToLower(strings.TrimSpace(cfg.Router.DefaultProvider))
	cfg.Router.DefaultModel = strings.TrimSpace(cfg.Router.DefaultModel)
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))

	for _, c := range []*domain.Credential{
		&cfg.Providers.OpenAI,
		&cfg.Providers.Anthropic,
		&cfg.Providers.Gemini,
		&cfg.Providers.Grok,
	} {
		c.APIKey = strings.TrimSpace(c.APIKey)
		c.BaseURL = strings.TrimSpace(c.BaseURL)
	}
}
