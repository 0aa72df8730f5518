// Package config loads settings from defaults, an optional config file,
// UIKIT_* environment variables and bound command-line flags, in rising
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "UIKIT"
	DefaultBaseURL = "https://template-generator-ui.azurewebsites.net"
)

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Service ServiceConfig `mapstructure:"service"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Port    string        `mapstructure:"port"`
	CSRF    bool          `mapstructure:"csrf"`
	PageTTL time.Duration `mapstructure:"page_ttl"`
}

// ServiceConfig points at the remote template/packaging service.
type ServiceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CatalogConfig struct {
	// FallbackFile replaces the built-in fallback descriptors when set.
	FallbackFile string `mapstructure:"fallback_file"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.csrf", true)
	v.SetDefault("server.page_ttl", 30*time.Minute)
	v.SetDefault("service.base_url", DefaultBaseURL)
	v.SetDefault("service.timeout", 60*time.Second)
	v.SetDefault("catalog.fallback_file", "")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// New returns a viper instance with defaults and environment lookup wired.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file (when non-empty) into v and decodes the result.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server.port must be set")
	}
	u, err := url.Parse(c.Service.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("service.base_url %q is not an absolute URL", c.Service.BaseURL)
	}
	if c.Service.Timeout <= 0 {
		return fmt.Errorf("service.timeout must be positive, got %s", c.Service.Timeout)
	}
	if c.Server.PageTTL < 0 {
		return fmt.Errorf("server.page_ttl cannot be negative, got %s", c.Server.PageTTL)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
