// Package config loads application configuration and wires the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Cache    CacheConfig    `yaml:"cache" mapstructure:"cache"`
	LinkedIn LinkedInConfig `yaml:"linkedin" mapstructure:"linkedin"`
	Medium   MediumConfig   `yaml:"medium" mapstructure:"medium"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// FetchConfig configures outbound requests to upstream sources.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyKB   int    `yaml:"max_body_kb" mapstructure:"max_body_kb"`
}

// Timeout returns the fetch timeout as a duration.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSecs) * time.Second
}

// CacheConfig configures the result cache tiers.
type CacheConfig struct {
	TTLMinutes int    `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
	DataDir    string `yaml:"data_dir" mapstructure:"data_dir"`
}

// TTL returns the in-memory freshness window as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// LinkedInConfig points at the LinkedIn profile source.
type LinkedInConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// MediumConfig points at the Medium author feed source.
type MediumConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PROFILE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; profile-api/1.0)")
	v.SetDefault("fetch.max_body_kb", 1024)
	v.SetDefault("cache.ttl_minutes", 10)
	v.SetDefault("cache.data_dir", "data")
	v.SetDefault("linkedin.base_url", "https://www.linkedin.com")
	v.SetDefault("medium.base_url", "https://medium.com")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
