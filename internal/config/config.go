// Package config loads LegalEase settings from a config file, a .env file
// and LEGALEASE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "LEGALEASE"

type Config struct {
	Ollama      OllamaConfig      `mapstructure:"ollama"`
	Translation TranslationConfig `mapstructure:"translation"`
	Detector    DetectorConfig    `mapstructure:"detector"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Store       StoreConfig       `mapstructure:"store"`
	Server      ServerConfig      `mapstructure:"server"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// OllamaConfig configures the answer generation backend.
type OllamaConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Primary   string        `mapstructure:"primary_model"`
	Secondary string        `mapstructure:"secondary_model"`
	// Sequential asks the models one after the other instead of in parallel.
	Sequential bool `mapstructure:"sequential"`
}

type TranslationConfig struct {
	// Backends are tried in order until one succeeds.
	Backends      []string      `mapstructure:"backends"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ChunkSize     int           `mapstructure:"chunk_size"`
	Credentials   string        `mapstructure:"google_credentials"`
	ProjectID     string        `mapstructure:"google_project"`
	MyMemoryEmail string        `mapstructure:"mymemory_email"`
	OllamaModel   string        `mapstructure:"ollama_model"`
}

type DetectorConfig struct {
	Backend    string `mapstructure:"backend"`
	SampleSize int    `mapstructure:"sample_size"`
}

type CacheConfig struct {
	Backend       string        `mapstructure:"backend"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	TTL           time.Duration `mapstructure:"ttl"`
}

type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	UploadDir   string `mapstructure:"upload_dir"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb"`

	// SessionTTL drops sessions idle for longer than this.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var (
	knownTranslators = map[string]bool{"google": true, "mymemory": true, "ollama": true}
	knownDetectors   = map[string]bool{"lingua": true, "whatlang": true}
	knownCaches      = map[string]bool{"sqlite": true, "redis": true, "none": true}
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.timeout", 120*time.Second)
	v.SetDefault("ollama.primary_model", "llama3")
	v.SetDefault("ollama.secondary_model", "gemma")

	v.SetDefault("translation.backends", []string{"google"})
	v.SetDefault("translation.timeout", 30*time.Second)
	v.SetDefault("translation.chunk_size", 4500)
	v.SetDefault("translation.ollama_model", "llama3")

	v.SetDefault("detector.backend", "lingua")
	v.SetDefault("detector.sample_size", 1000)

	v.SetDefault("cache.backend", "sqlite")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.ttl", 24*time.Hour)

	v.SetDefault("store.enabled", true)
	v.SetDefault("store.path", "./data/legalease.db")

	v.SetDefault("server.address", ":8501")
	v.SetDefault("server.upload_dir", "temp")
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("server.session_ttl", 2*time.Hour)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads configuration into a Config. An empty path searches ./config and
// the working directory for legalease.{yaml,json,toml}; a missing file is not
// an error.
func Load(v *viper.Viper, path string) (*Config, error) {
	loadEnvFile()

	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("legalease")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

// Validate checks backend names and durations.
func (c *Config) Validate() error {
	if c.Ollama.BaseURL == "" {
		return fmt.Errorf("ollama.base_url is required")
	}
	if c.Ollama.Timeout <= 0 {
		return fmt.Errorf("ollama.timeout must be > 0")
	}
	if c.Ollama.Primary == "" || c.Ollama.Secondary == "" {
		return fmt.Errorf("ollama.primary_model and ollama.secondary_model are required")
	}

	if len(c.Translation.Backends) == 0 {
		return fmt.Errorf("translation.backends must list at least one backend")
	}
	for _, b := range c.Translation.Backends {
		if !knownTranslators[b] {
			return fmt.Errorf("unknown translation backend %q", b)
		}
	}
	if c.Translation.Timeout <= 0 {
		return fmt.Errorf("translation.timeout must be > 0")
	}

	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be > 0")
	}
	if !knownDetectors[c.Detector.Backend] {
		return fmt.Errorf("unknown detector backend %q", c.Detector.Backend)
	}
	if !knownCaches[c.Cache.Backend] {
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "sqlite" && !c.Store.Enabled {
		return fmt.Errorf("cache.backend=sqlite requires store.enabled")
	}
	return nil
}
