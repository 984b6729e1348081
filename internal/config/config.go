// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable consulted when no -config flag is given.
const EnvConfigPath = "MINDMEND_CONFIG"

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	HistoryLimit   int           `yaml:"history_limit"` // messages kept from client history
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty disables caching and rate limiting
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"` // per window per client; 0 disables
	Window   time.Duration `yaml:"window"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"` // empty leaves the API open
}

type BotConfig struct {
	Token   string `yaml:"token"`   // empty disables Telegram
	Workers int    `yaml:"workers"` // polling workers
	Lang    string `yaml:"lang"`    // chat UI language, locales/<lang>.yaml
}

type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Path    string `yaml:"path"`
}

func (m MetricsConfig) On() bool { return m.Enabled == nil || *m.Enabled }

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Auth      AuthConfig      `yaml:"auth"`
	Bot       BotConfig       `yaml:"bot"`
	Metrics   MetricsConfig   `yaml:"metrics"`

	Runtime RuntimeConfig `yaml:"-"`
}

// ResolvePath picks the config file: the flag value if set, then $MINDMEND_CONFIG, then config.yaml.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(EnvConfigPath); v != "" {
		return v
	}
	return "config.yaml"
}

// LoadConfig reads the YAML file at path. A missing file yields the defaults.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// run on defaults
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 10 * time.Second
	}
	if cfg.Server.HistoryLimit == 0 {
		cfg.Server.HistoryLimit = 8
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		cfg.Server.MaxBodyBytes = 64 << 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL)
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = time.Minute
	}
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 4
	}
	if cfg.Bot.Lang == "" {
		cfg.Bot.Lang = "en"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

// Minimal validation
func (cfg *Config) validate() error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", cfg.Server.Port)
	}
	if cfg.Server.HistoryLimit < 0 {
		return errors.New("server.history_limit must not be negative")
	}
	if cfg.RateLimit.Requests < 0 {
		return errors.New("rate_limit.requests must not be negative")
	}
	if cfg.RateLimit.Requests > 0 && cfg.RateLimit.Window <= 0 {
		return errors.New("rate_limit.window must be positive")
	}
	if cfg.RateLimit.Requests > 0 && cfg.Redis.URL == "" {
		return errors.New("rate_limit requires redis.url")
	}
	return nil
}

func (cfg *Config) Addr() string { return fmt.Sprintf(":%d", cfg.Server.Port) }

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
