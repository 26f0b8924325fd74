package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	CacheBackendRedis  = "redis"
	CacheBackendSQLite = "sqlite"
	CacheBackendMemory = "memory"
	CacheBackendNone   = "none"
)

type Config struct {
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	AnthropicBaseURL string `env:"ANTHROPIC_BASE_URL"`
	OpenAIBaseURL    string `env:"OPENAI_BASE_URL"`

	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"60s"`
	FetchTimeout    time.Duration `env:"FETCH_TIMEOUT"    envDefault:"20s"`

	CacheBackend          string `env:"CACHE_BACKEND"            envDefault:"redis"`
	RedisURL              string `env:"REDIS_URL"                envDefault:"redis://localhost:6379/0"`
	DBPath                string `env:"DB_PATH"                  envDefault:"cache.sqlite"`
	MemoryCacheMaxEntries int    `env:"MEMORY_CACHE_MAX_ENTRIES" envDefault:"1024"`

	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	TelegramToken string  `env:"TELEGRAM_TOKEN"`
	AllowedUsers  []int64 `env:"ALLOWED_USERS"`

	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`
}

func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err = cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	var errs []error

	if c.AnthropicAPIKey == "" && c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("ANTHROPIC_API_KEY or OPENAI_API_KEY must be set"))
	}

	switch c.CacheBackend {
	case CacheBackendRedis, CacheBackendSQLite, CacheBackendMemory, CacheBackendNone:
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend))
	}

	if c.ProviderTimeout <= 0 || c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}

	return errors.Join(errs...)
}
