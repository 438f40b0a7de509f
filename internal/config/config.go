// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ericfisherdev/aipclient/internal/domain/model"
)

const (
	defaultBaseURL        = "https://aip.baidubce.com"
	defaultListenAddr     = "127.0.0.1:8080"
	defaultDBPath         = "aipclient.db"
	defaultHTTPTimeout    = 30 * time.Second
	defaultLexerCacheSize = 256
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Client         model.ClientConfig
	BaseURL        string        `validate:"required,url"`
	ListenAddr     string        `validate:"required,hostname_port"`
	DBPath         string        `validate:"required"`
	HTTPTimeout    time.Duration `validate:"gt=0"`
	LexerCacheSize int           `validate:"gte=0"`
}

// Load reads configuration from environment variables and returns a validated Config.
// AIP_API_KEY and AIP_SECRET_KEY are required; AIP_APP_ID is optional.
// Optional variables with defaults: AIP_BASE_URL (https://aip.baidubce.com),
// AIP_LISTEN_ADDR (127.0.0.1:8080), AIP_DB_PATH (aipclient.db),
// AIP_HTTP_TIMEOUT (30s), AIP_LEXER_CACHE_SIZE (256, 0 disables).
func Load() (*Config, error) {
	cfg := &Config{
		Client: model.ClientConfig{
			AppID:     os.Getenv("AIP_APP_ID"),
			APIKey:    os.Getenv("AIP_API_KEY"),
			SecretKey: os.Getenv("AIP_SECRET_KEY"),
		},
		BaseURL:        envOr("AIP_BASE_URL", defaultBaseURL),
		ListenAddr:     envOr("AIP_LISTEN_ADDR", defaultListenAddr),
		DBPath:         envOr("AIP_DB_PATH", defaultDBPath),
		HTTPTimeout:    defaultHTTPTimeout,
		LexerCacheSize: defaultLexerCacheSize,
	}

	if v, ok := os.LookupEnv("AIP_HTTP_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("AIP_HTTP_TIMEOUT has invalid duration %q: %w", v, err)
		}
		cfg.HTTPTimeout = parsed
	}

	if v, ok := os.LookupEnv("AIP_LEXER_CACHE_SIZE"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("AIP_LEXER_CACHE_SIZE has invalid size %q: %w", v, err)
		}
		cfg.LexerCacheSize = parsed
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
