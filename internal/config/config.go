package config

import (
	"fmt"
	"os"
	"time"
)

const (
	defaultListenAddr   = ":8080"
	defaultDatabaseURL  = "channelbot.db"
	defaultAggWindow    = "500ms"
	defaultBaseLang     = "en"
	defaultTokenTTL     = "12h"
	defaultFeedPageSize = "50"
)

// Config holds runtime settings loaded from the environment.
type Config struct {
	ListenAddr  string
	DatabaseURL string

	// OperatorPassHash is the bcrypt hash of the operator passphrase,
	// exchanged for a session token at /auth/token.
	OperatorPassHash string
	JWTSecret        string
	TokenTTL         time.Duration

	AggregationWindow time.Duration
	BaseLang          string
	FeedPageSize      int
}

func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:       envOrDefault("LISTEN_ADDR", defaultListenAddr),
		DatabaseURL:      envOrDefault("DATABASE_URL", defaultDatabaseURL),
		OperatorPassHash: os.Getenv("OPERATOR_PASS_HASH"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		BaseLang:         envOrDefault("CONTENT_BASE_LANG", defaultBaseLang),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is empty")
	}
	if cfg.OperatorPassHash == "" {
		return nil, fmt.Errorf("OPERATOR_PASS_HASH is empty")
	}

	var err error
	if cfg.TokenTTL, err = parseDuration("TOKEN_TTL", defaultTokenTTL); err != nil {
		return nil, err
	}
	if cfg.AggregationWindow, err = parseDuration("AGGREGATION_WINDOW", defaultAggWindow); err != nil {
		return nil, err
	}
	if cfg.AggregationWindow <= 0 {
		return nil, fmt.Errorf("AGGREGATION_WINDOW must be positive")
	}

	var size int
	if _, err := fmt.Sscanf(envOrDefault("FEED_PAGE_SIZE", defaultFeedPageSize), "%d", &size); err != nil || size <= 0 {
		return nil, fmt.Errorf("FEED_PAGE_SIZE is invalid")
	}
	cfg.FeedPageSize = size

	return cfg, nil
}

func parseDuration(name, def string) (time.Duration, error) {
	raw := envOrDefault(name, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s is not a valid duration: %q", name, raw)
	}
	return d, nil
}

func envOrDefault(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
