package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL      string
	RedisURL         string
	TelegramBotToken string
	APIKey           string

	RefreshIntervalSecs int
	TopPairLimit        int
	QuoteSuffix         string
	RankedLimit         int
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		APIKey:           strings.TrimSpace(os.Getenv("API_KEY")),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}

	cfg.RefreshIntervalSecs = 300
	if v := strings.TrimSpace(os.Getenv("REFRESH_INTERVAL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RefreshIntervalSecs = n
		}
	}

	cfg.TopPairLimit = 20
	if v := strings.TrimSpace(os.Getenv("TOP_PAIR_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TopPairLimit = n
		}
	}

	cfg.QuoteSuffix = strings.ToUpper(strings.TrimSpace(os.Getenv("QUOTE_SUFFIX")))
	if cfg.QuoteSuffix == "" {
		cfg.QuoteSuffix = "EUR"
	}

	cfg.RankedLimit = 10
	if v := strings.TrimSpace(os.Getenv("RANKED_LIMIT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RankedLimit = n
		}
	}

	return cfg
}
