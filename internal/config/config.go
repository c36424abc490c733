package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr     string
	BotToken     string
	DatabasePath string

	StartBalance  int64
	DefaultBet    int64
	MinBet        int64
	MaxBet        int64
	DeckCount     int
	HitSoft17     bool
	BlackjackPays float64

	RateLimit   int
	CORSOrigins []string

	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		BotToken:     os.Getenv("BOT_TOKEN"),
		DatabasePath: getEnv("DATABASE_PATH", "./blackjack.db"),
		CORSOrigins:  splitList(getEnv("CORS_ORIGINS", "*")),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.StartBalance, err = getInt64("START_BALANCE", 1000); err != nil {
		return nil, err
	}
	if cfg.DefaultBet, err = getInt64("DEFAULT_BET", 100); err != nil {
		return nil, err
	}
	if cfg.MinBet, err = getInt64("MIN_BET", 1); err != nil {
		return nil, err
	}
	if cfg.MaxBet, err = getInt64("MAX_BET", 10000); err != nil {
		return nil, err
	}
	if cfg.DeckCount, err = getInt("DECK_COUNT", 1); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = getInt("RATE_LIMIT", 100); err != nil {
		return nil, err
	}
	if cfg.HitSoft17, err = getBool("HIT_SOFT_17", false); err != nil {
		return nil, err
	}
	if cfg.BlackjackPays, err = getFloat("BLACKJACK_PAYS", 1); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MinBet < 1 {
		return fmt.Errorf("MIN_BET must be at least 1, got %d", c.MinBet)
	}
	if c.MaxBet < c.MinBet {
		return fmt.Errorf("MAX_BET %d is below MIN_BET %d", c.MaxBet, c.MinBet)
	}
	if c.DeckCount < 1 {
		return fmt.Errorf("DECK_COUNT must be at least 1, got %d", c.DeckCount)
	}
	if c.StartBalance < 0 {
		return fmt.Errorf("START_BALANCE must not be negative, got %d", c.StartBalance)
	}
	if c.BlackjackPays < 0 {
		return fmt.Errorf("BLACKJACK_PAYS must not be negative, got %v", c.BlackjackPays)
	}
	if c.RateLimit < 1 {
		return fmt.Errorf("RATE_LIMIT must be at least 1, got %d", c.RateLimit)
	}
	return nil
}

// Logging configures the global logrus logger from LOG_LEVEL and LOG_FORMAT.
func Logging(cfg *Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return n, nil
}

func getInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return n, nil
}

func getFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return f, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
