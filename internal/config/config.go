// Package config loads server configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Store drivers accepted by BANKLEDGER_STORE.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds everything cmd/bankd needs to assemble the server.
type Config struct {
	Addr       string
	Store      string
	SQLitePath string

	// DatabaseURL is required when Store is "postgres".
	DatabaseURL string

	// RedisAddr enables the statement rate limiter when non-empty.
	RedisAddr        string
	RateCapacity     int
	RateRefillPerSec int

	MaxBodyBytes int64
}

// Load reads the environment and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:             getenv("BANKLEDGER_ADDR", ":8080"),
		Store:            getenv("BANKLEDGER_STORE", StoreMemory),
		SQLitePath:       getenv("BANKLEDGER_SQLITE_PATH", "bankledger.db"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RateCapacity:     getenvInt("BANKLEDGER_RATE_CAPACITY", 20),
		RateRefillPerSec: getenvInt("BANKLEDGER_RATE_REFILL_PER_SEC", 10),
		MaxBodyBytes:     int64(getenvInt("BANKLEDGER_MAX_BODY_BYTES", 1<<20)),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks driver names and their required settings.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite, StorePostgres:
	default:
		return fmt.Errorf("invalid BANKLEDGER_STORE %q: expected memory, sqlite or postgres", c.Store)
	}
	if c.Store == StorePostgres && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required when BANKLEDGER_STORE is postgres")
	}
	if c.Store == StoreSQLite && c.SQLitePath == "" {
		return errors.New("BANKLEDGER_SQLITE_PATH must not be empty")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("BANKLEDGER_MAX_BODY_BYTES must be positive")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
