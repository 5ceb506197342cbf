// Package config reads service configuration from the environment,
// optionally seeded from a .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the registration service.
type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDatabase   string
	UnitPrice       int64
	CatalogCacheTTL time.Duration
}

// Load parses configuration from the process environment, applying
// local-development defaults for anything unset. A missing .env file is
// not an error; system environment variables still apply.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPPort:        getEnv("PORT", "8080"),
		MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGODB_DATABASE", "eventworks"),
		UnitPrice:       4000,
		CatalogCacheTTL: 5 * time.Minute,
	}

	if raw := strings.TrimSpace(os.Getenv("PRICE_PER_ATTENDANCE")); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || price <= 0 {
			return Config{}, fmt.Errorf("invalid PRICE_PER_ATTENDANCE %q", raw)
		}
		cfg.UnitPrice = price
	}

	if raw := strings.TrimSpace(os.Getenv("CATALOG_CACHE_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl < 0 {
			return Config{}, fmt.Errorf("invalid CATALOG_CACHE_TTL %q", raw)
		}
		cfg.CatalogCacheTTL = ttl
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
