package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings for the service. Every field has a
// local-dev default so the server starts with no environment at all.
type Config struct {
	Port          string
	DBPath        string
	MigrationsDir string
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration
}

// Load reads an optional .env file and resolves the configuration from the
// environment.
func Load() Config {
	godotenv.Load()

	ttl := 24 * time.Hour
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			ttl = d
		}
	}

	return Config{
		Port:          getenv("PORT", "8080"),
		DBPath:        getenv("DB_PATH", "./just_tech_news.db"),
		MigrationsDir: getenv("MIGRATIONS_DIR", "./database/migrations"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		SessionTTL:    ttl,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
