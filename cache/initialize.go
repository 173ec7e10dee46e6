package cache

import (
	"os"

	"github.com/ZairesDev/Just-Tech-News/config"

	"github.com/umakantv/go-utils/cache"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

// InitializeCache connects to Redis, which backs the session store.
func InitializeCache(cfg config.Config) cache.Cache {
	c, err := cache.New(cache.Config{
		Type:          "redis",
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       0,
	})
	if err != nil {
		logger.Error("Failed to initialize cache:", zap.Error(err))
		os.Exit(1)
	}
	return c
}
