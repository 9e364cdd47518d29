package cache

import (
	"fmt"
	"strings"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/config"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client
var redisPrefix string
var redisEnabled bool

// InitRedis initializes the optional redis client (rate limiting)
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		redisEnabled = false
		return nil
	}
	addr := strings.TrimSpace(cfg.Host)
	if addr == "" {
		addr = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	redisPrefix = strings.TrimSpace(cfg.Prefix)
	if redisPrefix == "" {
		redisPrefix = "pg"
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", addr, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	redisEnabled = true
	return nil
}

// RedisEnabled reports whether redis is configured
func RedisEnabled() bool {
	return redisEnabled && redisClient != nil
}

// RedisClient returns the redis client, nil when disabled
func RedisClient() *redis.Client {
	if !RedisEnabled() {
		return nil
	}
	return redisClient
}

// RedisPrefix returns the configured key prefix
func RedisPrefix() string {
	if redisPrefix == "" {
		return "pg"
	}
	return redisPrefix
}
