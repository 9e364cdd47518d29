package config

import (
	"time"

	"github.com/Adaptanoide/Photo-Gallery-sub002/internal/logger"

	"github.com/spf13/viper"
)

// Config application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Legacy      LegacyConfig      `mapstructure:"legacy"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Queue       QueueConfig       `mapstructure:"queue"`
	Reconcile   ReconcileConfig   `mapstructure:"reconcile"`
	Reservation ReservationConfig `mapstructure:"reservation"`
	Sweep       SweepConfig       `mapstructure:"sweep"`
	Cache       CacheConfig       `mapstructure:"cache"`
	CORS        CORSConfig        `mapstructure:"cors"`
	Security    SecurityConfig    `mapstructure:"security"`
}

// ServerConfig HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig log configuration
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions converts to logger options
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig connection pool configuration
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig application store configuration
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // sqlite / postgres
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// LegacyConfig CDE warehouse database configuration (read-only MySQL)
type LegacyConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	DSN                string `mapstructure:"dsn"`
	Table              string `mapstructure:"table"`
	TimeoutSeconds     int    `mapstructure:"timeout_seconds"`
	ChangeWindowHours  int    `mapstructure:"change_window_hours"`
	CacheTTLMinutes    int    `mapstructure:"cache_ttl_minutes"`
	MaxBlockedPerQuery int    `mapstructure:"max_blocked_per_query"`
}

// Timeout bounded per-call timeout for legacy queries
func (c LegacyConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ChangeWindow recent-change lookback window for reconciliation pulls
func (c LegacyConfig) ChangeWindow() time.Duration {
	if c.ChangeWindowHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.ChangeWindowHours) * time.Hour
}

// RedisConfig redis configuration
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig async queue configuration
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// ReconcileConfig reconciliation engine configuration
type ReconcileConfig struct {
	IntervalMinutes int `mapstructure:"interval_minutes"`
}

// Interval reconciliation cycle interval
func (c ReconcileConfig) Interval() time.Duration {
	if c.IntervalMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// ReservationConfig customer reservation configuration
type ReservationConfig struct {
	DefaultTTLMinutes int `mapstructure:"default_ttl_minutes"`
	MaxTTLMinutes     int `mapstructure:"max_ttl_minutes"`
	LockTTLMinutes    int `mapstructure:"lock_ttl_minutes"`
}

// SweepConfig expiration sweeper configuration
type SweepConfig struct {
	IntervalMinutes       int `mapstructure:"interval_minutes"`
	ConsistencyScanHours  int `mapstructure:"consistency_scan_hours"`
}

// Interval expiration sweep interval
func (c SweepConfig) Interval() time.Duration {
	if c.IntervalMinutes <= 0 {
		return time.Minute
	}
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// ConsistencyScanInterval interval between queued cart consistency scans
func (c SweepConfig) ConsistencyScanInterval() time.Duration {
	if c.ConsistencyScanHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.ConsistencyScanHours) * time.Hour
}

// CacheConfig read-through cache configuration
type CacheConfig struct {
	DefaultTTLMinutes  int `mapstructure:"default_ttl_minutes"`
	PurgeCeilingHours  int `mapstructure:"purge_ceiling_hours"`
	PurgeIntervalMin   int `mapstructure:"purge_interval_minutes"`
}

// CORSConfig CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig security configuration
type SecurityConfig struct {
	ReserveRateLimit RateLimitConfig `mapstructure:"reserve_rate_limit"`
}

// RateLimitConfig request rate limit configuration
type RateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// Load reads config.yml with defaults for every key
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("./etc")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("log.dir", "")
	viper.SetDefault("log.filename", "gallery.log")
	viper.SetDefault("log.max_size_mb", 100)
	viper.SetDefault("log.max_backups", 7)
	viper.SetDefault("log.max_age_days", 30)
	viper.SetDefault("log.compress", true)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "./db/gallery.db")
	viper.SetDefault("database.pool.max_open_conns", 1)
	viper.SetDefault("database.pool.max_idle_conns", 1)
	viper.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	viper.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	viper.SetDefault("legacy.enabled", true)
	viper.SetDefault("legacy.dsn", "")
	viper.SetDefault("legacy.table", "cde_inventory")
	viper.SetDefault("legacy.timeout_seconds", 15)
	viper.SetDefault("legacy.change_window_hours", 24)
	viper.SetDefault("legacy.cache_ttl_minutes", 5)
	viper.SetDefault("legacy.max_blocked_per_query", 200)
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "127.0.0.1")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.prefix", "pg")
	viper.SetDefault("queue.enabled", false)
	viper.SetDefault("queue.host", "127.0.0.1")
	viper.SetDefault("queue.port", 6379)
	viper.SetDefault("queue.password", "")
	viper.SetDefault("queue.db", 1)
	viper.SetDefault("queue.concurrency", 5)
	viper.SetDefault("queue.queues", map[string]int{"default": 1})
	viper.SetDefault("reconcile.interval_minutes", 5)
	viper.SetDefault("reservation.default_ttl_minutes", 120)
	viper.SetDefault("reservation.max_ttl_minutes", 1440)
	viper.SetDefault("reservation.lock_ttl_minutes", 30)
	viper.SetDefault("sweep.interval_minutes", 1)
	viper.SetDefault("sweep.consistency_scan_hours", 24)
	viper.SetDefault("cache.default_ttl_minutes", 5)
	viper.SetDefault("cache.purge_ceiling_hours", 2)
	viper.SetDefault("cache.purge_interval_minutes", 15)
	viper.SetDefault("cors.allowed_origins", []string{"*"})
	viper.SetDefault("cors.allow_credentials", false)
	viper.SetDefault("cors.max_age", 3600)
	viper.SetDefault("security.reserve_rate_limit.window_seconds", 60)
	viper.SetDefault("security.reserve_rate_limit.max_requests", 30)

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_not_loaded", "error", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
	}
	return &cfg
}
