// Package config loads the ambient service configuration (HTTP facade,
// logging, result cache, cron schedule) that wraps the analysis core. It
// does not carry analysis Settings itself — model.Settings is constructed
// per-run and validated independently (spec.md §9's note against
// process-wide mutable configuration).
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config is the service's runtime configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Cron   CronConfig   `mapstructure:"cron"`
}

// ServerConfig configures the read-only HTTP query facade.
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`

	// QueryRateLimitPerSecond / QueryRateBurst bound sustained read traffic
	// on the query endpoints (golang.org/x/time/rate).
	QueryRateLimitPerSecond float64 `mapstructure:"query_rate_limit_per_second"`
	QueryRateBurst          int     `mapstructure:"query_rate_burst"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// RedisConfig configures the facade's DealResults response cache. The cache
// is keyed by deal ID and query name; it is never the source of truth for
// ledger data.
type RedisConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// CronConfig configures the optional scheduled re-analysis job.
type CronConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"` // standard 5-field cron expression
}

// Load reads ./config.yaml (or ./configs/config.yaml), applies
// PERFORMA_-prefixed environment variable overrides, and returns a fully
// populated Config. A missing config file falls back to defaults rather
// than failing — the service runs with zero configuration out of the box.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("PERFORMA")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			fmt.Println("config file not found, using default values")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if redisPassword := os.Getenv("PERFORMA_REDIS_PASSWORD"); redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.query_rate_limit_per_second", 20)
	viper.SetDefault("server.query_rate_burst", 40)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file_path", "logs/performa.log")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttl_seconds", 30)

	viper.SetDefault("cron.enabled", false)
	viper.SetDefault("cron.schedule", "0 2 * * *")
}
