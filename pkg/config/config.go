// Package config provides configuration loading and validation utilities.
package config

import "time"

// Config holds runtime configuration for the chatdotfun bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Log       LogConfig       `mapstructure:"log"`
	Market    MarketConfig    `mapstructure:"market"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
}

// ServerConfig controls the webhook HTTP server.
type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=json text"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// MarketConfig parameterizes the shared bonding curve.
type MarketConfig struct {
	BasePrice        float64 `mapstructure:"base_price" validate:"gte=0"`
	Scale            float64 `mapstructure:"scale" validate:"gt=0"`
	FlatTokensPerSol float64 `mapstructure:"flat_tokens_per_sol" validate:"gt=0"`
}

// RateLimitConfig controls the per-sender message limiter.
type RateLimitConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Limit     int           `mapstructure:"limit" validate:"omitempty,gt=0"`
	Window    time.Duration `mapstructure:"window"`
	RedisAddr string        `mapstructure:"redis_addr"`
}

// SentryConfig controls error reporting.
type SentryConfig struct {
	DSN string `mapstructure:"dsn"`
}

// Enabled reports whether Sentry reporting is configured.
func (c SentryConfig) Enabled() bool {
	return c.DSN != ""
}

// TelegramConfig controls the optional Telegram front-end.
type TelegramConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Token       string        `mapstructure:"token" validate:"required_if=Enabled true"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}
