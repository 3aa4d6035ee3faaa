package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Upstream UpstreamConfig
	Booking  BookingConfig
	JWT      JWTConfig
	SMTP     SMTPConfig
}

type ServerConfig struct {
	Port           int     `mapstructure:"port"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

func (c ServerConfig) RateLimit() float64 {
	if c.RateLimitRPS <= 0 {
		return 100
	}
	return c.RateLimitRPS
}

func (c ServerConfig) RateBurst() int {
	if c.RateLimitBurst <= 0 {
		return 200
	}
	return c.RateLimitBurst
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL          string `mapstructure:"url"`
	MaxRetries   int    `mapstructure:"max_retries"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// UpstreamConfig is the explicit configuration for the scheduling-service
// client. No ambient base URLs or token lookups; everything is injected.
type UpstreamConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Token          string `mapstructure:"token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MaxRetries     int    `mapstructure:"max_retries"`
	RetryBackoffMS int    `mapstructure:"retry_backoff_ms"`
}

func (c UpstreamConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c UpstreamConfig) RetryBackoff() time.Duration {
	if c.RetryBackoffMS <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

type BookingConfig struct {
	SlotGranularityMinutes int    `mapstructure:"slot_granularity_minutes"`
	NotesMaxLength         int    `mapstructure:"notes_max_length"`
	FetchTimeoutSeconds    int    `mapstructure:"fetch_timeout_seconds"`
	DraftTTLMinutes        int    `mapstructure:"draft_ttl_minutes"`
	DefaultDayStart        string `mapstructure:"default_day_start"`
	DefaultDayEnd          string `mapstructure:"default_day_end"`
}

func (c BookingConfig) Granularity() int {
	if c.SlotGranularityMinutes <= 0 {
		return 30
	}
	return c.SlotGranularityMinutes
}

func (c BookingConfig) NotesLimit() int {
	if c.NotesMaxLength <= 0 {
		return 500
	}
	return c.NotesMaxLength
}

func (c BookingConfig) FetchTimeout() time.Duration {
	if c.FetchTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

func (c BookingConfig) DraftTTL() time.Duration {
	if c.DraftTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.DraftTTLMinutes) * time.Minute
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
