package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvPrefix = "CYCLESENSE"

	// InsecureSecretKey is the placeholder default; serve refuses to start with it.
	InsecureSecretKey = "change_me_in_production"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Cycle     CycleConfig     `mapstructure:"cycle"`
	Reminders RemindersConfig `mapstructure:"reminders"`
	Insights  InsightsConfig  `mapstructure:"insights"`
}

type ServerConfig struct {
	Port         string `mapstructure:"port"`
	Timezone     string `mapstructure:"timezone"`
	SecretKey    string `mapstructure:"secret_key"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CycleConfig bounds the profile baseline a user may store.
type CycleConfig struct {
	DefaultCycleLength int `mapstructure:"default_cycle_length"`
	MinCycleLength     int `mapstructure:"min_cycle_length"`
	MaxCycleLength     int `mapstructure:"max_cycle_length"`
	HistoryLimit       int `mapstructure:"history_limit"`
}

type RemindersConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Interval         time.Duration `mapstructure:"interval"`
	TelegramBotToken string        `mapstructure:"telegram_bot_token"`
	DefaultChatID    string        `mapstructure:"default_chat_id"`
}

type InsightsConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"`
	Model         string `mapstructure:"model"`
	RatePerMinute int    `mapstructure:"rate_per_minute"`
}

// Load reads defaults, then the optional YAML file at path, then
// CYCLESENSE_* environment variables (server.port -> CYCLESENSE_SERVER_PORT).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.timezone", "UTC")
	v.SetDefault("server.secret_key", InsecureSecretKey)
	v.SetDefault("server.cookie_secure", false)

	v.SetDefault("database.path", "data/cyclesense.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("cycle.default_cycle_length", 28)
	v.SetDefault("cycle.min_cycle_length", 20)
	v.SetDefault("cycle.max_cycle_length", 45)
	v.SetDefault("cycle.history_limit", 12)

	v.SetDefault("reminders.enabled", false)
	v.SetDefault("reminders.interval", "6h")
	v.SetDefault("reminders.telegram_bot_token", "")
	v.SetDefault("reminders.default_chat_id", "")

	v.SetDefault("insights.enabled", false)
	v.SetDefault("insights.api_key", "")
	v.SetDefault("insights.base_url", "https://api.openai.com/v1")
	v.SetDefault("insights.model", "gpt-4o-mini")
	v.SetDefault("insights.rate_per_minute", 2)
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return fmt.Errorf("server.port is required")
	}
	if len(c.Server.SecretKey) < 16 {
		return fmt.Errorf("server.secret_key must be at least 16 characters")
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path is required")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.Cycle.MinCycleLength < 1 || c.Cycle.MinCycleLength > c.Cycle.MaxCycleLength {
		return fmt.Errorf("cycle.min_cycle_length must be between 1 and cycle.max_cycle_length")
	}
	if c.Cycle.DefaultCycleLength < c.Cycle.MinCycleLength || c.Cycle.DefaultCycleLength > c.Cycle.MaxCycleLength {
		return fmt.Errorf("cycle.default_cycle_length must be within [%d, %d]", c.Cycle.MinCycleLength, c.Cycle.MaxCycleLength)
	}
	if c.Cycle.HistoryLimit < 2 {
		return fmt.Errorf("cycle.history_limit must be at least 2")
	}

	if c.Reminders.Enabled {
		if c.Reminders.Interval < time.Minute {
			return fmt.Errorf("reminders.interval must be at least 1 minute")
		}
		if c.Reminders.TelegramBotToken == "" {
			return fmt.Errorf("reminders.telegram_bot_token is required when reminders are enabled")
		}
	}

	if c.Insights.Enabled {
		if c.Insights.APIKey == "" {
			return fmt.Errorf("insights.api_key is required when insights are enabled")
		}
		if c.Insights.Model == "" {
			return fmt.Errorf("insights.model is required when insights are enabled")
		}
		if c.Insights.RatePerMinute < 1 {
			return fmt.Errorf("insights.rate_per_minute must be at least 1")
		}
	}

	return nil
}

// Location resolves server.timezone, falling back to UTC for unknown zones.
func (c *Config) Location() (*time.Location, bool) {
	location, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC, false
	}
	return location, true
}
