package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Storage
	DBDSN        string `env:"DB_DSN"`
	DBPassword   string `env:"DB_PASSWORD"`
	RedisCache   string `env:"REDIS_CACHE"`
	RedisMutex   string `env:"REDIS_MUTEX"`
	RedisLimiter string `env:"REDIS_LIMITER"`
	RedisDB      string `env:"REDIS_DB"`

	// Secrets
	JWTSecret   string `env:"JWT_SECRET"`
	AdminSecret string `env:"ADMIN_SECRET"`

	// Push
	PushAPIURL      string        `env:"PUSH_API_URL" envDefault:"https://exp.host/--/api/v2/push/send"`
	PushAccessToken string        `env:"PUSH_ACCESS_TOKEN"`
	PushTimeout     time.Duration `env:"PUSH_TIMEOUT" envDefault:"10s"`

	// Birthday job
	BirthdayJobTZ string `env:"BIRTHDAY_JOB_TZ" envDefault:"Europe/Berlin"`
	BirthdayCron  string `env:"BIRTHDAY_CRON" envDefault:"0 9 * * *"`

	// Staff notifications
	TelegramBotToken    string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramStaffChatID int64  `env:"TELEGRAM_STAFF_CHAT_ID"`

	// API
	APIMode    string   `env:"API_MODE" envDefault:"release"`
	APIOrigins []string `env:"API_ORIGINS" envSeparator:","`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.BirthdayJobTZ)
	if err != nil {
		return nil, fmt.Errorf("BIRTHDAY_JOB_TZ: %w", err)
	}
	return loc, nil
}

func (c *Config) Debug() bool {
	return strings.EqualFold(c.APIMode, "debug")
}

func (c *Config) Origins() []string {
	if len(c.APIOrigins) == 0 {
		return []string{"*"}
	}
	return c.APIOrigins
}
