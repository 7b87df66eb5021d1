package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"

	"frontdesk-bot/internal/store"
)

type StateBackend string

const (
	BackendMemory StateBackend = "memory"
	BackendRedis  StateBackend = "redis"
)

// Storage is the part of the configuration the offline commands need.
type Storage struct {
	DatabaseURL     string `env:"DATABASE_URL" envDefault:"sqlite://bot.db"`
	RequestsChatID  int64  `env:"REQUESTS_CHAT_ID"`
	DefaultGreeting string `env:"DEFAULT_GREETING"`
}

type Config struct {
	BotToken string  `env:"BOT_TOKEN,required,notEmpty"`
	AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`

	Storage
	FilesDir string `env:"FILES_DIR" envDefault:"."`

	// Conversation state
	StateBackend StateBackend  `env:"STATE_BACKEND" envDefault:"memory"`
	RedisURL     string        `env:"REDIS_URL"`
	StateTTL     time.Duration `env:"STATE_TTL"`

	// Daily report, empty disables it
	ReportSchedule string `env:"REPORT_SCHEDULE" envDefault:"0 21 * * *"`
}

// Parse reads the environment and validates the result.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseStorage reads only the database settings, for commands that never
// talk to Telegram.
func ParseStorage() (*Storage, error) {
	st := &Storage{}
	if err := env.Parse(st); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if !store.SupportedDSN(st.DatabaseURL) {
		return nil, fmt.Errorf("unsupported DATABASE_URL %q", redactDSN(st.DatabaseURL))
	}
	return st, nil
}

func New() *Config {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.AdminIDs) == 0 {
		errs = append(errs, errors.New("ADMIN_IDS must list at least one user id"))
	}
	switch c.StateBackend {
	case BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis state backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STATE_BACKEND %q", c.StateBackend))
	}
	if c.StateTTL < 0 {
		errs = append(errs, errors.New("STATE_TTL must not be negative"))
	}
	if !store.SupportedDSN(c.DatabaseURL) {
		errs = append(errs, fmt.Errorf("unsupported DATABASE_URL %q", redactDSN(c.DatabaseURL)))
	}
	return errors.Join(errs...)
}

// redactDSN drops everything after the scheme so passwords stay out of logs.
func redactDSN(dsn string) string {
	if scheme, _, ok := strings.Cut(dsn, "://"); ok {
		return scheme + "://..."
	}
	return "..."
}
