package config

import (
	"strings"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", "11,22")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cfg.AdminIDs) != 2 || cfg.AdminIDs[0] != 11 || cfg.AdminIDs[1] != 22 {
		t.Fatalf("admin ids = %v", cfg.AdminIDs)
	}
	if cfg.DatabaseURL != "sqlite://bot.db" {
		t.Fatalf("database url = %q", cfg.DatabaseURL)
	}
	if cfg.StateBackend != BackendMemory || cfg.StateTTL != 0 {
		t.Fatalf("state defaults: %q %v", cfg.StateBackend, cfg.StateTTL)
	}
	if cfg.ReportSchedule != "0 21 * * *" || cfg.FilesDir != "." {
		t.Fatalf("report=%q files=%q", cfg.ReportSchedule, cfg.FilesDir)
	}
}

func TestParse_Redis(t *testing.T) {
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", "11")
	t.Setenv("STATE_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("STATE_TTL", "12h")
	t.Setenv("REQUESTS_CHAT_ID", "-1001234")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.StateTTL != 12*time.Hour || cfg.RequestsChatID != -1001234 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParse_MissingToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("ADMIN_IDS", "11")
	if _, err := Parse(); err == nil {
		t.Fatalf("expected error without BOT_TOKEN")
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		BotToken:     "t",
		AdminIDs:     []int64{1},
		Storage:      Storage{DatabaseURL: "postgres://user:secret@db/bot"},
		StateBackend: BackendMemory,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := map[string]func(c *Config){
		"no admins":      func(c *Config) { c.AdminIDs = nil },
		"redis no url":   func(c *Config) { c.StateBackend = BackendRedis },
		"bad backend":    func(c *Config) { c.StateBackend = "etcd" },
		"negative ttl":   func(c *Config) { c.StateTTL = -time.Second },
		"mysql database": func(c *Config) { c.DatabaseURL = "mysql://user:secret@db/bot" },
	}
	for name, mutate := range cases {
		c := valid
		c.AdminIDs = append([]int64(nil), valid.AdminIDs...)
		mutate(&c)
		err := c.Validate()
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if strings.Contains(err.Error(), "secret") {
			t.Fatalf("%s: password leaked: %v", name, err)
		}
	}
}

func TestParseStorage_NoToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("DATABASE_URL", "sqlite://data/bot.db")
	st, err := ParseStorage()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if st.DatabaseURL != "sqlite://data/bot.db" {
		t.Fatalf("database url = %q", st.DatabaseURL)
	}

	t.Setenv("DATABASE_URL", "redis://localhost")
	if _, err := ParseStorage(); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}
