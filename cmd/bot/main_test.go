package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(out.String(), "frontdesk-bot dev") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestMigrateThenStats(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:///"+filepath.Join(t.TempDir(), "bot.db"))

	var out bytes.Buffer
	migrate := newMigrateCmd()
	migrate.SetOut(&out)
	migrate.SetArgs([]string{})
	if err := migrate.Execute(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	out.Reset()
	stats := newStatsCmd()
	stats.SetOut(&out)
	stats.SetArgs([]string{"--json"})
	if err := stats.Execute(); err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out.String(), `"total": 0`) {
		t.Fatalf("unexpected stats output: %q", out.String())
	}
}
