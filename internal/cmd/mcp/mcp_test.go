package mcp

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.App.CampsDB != "data/camps.db" {
		t.Fatalf("expected default camps db, got %q", cfg.App.CampsDB)
	}
	if cfg.App.NotificationsDB != "data/notifications.db" {
		t.Fatalf("expected default notifications db, got %q", cfg.App.NotificationsDB)
	}
	if cfg.Transport != "stdio" {
		t.Fatalf("expected default transport stdio, got %q", cfg.Transport)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.Log.Level)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("CAMPTRACK_CAMPS_DB", "env-camps.db")
	t.Setenv("CAMPTRACK_LOCALE", "pt-BR")

	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-camps-db", "flag-camps.db", "-log-level", "debug"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.App.CampsDB != "flag-camps.db" {
		t.Fatalf("expected flag camps db, got %q", cfg.App.CampsDB)
	}
	if cfg.App.Locale != "pt-BR" {
		t.Fatalf("expected env locale, got %q", cfg.App.Locale)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected flag log level, got %q", cfg.Log.Level)
	}
}

func TestParseConfigRejectsUnknownTransport(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	if _, err := ParseConfig(fs, []string{"-transport", "http"}); err == nil {
		t.Fatal("expected unsupported transport error")
	}
}
