package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPPort != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.SessionTTL != 7*24*time.Hour {
		t.Fatalf("expected seven day session TTL, got %v", cfg.SessionTTL)
	}
	if cfg.ArchiveSchedule != "@every 60s" {
		t.Fatalf("expected minute archive schedule, got %q", cfg.ArchiveSchedule)
	}
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatalf("expected missing file to be skipped, got %v", err)
	}
}

func TestLoad_ReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	payload := "http_port: 9090\ntimezone: Europe/Moscow\nsession_ttl: 48h\n"
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPPort != 9090 {
		t.Fatalf("expected port from file, got %d", cfg.HTTPPort)
	}
	if cfg.SessionTTL != 48*time.Hour {
		t.Fatalf("expected TTL from file, got %v", cfg.SessionTTL)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("http_port: 9090\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("SCHEDULE_HTTP_PORT", "7070")
	t.Setenv("SCHEDULE_SQLITE_DSN", "file:override.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPPort != 7070 {
		t.Fatalf("expected env override, got %d", cfg.HTTPPort)
	}
	if cfg.SQLiteDSN != "file:override.db" {
		t.Fatalf("expected env DSN, got %q", cfg.SQLiteDSN)
	}
}

func TestLoad_RejectsInvalidEnvValues(t *testing.T) {
	t.Setenv("SCHEDULE_HTTP_PORT", "not-a-port")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for invalid port")
	}
}

func TestLoad_RejectsUnknownTimezone(t *testing.T) {
	t.Setenv("SCHEDULE_TIMEZONE", "Mars/Olympus")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
}

func TestLoad_ParsesSessionTTLFromEnv(t *testing.T) {
	t.Setenv("SCHEDULE_SESSION_TTL", "12h")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Fatalf("expected 12h TTL, got %v", cfg.SessionTTL)
	}
}
