// Package config loads service configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime settings of the schedule service.
type Config struct {
	// HTTPPort is the listen port of the API server.
	HTTPPort int

	// SQLiteDSN locates the database file.
	SQLiteDSN string

	// SessionTTL bounds the lifetime of issued auth tokens.
	SessionTTL time.Duration

	// ArchiveSchedule is the cron expression driving the archival sweep.
	ArchiveSchedule string

	// Timezone is the IANA zone used for past-due checks and calendar
	// export (e.g. "Europe/Moscow").
	Timezone string
}

// fileConfig is the YAML representation. Durations are written as Go
// duration strings ("168h", "30m").
type fileConfig struct {
	HTTPPort        int    `yaml:"http_port"`
	SQLiteDSN       string `yaml:"sqlite_dsn"`
	SessionTTL      string `yaml:"session_ttl"`
	ArchiveSchedule string `yaml:"archive_schedule"`
	Timezone        string `yaml:"timezone"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() Config {
	return Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:deputy-schedule.db?_foreign_keys=on",
		SessionTTL:      7 * 24 * time.Hour,
		ArchiveSchedule: "@every 60s",
		Timezone:        "Europe/Moscow",
	}
}

// Load reads the YAML file at path (skipped when path is empty or the
// file does not exist) and then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to env overrides
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			var fc fileConfig
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
			if err := fc.apply(&cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (f fileConfig) apply(cfg *Config) error {
	if f.HTTPPort != 0 {
		cfg.HTTPPort = f.HTTPPort
	}
	if f.SQLiteDSN != "" {
		cfg.SQLiteDSN = f.SQLiteDSN
	}
	if f.SessionTTL != "" {
		ttl, err := time.ParseDuration(f.SessionTTL)
		if err != nil || ttl <= 0 {
			return fmt.Errorf("invalid session_ttl %q", f.SessionTTL)
		}
		cfg.SessionTTL = ttl
	}
	if f.ArchiveSchedule != "" {
		cfg.ArchiveSchedule = f.ArchiveSchedule
	}
	if f.Timezone != "" {
		cfg.Timezone = f.Timezone
	}
	return nil
}

func applyEnv(cfg *Config) error {
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("SCHEDULE_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "SCHEDULE_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("SCHEDULE_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if ttlValue := strings.TrimSpace(os.Getenv("SCHEDULE_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "SCHEDULE_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if spec := strings.TrimSpace(os.Getenv("SCHEDULE_ARCHIVE_SCHEDULE")); spec != "" {
		cfg.ArchiveSchedule = spec
	}

	if tz := strings.TrimSpace(os.Getenv("SCHEDULE_TIMEZONE")); tz != "" {
		cfg.Timezone = tz
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}
	return nil
}

func (c Config) validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http_port out of range: %d", c.HTTPPort)
	}
	if strings.TrimSpace(c.SQLiteDSN) == "" {
		return errors.New("sqlite_dsn must not be empty")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone. Call only after Load, which
// validates the zone name.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
