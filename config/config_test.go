package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "worktime.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "worktime.db", cfg.DatabasePath)
	assert.Equal(t, time.Hour, cfg.SnapshotInterval)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
port: 9090
database_path: /tmp/wt.db
log_level: debug
snapshot_interval: 30m
allowed_origins: ["http://example.test"]
defaults:
  weekly_target_hours: {friday: 6, saturday: 2}
  current_year_vacation_days: 12.5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/wt.db", cfg.DatabasePath)
	assert.Equal(t, 30*time.Minute, cfg.SnapshotInterval)
	assert.Equal(t, []string{"http://example.test"}, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())

	settings, err := cfg.Settings()
	require.NoError(t, err)
	assert.True(t, settings.WeeklyTargets.Friday.Equal(decimal.NewFromInt(6)))
	assert.True(t, settings.WeeklyTargets.Saturday.Equal(decimal.NewFromInt(2)))
	assert.True(t, settings.WeeklyTargets.Monday.Equal(decimal.NewFromInt(8)))
	assert.True(t, settings.Absence.CurrentYearVacationDays.Value.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, settings.Absence.AnnualVacationDays.Value.Equal(decimal.NewFromInt(30)))
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "port: 9090\ndatabase_path: file.db\n")

	t.Setenv(EnvPort, "7070")
	t.Setenv(EnvDatabasePath, ":memory:")
	t.Setenv(EnvSnapshotInterval, "5m")
	t.Setenv(EnvAllowedOrigins, "http://a.test, http://b.test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DatabasePath)
	assert.Equal(t, 5*time.Minute, cfg.SnapshotInterval)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoadBadEnv(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{EnvPort, "eighty"},
		{EnvSnapshotInterval, "hourly"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load("")
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.key, verr.Field)
		})
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "port: [not a number\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"valid", func(c *Config) {}, ""},
		{"port zero", func(c *Config) { c.Port = 0 }, "port"},
		{"port too large", func(c *Config) { c.Port = 70000 }, "port"},
		{"no database", func(c *Config) { c.DatabasePath = "" }, "database_path"},
		{"no interval", func(c *Config) { c.SnapshotInterval = 0 }, "snapshot_interval"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad weekday", func(c *Config) {
			c.Defaults.WeeklyTargetHours = map[string]float64{"funday": 8}
		}, "defaults.weekly_target_hours.funday"},
		{"negative target", func(c *Config) {
			c.Defaults.WeeklyTargetHours = map[string]float64{"monday": -1}
		}, "defaults.weekly_target_hours"},
		{"negative vacation", func(c *Config) {
			v := -3.0
			c.Defaults.AnnualVacationDays = &v
		}, "defaults"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Contains(t, err.Error(), "config validation error")
		})
	}
}
