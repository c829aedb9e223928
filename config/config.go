/*
config.go - Process configuration for the server and the CLI

PURPOSE:
  Loads a YAML file, fills in defaults, and lets environment variables
  (optionally from a .env file) override the file. Command-line flags in
  cmd/ override the result.

PRECEDENCE (lowest first):
  1. Defaults
  2. YAML file (missing file is not an error)
  3. .env file
  4. Process environment: WORKTIME_PORT, WORKTIME_DB, WORKTIME_LOG_LEVEL,
     WORKTIME_SNAPSHOT_INTERVAL, WORKTIME_ALLOWED_ORIGINS
  5. Flags

EXAMPLE FILE:
  port: 8080
  database_path: ./data/worktime.db
  log_level: debug
  snapshot_interval: 30m
  allowed_origins: ["http://localhost:5173"]
  defaults:
    weekly_target_hours: {monday: 8, tuesday: 8, wednesday: 8, thursday: 8, friday: 6, saturday: 0, sunday: 0}
    annual_vacation_days: 30
    current_year_vacation_days: 25

SEE ALSO:
  - cmd/server/main.go
  - cmd/worktime/main.go
*/
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/worktime"
	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvPort             = "WORKTIME_PORT"
	EnvDatabasePath     = "WORKTIME_DB"
	EnvLogLevel         = "WORKTIME_LOG_LEVEL"
	EnvSnapshotInterval = "WORKTIME_SNAPSHOT_INTERVAL"
	EnvAllowedOrigins   = "WORKTIME_ALLOWED_ORIGINS"
)

type Config struct {
	Port             int           `yaml:"port"`
	DatabasePath     string        `yaml:"database_path"`
	LogLevel         string        `yaml:"log_level"`
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
	AllowedOrigins   []string      `yaml:"allowed_origins"`

	Defaults SettingsDefaults `yaml:"defaults"`
}

// SettingsDefaults are the settings a reset restores.
type SettingsDefaults struct {
	WeeklyTargetHours       map[string]float64 `yaml:"weekly_target_hours"`
	AnnualVacationDays      *float64           `yaml:"annual_vacation_days"`
	CurrentYearVacationDays *float64           `yaml:"current_year_vacation_days"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:             8080,
		DatabasePath:     "worktime.db",
		LogLevel:         "info",
		SnapshotInterval: time.Hour,
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
	}
}

// Load reads the YAML file at path (defaults if it does not exist), then
// applies the environment. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, err
		}
	}

	// Apply defaults for values the file blanked out
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "worktime.db"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.SnapshotInterval == 0 {
		cfg.SnapshotInterval = time.Hour
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	port, err := strconv.Atoi(getEnv(EnvPort, strconv.Itoa(c.Port)))
	if err != nil {
		return &ValidationError{Field: EnvPort, Message: "must be an integer"}
	}
	c.Port = port

	c.DatabasePath = getEnv(EnvDatabasePath, c.DatabasePath)
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)

	if raw := getEnv(EnvSnapshotInterval, ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return &ValidationError{Field: EnvSnapshotInterval, Message: "must be a duration such as 30m or 1h"}
		}
		c.SnapshotInterval = d
	}

	if origins := getEnvSlice(EnvAllowedOrigins); len(origins) > 0 {
		c.AllowedOrigins = origins
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string) []string {
	value := getEnv(key, "")
	if value == "" {
		return nil
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// SlogLevel maps LogLevel to a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Settings builds the default worktime settings, starting from the
// built-in schedule and replacing whatever the file names.
func (c *Config) Settings() (worktime.Settings, error) {
	settings := worktime.DefaultSettings()

	for name, hours := range c.Defaults.WeeklyTargetHours {
		day, ok := worktime.ParseWeekdayName(strings.ToLower(name))
		if !ok {
			return worktime.Settings{}, &ValidationError{Field: "defaults.weekly_target_hours." + name, Message: "unknown weekday"}
		}
		settings.WeeklyTargets = settings.WeeklyTargets.Set(day, decimal.NewFromFloat(hours))
	}
	if v := c.Defaults.AnnualVacationDays; v != nil {
		settings.Absence.AnnualVacationDays = generic.Days(*v)
	}
	if v := c.Defaults.CurrentYearVacationDays; v != nil {
		settings.Absence.CurrentYearVacationDays = generic.Days(*v)
	}

	if err := settings.WeeklyTargets.Validate(); err != nil {
		return worktime.Settings{}, &ValidationError{Field: "defaults.weekly_target_hours", Message: err.Error()}
	}
	if err := settings.Absence.Validate(); err != nil {
		return worktime.Settings{}, &ValidationError{Field: "defaults", Message: err.Error()}
	}
	return settings, nil
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error: %s - %s", e.Field, e.Message)
}

// Validate checks the configuration for common issues
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return &ValidationError{Field: "port", Message: "port must be between 1 and 65535"}
	}
	if c.DatabasePath == "" {
		return &ValidationError{Field: "database_path", Message: "database path is required"}
	}
	if c.SnapshotInterval <= 0 {
		return &ValidationError{Field: "snapshot_interval", Message: "snapshot interval must be positive"}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return &ValidationError{Field: "log_level", Message: "log level must be debug, info, warn or error"}
	}

	if _, err := c.Settings(); err != nil {
		return err
	}
	return nil
}
