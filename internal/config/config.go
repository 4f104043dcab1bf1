package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration. Durations and clock
// edges are kept as strings in the file and validated at load time; the
// accessor methods return the parsed values.
type Config struct {
	PortalBaseURL               string `yaml:"portalBaseURL" validate:"required,url"`
	PortalRequestTimeoutSeconds int    `yaml:"portalRequestTimeoutSeconds,omitempty" validate:"omitempty,min=1"`

	CacheFile string `yaml:"cacheFile,omitempty"`
	UsersFile string `yaml:"usersFile,omitempty"`

	// RefreshInterval is how often the background refresher re-scrapes,
	// e.g. "4h". CutoffWeekday is the day the following week's rota is
	// published; the scrape window and the cache validity gate both end at
	// its next occurrence.
	RefreshInterval string `yaml:"refreshInterval,omitempty"`
	CutoffWeekday   string `yaml:"cutoffWeekday,omitempty" validate:"omitempty,oneof=Sunday Monday Tuesday Wednesday Thursday Friday Saturday"`

	// Shared-free-block policy. Edges are "HH:MM" clocks, "24:00" allowed
	// as the end-of-day edge.
	FreeWindowStart     string `yaml:"freeWindowStart,omitempty"`
	FreeWindowEnd       string `yaml:"freeWindowEnd,omitempty"`
	MinFreeBlockMinutes int    `yaml:"minFreeBlockMinutes,omitempty" validate:"omitempty,min=1"`

	// RestThreshold is the minimum gap between adjacent-day shifts for the
	// same person, e.g. "11h30m".
	RestThreshold string `yaml:"restThreshold,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// LoadWithEnv loads and validates rotawatch_<env>.yaml, looked up in the
// current directory first, then the user's home directory.
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}
	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.PortalRequestTimeoutSeconds == 0 {
		c.PortalRequestTimeoutSeconds = 60
	}
	if c.CacheFile == "" {
		c.CacheFile = "shifts_cache.json"
	}
	if c.UsersFile == "" {
		c.UsersFile = "users.json"
	}
	if c.RefreshInterval == "" {
		c.RefreshInterval = "4h"
	}
	if c.CutoffWeekday == "" {
		c.CutoffWeekday = "Thursday"
	}
	if c.FreeWindowStart == "" {
		c.FreeWindowStart = "08:00"
	}
	if c.FreeWindowEnd == "" {
		c.FreeWindowEnd = "24:00"
	}
	if c.MinFreeBlockMinutes == 0 {
		c.MinFreeBlockMinutes = 120
	}
	if c.RestThreshold == "" {
		c.RestThreshold = "11h30m"
	}
}

// Validate validates the configuration struct, including the fields the
// struct tags cannot express: durations and window edges.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := time.ParseDuration(cfg.RefreshInterval); err != nil {
		return fmt.Errorf("invalid refreshInterval: %w", err)
	}
	if _, err := time.ParseDuration(cfg.RestThreshold); err != nil {
		return fmt.Errorf("invalid restThreshold: %w", err)
	}

	start, err := parseWindowEdge(cfg.FreeWindowStart)
	if err != nil {
		return fmt.Errorf("invalid freeWindowStart: %w", err)
	}
	end, err := parseWindowEdge(cfg.FreeWindowEnd)
	if err != nil {
		return fmt.Errorf("invalid freeWindowEnd: %w", err)
	}
	if end <= start {
		return fmt.Errorf("freeWindowEnd %q must be after freeWindowStart %q", cfg.FreeWindowEnd, cfg.FreeWindowStart)
	}
	return nil
}

// RequestTimeout returns the portal HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.PortalRequestTimeoutSeconds) * time.Second
}

// RefreshEvery returns the background refresh interval.
func (c *Config) RefreshEvery() time.Duration {
	d, _ := time.ParseDuration(c.RefreshInterval)
	return d
}

// RestGap returns the minimum rest threshold between adjacent-day shifts.
func (c *Config) RestGap() time.Duration {
	d, _ := time.ParseDuration(c.RestThreshold)
	return d
}

var weekdays = map[string]time.Weekday{
	"Sunday": time.Sunday, "Monday": time.Monday, "Tuesday": time.Tuesday,
	"Wednesday": time.Wednesday, "Thursday": time.Thursday,
	"Friday": time.Friday, "Saturday": time.Saturday,
}

// Cutoff returns the cutoff weekday.
func (c *Config) Cutoff() time.Weekday {
	return weekdays[c.CutoffWeekday]
}

// WindowStartMinute returns the free-block window's opening edge as
// minutes past midnight.
func (c *Config) WindowStartMinute() int {
	m, _ := parseWindowEdge(c.FreeWindowStart)
	return m
}

// WindowEndMinute returns the free-block window's closing edge as minutes
// past midnight.
func (c *Config) WindowEndMinute() int {
	m, _ := parseWindowEdge(c.FreeWindowEnd)
	return m
}

// parseWindowEdge parses an "HH:MM" window edge, accepting "24:00" as the
// end-of-day boundary that a strict clock parse rejects.
func parseWindowEdge(s string) (int, error) {
	if s == "24:00" {
		return 24 * 60, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// findConfigFile searches for rotawatch_<env>.yaml in the current directory
// and the home directory.
func findConfigFile(env string) (string, error) {
	configFileName := fmt.Sprintf("rotawatch_%s.yaml", env)

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file %s not found in current directory or home directory", configFileName)
}
