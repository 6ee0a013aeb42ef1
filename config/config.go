// Package config provides configuration parsing for pulsemon.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"gitlab.com/tinyland/lab/pulsemon/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/pulsemon/status"
)

// Environment overrides applied by ApplyEnv.
const (
	EnvCPUThreshold    = "PULSEMON_CPU_THRESHOLD"
	EnvMemoryThreshold = "PULSEMON_MEMORY_THRESHOLD"
	EnvLogLevel        = "PULSEMON_LOG_LEVEL"
	EnvRecordPath      = "PULSEMON_RECORD_PATH"
	EnvExporterListen  = "PULSEMON_EXPORTER_LISTEN"
)

// Config represents the pulsemon configuration.
type Config struct {
	// Sampler holds sampling cadence and retention.
	Sampler SamplerConfig `yaml:"sampler"`

	// Thresholds holds the alert threshold per resource.
	Thresholds status.Thresholds `yaml:"thresholds"`

	// Log holds logging settings.
	Log LogConfig `yaml:"log"`

	// Recorder holds SQLite recording settings.
	Recorder RecorderConfig `yaml:"recorder"`

	// Exporter holds Prometheus exporter settings.
	Exporter ExporterConfig `yaml:"exporter"`

	// Display holds TUI rendering settings.
	Display DisplayConfig `yaml:"display"`
}

// SamplerConfig holds sampling settings.
type SamplerConfig struct {
	// Interval is a duration string (e.g. "1s") between memory/disk and network samples.
	Interval string `yaml:"interval"`
	// CPUWindow is a duration string for the CPU averaging window.
	CPUWindow string `yaml:"cpu_window"`
	// HistoryLength is the number of samples retained per resource.
	HistoryLength int `yaml:"history_length"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// File receives log output while the TUI owns the terminal.
	File string `yaml:"file"`
}

// RecorderConfig holds SQLite recording settings.
type RecorderConfig struct {
	// Path is the SQLite file. Empty disables recording.
	Path string `yaml:"path"`
}

// ExporterConfig holds Prometheus exporter settings.
type ExporterConfig struct {
	// Listen is a host:port for /metrics. Empty disables the exporter.
	Listen string `yaml:"listen"`
}

// DisplayConfig holds TUI rendering settings.
type DisplayConfig struct {
	// Theme selects the display theme: "monitoring" or "minimal".
	Theme string `yaml:"theme"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Sampler: SamplerConfig{
			Interval:      sysmetrics.DefaultInterval.String(),
			CPUWindow:     sysmetrics.DefaultCPUWindow.String(),
			HistoryLength: sysmetrics.DefaultHistoryLength,
		},
		Thresholds: status.DefaultThresholds(),
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(home, ".local", "log", "pulsemon.log"),
		},
		Display: DisplayConfig{
			Theme: "monitoring",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/pulsemon/config.yaml, falling back to
// ~/.config/pulsemon/config.yaml.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "pulsemon", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pulsemon", "config.yaml")
}

// LoadConfig loads configuration from a YAML file, merging with defaults.
// A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return config, nil
}

// ApplyEnv overrides fields from PULSEMON_* environment variables. lookup is
// usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvCPUThreshold); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvCPUThreshold, err)
		}
		c.Thresholds.CPU = f
	}
	if v, ok := lookup(EnvMemoryThreshold); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvMemoryThreshold, err)
		}
		c.Thresholds.Memory = f
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvRecordPath); ok {
		c.Recorder.Path = v
	}
	if v, ok := lookup(EnvExporterListen); ok {
		c.Exporter.Listen = v
	}
	return nil
}

// Validate checks the configuration for required fields and logical consistency.
func (c *Config) Validate() error {
	// Sampler validation
	interval, err := time.ParseDuration(c.Sampler.Interval)
	if err != nil {
		return fmt.Errorf("sampler.interval: %w", err)
	}
	if interval <= 0 {
		return fmt.Errorf("sampler.interval must be positive, got %s", c.Sampler.Interval)
	}
	window, err := time.ParseDuration(c.Sampler.CPUWindow)
	if err != nil {
		return fmt.Errorf("sampler.cpu_window: %w", err)
	}
	if window <= 0 {
		return fmt.Errorf("sampler.cpu_window must be positive, got %s", c.Sampler.CPUWindow)
	}
	if c.Sampler.HistoryLength < 1 {
		return fmt.Errorf("sampler.history_length must be at least 1, got %d", c.Sampler.HistoryLength)
	}

	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}

	// Display validation
	validThemes := map[string]bool{"minimal": true, "monitoring": true}
	if !validThemes[c.Display.Theme] {
		return fmt.Errorf("display.theme must be 'minimal' or 'monitoring', got %q", c.Display.Theme)
	}

	return nil
}

// SamplerSettings converts the sampler section. Call Validate first; invalid
// durations fall back to the sampler defaults.
func (c *Config) SamplerSettings() sysmetrics.Config {
	cfg := sysmetrics.DefaultConfig()
	if d, err := time.ParseDuration(c.Sampler.Interval); err == nil && d > 0 {
		cfg.Interval = d
	}
	if d, err := time.ParseDuration(c.Sampler.CPUWindow); err == nil && d > 0 {
		cfg.CPUWindow = d
	}
	if c.Sampler.HistoryLength > 0 {
		cfg.HistoryLength = c.Sampler.HistoryLength
	}
	return cfg
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level must be debug, info, warn or error, got %q", s)
	}
	return level, nil
}

// SaveConfig saves configuration to a YAML file.
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("config: create %s: %w", dir, err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}
