package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Sampler defaults
	if cfg.Sampler.Interval != "1s" {
		t.Errorf("expected Interval=1s, got %s", cfg.Sampler.Interval)
	}
	if cfg.Sampler.CPUWindow != "1s" {
		t.Errorf("expected CPUWindow=1s, got %s", cfg.Sampler.CPUWindow)
	}
	if cfg.Sampler.HistoryLength != 60 {
		t.Errorf("expected HistoryLength=60, got %d", cfg.Sampler.HistoryLength)
	}

	// Threshold defaults
	th := cfg.Thresholds
	if th.CPU != 80 || th.Memory != 90 || th.Disk != 50 || th.Network != 20 {
		t.Errorf("unexpected default thresholds: %+v", th)
	}

	if cfg.Log.Level != "info" {
		t.Errorf("expected Log.Level=info, got %s", cfg.Log.Level)
	}
	if cfg.Log.File == "" {
		t.Error("expected Log.File to be set")
	}
	if cfg.Recorder.Path != "" {
		t.Errorf("expected recorder disabled by default, got %q", cfg.Recorder.Path)
	}
	if cfg.Exporter.Listen != "" {
		t.Errorf("expected exporter disabled by default, got %q", cfg.Exporter.Listen)
	}
	if cfg.Display.Theme != "monitoring" {
		t.Errorf("expected Theme=monitoring, got %s", cfg.Display.Theme)
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid, got error: %v", err)
	}
}

func TestLoadConfigNonExistent(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("unexpected error for non-existent file: %v", err)
	}
	if cfg.Sampler.Interval != "1s" {
		t.Errorf("expected default Interval=1s, got %s", cfg.Sampler.Interval)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error for empty path: %v", err)
	}
	if cfg.Display.Theme != "monitoring" {
		t.Errorf("expected default Theme=monitoring, got %s", cfg.Display.Theme)
	}
}

func TestLoadConfigValidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
sampler:
  interval: 2s
  cpu_window: 500ms
  history_length: 120

thresholds:
  cpu: 70
  network: 5.5

log:
  level: debug

recorder:
  path: /tmp/pulsemon.db

exporter:
  listen: 127.0.0.1:9105

display:
  theme: minimal
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("loaded config should validate: %v", err)
	}

	if cfg.Sampler.Interval != "2s" || cfg.Sampler.HistoryLength != 120 {
		t.Errorf("sampler = %+v", cfg.Sampler)
	}
	if cfg.Thresholds.CPU != 70 || cfg.Thresholds.Network != 5.5 {
		t.Errorf("thresholds = %+v", cfg.Thresholds)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected Log.Level=debug, got %s", cfg.Log.Level)
	}
	if cfg.Recorder.Path != "/tmp/pulsemon.db" {
		t.Errorf("expected recorder path, got %q", cfg.Recorder.Path)
	}
	if cfg.Exporter.Listen != "127.0.0.1:9105" {
		t.Errorf("expected exporter listen, got %q", cfg.Exporter.Listen)
	}
	if cfg.Display.Theme != "minimal" {
		t.Errorf("expected Theme=minimal, got %s", cfg.Display.Theme)
	}

	// Defaults preserved for unspecified fields
	if cfg.Thresholds.Memory != 90 || cfg.Thresholds.Disk != 50 {
		t.Errorf("expected default memory/disk thresholds, got %+v", cfg.Thresholds)
	}

	s := cfg.SamplerSettings()
	if s.Interval != 2*time.Second || s.CPUWindow != 500*time.Millisecond || s.HistoryLength != 120 {
		t.Errorf("SamplerSettings() = %+v", s)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
sampler:
  interval: [invalid
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad interval", func(c *Config) { c.Sampler.Interval = "soon" }},
		{"zero interval", func(c *Config) { c.Sampler.Interval = "0s" }},
		{"negative cpu window", func(c *Config) { c.Sampler.CPUWindow = "-1s" }},
		{"zero history", func(c *Config) { c.Sampler.HistoryLength = 0 }},
		{"cpu over 100", func(c *Config) { c.Thresholds.CPU = 101 }},
		{"negative network", func(c *Config) { c.Thresholds.Network = -1 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"invalid theme", func(c *Config) { c.Display.Theme = "neon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvCPUThreshold:    "65",
		EnvMemoryThreshold: " 75.5 ",
		EnvLogLevel:        "warn",
		EnvRecordPath:      "/var/tmp/p.db",
		EnvExporterListen:  ":9105",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv() error: %v", err)
	}
	if cfg.Thresholds.CPU != 65 || cfg.Thresholds.Memory != 75.5 {
		t.Errorf("thresholds = %+v", cfg.Thresholds)
	}
	if cfg.Log.Level != "warn" || cfg.Recorder.Path != "/var/tmp/p.db" || cfg.Exporter.Listen != ":9105" {
		t.Errorf("unexpected overrides: %+v", cfg)
	}
	if cfg.Thresholds.Disk != 50 {
		t.Errorf("unset variables should keep defaults, disk = %v", cfg.Thresholds.Disk)
	}
}

func TestApplyEnvBadNumber(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		if k == EnvCPUThreshold {
			return "lots", true
		}
		return "", false
	})
	if err == nil {
		t.Error("expected error for non-numeric threshold")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSaveAndReloadConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.Sampler.Interval = "5s"
	cfg.Thresholds.Disk = 12.5
	cfg.Display.Theme = "minimal"

	if err := SaveConfig(cfg, configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.Sampler.Interval != "5s" {
		t.Errorf("expected Interval=5s, got %s", loaded.Sampler.Interval)
	}
	if loaded.Thresholds.Disk != 12.5 {
		t.Errorf("expected Disk=12.5, got %v", loaded.Thresholds.Disk)
	}
	if loaded.Display.Theme != "minimal" {
		t.Errorf("expected Theme=minimal, got %s", loaded.Display.Theme)
	}
}

func TestDefaultPath(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
		if got := DefaultPath(); got != "/tmp/xdg/pulsemon/config.yaml" {
			t.Errorf("DefaultPath() = %s", got)
		}
	})
	t.Run("home", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skip("no home directory")
		}
		want := filepath.Join(home, ".config", "pulsemon", "config.yaml")
		if got := DefaultPath(); got != want {
			t.Errorf("DefaultPath() = %s, want %s", got, want)
		}
	})
}
