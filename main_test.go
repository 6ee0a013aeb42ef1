package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/pulsemon/collectors"
	"gitlab.com/tinyland/lab/pulsemon/config"
	"gitlab.com/tinyland/lab/pulsemon/display/presenter"
	"gitlab.com/tinyland/lab/pulsemon/status"
)

func TestParseFlags(t *testing.T) {
	var stderr bytes.Buffer
	opts, err := parseFlags([]string{"-headless", "-verbose", "-config", "/tmp/p.yaml"}, &stderr)
	if err != nil {
		t.Fatalf("parseFlags() error: %v", err)
	}
	if !opts.headless || !opts.verbose || opts.configPath != "/tmp/p.yaml" {
		t.Errorf("unexpected options: %+v", opts)
	}

	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	opts, err = parseFlags(nil, &stderr)
	if err != nil {
		t.Fatal(err)
	}
	if opts.configPath != "/tmp/xdg/pulsemon/config.yaml" {
		t.Errorf("default config path = %s", opts.configPath)
	}

	if _, err := parseFlags([]string{"-bogus"}, &stderr); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("run(-version) = %d, stderr: %s", code, stderr.String())
	}
	if !strings.HasPrefix(stdout.String(), "pulsemon "+version) {
		t.Errorf("unexpected version output: %q", stdout.String())
	}
}

func TestRun_Man(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-man"}, &stdout, &stderr); code != 0 {
		t.Fatalf("run(-man) = %d, stderr: %s", code, stderr.String())
	}
	page := stdout.String()
	if !strings.HasPrefix(page, ".TH PULSEMON 1") {
		t.Errorf("unexpected man page start: %.40q", page)
	}
	if !strings.Contains(page, `.B \-headless`) {
		t.Error("man page should list the real -headless flag")
	}
}

func TestRun_WriteConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pulsemon", "config.yaml")
	var stdout, stderr bytes.Buffer

	if code := run([]string{"-write-config", "-config", path}, &stdout, &stderr); code != 0 {
		t.Fatalf("run(-write-config) = %d, stderr: %s", code, stderr.String())
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("written config does not validate: %v", err)
	}

	stderr.Reset()
	if code := run([]string{"-write-config", "-config", path}, &stdout, &stderr); code != 1 {
		t.Errorf("second -write-config = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "already exists") {
		t.Errorf("unexpected stderr: %s", stderr.String())
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("display:\n  theme: neon\n"), 0644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-config", path}, &stdout, &stderr); code != 1 {
		t.Errorf("run() with invalid config = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "display.theme") {
		t.Errorf("stderr should name the bad field: %s", stderr.String())
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	t.Setenv(config.EnvCPUThreshold, "65")
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Thresholds.CPU != 65 {
		t.Errorf("cpu threshold = %v, want 65", cfg.Thresholds.CPU)
	}

	t.Setenv(config.EnvCPUThreshold, "150")
	if _, err := loadConfig(path); err == nil {
		t.Error("expected validation error for cpu threshold 150")
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("headless writes to stderr", func(t *testing.T) {
		var stderr bytes.Buffer
		logger, closeLog, err := newLogger(config.LogConfig{Level: "warn"}, false, true, &stderr)
		if err != nil {
			t.Fatal(err)
		}
		defer closeLog()
		logger.Info("hidden")
		logger.Warn("shown")
		if strings.Contains(stderr.String(), "hidden") || !strings.Contains(stderr.String(), "shown") {
			t.Errorf("unexpected log output: %s", stderr.String())
		}
	})

	t.Run("verbose forces debug", func(t *testing.T) {
		var stderr bytes.Buffer
		logger, closeLog, err := newLogger(config.LogConfig{Level: "error"}, true, true, &stderr)
		if err != nil {
			t.Fatal(err)
		}
		defer closeLog()
		logger.Debug("detail")
		if !strings.Contains(stderr.String(), "detail") {
			t.Errorf("expected debug output, got: %s", stderr.String())
		}
	})

	t.Run("tui writes to file", func(t *testing.T) {
		var stderr bytes.Buffer
		path := filepath.Join(t.TempDir(), "log", "pulsemon.log")
		logger, closeLog, err := newLogger(config.LogConfig{Level: "info", File: path}, false, false, &stderr)
		if err != nil {
			t.Fatal(err)
		}
		logger.Info("to file")
		closeLog()

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "to file") {
			t.Errorf("log file missing entry: %s", data)
		}
		if stderr.Len() != 0 {
			t.Errorf("stderr should stay clean in TUI mode, got: %s", stderr.String())
		}
	})

	t.Run("bad level", func(t *testing.T) {
		if _, _, err := newLogger(config.LogConfig{Level: "loud"}, false, true, &bytes.Buffer{}); err == nil {
			t.Error("expected error for bad level")
		}
	})
}

// signalSink reports the first non-empty batch it receives.
type signalSink struct {
	got chan []collectors.Sample
}

func (s *signalSink) Name() string { return "signal" }

func (s *signalSink) Consume(_ context.Context, batch []collectors.Sample) error {
	select {
	case s.got <- batch:
	default:
	}
	return nil
}

func TestRunHeadless(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	q := collectors.NewQueue()
	sink := &signalSink{got: make(chan []collectors.Sample, 1)}
	pres := presenter.New(q, status.DefaultThresholds(), logger, sink)
	q.Publish(collectors.NewCPUSample(time.Now(), 91))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runHeadless(ctx, pres, 10*time.Millisecond, logger) }()

	select {
	case batch := <-sink.got:
		if len(batch) != 1 || batch[0].Percent != 91 {
			t.Errorf("sink batch = %+v", batch)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("headless loop never delivered the batch")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("runHeadless() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runHeadless did not return after cancel")
	}

	if got := pres.Stats().Alerts; got != 1 {
		t.Errorf("alerts = %d, want 1", got)
	}
	out := buf.String()
	for _, want := range []string{"running headless", "CPU above threshold", "shutting down"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestLogCollectorHealth(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logCollectorHealth(logger, []collectors.CollectorStatus{
		{Name: "cpu", Healthy: true, RunCount: 3, SampleCount: 3},
		{Name: "network", Healthy: false, RunCount: 2, ErrorCount: 1, LastError: context.DeadlineExceeded},
	})

	out := buf.String()
	for _, want := range []string{"collector=cpu", "collector=network", "errors=1", "last_error"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
