// pulsemon is a terminal host resource monitor.
//
// It samples CPU, memory, disk throughput and network throughput once a
// second, keeps a short rolling history of each, raises an alert whenever a
// value crosses its threshold, and shows everything on a live dashboard. When
// stdout is not a terminal it runs headless and writes to the log only.
//
// Usage:
//
//	pulsemon [flags]
//
// Flags:
//
//	-config string    Path to configuration file (default: ~/.config/pulsemon/config.yaml)
//	-headless         Log samples and alerts instead of drawing the dashboard
//	-write-config     Write the default configuration to the config path and exit
//	-verbose          Enable debug logging
//	-version          Print version and exit
//	-man              Print man page to stdout in roff format
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"

	"gitlab.com/tinyland/lab/pulsemon/collectors"
	"gitlab.com/tinyland/lab/pulsemon/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/pulsemon/config"
	"gitlab.com/tinyland/lab/pulsemon/display/color"
	"gitlab.com/tinyland/lab/pulsemon/display/presenter"
	"gitlab.com/tinyland/lab/pulsemon/display/tui"
	"gitlab.com/tinyland/lab/pulsemon/docs/manpage"
	"gitlab.com/tinyland/lab/pulsemon/exporter"
	"gitlab.com/tinyland/lab/pulsemon/recorder"
)

// options holds the parsed command line.
type options struct {
	configPath  string
	headless    bool
	writeConfig bool
	verbose     bool
	showVersion bool
	showMan     bool

	flags *flag.FlagSet
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("pulsemon", flag.ContinueOnError)
	opts.flags = fs
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file (default: ~/.config/pulsemon/config.yaml)")
	fs.BoolVar(&opts.headless, "headless", false, "Log samples and alerts instead of drawing the dashboard")
	fs.BoolVar(&opts.writeConfig, "write-config", false, "Write the default configuration to the config path and exit")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable debug logging")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&opts.showMan, "man", false, "Print man page to stdout in roff format")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.configPath == "" {
		opts.configPath = config.DefaultPath()
	}
	return opts, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// ---------------------------------------------------------------
	// Commands that don't require config
	// ---------------------------------------------------------------

	if opts.showVersion {
		fmt.Fprintf(stdout, "pulsemon %s (%s) built %s\n", version, commit, date)
		return 0
	}

	if opts.showMan {
		fmt.Fprint(stdout, manpage.Generate(opts.flags, version, commit, date))
		return 0
	}

	if opts.writeConfig {
		if err := writeDefaultConfig(opts.configPath); err != nil {
			fmt.Fprintf(stderr, "pulsemon: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "wrote default configuration to %s\n", opts.configPath)
		return 0
	}

	// ---------------------------------------------------------------
	// Load configuration
	// ---------------------------------------------------------------

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "pulsemon: %v\n", err)
		return 1
	}

	headless := opts.headless || !isTerminal(os.Stdout)

	logger, closeLog, err := newLogger(cfg.Log, opts.verbose, headless, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "pulsemon: %v\n", err)
		return 1
	}
	defer closeLog()

	// ---------------------------------------------------------------
	// Context with signal handling
	// ---------------------------------------------------------------

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := monitor(ctx, cfg, headless, logger); err != nil {
		logger.Error("pulsemon: exiting", "error", err)
		fmt.Fprintf(stderr, "pulsemon: %v\n", err)
		return 1
	}
	return 0
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(f.Fd())
}

// writeDefaultConfig refuses to replace an existing file.
func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	}
	return config.SaveConfig(config.DefaultConfig(), path)
}

// loadConfig reads path, applies PULSEMON_* overrides and validates.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// monitor wires the sampler, presenter and optional sinks, then blocks in
// the dashboard or the headless loop until ctx is cancelled or the user
// quits.
func monitor(ctx context.Context, cfg *config.Config, headless bool, logger *slog.Logger) error {
	settings := cfg.SamplerSettings()
	queue := collectors.NewQueue()
	sampler := sysmetrics.New(settings, sysmetrics.NewHostSource(), queue, logger)
	pres := presenter.New(queue, cfg.Thresholds, logger)

	if cfg.Recorder.Path != "" {
		rec, err := recorder.Open(cfg.Recorder.Path, logger)
		if err != nil {
			return err
		}
		defer rec.Close()
		pres.AddSink(rec)
		logger.Info("pulsemon: recording samples", "path", cfg.Recorder.Path)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var exportDone chan error
	if cfg.Exporter.Listen != "" {
		ln, err := net.Listen("tcp", cfg.Exporter.Listen)
		if err != nil {
			return fmt.Errorf("exporter: listen %s: %w", cfg.Exporter.Listen, err)
		}
		exp := exporter.New(logger)
		pres.AddSink(exp)
		exportDone = make(chan error, 1)
		go func() { exportDone <- exp.ServeListener(ctx, ln) }()
	}

	if err := sampler.Start(ctx); err != nil {
		return err
	}

	var runErr error
	if headless {
		runErr = runHeadless(ctx, pres, settings.Interval, logger)
	} else {
		runErr = runTUI(ctx, cfg, pres, sampler.Histories(), settings.Interval)
	}

	cancel()
	sampler.Stop()
	logCollectorHealth(logger, sampler.Status())

	if exportDone != nil {
		if err := <-exportDone; err != nil {
			logger.Error("pulsemon: exporter", "error", err)
		}
	}
	return runErr
}

func runTUI(ctx context.Context, cfg *config.Config, pres *presenter.Presenter, histories sysmetrics.Histories, interval time.Duration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			// Attempt to restore terminal from alt-screen before reporting.
			fmt.Print("\x1b[?1049l\x1b[?25h")
			err = fmt.Errorf("tui: panic: %v", r)
		}
	}()

	color.Apply(os.Stdout)
	tui.ApplyTheme(tui.GetThemePreset(cfg.Display.Theme))
	model := tui.NewModel(ctx, pres, histories, interval)
	p := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
