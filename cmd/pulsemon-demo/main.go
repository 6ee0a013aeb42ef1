// pulsemon-demo runs the dashboard against synthetic waveforms instead of the
// host's counters. With -print it samples for a while and writes a single
// frame to stdout, which is handy for screenshots and CI logs.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/pulsemon/collectors"
	"gitlab.com/tinyland/lab/pulsemon/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/pulsemon/display/color"
	"gitlab.com/tinyland/lab/pulsemon/display/presenter"
	"gitlab.com/tinyland/lab/pulsemon/display/tui"
	"gitlab.com/tinyland/lab/pulsemon/status"
)

func main() {
	termWidth := flag.Int("width", 120, "Terminal width (with -print)")
	termHeight := flag.Int("height", 40, "Terminal height (with -print)")
	interval := flag.Duration("interval", 250*time.Millisecond, "Sampling interval")
	printFrame := flag.Bool("print", false, "Sample for -duration, print one frame and exit")
	duration := flag.Duration("duration", 5*time.Second, "How long to sample before printing (with -print)")
	themeName := flag.String("theme", "monitoring", "Theme: monitoring or minimal")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src := sysmetrics.NewFakeSource()
	queue := collectors.NewQueue()
	sampler := sysmetrics.New(sysmetrics.Config{
		Interval:  *interval,
		CPUWindow: *interval,
	}, src, queue, nil)
	pres := presenter.New(queue, status.DefaultThresholds(), nil)

	go drive(ctx, src, *interval)

	if err := sampler.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "sampler: %v\n", err)
		os.Exit(1)
	}
	defer sampler.Stop()

	tui.ApplyTheme(tui.GetThemePreset(*themeName))
	model := tui.NewModel(ctx, pres, sampler.Histories(), *interval)

	if *printFrame {
		color.Apply(os.Stdout)
		select {
		case <-time.After(*duration):
		case <-ctx.Done():
		}
		pres.Tick(ctx, time.Now())
		updated, _ := model.Update(tea.WindowSizeMsg{Width: *termWidth, Height: *termHeight})
		fmt.Println(updated.View())
		return
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		os.Exit(1)
	}
}

// drive feeds src slow sine waves so every panel moves and the CPU and disk
// panels cross their default thresholds now and then.
func drive(ctx context.Context, src *sysmetrics.FakeSource, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	secs := interval.Seconds()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			t := now.Sub(start).Seconds()
			src.SetCPU(clamp(55 + 35*math.Sin(t/4)))
			src.SetMemory(clamp(62 + 20*math.Sin(t/11)))
			src.AddDisk(
				bytesFor(30+30*math.Sin(t/3), secs),
				bytesFor(12+10*math.Cos(t/5), secs),
			)
			src.AddNet(
				bytesFor(8+7*math.Sin(t/2), secs),
				bytesFor(2+1.5*math.Cos(t/7), secs),
			)
		}
	}
}

func clamp(pct float64) float64 {
	return math.Max(0, math.Min(100, pct))
}

// bytesFor converts a MB/s rate over secs into a counter increment.
func bytesFor(mbps, secs float64) uint64 {
	return uint64(math.Max(0, mbps) * sysmetrics.BytesPerMB * secs)
}
