package widgets

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Gauge colors by band.
const (
	colorHealthy = lipgloss.Color("#22C55E")
	colorWarning = lipgloss.Color("#EAB308")
	colorDanger  = lipgloss.Color("#EF4444")
)

// GaugeConfig controls the appearance and behavior of a horizontal bar gauge.
type GaugeConfig struct {
	// Width is the total character width of the gauge bar.
	Width int
	// Percent is the value from 0 to 100.
	Percent float64
	// Label is optional text shown to the left of the bar.
	Label string
	// ShowPercent controls whether "XX%" is shown to the right.
	ShowPercent bool
	// ThresholdWarning is the % at which color changes to yellow (default: 72).
	ThresholdWarning float64
	// ThresholdDanger is the % above which color changes to red (default: 80).
	ThresholdDanger float64
	// ShowMarker draws MarkerChar at the ThresholdDanger position when that
	// cell is empty.
	ShowMarker bool
	// FilledChar is the character for filled portion (default: "█").
	FilledChar string
	// EmptyChar is the character for empty portion (default: "░").
	EmptyChar string
	// MarkerChar is the threshold marker (default: "│").
	MarkerChar string
}

// DefaultGaugeConfig returns a GaugeConfig matching the default cpu threshold.
func DefaultGaugeConfig() GaugeConfig {
	return GaugeConfig{
		Width:            20,
		ShowPercent:      true,
		ThresholdWarning: 72,
		ThresholdDanger:  80,
		FilledChar:       "█",
		EmptyChar:        "░",
		MarkerChar:       "│",
	}
}

// gaugeColor returns the lipgloss color for the given percentage. Red begins
// strictly above danger so the gauge agrees with alerting.
func gaugeColor(percent, warning, danger float64) lipgloss.Color {
	switch {
	case percent > danger:
		return colorDanger
	case percent >= warning:
		return colorWarning
	default:
		return colorHealthy
	}
}

// RenderGauge renders a horizontal bar gauge with optional label and percentage.
// Format: [Label] [████████░░│░] [XX%]
func RenderGauge(cfg GaugeConfig) string {
	percent := cfg.Percent
	if math.IsNaN(percent) {
		percent = 0
	}
	percent = math.Max(0, math.Min(100, percent))

	filledChar := cfg.FilledChar
	if filledChar == "" {
		filledChar = "█"
	}
	emptyChar := cfg.EmptyChar
	if emptyChar == "" {
		emptyChar = "░"
	}
	markerChar := cfg.MarkerChar
	if markerChar == "" {
		markerChar = "│"
	}

	width := cfg.Width
	if width <= 0 {
		width = 20
	}

	filledCount := int(math.Round(percent / 100.0 * float64(width)))
	emptyCount := width - filledCount

	color := gaugeColor(percent, cfg.ThresholdWarning, cfg.ThresholdDanger)
	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat(filledChar, filledCount))

	markerAt := -1
	if cfg.ShowMarker {
		markerAt = int(math.Round(math.Max(0, math.Min(100, cfg.ThresholdDanger)) / 100.0 * float64(width)))
		if markerAt >= width {
			markerAt = width - 1
		}
	}
	if markerAt >= filledCount {
		before := markerAt - filledCount
		bar += strings.Repeat(emptyChar, before) + markerChar + strings.Repeat(emptyChar, emptyCount-before-1)
	} else {
		bar += strings.Repeat(emptyChar, emptyCount)
	}

	var sb strings.Builder

	if cfg.Label != "" {
		sb.WriteString(cfg.Label)
		sb.WriteString(" ")
	}

	sb.WriteString(bar)

	if cfg.ShowPercent {
		sb.WriteString(" ")
		sb.WriteString(fmt.Sprintf("%3.0f%%", percent))
	}

	return sb.String()
}

// RenderThresholdGauge renders a gauge whose colour bands and marker follow
// threshold: yellow from warnFraction of it, red above it.
func RenderThresholdGauge(percent, threshold, warnFraction float64, width int) string {
	cfg := DefaultGaugeConfig()
	cfg.Width = width
	cfg.Percent = percent
	cfg.ThresholdDanger = threshold
	cfg.ThresholdWarning = threshold * warnFraction
	cfg.ShowMarker = true
	return RenderGauge(cfg)
}
