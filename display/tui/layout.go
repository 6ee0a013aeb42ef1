package tui

import "strings"

// LayoutSize represents a responsive breakpoint for terminal width.
type LayoutSize int

const (
	// LayoutCompact is used for terminals narrower than 60 characters.
	LayoutCompact LayoutSize = iota
	// LayoutNormal is used for terminals between 60 and 120 characters wide.
	LayoutNormal
	// LayoutWide is used for terminals wider than 120 characters.
	LayoutWide
)

// DetectLayout returns the appropriate LayoutSize for the given terminal width.
func DetectLayout(width int) LayoutSize {
	switch {
	case width < 60:
		return LayoutCompact
	case width <= 120:
		return LayoutNormal
	default:
		return LayoutWide
	}
}

// LayoutConfig holds responsive layout values that adapt to terminal width.
type LayoutConfig struct {
	// Columns is how many resource panels sit side by side.
	Columns int
	// PanelWidth is the inner width of one resource panel.
	PanelWidth int
	// GaugeWidth is the character width for gauge bars.
	GaugeWidth int
	// SparkWidth is the number of history points drawn.
	SparkWidth int
	// ShowSparklines controls whether sparkline charts are rendered.
	ShowSparklines bool
}

// panelChrome is the border plus padding around a panel's content.
const panelChrome = 4

// LayoutForSize returns a LayoutConfig appropriate for the given size and
// width. Sparklines never use more points than the history holds.
func LayoutForSize(size LayoutSize, width, historyLen int) LayoutConfig {
	var cfg LayoutConfig
	switch size {
	case LayoutCompact:
		cfg = LayoutConfig{Columns: 1, GaugeWidth: 10, ShowSparklines: false}
	case LayoutWide:
		cfg = LayoutConfig{Columns: 2, GaugeWidth: 30, ShowSparklines: true}
	default: // LayoutNormal
		cfg = LayoutConfig{Columns: 2, GaugeWidth: 16, ShowSparklines: true}
	}

	cfg.PanelWidth = width/cfg.Columns - panelChrome
	if cfg.PanelWidth < 10 {
		cfg.PanelWidth = 10
	}
	if cfg.GaugeWidth > cfg.PanelWidth-6 {
		cfg.GaugeWidth = max(cfg.PanelWidth-6, 4)
	}
	cfg.SparkWidth = min(cfg.PanelWidth, historyLen)
	return cfg
}

// horizontalRule returns a horizontal line of the given width using box-drawing
// characters.
func horizontalRule(width int) string {
	if width <= 0 {
		return ""
	}
	return strings.Repeat("─", width)
}

// sectionTitle renders a centered title with horizontal rules on either side.
// Format: "---- Title ----"
func sectionTitle(title string, width int) string {
	if width <= 0 {
		return title
	}

	titleLen := len([]rune(title))
	// 2 spaces around the title text.
	decorLen := titleLen + 2
	if decorLen >= width {
		return title
	}

	remaining := width - decorLen
	leftLen := remaining / 2
	rightLen := remaining - leftLen

	return horizontalRule(leftLen) + " " + title + " " + horizontalRule(rightLen)
}
