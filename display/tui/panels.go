package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/pulsemon/collectors"
	"gitlab.com/tinyland/lab/pulsemon/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/pulsemon/display/widgets"
	"gitlab.com/tinyland/lab/pulsemon/internal/format"
	"gitlab.com/tinyland/lab/pulsemon/status"
)

// Sparkline colors for the two halves of a rate pair.
const (
	colorIn  = lipgloss.Color("#06B6D4")
	colorOut = lipgloss.Color("#F472B6")
)

// splitPair returns the In and Out series of a throughput history.
func splitPair(h sysmetrics.Reader[collectors.Throughput]) (in, out []float64) {
	vals := h.Values()
	in = make([]float64, len(vals))
	out = make([]float64, len(vals))
	for i, v := range vals {
		in[i] = v.In
		out[i] = v.Out
	}
	return in, out
}

// pairLabels returns the short labels for the In and Out halves of kind.
func pairLabels(kind collectors.Kind) (in, out string) {
	if kind == collectors.KindNetwork {
		return "↓", "↑"
	}
	return "R", "W"
}

// panelData is everything one resource panel needs.
type panelData struct {
	kind      collectors.Kind
	sample    collectors.Sample
	hasSample bool
	level     status.Level
	threshold float64
	selected  bool
}

func (m Model) renderResourcePanel(d panelData, layout LayoutConfig) string {
	var lines []string

	title := d.kind.Label()
	if d.selected {
		title = styleSelected.Render("▶ " + title)
	} else {
		title = styleTitle.Render(title)
	}
	lines = append(lines, title+"  "+widgets.RenderLevel(d.level))

	switch {
	case !d.hasSample:
		lines = append(lines, styleMuted.Render("waiting for data"))
	case d.kind.IsPercent():
		lines = append(lines, fmt.Sprintf("%5.1f%%", d.sample.Percent))
		lines = append(lines, widgets.RenderThresholdGauge(d.sample.Percent, d.threshold, status.WarningFraction, layout.GaugeWidth))
	default:
		inLabel, outLabel := pairLabels(d.kind)
		lines = append(lines, fmt.Sprintf("%s %.1f MB/s  %s %.1f MB/s",
			inLabel, d.sample.Rate.In, outLabel, d.sample.Rate.Out))
	}

	if layout.ShowSparklines {
		lines = append(lines, m.renderHistory(d.kind, layout.SparkWidth)...)
	}

	style := stylePanel
	if d.selected {
		style = styleSelectedPanel
	}
	return style.Width(layout.PanelWidth).Render(strings.Join(lines, "\n"))
}

func (m Model) renderHistory(kind collectors.Kind, width int) []string {
	switch kind {
	case collectors.KindCPU:
		return []string{widgets.RenderPercentSparkline(m.histories.CPU.Values(), width, colorIn)}
	case collectors.KindMemory:
		return []string{widgets.RenderPercentSparkline(m.histories.Memory.Values(), width, colorIn)}
	}

	h := m.histories.Disk
	if kind == collectors.KindNetwork {
		h = m.histories.Network
	}
	in, out := splitPair(h)
	if len(in) == 0 {
		return nil
	}
	inLabel, outLabel := pairLabels(kind)
	top, bottom := widgets.RenderPairSparklines(in, out, max(width-2, 1), colorIn, colorOut)
	return []string{inLabel + " " + top, outLabel + " " + bottom}
}

func (m Model) renderThresholds(width int) string {
	th := m.presenter.Thresholds()

	lines := []string{sectionTitle("Thresholds", width)}
	for i, k := range collectors.Kinds {
		marker := "  "
		label := fmt.Sprintf("%-9s", k.Label())
		if i == m.selected {
			marker = styleSelected.Render("▶ ")
			label = styleSelected.Render(label)
		}
		lines = append(lines, fmt.Sprintf("%s%s %s", marker, label, status.FormatValue(k, th.For(k))))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderAlerts(width, maxLines int) string {
	lines := []string{sectionTitle("Recent alerts", width)}

	alerts := m.presenter.Alerts()
	if len(alerts) == 0 {
		lines = append(lines, styleMuted.Render("No alerts"))
		return strings.Join(lines, "\n")
	}

	for i := len(alerts) - 1; i >= 0 && len(lines) <= maxLines; i-- {
		a := alerts[i]
		text := format.TruncateWithEllipsis(a.String(), max(width-9, 4))
		lines = append(lines, styleMuted.Render(a.At.Format("15:04:05"))+" "+styleAlert.Render(text))
	}
	return strings.Join(lines, "\n")
}
