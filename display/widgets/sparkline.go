package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparkBlocks contains 8 unicode block characters for sparkline rendering,
// ordered from lowest to highest.
var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// gapRune marks a point that has no finite value.
const gapRune = ' '

// SparklineConfig controls the appearance and behavior of a sparkline chart.
type SparklineConfig struct {
	// Data points to render (most recent last).
	Data []float64
	// Width is the number of characters to render. If 0, uses len(Data).
	Width int
	// Min is the minimum value for scaling. If Min == Max, auto-scale.
	Min float64
	// Max is the maximum value for scaling.
	Max float64
	// Label is optional text shown before the sparkline.
	Label string
	// Color is the lipgloss color for the sparkline characters.
	Color lipgloss.Color
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// dataRange returns the min and max of the finite values in data. ok is false
// when there are none.
func dataRange(data []float64) (minVal, maxVal float64, ok bool) {
	for _, v := range data {
		if !finite(v) {
			continue
		}
		if !ok {
			minVal, maxVal, ok = v, v, true
			continue
		}
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	return minVal, maxVal, ok
}

// RenderSparkline renders a unicode sparkline chart from the given configuration.
// Non-finite points render as gaps.
func RenderSparkline(cfg SparklineConfig) string {
	if len(cfg.Data) == 0 {
		return ""
	}

	data := cfg.Data

	width := cfg.Width
	if width <= 0 {
		width = len(data)
	}

	// Truncate to last Width points if needed.
	if width < len(data) {
		data = data[len(data)-width:]
	}

	minVal := cfg.Min
	maxVal := cfg.Max
	if minVal == maxVal {
		minVal, maxVal, _ = dataRange(data)
	}

	runes := make([]rune, 0, len(data))
	allEqual := minVal == maxVal

	for _, v := range data {
		if !finite(v) {
			runes = append(runes, gapRune)
			continue
		}
		if allEqual {
			runes = append(runes, sparkBlocks[len(sparkBlocks)/2])
			continue
		}
		normalized := (v - minVal) / (maxVal - minVal)
		normalized = math.Max(0, math.Min(1, normalized))
		idx := int(normalized * float64(len(sparkBlocks)-1))
		if idx >= len(sparkBlocks) {
			idx = len(sparkBlocks) - 1
		}
		runes = append(runes, sparkBlocks[idx])
	}

	// Left-pad with spaces if Width > len(data).
	sparkStr := string(runes)
	if width > len(data) {
		sparkStr = strings.Repeat(" ", width-len(data)) + sparkStr
	}

	if cfg.Color != "" {
		sparkStr = lipgloss.NewStyle().Foreground(cfg.Color).Render(sparkStr)
	}

	if cfg.Label != "" {
		sparkStr = cfg.Label + " " + sparkStr
	}

	return sparkStr
}

// RenderPercentSparkline renders a sparkline on a fixed 0-100 scale, so
// heights are comparable between redraws.
func RenderPercentSparkline(data []float64, width int, color lipgloss.Color) string {
	return RenderSparkline(SparklineConfig{
		Data:  data,
		Width: width,
		Min:   0,
		Max:   100,
		Color: color,
	})
}

// RenderPairSparklines renders two rate series one above the other on a
// shared scale from 0 to the larger series peak. When both series are flat
// at zero the bottom block is used.
func RenderPairSparklines(top, bottom []float64, width int, topColor, bottomColor lipgloss.Color) (string, string) {
	maxVal := 0.0
	if _, m, ok := dataRange(top); ok {
		maxVal = math.Max(maxVal, m)
	}
	if _, m, ok := dataRange(bottom); ok {
		maxVal = math.Max(maxVal, m)
	}
	if maxVal == 0 {
		// Any non-zero Max disables auto-scale and pins zero to the bottom block.
		maxVal = 1
	}

	render := func(data []float64, color lipgloss.Color) string {
		return RenderSparkline(SparklineConfig{
			Data:  data,
			Width: width,
			Min:   0,
			Max:   maxVal,
			Color: color,
		})
	}
	return render(top, topColor), render(bottom, bottomColor)
}
