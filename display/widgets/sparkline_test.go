package widgets

import (
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderSparkline_BasicData(t *testing.T) {
	result := RenderSparkline(SparklineConfig{
		Data: []float64{1, 2, 3, 4, 5, 6, 7, 8},
	})

	if len(result) == 0 {
		t.Fatal("expected non-empty sparkline for ascending data")
	}

	// Ascending data should produce ascending block characters.
	runes := []rune(result)
	for i := 1; i < len(runes); i++ {
		if runes[i] < runes[i-1] {
			t.Errorf("expected ascending blocks, but rune at %d (%c) < rune at %d (%c)",
				i, runes[i], i-1, runes[i-1])
		}
	}
}

func TestRenderSparkline_EmptyData(t *testing.T) {
	if result := RenderSparkline(SparklineConfig{}); result != "" {
		t.Errorf("expected empty string for empty data, got: %q", result)
	}
}

func TestRenderSparkline_AllEqual(t *testing.T) {
	runes := []rune(RenderSparkline(SparklineConfig{
		Data: []float64{5, 5, 5, 5, 5},
	}))

	if len(runes) != 5 {
		t.Fatalf("expected 5 characters, got %d", len(runes))
	}
	expected := sparkBlocks[len(sparkBlocks)/2]
	for i, r := range runes {
		if r != expected {
			t.Errorf("position %d: expected mid-level block %c, got %c", i, expected, r)
		}
	}
}

func TestRenderSparkline_AutoScale(t *testing.T) {
	runes := []rune(RenderSparkline(SparklineConfig{
		Data: []float64{10, 20, 30},
	}))

	if len(runes) != 3 {
		t.Fatalf("expected 3 characters, got %d", len(runes))
	}
	if runes[0] != sparkBlocks[0] {
		t.Errorf("expected lowest block for min value, got %c", runes[0])
	}
	if runes[2] != sparkBlocks[len(sparkBlocks)-1] {
		t.Errorf("expected highest block for max value, got %c", runes[2])
	}
}

func TestRenderSparkline_TruncationAndPadding(t *testing.T) {
	tests := []struct {
		name       string
		data       []float64
		width      int
		wantLen    int
		wantSpaces int
	}{
		{"truncated to last points", []float64{1, 2, 3, 4, 5, 6, 7, 8}, 4, 4, 0},
		{"left padded", []float64{1, 2, 3}, 6, 6, 3},
		{"exact", []float64{1, 2, 3}, 3, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runes := []rune(RenderSparkline(SparklineConfig{Data: tt.data, Width: tt.width}))
			if len(runes) != tt.wantLen {
				t.Fatalf("len = %d, want %d", len(runes), tt.wantLen)
			}
			for i := 0; i < tt.wantSpaces; i++ {
				if runes[i] != ' ' {
					t.Errorf("expected space at position %d, got %c", i, runes[i])
				}
			}
		})
	}
}

func TestRenderSparkline_NonFiniteGaps(t *testing.T) {
	runes := []rune(RenderSparkline(SparklineConfig{
		Data: []float64{0, math.NaN(), 100, math.Inf(1)},
		Min:  0,
		Max:  100,
	}))

	if len(runes) != 4 {
		t.Fatalf("expected 4 characters, got %d", len(runes))
	}
	if runes[1] != gapRune || runes[3] != gapRune {
		t.Errorf("expected gaps for NaN and Inf, got %q", string(runes))
	}
	if runes[0] != sparkBlocks[0] || runes[2] != sparkBlocks[len(sparkBlocks)-1] {
		t.Errorf("finite points mis-scaled: %q", string(runes))
	}
}

func TestRenderPercentSparkline_FixedScale(t *testing.T) {
	// 50 must render mid-range regardless of the other points.
	runes := []rune(RenderPercentSparkline([]float64{50, 51, 52}, 3, ""))
	midIdx := int(0.5 * float64(len(sparkBlocks)-1))
	if runes[0] != sparkBlocks[midIdx] {
		t.Errorf("expected %c for 50%%, got %c", sparkBlocks[midIdx], runes[0])
	}

	runes = []rune(RenderPercentSparkline([]float64{100, 0}, 2, ""))
	if runes[0] != sparkBlocks[len(sparkBlocks)-1] || runes[1] != sparkBlocks[0] {
		t.Errorf("expected full then empty block, got %q", string(runes))
	}
}

func TestRenderPairSparklines_SharedScale(t *testing.T) {
	top, bottom := RenderPairSparklines([]float64{10, 10}, []float64{0, 5}, 2, "", "")

	topRunes := []rune(top)
	bottomRunes := []rune(bottom)
	if topRunes[0] != sparkBlocks[len(sparkBlocks)-1] {
		t.Errorf("top peak should be the highest block, got %c", topRunes[0])
	}
	if bottomRunes[0] != sparkBlocks[0] {
		t.Errorf("zero should be the lowest block, got %c", bottomRunes[0])
	}
	if bottomRunes[1] >= topRunes[1] {
		t.Errorf("5 should render lower than 10 on a shared scale: %c vs %c", bottomRunes[1], topRunes[1])
	}
}

func TestRenderPairSparklines_AllZero(t *testing.T) {
	top, bottom := RenderPairSparklines([]float64{0, 0}, []float64{0, 0}, 2, "", "")
	want := strings.Repeat(string(sparkBlocks[0]), 2)
	if top != want || bottom != want {
		t.Errorf("idle rates = %q / %q, want %q", top, bottom, want)
	}
}

func TestRenderSparkline_WithLabel(t *testing.T) {
	result := RenderSparkline(SparklineConfig{
		Data:  []float64{1, 2, 3},
		Label: "CPU",
	})

	if !strings.HasPrefix(result, "CPU ") {
		t.Errorf("expected output to start with 'CPU ', got: %q", result)
	}
}

func TestRenderSparkline_WithColor(t *testing.T) {
	result := RenderSparkline(SparklineConfig{
		Data:  []float64{1, 2, 3},
		Color: lipgloss.Color("#22C55E"),
	})

	// lipgloss may strip ANSI codes in non-TTY environments, so only check
	// that block characters survive.
	hasBlock := false
	for _, r := range result {
		for _, b := range sparkBlocks {
			if r == b {
				hasBlock = true
			}
		}
	}
	if !hasBlock {
		t.Errorf("expected sparkline block characters in output, got: %q", result)
	}
}
