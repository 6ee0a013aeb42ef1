package tui

import (
	"strings"
	"testing"
)

func TestDetectLayout(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutSize
	}{
		{10, LayoutCompact},
		{59, LayoutCompact},
		{60, LayoutNormal},
		{120, LayoutNormal},
		{121, LayoutWide},
		{200, LayoutWide},
	}
	for _, tt := range tests {
		if got := DetectLayout(tt.width); got != tt.want {
			t.Errorf("DetectLayout(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestLayoutForSize_Compact(t *testing.T) {
	cfg := LayoutForSize(LayoutCompact, 50, 60)

	if cfg.Columns != 1 {
		t.Errorf("Compact Columns = %d, want 1", cfg.Columns)
	}
	if cfg.PanelWidth != 46 {
		t.Errorf("Compact PanelWidth = %d, want 46", cfg.PanelWidth)
	}
	if cfg.ShowSparklines {
		t.Error("Compact ShowSparklines should be false")
	}
}

func TestLayoutForSize_Normal(t *testing.T) {
	cfg := LayoutForSize(LayoutNormal, 100, 60)

	if cfg.Columns != 2 {
		t.Errorf("Normal Columns = %d, want 2", cfg.Columns)
	}
	if cfg.PanelWidth != 46 {
		t.Errorf("Normal PanelWidth = %d, want 46", cfg.PanelWidth)
	}
	if cfg.SparkWidth != 46 {
		t.Errorf("Normal SparkWidth = %d, want 46", cfg.SparkWidth)
	}
	if !cfg.ShowSparklines {
		t.Error("Normal ShowSparklines should be true")
	}
}

func TestLayoutForSize_WideCapsSparkToHistory(t *testing.T) {
	cfg := LayoutForSize(LayoutWide, 200, 60)

	if cfg.PanelWidth != 96 {
		t.Errorf("Wide PanelWidth = %d, want 96", cfg.PanelWidth)
	}
	if cfg.SparkWidth != 60 {
		t.Errorf("Wide SparkWidth = %d, want 60 (history length)", cfg.SparkWidth)
	}
	if cfg.GaugeWidth != 30 {
		t.Errorf("Wide GaugeWidth = %d, want 30", cfg.GaugeWidth)
	}
}

func TestLayoutForSize_TinyTerminal(t *testing.T) {
	cfg := LayoutForSize(LayoutCompact, 8, 60)

	if cfg.PanelWidth != 10 {
		t.Errorf("PanelWidth = %d, want floor of 10", cfg.PanelWidth)
	}
	if cfg.GaugeWidth != 4 {
		t.Errorf("GaugeWidth = %d, want 4", cfg.GaugeWidth)
	}
}

func TestHorizontalRule(t *testing.T) {
	if got := horizontalRule(0); got != "" {
		t.Errorf("horizontalRule(0) = %q, want empty", got)
	}
	if got := horizontalRule(5); got != strings.Repeat("─", 5) {
		t.Errorf("horizontalRule(5) = %q", got)
	}
}

func TestSectionTitle(t *testing.T) {
	got := sectionTitle("Alerts", 20)
	if len([]rune(got)) != 20 {
		t.Errorf("sectionTitle width = %d, want 20: %q", len([]rune(got)), got)
	}
	if !strings.Contains(got, " Alerts ") {
		t.Errorf("sectionTitle missing padded title: %q", got)
	}

	if got := sectionTitle("Alerts", 5); got != "Alerts" {
		t.Errorf("narrow sectionTitle = %q, want bare title", got)
	}
}
