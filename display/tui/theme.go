package tui

import "github.com/charmbracelet/lipgloss"

// ThemePreset defines a complete color scheme and layout configuration
// that can be applied at runtime to change the dashboard appearance.
type ThemePreset struct {
	Name        string
	Description string
	// Colors
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	// Layout
	ShowBorders bool
	CompactMode bool
}

// Predefined theme presets.
var (
	// MonitoringTheme is the default dark theme.
	MonitoringTheme = ThemePreset{
		Name:        "monitoring",
		Description: "Dark theme for resource monitoring",
		Primary:     lipgloss.Color("#7C3AED"),
		Secondary:   lipgloss.Color("#06B6D4"),
		Muted:       lipgloss.Color("#6B7280"),
		ShowBorders: true,
	}

	// MinimalTheme is a clean, low-distraction theme.
	MinimalTheme = ThemePreset{
		Name:        "minimal",
		Description: "Clean minimal theme without borders",
		Primary:     lipgloss.Color("#8B5CF6"),
		Secondary:   lipgloss.Color("#67E8F9"),
		Muted:       lipgloss.Color("#9CA3AF"),
		ShowBorders: false,
		CompactMode: true,
	}
)

var allPresets = []ThemePreset{MonitoringTheme, MinimalTheme}

// GetThemePreset returns the theme preset matching the given name.
// Unknown names return MonitoringTheme as the default.
func GetThemePreset(name string) ThemePreset {
	for _, p := range allPresets {
		if p.Name == name {
			return p
		}
	}
	return MonitoringTheme
}

// ThemeNames lists the preset names.
func ThemeNames() []string {
	names := make([]string, len(allPresets))
	for i, p := range allPresets {
		names[i] = p.Name
	}
	return names
}

// Styles used throughout the TUI.
var (
	styleHeader        lipgloss.Style
	styleFooter        lipgloss.Style
	stylePanel         lipgloss.Style
	styleSelectedPanel lipgloss.Style
	styleTitle         lipgloss.Style
	styleMuted         lipgloss.Style
	styleSelected      lipgloss.Style
	styleAlert         lipgloss.Style
)

func init() {
	ApplyTheme(MonitoringTheme)
}

// ApplyTheme updates the package-level styles to use the given preset.
func ApplyTheme(preset ThemePreset) {
	styleHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(preset.Primary).
		Padding(0, 1)

	styleFooter = lipgloss.NewStyle().
		Foreground(preset.Muted).
		MarginTop(1)

	pad := 1
	if preset.CompactMode {
		pad = 0
	}
	if preset.ShowBorders {
		stylePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(preset.Muted).
			Padding(0, pad)
		styleSelectedPanel = stylePanel.
			BorderForeground(preset.Secondary)
	} else {
		stylePanel = lipgloss.NewStyle().Padding(0, pad+1)
		styleSelectedPanel = stylePanel
	}

	styleTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(preset.Secondary)

	styleMuted = lipgloss.NewStyle().
		Foreground(preset.Muted)

	styleSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(preset.Primary)

	styleAlert = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#EF4444"))
}
