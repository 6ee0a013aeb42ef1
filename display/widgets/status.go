package widgets

import (
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/pulsemon/status"
)

// StatusConfig holds the configuration for rendering a status indicator.
type StatusConfig struct {
	// Level determines the color and icon.
	Level status.Level
	// Text is the label shown next to the indicator.
	Text string
	// ShowIcon controls whether the colored dot is shown.
	ShowIcon bool
}

var statusIcons = map[status.Level]string{
	status.LevelHealthy:  "●", // green dot
	status.LevelWarning:  "●", // yellow dot
	status.LevelCritical: "●", // red dot
	status.LevelUnknown:  "○", // gray outline
}

var statusColors = map[status.Level]lipgloss.Color{
	status.LevelHealthy:  colorHealthy,
	status.LevelWarning:  colorWarning,
	status.LevelCritical: colorDanger,
	status.LevelUnknown:  lipgloss.Color("#6B7280"),
}

// LevelColor returns the display color for a level. Unrecognized levels get
// the unknown color.
func LevelColor(l status.Level) lipgloss.Color {
	if c, ok := statusColors[l]; ok {
		return c
	}
	return statusColors[status.LevelUnknown]
}

// RenderStatus renders a status indicator with an optional colored icon and text.
func RenderStatus(cfg StatusConfig) string {
	style := lipgloss.NewStyle().Foreground(LevelColor(cfg.Level))

	if cfg.ShowIcon {
		icon, ok := statusIcons[cfg.Level]
		if !ok {
			icon = statusIcons[status.LevelUnknown]
		}
		coloredIcon := style.Render(icon)
		if cfg.Text == "" {
			return coloredIcon
		}
		return coloredIcon + " " + cfg.Text
	}

	return style.Render(cfg.Text)
}

// RenderLevel renders a level with its dot and name, e.g. "● warning".
func RenderLevel(l status.Level) string {
	return RenderStatus(StatusConfig{
		Level:    l,
		Text:     l.String(),
		ShowIcon: true,
	})
}
