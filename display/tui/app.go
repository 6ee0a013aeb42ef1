package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gitlab.com/tinyland/lab/pulsemon/collectors"
	"gitlab.com/tinyland/lab/pulsemon/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/pulsemon/display/presenter"
	"gitlab.com/tinyland/lab/pulsemon/display/widgets"
	"gitlab.com/tinyland/lab/pulsemon/internal/format"
)

// tickMsg drives one presenter cycle.
type tickMsg time.Time

// Model is the top-level Bubbletea model for the pulsemon dashboard.
type Model struct {
	ctx       context.Context
	presenter *presenter.Presenter
	histories sysmetrics.Histories
	interval  time.Duration

	selected    int
	help        help.Model
	width       int
	height      int
	started     time.Time
	lastUpdated time.Time
	ready       bool
}

// NewModel returns a Model that ticks p every interval and draws histories.
// ctx is passed to sinks on each tick.
func NewModel(ctx context.Context, p *presenter.Presenter, histories sysmetrics.Histories, interval time.Duration) Model {
	if interval <= 0 {
		interval = time.Second
	}
	return Model{
		ctx:       ctx,
		presenter: p,
		histories: histories,
		interval:  interval,
		help:      help.New(),
	}
}

// SelectedKind returns the resource whose threshold +/- adjusts.
func (m Model) SelectedKind() collectors.Kind {
	return collectors.Kinds[m.selected]
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model. It schedules the first tick.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		now := time.Time(msg)
		m.presenter.Tick(m.ctx, now)
		if m.started.IsZero() {
			m.started = now
		}
		m.lastUpdated = now
		return m, tickCmd(m.interval)

	case tea.KeyMsg:
		n := len(collectors.Kinds)
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.NextKind):
			m.selected = (m.selected + 1) % n
		case key.Matches(msg, keys.PrevKind):
			m.selected = (m.selected - 1 + n) % n
		case key.Matches(msg, keys.Raise):
			m.presenter.AdjustThreshold(m.SelectedKind(), 1)
		case key.Matches(msg, keys.Lower):
			m.presenter.AdjustThreshold(m.SelectedKind(), -1)
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
	}

	return m, nil
}

// View implements tea.Model. A panicking render is replaced by a notice and
// counted by the presenter.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.presenter.SafeRender(m.render)
}

func (m Model) render() string {
	layout := LayoutForSize(DetectLayout(m.width), m.width, m.histories.CPU.Cap())
	th := m.presenter.Thresholds()

	panels := make([]string, 0, len(collectors.Kinds))
	for i, k := range collectors.Kinds {
		smp, ok := m.presenter.Latest(k)
		panels = append(panels, m.renderResourcePanel(panelData{
			kind:      k,
			sample:    smp,
			hasSample: ok,
			level:     m.presenter.Level(k),
			threshold: th.For(k),
			selected:  i == m.selected,
		}, layout))
	}

	var rows []string
	for i := 0; i < len(panels); i += layout.Columns {
		end := min(i+layout.Columns, len(panels))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, panels[i:end]...))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	used := lipgloss.Height(body) + len(collectors.Kinds) + 1 + 4
	alertLines := max(m.height-used, 3)

	sectionWidth := min(m.width, 80)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderThresholds(sectionWidth),
		m.renderAlerts(sectionWidth, alertLines),
		m.renderFooter(),
	)
}

// renderHeader renders the title bar with the overall level and last tick.
func (m Model) renderHeader() string {
	title := styleHeader.Render("pulsemon")
	overall := widgets.RenderLevel(m.presenter.Overall())

	var timestamp string
	if !m.lastUpdated.IsZero() {
		timestamp = styleMuted.Render(fmt.Sprintf("Updated: %s  up %s",
			m.lastUpdated.Format("15:04:05"), format.FormatDuration(m.lastUpdated.Sub(m.started))))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", overall, "  ", timestamp)
}

// renderFooter renders the key help.
func (m Model) renderFooter() string {
	return styleFooter.Render(m.help.View(keys))
}
