package tui

import (
	"fmt"
	"strings"

	"glaunch/internal/domain"
	"glaunch/internal/event"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	stageStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Faint(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// eventMsg delivers a bus event into the bubbletea loop.
type eventMsg event.Event

// closedMsg signals that the bus subscription ended.
type closedMsg struct{}

// ProgressModel renders install progress events from the bus: stage line,
// progress bar (or byte counters when the total is unknown), speed, and a
// final error line when an operation fails. It quits on the done stage, on
// an error event, or when the subscription closes.
type ProgressModel struct {
	events <-chan event.Event
	bar    progress.Model

	stage      string
	message    string
	file       string
	speed      string
	fraction   float64
	downloaded int64
	total      int64
	failed     *domain.ErrorEvent
	done       bool
}

// NewProgressModel creates a progress view over a bus subscription.
func NewProgressModel(events <-chan event.Event) ProgressModel {
	return ProgressModel{
		events:   events,
		bar:      progress.New(progress.WithDefaultGradient()),
		fraction: -1,
	}
}

// Done reports whether the watched operation completed successfully.
func (m ProgressModel) Done() bool {
	return m.done && m.failed == nil
}

// Init implements tea.Model.
func (m ProgressModel) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m ProgressModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

// Update implements tea.Model.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 8
		return m, nil

	case closedMsg:
		return m, tea.Quit

	case eventMsg:
		if msg.Error != nil {
			m.failed = msg.Error
			return m, tea.Quit
		}
		if p := msg.Progress; p != nil {
			m.stage = p.Stage
			m.message = p.Message
			m.file = p.CurrentFile
			m.speed = p.Speed
			m.fraction = p.Progress
			m.downloaded = p.Downloaded
			m.total = p.Total
			if p.Stage == domain.StageDone {
				m.done = true
				return m, tea.Quit
			}
		}
		return m, m.waitForEvent()
	}

	return m, nil
}

// View implements tea.Model.
func (m ProgressModel) View() string {
	var b strings.Builder

	if m.failed != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("error (%s): %s", m.failed.Kind, m.failed.Message)))
		if m.failed.Detail != "" {
			b.WriteString("\n" + dimStyle.Render(m.failed.Detail))
		}
		b.WriteString("\n")
		return b.String()
	}

	if m.stage != "" {
		b.WriteString(stageStyle.Render(m.stage))
		if m.message != "" {
			b.WriteString("  " + m.message)
		}
		b.WriteString("\n")
	}

	if m.file != "" {
		b.WriteString(dimStyle.Render(m.file) + "\n")
	}

	switch {
	case m.fraction >= 0:
		b.WriteString(m.bar.ViewAs(m.fraction))
		b.WriteString("\n")
	case m.downloaded > 0:
		// No declared total: byte counters only.
		b.WriteString(fmt.Sprintf("%s downloaded\n", formatBytes(m.downloaded)))
	}

	if m.speed != "" {
		line := m.speed
		if m.total > 0 {
			line += fmt.Sprintf("  %s / %s", formatBytes(m.downloaded), formatBytes(m.total))
		}
		b.WriteString(dimStyle.Render(line) + "\n")
	}

	return b.String()
}

func formatBytes(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.2f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
