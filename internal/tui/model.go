package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"squish/internal/scale"
)

const lineTail = 5

type Model struct {
	updates  <-chan scale.ProgressUpdate
	started  time.Time
	width    int
	todo     int
	copied   int
	scaled   int
	skipped  int
	lines    []string
	quitting bool
}

type doneMsg struct{}

type updateMsg scale.ProgressUpdate

func NewModel(updates <-chan scale.ProgressUpdate) Model {
	return Model{updates: updates, started: time.Now()}
}

func (m Model) Init() tea.Cmd {
	return listenForUpdates(m.updates)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case updateMsg:
		m.todo += msg.TotalDelta
		m.copied += msg.CopiedDelta
		m.scaled += msg.ScaledDelta
		m.skipped += msg.SkippedDelta
		if msg.Line != "" {
			line := msg.Line
			if msg.IsError {
				line = errorStyle.Render(line)
			} else {
				line = dimStyle.Render(line)
			}
			m.lines = append(m.lines, line)
			if len(m.lines) > lineTail {
				m.lines = m.lines[len(m.lines)-lineTail:]
			}
		}
		return m, listenForUpdates(m.updates)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-10)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	done := m.copied + m.scaled + m.skipped
	ratio := 0.0
	if m.todo > 0 {
		ratio = float64(done) / float64(m.todo)
		if ratio > 1 {
			ratio = 1
		}
	}

	bar := renderBar(barWidth, ratio)
	elapsed := time.Since(m.started).Round(time.Millisecond)

	lines := []string{
		titleStyle.Render("squish"),
		labelStyle.Render(fmt.Sprintf("Images: %d/%d", done, m.todo)) +
			dimStyle.Render(fmt.Sprintf("  copied:%d scaled:%d skipped:%d", m.copied, m.scaled, m.skipped)),
		dimStyle.Render(fmt.Sprintf("Elapsed: %s", elapsed)),
		barStyle.Render(bar),
	}
	lines = append(lines, m.lines...)

	return strings.Join(lines, "\n")
}

func listenForUpdates(updates <-chan scale.ProgressUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return doneMsg{}
		}
		return updateMsg(update)
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	barStyle   = lipgloss.NewStyle().Foreground(ColorInk)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorDim)
	errorStyle = lipgloss.NewStyle().Foreground(ColorWarn)
)
