package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"squish/internal/scale"
	"squish/internal/tui"
)

// lineReporter prints one styled line per event. Used in plain mode, where
// no TUI owns the terminal.
type lineReporter struct {
	mu  sync.Mutex
	out io.Writer
}

func newLineReporter(out io.Writer) *lineReporter {
	return &lineReporter{out: out}
}

func (r *lineReporter) Report(message string) {
	r.mu.Lock()
	fmt.Fprintln(r.out, reportStyle.Render(message))
	r.mu.Unlock()
}

func (r *lineReporter) Error(message string) {
	r.mu.Lock()
	fmt.Fprintln(r.out, reportErrorStyle.Render(message))
	r.mu.Unlock()
}

// channelReporter forwards lines onto the progress-update channel so the
// TUI can show them alongside the counters.
type channelReporter struct {
	updates chan<- scale.ProgressUpdate
}

func (r channelReporter) Report(message string) {
	r.updates <- scale.ProgressUpdate{Line: message}
}

func (r channelReporter) Error(message string) {
	r.updates <- scale.ProgressUpdate{Line: message, IsError: true}
}

var (
	reportStyle      = lipgloss.NewStyle().Foreground(tui.ColorDim)
	reportErrorStyle = lipgloss.NewStyle().Foreground(tui.ColorWarn)
)
