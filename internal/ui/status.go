// Package ui renders wait progress for humans watching the terminal.
//
// All output goes to stderr; stdout belongs to machine-readable command
// payloads. Styling is dropped when stderr is not a TTY.
package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/provsync/provsync/internal/coordinate"
)

var (
	colorGreen = lipgloss.Color("#22c55e")
	colorRed   = lipgloss.Color("#ef4444")
	colorBlue  = lipgloss.Color("#3b82f6")
	colorDim   = lipgloss.Color("#6b7280")
)

var (
	phaseStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	terminalStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	failStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	dimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// StatusRenderer implements coordinate.Observer with styled terminal lines.
type StatusRenderer struct {
	out    io.Writer
	styled bool
}

// NewStatusRenderer creates a renderer writing to stderr.
func NewStatusRenderer() *StatusRenderer {
	return &StatusRenderer{
		out:    os.Stderr,
		styled: isatty.IsTerminal(os.Stderr.Fd()),
	}
}

// NewStatusRendererTo creates a renderer writing to out with explicit styling.
func NewStatusRendererTo(out io.Writer, styled bool) *StatusRenderer {
	return &StatusRenderer{out: out, styled: styled}
}

// PhaseChanged implements coordinate.Observer.
func (r *StatusRenderer) PhaseChanged(phase coordinate.Phase, detail string) {
	var line string
	switch phase {
	case coordinate.PhaseTerminal:
		line = r.render(terminalStyle, "✓ "+detail)
	case coordinate.PhaseTimedOut:
		line = r.render(failStyle, fmt.Sprintf("✗ timed out (last status: %s)", detail))
	default:
		line = r.render(phaseStyle, fmt.Sprintf("[%s] %s", phase, detail))
	}
	fmt.Fprintln(r.out, line)
}

// StatusObserved implements coordinate.Observer.
func (r *StatusRenderer) StatusObserved(status string, elapsed time.Duration) {
	stamp := r.render(dimStyle, fmt.Sprintf("[%s]", elapsed.Round(time.Second)))
	fmt.Fprintf(r.out, "%s %s\n", stamp, status)
}

func (r *StatusRenderer) render(style lipgloss.Style, s string) string {
	if !r.styled {
		return s
	}
	return style.Render(s)
}
