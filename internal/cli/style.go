package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/roach88/marktest/internal/config"
	"github.com/roach88/marktest/internal/match"
)

// styles colors verdict text. The zero value renders plain text.
type styles struct {
	enabled bool
	pass    lipgloss.Style
	fail    lipgloss.Style
	misuse  lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(w io.Writer, mode string) styles {
	if !colorEnabled(w, mode) {
		return styles{}
	}

	r := lipgloss.NewRenderer(w)
	return styles{
		enabled: true,
		pass:    r.NewStyle().Foreground(lipgloss.Color("2")),
		fail:    r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		misuse:  r.NewStyle().Foreground(lipgloss.Color("3")),
		muted:   r.NewStyle().Faint(true),
	}
}

// verdict renders text in the color of status.
func (s styles) verdict(status match.Status, text string) string {
	if !s.enabled {
		return text
	}
	switch status {
	case match.Pass:
		return s.pass.Render(text)
	case match.Fail:
		return s.fail.Render(text)
	case match.Misuse:
		return s.misuse.Render(text)
	default:
		return text
	}
}

func (s styles) faint(text string) string {
	if !s.enabled {
		return text
	}
	return s.muted.Render(text)
}

func colorEnabled(w io.Writer, mode string) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return isTTYWriter(w)
	}
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
