package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Color modes accepted by -color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ShouldColor resolves a color mode for w. In auto mode color is used only when
// w is a terminal and NO_COLOR is unset.
func ShouldColor(mode string, w io.Writer) (bool, error) {
	switch mode {
	case ColorAlways:
		return true, nil
	case ColorNever:
		return false, nil
	case "", ColorAuto:
		if os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	}
	return false, fmt.Errorf("unknown color mode %q (want auto, always or never)", mode)
}

// Styles renders the decorated parts of text output.
type Styles struct {
	Match      func(string) string
	LineNumber func(string) string
	Rule       func(string) string
}

// PlainStyles marks matches with brackets and leaves everything else as is.
func PlainStyles() *Styles {
	identity := func(s string) string { return s }
	return &Styles{
		Match:      func(s string) string { return "[" + s + "]" },
		LineNumber: identity,
		Rule:       identity,
	}
}

// NewStyles returns ANSI styles for w when color is set, PlainStyles otherwise.
func NewStyles(w io.Writer, color bool) *Styles {
	if !color {
		return PlainStyles()
	}
	r := lipgloss.NewRenderer(w, termenv.WithProfile(termenv.ANSI256))
	match := r.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	lineNumber := r.NewStyle().Foreground(lipgloss.Color("86"))
	rule := r.NewStyle().Foreground(lipgloss.Color("241"))
	return &Styles{
		Match:      func(s string) string { return match.Render(s) },
		LineNumber: func(s string) string { return lineNumber.Render(s) },
		Rule:       func(s string) string { return rule.Render(s) },
	}
}
