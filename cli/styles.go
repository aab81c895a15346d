package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// styles colours output only when it goes to a terminal.
type styles struct {
	enabled    bool
	okStyle    lipgloss.Style
	errStyle   lipgloss.Style
	labelStyle lipgloss.Style
}

func newStyles(w io.Writer) styles {
	f, ok := w.(*os.File)
	return styles{
		enabled:    ok && term.IsTerminal(int(f.Fd())),
		okStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		errStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		labelStyle: lipgloss.NewStyle().Bold(true),
	}
}

func (s styles) render(st lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return st.Render(text)
}

func (s styles) good(text string) string  { return s.render(s.okStyle, text) }
func (s styles) bad(text string) string   { return s.render(s.errStyle, text) }
func (s styles) label(text string) string { return s.render(s.labelStyle, text) }

// status highlights the connected marker in monitor lines.
func (s styles) status(line string) string {
	if rest, ok := strings.CutPrefix(line, "CONNECTED"); ok {
		return s.good("CONNECTED") + rest
	}
	return line
}
