package host

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/chazu/basil/vm"
)

// Styler colors diagnostics and status lines. The color profile follows
// the writer it was built for, so output to a pipe stays plain.
type Styler struct {
	warning lipgloss.Style
	err     lipgloss.Style
	fatal   lipgloss.Style
	status  lipgloss.Style
	width   int
}

// NewStyler returns a styler for text written to w. Lines longer than
// width are cut; zero leaves them alone.
func NewStyler(w io.Writer, width int) *Styler {
	r := lipgloss.NewRenderer(w)
	return &Styler{
		warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		err:     r.NewStyle().Foreground(lipgloss.Color("9")),
		fatal:   r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		status:  r.NewStyle().Faint(true),
		width:   width,
	}
}

// PlainStyler never adds escape codes.
func PlainStyler() *Styler {
	s := lipgloss.NewStyle()
	return &Styler{warning: s, err: s, fatal: s, status: s}
}

// Diagnostics styles a rendered diagnostics block by its worst severity.
func (s *Styler) Diagnostics(text string, worst vm.Severity) string {
	st := s.err
	switch worst {
	case vm.SeverityWarning:
		st = s.warning
	case vm.SeverityFatal:
		st = s.fatal
	}
	return s.render(st, text)
}

// Status styles the closing status line.
func (s *Styler) Status(text string) string {
	return s.render(s.status, text)
}

func (s *Styler) render(st lipgloss.Style, text string) string {
	if s.width > 0 {
		st = st.MaxWidth(s.width)
	}
	trailing := strings.HasSuffix(text, "\n")
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = st.Render(l)
	}
	out := strings.Join(lines, "\n")
	if trailing {
		out += "\n"
	}
	return out
}
