package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/rubiojr/py2scala/convert"
	"golang.org/x/term"
)

// useColor reports whether diagnostics written to w should be styled:
// never with --no-color or NO_COLOR, otherwise only on a terminal.
func useColor(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// reporter prints diagnostics as "Warning: <line>: <message>".
type reporter struct {
	w      io.Writer
	color  bool
	styles map[convert.Severity]lipgloss.Style
	dim    lipgloss.Style
}

func newReporter(w io.Writer, color bool) *reporter {
	r := &reporter{w: w, color: color}
	if color {
		re := lipgloss.NewRenderer(w)
		r.styles = map[convert.Severity]lipgloss.Style{
			convert.Warning: re.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
			convert.Notice:  re.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		}
		r.dim = re.NewStyle().Faint(true)
	}
	return r
}

func (r *reporter) paint(s string, style lipgloss.Style) string {
	if !r.color {
		return s
	}
	return style.Render(s)
}

func (r *reporter) diagnostic(d convert.Diagnostic) {
	fmt.Fprintf(r.w, "%s: %d: %s\n", r.paint(d.Severity.String(), r.styles[d.Severity]), d.Line, d.Message)
}

// summary prints the diagnostic totals of a run, if there were any.
func (r *reporter) summary(diags []convert.Diagnostic) {
	var warnings, notices int
	for _, d := range diags {
		switch d.Severity {
		case convert.Warning:
			warnings++
		case convert.Notice:
			notices++
		}
	}
	if warnings+notices == 0 {
		return
	}
	fmt.Fprintln(r.w, r.paint(fmt.Sprintf("%d warnings, %d notices", warnings, notices), r.dim))
}

// newLogger returns the structured logger used by watch mode.
func newLogger(w io.Writer, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
