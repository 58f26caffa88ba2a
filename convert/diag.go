package convert

import "fmt"

// Severity of a Diagnostic.
type Severity uint8

const (
	// Warning marks a heuristic mismatch the engine recovered from; the
	// output near the reported line likely needs a manual look.
	Warning Severity = iota
	// Notice marks code that is converted but needs manual restructuring.
	Notice
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "Warning"
	case Notice:
		return "Notice"
	}
	return fmt.Sprintf("Severity(%d)", uint8(s))
}

// Diagnostic is one report on the diagnostic stream.
type Diagnostic struct {
	Line     int // 1-based input line number
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %d: %s", d.Severity, d.Line, d.Message)
}

func (e *Engine) report(sev Severity, format string, args ...any) {
	d := Diagnostic{Line: e.lineno, Severity: sev, Message: fmt.Sprintf(format, args...)}
	e.diags = append(e.diags, d)
	if e.opts.Reporter != nil {
		e.opts.Reporter(d)
	}
}

func (e *Engine) warnf(format string, args ...any) { e.report(Warning, format, args...) }

func (e *Engine) noticef(format string, args ...any) { e.report(Notice, format, args...) }
