package convert

import "regexp"

// Inline directives, usually placed in a comment:
//
//	# !!PY2SCALA: BEGIN_PASSTHRU
//	...copied verbatim...
//	# !!PY2SCALA: END_PASSTHRU
const (
	directiveBeginPassthru = "BEGIN_PASSTHRU"
	directiveEndPassthru   = "END_PASSTHRU"
)

var directive = regexp.MustCompile(`!!PY2SCALA: ([A-Z_][A-Z0-9_]*)`)

// filterDirective handles pass-through mode. It returns true if the line was
// consumed: a pass-through toggle, or any line while pass-through is on.
// Consumed lines are appended after tab expansion and are otherwise left
// alone. A toggle inside an unfinished statement flushes that statement
// first so output order follows input order.
func (e *Engine) filterDirective(line string) bool {
	cmd := ""
	if m := directive.FindStringSubmatch(line); m != nil {
		cmd = m[1]
	}
	switch {
	case cmd == directiveBeginPassthru, cmd == directiveEndPassthru:
		e.interrupt(cmd)
		e.passthru = cmd == directiveBeginPassthru
	case !e.passthru:
		return false
	}
	e.out.Append(line)
	return true
}

// interrupt ends a statement still being accumulated when a directive
// arrives: it is flushed as is, and bracket and delimiter state start over.
func (e *Engine) interrupt(cmd string) {
	if e.logical == nil && e.tracker.Open() == "" {
		return
	}
	start := e.lineno
	if e.logical != nil {
		start = e.logical.lineno
	}
	e.warnf("Directive %s inside unterminated statement started at line %d", cmd, start)
	e.flushPending()
	e.balance = 0
	e.tracker.Reset()
}
