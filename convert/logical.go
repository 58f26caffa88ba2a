package convert

import (
	"strings"

	"github.com/rubiojr/py2scala/scanner"
)

// logicalLine accumulates the physical lines of one statement in two forms:
// rewritten (what gets emitted) and original (what name matching sees). Both
// always hold the same number of physical lines.
type logicalLine struct {
	rewritten []string
	original  []string
	indent    int
	lineno    int
	// prevBlank counts the blank/comment lines directly before the
	// statement; relocations carry them along.
	prevBlank int

	// Segments of the last physical line, raw and rewritten.
	lastSegs []scanner.Segment
	lastRw   []string
}

func newLogicalLine(indent, lineno, prevBlank int) *logicalLine {
	return &logicalLine{indent: indent, lineno: lineno, prevBlank: prevBlank}
}

func (l *logicalLine) add(segs []scanner.Segment, rw []string, orig string) {
	l.rewritten = append(l.rewritten, strings.Join(rw, ""))
	l.original = append(l.original, orig)
	l.lastSegs = segs
	l.lastRw = rw
}

func (l *logicalLine) text() string { return strings.Join(l.rewritten, "\n") }

func (l *logicalLine) orig() string { return strings.Join(l.original, "\n") }

// endsWithBrace reports whether the statement's last code is '{'.
func (l *logicalLine) endsWithBrace() bool { return scanner.EndsWithBrace(l.lastSegs) }

// trailingComment returns the rewritten comment ending the last physical
// line, if the line ends in one.
func (l *logicalLine) trailingComment() (string, bool) {
	n := len(l.lastSegs)
	if n < 3 || !l.lastSegs[n-2].IsComment() || strings.TrimSpace(l.lastRw[n-1]) != "" {
		return "", false
	}
	return l.lastRw[n-2], true
}

// stripComment splits text, the emitted form of the statement, into code and
// trailing comment.
func (l *logicalLine) stripComment(text string) (code, comment string) {
	comment, ok := l.trailingComment()
	if !ok {
		return text, ""
	}
	code = strings.TrimSuffix(text, l.lastRw[len(l.lastRw)-1])
	if !strings.HasSuffix(code, comment) {
		return text, ""
	}
	return strings.TrimSuffix(code, comment), comment
}
