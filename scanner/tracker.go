package scanner

import "strings"

// Tracker carries an unterminated multi-line string or comment across
// physical lines. When a delimiter is open, the next line is split as if it
// were prefixed with the opener, so the continuation is recognized as part of
// the same delimiter; the synthetic prefix never appears in the returned
// segments.
type Tracker struct {
	grammar Grammar
	delims  []Delim
	open    string
}

// NewTracker returns a tracker for grammar g with no open delimiter.
func NewTracker(g Grammar) *Tracker {
	return &Tracker{grammar: g, delims: g.MultiLineDelims()}
}

// Open returns the opener of the delimiter left open by the last committed
// line, or "" if none.
func (t *Tracker) Open() string { return t.open }

// Reset forgets any open delimiter.
func (t *Tracker) Reset() { t.open = "" }

// Split splits line, continuing the currently open delimiter if any. It does
// not change the tracker state; call Commit once the line is known to be
// final (a backslash-continued line is re-split after joining).
func (t *Tracker) Split(line string) []Segment {
	if t.open == "" {
		return Split(line, t.grammar)
	}
	segs := Split(t.open+line, t.grammar)
	// The prefix makes the line start with a delimiter, so segs[0] is an
	// empty text segment and segs[1] begins with the opener.
	segs[1].Text = segs[1].Text[len(t.open):]
	segs[1].Continues = t.open
	return segs
}

// Commit updates the open-delimiter state from the segments of a finished
// physical line.
func (t *Tracker) Commit(segs []Segment) {
	for _, s := range segs {
		if !s.IsDelim() {
			continue
		}
		body := s.Continues + s.Text
		if s.Continues == "" && len(body) > 1 && body[0] == 'r' && isQuote(body[1]) {
			body = body[1:]
		}
		for _, d := range t.delims {
			if !strings.HasPrefix(body, d.Open) {
				continue
			}
			if body == d.Open || s.Unterminated || !strings.HasSuffix(body, d.Close) {
				t.open = d.Open
			} else {
				t.open = ""
			}
			break
		}
	}
}
