// Package scanner provides string- and comment-aware splitting of physical
// source lines for the converter. A line is split into alternating plain-text
// and delimiter segments so that rewrite rules only ever touch code, never the
// contents of string literals or comments.
package scanner

import "strings"

// Kind classifies a Segment.
type Kind uint8

const (
	Text         Kind = iota // plain code
	String                   // quoted string literal, including its quotes
	LineComment              // # or // comment running to end of line
	BlockComment             // /* ... */ comment (Scala grammar only)
)

var kindNames = [...]string{
	Text:         "text",
	String:       "string",
	LineComment:  "line-comment",
	BlockComment: "block-comment",
}

func (k Kind) String() string { return kindNames[k] }

// Segment is one span of a split line.
type Segment struct {
	Kind Kind
	Text string

	// Unterminated is set on a delimiter segment that opened on this line
	// but did not close before the end of it.
	Unterminated bool

	// Continues holds the multi-line opener ("'''", `"""` or "/*") when the
	// segment is the tail of a delimiter opened on an earlier line. The
	// opener itself is not part of Text.
	Continues string
}

// IsDelim reports whether the segment is a string literal or a comment.
func (s Segment) IsDelim() bool { return s.Kind != Text }

// IsComment reports whether the segment is a comment of either style.
func (s Segment) IsComment() bool { return s.Kind == LineComment || s.Kind == BlockComment }

// Grammar selects the comment syntax recognized by Split.
type Grammar uint8

const (
	// Python recognizes # comments.
	Python Grammar = iota
	// Scala recognizes // and /* */ comments, used for already-translated
	// input.
	Scala
)

// Delim is a multi-line delimiter pair.
type Delim struct {
	Open  string
	Close string
}

// MultiLineDelims returns the delimiter pairs that may span physical lines
// under grammar g.
func (g Grammar) MultiLineDelims() []Delim {
	delims := []Delim{{`"""`, `"""`}, {`'''`, `'''`}}
	if g == Scala {
		delims = append(delims, Delim{"/*", "*/"})
	}
	return delims
}

// Split splits line into segments. The result always alternates text and
// delimiter segments, starting and ending with a (possibly empty) text
// segment, so even indices are code and odd indices are delimiters.
func Split(line string, g Grammar) []Segment {
	var segs []Segment
	start := 0
	for i := 0; i < len(line); {
		n, kind, closed := g.delimAt(line, i)
		if n == 0 {
			i++
			continue
		}
		segs = append(segs,
			Segment{Kind: Text, Text: line[start:i]},
			Segment{Kind: kind, Text: line[i : i+n], Unterminated: !closed})
		i += n
		start = i
	}
	return append(segs, Segment{Kind: Text, Text: line[start:]})
}

// delimAt checks for a string literal or comment starting at byte offset i.
// It returns the delimiter length (0 if none starts there), its kind and
// whether it closed on this line.
func (g Grammar) delimAt(line string, i int) (int, Kind, bool) {
	rest := line[i:]
	p := 0
	if rest[0] == 'r' && len(rest) > 1 && isQuote(rest[1]) && (i == 0 || !isIdentByte(line[i-1])) {
		p = 1
	}
	q := rest[p:]
	if isQuote(q[0]) {
		for _, triple := range []string{`'''`, `"""`} {
			if strings.HasPrefix(q, triple) {
				if end := strings.Index(q[3:], triple); end >= 0 {
					return p + 3 + end + 3, String, true
				}
				return len(rest), String, false
			}
		}
		quote := q[0]
		for j := 1; j < len(q); j++ {
			switch q[j] {
			case '\\':
				j++
			case quote:
				return p + j + 1, String, true
			}
		}
		return len(rest), String, false
	}

	switch g {
	case Python:
		if rest[0] == '#' {
			return len(rest), LineComment, true
		}
	case Scala:
		if strings.HasPrefix(rest, "/*") {
			if end := strings.Index(rest[2:], "*/"); end >= 0 {
				return 2 + end + 2, BlockComment, true
			}
			return len(rest), BlockComment, false
		}
		if strings.HasPrefix(rest, "//") {
			return len(rest), LineComment, true
		}
	}
	return 0, Text, false
}

// Balance returns the number of opening minus closing parentheses and
// brackets in the text segments. Braces are not counted because the input
// may already carry Scala blocks.
func Balance(segs []Segment) int {
	n := 0
	for _, s := range segs {
		if s.Kind != Text {
			continue
		}
		n += strings.Count(s.Text, "(") + strings.Count(s.Text, "[") -
			strings.Count(s.Text, ")") - strings.Count(s.Text, "]")
	}
	return n
}

// Continued reports whether the line ends with a backslash outside any
// string or comment.
func Continued(segs []Segment) bool {
	last := segs[len(segs)-1].Text
	return last != "" && last[len(last)-1] == '\\'
}

// BlankOrComment reports whether the line holds nothing but whitespace and
// comments.
func BlankOrComment(segs []Segment) bool {
	for _, s := range segs {
		switch {
		case s.Kind == Text && strings.TrimSpace(s.Text) != "":
			return false
		case s.Kind == String:
			return false
		}
	}
	return true
}

// EndsWithBrace reports whether the last code on the line, ignoring
// trailing comments, is an opening brace.
func EndsWithBrace(segs []Segment) bool {
	for i := len(segs) - 1; i >= 0; i-- {
		s := segs[i]
		if s.IsComment() {
			continue
		}
		if s.Kind != Text {
			return false
		}
		t := strings.TrimRight(s.Text, " ")
		if t == "" {
			continue
		}
		return strings.HasSuffix(t, "{")
	}
	return false
}

func isQuote(ch byte) bool { return ch == '\'' || ch == '"' }

func isIdentByte(ch byte) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9'
}
