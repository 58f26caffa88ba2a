package scanner

// cursor walks a string byte by byte, tracking single- and double-quoted
// literals and their escapes so callers can tell code bytes from string
// bytes. Triple quotes need no special case: they open and close in pairs.
type cursor struct {
	src     string
	pos     int
	quote   byte // quote character of the open literal, 0 in code
	escaped bool
	closing bool // the byte at pos closed a literal
}

func newCursor(src string) *cursor {
	return &cursor{src: src, pos: -1}
}

// next advances to the next byte, updating string and escape state. It
// returns (0, false) at end of input.
func (c *cursor) next() (byte, bool) {
	c.closing = false
	c.pos++
	if c.pos >= len(c.src) {
		return 0, false
	}
	ch := c.src[c.pos]
	switch {
	case c.escaped:
		c.escaped = false
	case ch == '\\' && c.quote != 0:
		c.escaped = true
	case c.quote == 0 && isQuote(ch):
		c.quote = ch
	case ch == c.quote:
		c.quote = 0
		c.closing = true
	}
	return ch, true
}

// inString reports whether the byte at the current position is part of a
// string literal, both delimiters included.
func (c *cursor) inString() bool { return c.quote != 0 || c.closing }

func isOpenBracket(ch byte) bool { return ch == '(' || ch == '[' || ch == '{' }

func isCloseBracket(ch byte) bool { return ch == ')' || ch == ']' || ch == '}' }

// SplitTopLevel splits s at every sep byte that is outside brackets and
// string literals. It always returns at least one element.
func SplitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	c := newCursor(s)
	for ch, ok := c.next(); ok; ch, ok = c.next() {
		if c.inString() {
			continue
		}
		switch {
		case isOpenBracket(ch):
			depth++
		case isCloseBracket(ch):
			depth--
		case ch == sep && depth == 0:
			parts = append(parts, s[start:c.pos])
			start = c.pos + 1
		}
	}
	return append(parts, s[start:])
}
