package convert

import (
	"regexp"
	"strings"
)

// origin tells whether a block's braces are inferred from indentation or
// already present in the input.
type origin uint8

const (
	inferred origin = iota
	explicit
)

// blockFrame is an open indentation block.
type blockFrame struct {
	origin origin
	indent int
	// start and end are the first and last output lines of the header.
	// Explicit frames only exist to keep nesting depth right and carry no
	// refs.
	start, end *Ref
	// comment is the trailing comment of the header line, kept so the
	// opening brace goes before it.
	comment string
}

// blockRule recognizes one block-introducing header. body is the header
// without indentation, trailing colon and trailing comment.
type blockRule struct {
	name string
	re   *regexp.Regexp
	tmpl string
}

var blockRules = []blockRule{
	{"def", regexp.MustCompile(`(?s)^def\s+(.*?)\((.*)\)$`), "def ${1}(${2})"},
	{"def-result", regexp.MustCompile(`(?s)^def\s+(.*?)\((.*)\)\s*->\s*(.*?)$`), "def ${1}(${2}): ${3}"},
	{"for", regexp.MustCompile(`(?s)^for\s+(.*?)\s+in\s+(.*)$`), "for (${1} <- ${2})"},
	{"if", regexp.MustCompile(`(?s)^if\s+(.*)$`), "if (${1})"},
	{"elif", regexp.MustCompile(`(?s)^elif\s+(.*)$`), "else if (${1})"},
	{"else", regexp.MustCompile(`(?s)^else\s*$`), "else"},
	{"while", regexp.MustCompile(`(?s)^while\s(.*)$`), "while (${1})"},
	{"try", regexp.MustCompile(`(?s)^try\s*$`), "try"},
	{"except", regexp.MustCompile(`(?s)^except\s*$`), "catch"},
	{"except-clause", regexp.MustCompile(`(?s)^except\s+(.*)$`), "catch ${1}"},
	{"finally", regexp.MustCompile(`(?s)^finally\s*$`), "finally"},
	{"class-object", regexp.MustCompile(`(?s)^class\s+(.*)\(object\)`), "class ${1}"},
	{"class-extends", regexp.MustCompile(`(?s)^class\s+(.*)\((.*)\)$`), "class ${1} extends ${2}"},
	{"class", regexp.MustCompile(`(?s)^class\s+([^(]*)$`), "class ${1}"},
}

// matchBlock returns the Scala form of a block header body, or "" if body
// does not introduce a block.
func matchBlock(body string) string {
	for _, rule := range blockRules {
		m := rule.re.FindStringSubmatchIndex(body)
		if m == nil {
			continue
		}
		return string(rule.re.ExpandString(nil, rule.tmpl, body, m))
	}
	return ""
}

var (
	// colonHeader splits a logical line ending in ':' into indentation and
	// body.
	colonHeader = regexp.MustCompile(`(?s)^(\s*)(.*?)\s*:\s*$`)
	// defOrClass marks headers whose blocks always get braces.
	defOrClass = regexp.MustCompile(`^ *(def|class) `)
	blankLine  = regexp.MustCompile(`^ *$`)
)

// header is a logical line split for block recognition.
type header struct {
	front, body, back string
}

// splitHeader looks for a Python block header: a logical line ending in ':',
// optionally followed by a comment on its last physical line.
func splitHeader(ll *logicalLine, text string) (header, bool) {
	code, comment := ll.stripComment(text)
	m := colonHeader.FindStringSubmatch(code)
	if m == nil {
		return header{}, false
	}
	h := header{front: m[1], body: m[2]}
	if comment != "" {
		h.back = " " + comment
	}
	return h, true
}

func (e *Engine) pushBlock(f *blockFrame) { e.blocks = append(e.blocks, f) }

// closeBlocks pops every block and scope at or deeper than indent, inserting
// closing braces for inferred blocks innermost first. line is the physical
// line that triggered the dedent.
func (e *Engine) closeBlocks(indent int, line string) {
	for len(e.blocks) > 0 && e.blocks[len(e.blocks)-1].indent >= indent {
		f := e.blocks[len(e.blocks)-1]
		e.blocks = e.blocks[:len(e.blocks)-1]
		if f.origin == inferred {
			e.closeInferred(f, line)
		}
		e.out.Release(f.start)
		e.out.Release(f.end)
	}
	for len(e.scopes) > 0 && e.scopes[len(e.scopes)-1].indent >= indent {
		e.popScope()
	}
}

func (e *Engine) closeInferred(f *blockFrame, line string) {
	rbrace := strings.Repeat(" ", f.indent) + "}"
	// The input already closes this block; only the opener is missing.
	if strings.HasPrefix(line, rbrace) {
		e.openBlock(f)
		return
	}
	// Closing brace goes before any trailing blank lines, which do not
	// affect indentation.
	at := e.out.Len()
	for at > 0 && blankLine.MatchString(e.out.Line(at-1)) {
		at--
	}
	// A single-statement if/for/while body stays brace-free; definitions
	// always get braces.
	if at-f.end.Index() > 2 || defOrClass.MatchString(e.out.Line(f.start.Index())) {
		e.openBlock(f)
		e.out.Insert(at, rbrace)
	}
}

// openBlock appends the opening brace to the header's last line, ahead of
// any trailing comment.
func (e *Engine) openBlock(f *blockFrame) {
	i := f.end.Index()
	l := e.out.Line(i)
	if f.comment != "" && strings.HasSuffix(l, f.comment) {
		l = strings.TrimSuffix(l, f.comment) + " {" + f.comment
	} else {
		l += " {"
	}
	e.out.SetLine(i, l)
}
