// Package convert is the line-reconstruction and block/scope inference
// engine that turns Python source into Scala-shaped source.
//
// The engine never builds a syntax tree. It feeds each physical line through
// a string/comment-aware splitter, reassembles logical statements across
// open brackets, backslash continuations and multi-line strings, infers
// blocks from indentation to synthesize braces, and infers val/var
// declarations from first assignments. Output lines already emitted are
// revisited in place (adding braces, turning val into var, moving class
// variables into companion objects), so nothing is written until the input
// is exhausted.
//
// Conversion is heuristic and expected to need manual follow-up, but it is
// idempotent: running it again over its own output with Scala mode enabled
// changes nothing.
package convert

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/rubiojr/py2scala/rewrite"
	"github.com/rubiojr/py2scala/scanner"
)

// DefaultTabWidth is the tab stop used when Options.TabWidth is zero.
const DefaultTabWidth = 8

// ErrInternal wraps a broken engine invariant. Convert returns it together
// with the output buffered so far.
var ErrInternal = errors.New("internal converter error")

// Options configures one conversion run.
type Options struct {
	// Scala marks the input as already (partially) translated: comments
	// use // and /* */ and None is left alone.
	Scala bool
	// RemoveSelf strips self./cls. receivers and receiver parameters.
	RemoveSelf bool
	// ConvertBrackets rewrites index brackets to call parentheses.
	ConvertBrackets bool
	// TabWidth is the tab stop for tab expansion.
	TabWidth int
	// Reporter, if set, receives each diagnostic as it is produced.
	Reporter func(Diagnostic)
}

// SecondPass returns o with Scala, RemoveSelf and ConvertBrackets all
// enabled, the mode for re-running over converted code.
func (o Options) SecondPass() Options {
	o.Scala, o.RemoveSelf, o.ConvertBrackets = true, true, true
	return o
}

// Result is the output of a run.
type Result struct {
	Lines       []string
	Diagnostics []Diagnostic
}

// Engine holds all state of a single conversion run. Feed it physical lines
// in order, then call Finish. An Engine is not safe for concurrent use and
// cannot be reused after Finish.
type Engine struct {
	opts    Options
	rw      *rewrite.Rewriter
	tracker *scanner.Tracker
	out     *Buffer
	blocks  []*blockFrame
	scopes  []*scopeFrame
	diags   []Diagnostic

	lineno    int
	curIndent int

	// contLine holds a backslash-continued line waiting for the next one.
	contLine   string
	continuing bool

	// balance is the open bracket count at the end of the last physical
	// line, including earlier lines of the current statement.
	balance int
	logical *logicalLine

	// blankRun counts consecutive blank/comment-only lines; prevBlankRun is
	// its value just before the latest code line.
	blankRun     int
	prevBlankRun int

	passthru bool
}

// New returns an engine for one run.
func New(opts Options) *Engine {
	if opts.TabWidth <= 0 {
		opts.TabWidth = DefaultTabWidth
	}
	g := scanner.Python
	if opts.Scala {
		g = scanner.Scala
	}
	e := &Engine{
		opts:    opts,
		tracker: scanner.NewTracker(g),
		out:     NewBuffer(),
	}
	e.rw = rewrite.New(rewrite.Options{
		Scala:           opts.Scala,
		RemoveSelf:      opts.RemoveSelf,
		ConvertBrackets: opts.ConvertBrackets,
	}, func(msg string) { e.warnf("%s", msg) })
	return e
}

// blockIntro spots a block header while brackets are still open, which
// means an opening bracket earlier was never closed.
var blockIntro = regexp.MustCompile(`^\s*(if|for|with|while|try|elif|else|except|def|class)\b.*:\s*(#.*|//.*)?$`)

// Feed processes the next physical input line.
func (e *Engine) Feed(raw string) {
	e.lineno++
	raw = strings.TrimRight(raw, "\r\n")
	line := expandTabs(raw, e.opts.TabWidth)
	if e.continuing {
		line = strings.TrimRight(e.contLine, " ") + " " + strings.TrimLeft(line, " ")
		e.contLine, e.continuing = "", false
	}
	if e.filterDirective(line) {
		return
	}
	e.process(line)
}

func (e *Engine) process(line string) {
	openAtStart := e.tracker.Open()
	segs := e.tracker.Split(line)
	if scanner.Continued(segs) {
		e.contLine = line[:len(line)-1]
		e.continuing = true
		return
	}
	e.tracker.Commit(segs)

	if openAtStart == "" && scanner.BlankOrComment(segs) {
		e.blankRun++
	} else {
		e.prevBlankRun = e.blankRun
		e.blankRun = 0
	}

	startBalance := e.balance
	delta := scanner.Balance(segs)
	e.balance += delta
	if e.balance < 0 {
		e.warnf("Apparent unmatched right-paren, we might be confused: %s", line)
		e.balance = 0
	}

	fresh := openAtStart == "" && startBalance == 0

	// Indentation only counts outside multi-line strings, and blank lines
	// never change it.
	if openAtStart == "" && strings.TrimSpace(line) != "" {
		indent := leadingSpaces(line)
		if indent < e.curIndent {
			if startBalance > 0 && e.closesBlock(indent) {
				e.recoverUnmatched(delta)
				fresh = true
			}
			e.closeBlocks(indent, line)
		}
		e.curIndent = indent
	}

	if !fresh && openAtStart == "" && blockIntro.MatchString(line) {
		e.recoverUnmatched(delta)
		fresh = true
	}

	if fresh {
		e.flushPending()
		e.logical = newLogicalLine(e.curIndent, e.lineno, e.prevBlankRun)
	}
	e.logical.add(segs, e.rw.Segments(segs), line)

	if e.balance > 0 || e.tracker.Open() != "" {
		return
	}
	ll := e.logical
	e.logical = nil
	e.complete(ll)
}

// closesBlock reports whether a dedent to indent pops at least one block.
func (e *Engine) closesBlock(indent int) bool {
	return len(e.blocks) > 0 && e.blocks[len(e.blocks)-1].indent >= indent
}

// recoverUnmatched gives up on the statement being accumulated: it is
// flushed as is, and the balance restarts from the current line alone.
func (e *Engine) recoverUnmatched(delta int) {
	start := e.lineno
	if e.logical != nil {
		start = e.logical.lineno
	}
	e.warnf("Apparent unmatched left-paren somewhere before, possibly line %d, we might be confused", start)
	e.balance = max(delta, 0)
	e.flushPending()
}

// flushPending emits a partially accumulated statement unchanged.
func (e *Engine) flushPending() {
	if e.logical == nil {
		return
	}
	e.out.Append(strings.Split(e.logical.text(), "\n")...)
	e.logical = nil
}

// complete handles a finished logical line: block and scope recognition,
// variable inference, then emission.
func (e *Engine) complete(ll *logicalLine) {
	if ll.endsWithBrace() {
		e.pushBlock(&blockFrame{origin: explicit, indent: ll.indent})
	}

	text := ll.text()
	if e.opts.RemoveSelf {
		text = stripReceiver(text)
	}
	if ctorHeader.MatchString(text) {
		e.noticef("Need to convert to Scala constructor: %s", strings.TrimSpace(strings.SplitN(text, "\n", 2)[0]))
	}

	code, _ := ll.stripComment(text)
	scope := parseDefHeader(code, ll.indent, ll.lineno)
	if h, ok := splitHeader(ll, text); ok {
		if block := matchBlock(h.body); block != "" {
			at := e.out.Append(strings.Split(h.front+block+h.back, "\n")...)
			e.pushBlock(&blockFrame{
				origin:  inferred,
				indent:  ll.indent,
				start:   e.out.Ref(at),
				end:     e.out.Ref(e.out.Len() - 1),
				comment: h.back,
			})
			e.pushScope(scope, at)
			return
		}
	}
	if scope != nil {
		e.pushScope(scope, e.out.Append(strings.Split(text, "\n")...))
		return
	}
	if e.topScope() != nil && e.assign(ll, text) {
		return
	}
	e.out.Append(strings.Split(text, "\n")...)
}

func (e *Engine) pushScope(s *scopeFrame, at int) {
	if s == nil {
		return
	}
	s.header = e.out.Ref(at)
	e.scopes = append(e.scopes, s)
}

// Finish flushes any pending statement, closes every open block and returns
// the result.
func (e *Engine) Finish() *Result {
	if e.continuing {
		e.continuing = false
		e.process(e.contLine)
		if e.continuing {
			e.out.Append(e.contLine)
			e.continuing = false
		}
	}
	if e.logical != nil {
		e.warnf("Unterminated statement at end of input, started at line %d", e.logical.lineno)
		e.flushPending()
		e.balance = 0
	}
	e.closeBlocks(0, "")
	return &Result{Lines: e.out.Lines(), Diagnostics: e.diags}
}

// Convert runs one conversion over lines. The only error is a broken
// internal invariant, reported as ErrInternal along with the output buffered
// up to that point.
func Convert(lines []string, opts Options) (res *Result, err error) {
	e := New(opts)
	defer func() {
		if r := recover(); r != nil {
			res = &Result{Lines: e.out.Lines(), Diagnostics: e.diags}
			err = fmt.Errorf("%w: line %d: %v", ErrInternal, e.lineno, r)
		}
	}()
	for _, l := range lines {
		e.Feed(l)
	}
	return e.Finish(), nil
}

// ReadLines reads r into lines without their line terminators.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return lines, nil
}

// expandTabs replaces tabs with spaces up to the next multiple of width.
func expandTabs(s string, width int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var sb strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := width - col%width
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(r)
		col++
	}
	return sb.String()
}

func leadingSpaces(s string) int {
	return len(s) - len(strings.TrimLeft(s, " "))
}
