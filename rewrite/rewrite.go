// Package rewrite holds the token-level substitution rules applied to the
// segments of a line: Python operators and idioms in plain text become their
// Scala spelling, string literals are requoted and # comments become //
// comments.
//
// The rules are regular expressions, not a parser. They are applied to one
// already-delimited segment at a time, so they never see the inside of a
// string or a comment.
package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rubiojr/py2scala/scanner"
)

// Options selects the optional rule groups.
type Options struct {
	// Scala marks the input as already translated; rules that would damage
	// Scala code (None -> null) are disabled.
	Scala bool
	// RemoveSelf strips self./cls. receivers and renames self to this.
	RemoveSelf bool
	// ConvertBrackets turns name[index] into name(index) unless the bracket
	// looks like a generic type parameter.
	ConvertBrackets bool
}

// Balanced-expression building blocks. Two levels of nesting are enough for
// the expressions these rules are meant for; bracket counting elsewhere is
// exact.
const (
	balParen   = `\([^()]*\)`
	balBracket = `\[[^\[\]]*\]`
	balStr0    = `(?:[^()\[\]]|` + balParen + `|` + balBracket + `)*`

	bal2Paren      = `\(` + balStr0 + `\)`
	bal2Bracket    = `\[` + balStr0 + `\]`
	bal2Str0       = `(?:[^()\[\]]|` + bal2Paren + `|` + bal2Bracket + `)*`
	bal2Str        = `(?:[^()\[\]]|` + bal2Paren + `|` + bal2Bracket + `)+`
	bal2StrNoSpace = `(?:[^ ()\[\]]|` + bal2Paren + `|` + bal2Bracket + `)+`
)

// textRule is one plain-text substitution.
type textRule struct {
	name string
	re   *regexp.Regexp
	repl string

	// when gates the rule on the active options; nil means always.
	when func(Options) bool
	// unless skips the rule when the segment matches.
	unless *regexp.Regexp
	// afterString applies the rule only to a segment that directly follows
	// a string literal.
	afterString bool
}

var forKeyword = regexp.MustCompile(`\bfor\b`)

// textRules are applied in order; later rules see the output of earlier
// ones (e.g. "is not None" becomes "is !null" before the != rule runs).
var textRules = []textRule{
	{name: "or", re: regexp.MustCompile(`\bor\b`), repl: "||"},
	{name: "and", re: regexp.MustCompile(`\band\b`), repl: "&&"},
	{name: "true", re: regexp.MustCompile(`\bTrue\b`), repl: "true"},
	{name: "false", re: regexp.MustCompile(`\bFalse\b`), repl: "false"},
	{name: "none", re: regexp.MustCompile(`\bNone\b`), repl: "null",
		when: func(o Options) bool { return !o.Scala }},
	{name: "not", re: regexp.MustCompile(`\bnot `), repl: "!"},
	{name: "is-null", re: regexp.MustCompile(`\bis (None|null)\b`), repl: "== null"},
	{name: "is-not-null", re: regexp.MustCompile(`\bis !.*(None|null)\b`), repl: "!= null"},
	{name: "lambda", re: regexp.MustCompile(`lambda ([A-Za-z0-9]+): ?`), repl: "${1} => "},
	{name: "comprehension",
		re:   regexp.MustCompile(`[\[(](` + bal2Str + `) for (.*) in (` + bal2Str + `)[)\]]`),
		repl: "(for (${2} <- ${3}) yield ${1})"},
	{name: "contains",
		re:     regexp.MustCompile(`(` + bal2StrNoSpace + `) in (` + bal2StrNoSpace + `)\b`),
		repl:   "${2} contains ${1}",
		unless: forKeyword},
	{name: "len", re: regexp.MustCompile(`len\((` + bal2Str + `)\)`), repl: "${1}.length"},
	{name: "pass", re: regexp.MustCompile(`\bpass\b`), repl: "()"},
	{name: "format", re: regexp.MustCompile(`^( +)%( +)`), repl: "${1}format${2}", afterString: true},
	{name: "self-dot", re: regexp.MustCompile(`\bself\.`), repl: "",
		when: func(o Options) bool { return o.RemoveSelf }},
	{name: "self", re: regexp.MustCompile(`\bself\b`), repl: "this",
		when: func(o Options) bool { return o.RemoveSelf }},
	{name: "cls-dot", re: regexp.MustCompile(`\bcls\.`), repl: "",
		when: func(o Options) bool { return o.RemoveSelf }},
	{name: "brackets",
		re:   regexp.MustCompile(`([A-Za-z0-9_])\[([^A-Z\]]` + bal2Str0 + `)\]`),
		repl: "${1}(${2})",
		when: func(o Options) bool { return o.ConvertBrackets }},
}

// Rewriter applies the rules for one set of options.
type Rewriter struct {
	opts  Options
	rules []textRule
	warn  func(string)
}

// New returns a Rewriter. warn receives non-fatal findings such as
// unfinished string literals; it may be nil.
func New(opts Options, warn func(string)) *Rewriter {
	r := &Rewriter{opts: opts, warn: warn}
	for _, rule := range textRules {
		if rule.when == nil || rule.when(opts) {
			r.rules = append(r.rules, rule)
		}
	}
	return r
}

// Segments rewrites every segment of a split line and returns the rewritten
// pieces, index-aligned with segs.
func (r *Rewriter) Segments(segs []scanner.Segment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		if s.Kind == scanner.Text {
			afterString := i > 0 && segs[i-1].Kind == scanner.String
			out[i] = r.Text(s.Text, afterString)
			continue
		}
		out[i] = r.Delim(s)
	}
	return out
}

// Line rewrites a split line and joins the result.
func (r *Rewriter) Line(segs []scanner.Segment) string {
	return strings.Join(r.Segments(segs), "")
}

// Text applies the plain-text rules to one code segment. afterString tells
// whether the segment immediately follows a string literal.
func (r *Rewriter) Text(s string, afterString bool) string {
	if s == "" {
		return s
	}
	for _, rule := range r.rules {
		if rule.afterString && !afterString {
			continue
		}
		if rule.unless != nil && rule.unless.MatchString(s) {
			continue
		}
		s = rule.re.ReplaceAllString(s, rule.repl)
	}
	return s
}

// Delim converts a string literal or comment segment.
func (r *Rewriter) Delim(seg scanner.Segment) string {
	switch seg.Kind {
	case scanner.LineComment:
		if strings.HasPrefix(seg.Text, "#") {
			return "//" + seg.Text[1:]
		}
		return seg.Text
	case scanner.BlockComment:
		return seg.Text
	}

	if seg.Continues != "" {
		// Tail of a multi-line string opened earlier; its opener was
		// already converted, so only the closer needs to match.
		if seg.Continues == `'''` && !seg.Unterminated && strings.HasSuffix(seg.Text, `'''`) {
			return seg.Text[:len(seg.Text)-3] + `"""`
		}
		return seg.Text
	}

	body := seg.Text
	raw := false
	if len(body) > 1 && body[0] == 'r' {
		raw = true
		body = body[1:]
	}

	if strings.HasPrefix(body, `'''`) || strings.HasPrefix(body, `"""`) {
		// Scala triple-quoted strings are raw already, so the r prefix goes.
		inner := body[3:]
		if !seg.Unterminated {
			inner = inner[:len(inner)-3]
			return `"""` + inner + `"""`
		}
		return `"""` + inner
	}

	if seg.Unterminated {
		r.warnf("Saw unfinished single quoted string %s", seg.Text)
		return seg.Text
	}

	inner := body[1 : len(body)-1]
	switch {
	case raw:
		return `"""` + inner + `"""`
	case body[0] == '\'' && !isCharLiteral(body):
		return `"` + requote(inner) + `"`
	}
	return seg.Text
}

func (r *Rewriter) warnf(format string, args ...any) {
	if r.warn != nil {
		r.warn(fmt.Sprintf(format, args...))
	}
}

// isCharLiteral reports whether a single-quoted literal holds exactly one
// character, which is valid Scala as is.
func isCharLiteral(quoted string) bool {
	if len(quoted) > 1 && quoted[1] == '\\' {
		return len(quoted) == 4
	}
	return len(quoted) == 3
}

// requote converts the body of a single-quoted string for use inside double
// quotes.
func requote(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '\\' && i+1 < len(s):
			i++
			if s[i] == '\'' {
				sb.WriteByte('\'')
			} else {
				sb.WriteByte('\\')
				sb.WriteByte(s[i])
			}
		case ch == '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}
