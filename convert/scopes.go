package convert

import (
	"regexp"
	"strings"

	"github.com/rubiojr/py2scala/scanner"
)

// scopeKind distinguishes class and function scopes.
type scopeKind uint8

const (
	classScope scopeKind = iota
	defScope
)

// bindingKind records what the engine knows about a name in a scope.
type bindingKind uint8

const (
	immutableParam bindingKind = iota // val (or plain) parameter
	mutableParam                      // var parameter
	explicitDecl                      // declared with val/var in the input
	firstAssign                       // bare assignment that received a synthesized val
)

var bindingNames = [...]string{
	immutableParam: "immutable-parameter",
	mutableParam:   "mutable-parameter",
	explicitDecl:   "explicit-declaration",
	firstAssign:    "first-assignment",
}

func (k bindingKind) String() string { return bindingNames[k] }

type binding struct {
	kind bindingKind
	// ref points at the line holding the synthesized declaration; only set
	// for firstAssign.
	ref *Ref
}

// scopeFrame is an active def or class.
type scopeFrame struct {
	kind   scopeKind
	name   string
	indent int
	lineno int
	// header is the first output line of the def/class header.
	header *Ref
	// companion is the closing line of the companion object holding class
	// variables; nil until the first class variable is moved there.
	companion *Ref
	bindings  map[string]binding
}

func (s *scopeFrame) bind(name string, b binding) { s.bindings[name] = b }

// ctorName is the Python constructor, whose self.x assignments become class
// fields.
const ctorName = "__init__"

var (
	// defHeader matches def and class headers in both grammars. Groups:
	// keyword, name, argument list, coda. A Python "-> T" or Scala ": T"
	// result type between the arguments and the coda is skipped.
	defHeader = regexp.MustCompile(`(?s)^\s*(def|class)\s+(.*?)(?:\((.*)\))?` +
		`(?:\s*->\s*[^:]*?|\s*:\s*[^\s:={][^:={]*?)?` +
		`\s*(:\s*$|=?\s*\{ *$|extends\s.*|with\s.*|$)`)

	// receiverParam matches a def whose first parameter is the receiver
	// (already renamed from self to this by the rewrite rules).
	receiverParam = regexp.MustCompile(`(?s)^(\s*def\s+[A-Za-z0-9_]+\s*)\((?:\s*(?:this|cls)\s*)(\)|, *)(.*)$`)

	ctorHeader = regexp.MustCompile(`^ *def +__init__\(`)

	// assignment matches "[val|var] name op rhs" where op is =, +=, -=, *=
	// or /= but not the start of ==.
	assignment = regexp.MustCompile(`(?s)^(\s*)(val\s+|var\s+|)((?:self\.|cls\.)?[a-zA-Z_][a-zA-Z_0-9]*)(\s*[+\-*/]?=)($|[^=].*)`)

	leadingVal = regexp.MustCompile(`^( *)val `)
)

// parseDefHeader recognizes a def/class header and returns its frame, not yet
// anchored to an output line.
func parseDefHeader(text string, indent, lineno int) *scopeFrame {
	m := defHeader.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	kw, name, args, coda := m[1], strings.TrimSpace(m[2]), m[3], m[4]
	f := &scopeFrame{
		kind:     defScope,
		name:     name,
		indent:   indent,
		lineno:   lineno,
		bindings: make(map[string]binding),
	}
	if kw == "class" {
		f.kind = classScope
	}
	// In "class Foo(Base):" the parenthesized list holds superclasses, not
	// constructor parameters.
	pythonClass := f.kind == classScope && strings.HasPrefix(coda, ":")
	if !pythonClass {
		for name, kind := range parseParams(args) {
			f.bind(name, binding{kind: kind})
		}
	}
	return f
}

// parseParams classifies the names in a parameter list, dropping default
// values, type annotations and * / ** markers. Commas inside default values
// do not split parameters.
func parseParams(args string) map[string]bindingKind {
	params := make(map[string]bindingKind)
	if strings.TrimSpace(args) == "" {
		return params
	}
	for _, arg := range scanner.SplitTopLevel(args, ',') {
		arg, _, _ = strings.Cut(arg, "=")
		arg, _, _ = strings.Cut(arg, ":")
		arg = strings.TrimLeft(strings.TrimSpace(arg), "*")
		switch {
		case strings.HasPrefix(arg, "var "):
			params[strings.TrimSpace(arg[4:])] = mutableParam
		case strings.HasPrefix(arg, "val "):
			params[strings.TrimSpace(arg[4:])] = immutableParam
		case arg != "":
			params[arg] = immutableParam
		}
	}
	return params
}

// stripReceiver removes a leading this/cls parameter from a def header.
func stripReceiver(text string) string {
	m := receiverParam.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	if m[2] == ")" {
		return m[1] + "()" + m[3]
	}
	return m[1] + "(" + m[3]
}

func (e *Engine) topScope() *scopeFrame {
	if len(e.scopes) == 0 {
		return nil
	}
	return e.scopes[len(e.scopes)-1]
}

// ownerClass returns the scope that holds attribute bindings: the nearest
// enclosing class, or the outermost scope if there is none.
func (e *Engine) ownerClass() *scopeFrame {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if e.scopes[i].kind == classScope {
			return e.scopes[i]
		}
	}
	return e.scopes[0]
}

func (e *Engine) popScope() {
	s := e.scopes[len(e.scopes)-1]
	e.scopes = e.scopes[:len(e.scopes)-1]
	e.out.Release(s.header)
	e.out.Release(s.companion)
	for _, b := range s.bindings {
		e.out.Release(b.ref)
	}
}

// assign handles a logical line that may assign a variable inside a scope.
// It returns false if the line is not an assignment, leaving emission to the
// caller.
func (e *Engine) assign(ll *logicalLine, text string) bool {
	dd := e.topScope()
	om := assignment.FindStringSubmatch(ll.orig())
	if om == nil {
		return false
	}
	m := assignment.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	// The original text gives the true name: with receiver stripping on,
	// "self.x" has already become "x" in the rewritten form.
	name := om[3]
	indent, decl, emitted, op, rhs := m[1], m[2], m[3], m[4], m[5]

	isAttr := strings.HasPrefix(name, "self.") || strings.HasPrefix(name, "cls.")
	isAssign := strings.TrimSpace(op) == "="
	classVar := decl == "" && isAssign && dd.kind == classScope && !isAttr
	ctorField := isAttr && dd.kind == defScope && dd.name == ctorName

	key := name
	if classVar {
		key = "cls." + name
	}
	owner := dd
	if isAttr {
		owner = e.ownerClass()
	}

	newlyBound := false
	existing, bound := owner.bindings[key]
	switch {
	case decl != "":
		if bound {
			e.warnf("Apparent redefinition of variable %s", key)
		} else {
			owner.bind(key, binding{kind: explicitDecl})
		}
	case !bound:
		if !isAssign {
			e.warnf("Apparent attempt to modify non-existent variable %s", key)
			break
		}
		newlyBound = true
		// self.x outside the constructor belongs to the class, not this
		// function, so it gets no declaration here.
		if !isAttr || ctorField {
			text = indent + "val " + emitted + op + rhs
		}
	default:
		switch existing.kind {
		case immutableParam:
			e.warnf("Attempt to set function parameter %s", key)
		case firstAssign:
			e.promote(existing.ref)
		}
	}

	lines := strings.Split(text, "\n")
	switch {
	case classVar:
		e.moveToCompanion(dd, lines, key, newlyBound, ll.prevBlank)
	case ctorField && strings.HasPrefix(strings.TrimLeft(text, " \t"), "val "):
		e.moveBeforeCtor(dd, owner, lines, key, newlyBound, ll.prevBlank)
	default:
		at := e.out.Append(lines...)
		if newlyBound {
			owner.bind(key, binding{kind: firstAssign, ref: e.out.Ref(at)})
		}
	}
	return true
}

// promote turns a synthesized val into var after a reassignment.
func (e *Engine) promote(r *Ref) {
	i := r.Index()
	if i >= e.out.Len() {
		return
	}
	e.out.SetLine(i, leadingVal.ReplaceAllString(e.out.Line(i), "${1}var "))
}

// moveToCompanion places a class variable in the class's companion object,
// creating the object just before the class header the first time.
func (e *Engine) moveToCompanion(cls *scopeFrame, lines []string, key string, bind bool, carry int) {
	if cls.companion == nil {
		at := cls.header.Index()
		pad := strings.Repeat(" ", cls.indent)
		e.out.Insert(at, pad+"object "+cls.name+" {", pad+"}", "")
		cls.companion = e.out.Ref(at + 1)
	}
	at := cls.companion.Index()
	e.out.Insert(at, lines...)
	if bind {
		cls.bind(key, binding{kind: firstAssign, ref: e.out.Ref(at)})
	}
	e.carryComments(at, len(lines), carry, "")
}

// moveBeforeCtor hoists a constructor field assignment out of __init__ into
// the class body, just ahead of the constructor header.
func (e *Engine) moveBeforeCtor(ctor, cls *scopeFrame, lines []string, key string, bind bool, carry int) {
	at := ctor.header.Index()
	pad := strings.Repeat(" ", ctor.indent)
	lines[0] = pad + strings.TrimLeft(lines[0], " ")
	e.out.Insert(at, lines...)
	if bind {
		cls.bind(key, binding{kind: firstAssign, ref: e.out.Ref(at)})
	}
	e.carryComments(at, len(lines), carry, pad)
}

// carryComments moves the blank and comment lines that directly preceded a
// relocated statement to sit right before it at index at. At most n lines
// are carried, and only the unbroken run of blank or comment-only lines at
// the end of the buffer: a closing brace inserted by a dedent stays put. A
// non-empty pad re-indents the moved comments.
func (e *Engine) carryComments(at, size, n int, pad string) {
	end := e.out.Len()
	from := end
	for from > at+size && end-from < n && commentOnly(e.out.Line(from-1)) {
		from--
	}
	if from == end {
		return
	}
	if pad != "" {
		for i := from; i < end; i++ {
			if l := e.out.Line(i); strings.TrimSpace(l) != "" {
				e.out.SetLine(i, pad+strings.TrimLeft(l, " "))
			}
		}
	}
	e.out.Move(from, end-from, at)
}

// commentOnly reports whether an output line is blank or holds only
// comments.
func commentOnly(line string) bool {
	return scanner.BlankOrComment(scanner.Split(line, scanner.Scala))
}
