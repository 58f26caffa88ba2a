package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(segs []Segment) []string {
	out := make([]string, len(segs))
	for i, s := range segs {
		out[i] = s.Text
	}
	return out
}

func TestSplit_Python(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain", "x = 1", []string{"x = 1"}},
		{"double quoted", `x = "a#b" + y`, []string{"x = ", `"a#b"`, " + y"}},
		{"single quoted with comment", `x = 'a' # c`, []string{"x = ", "'a'", " ", "# c", ""}},
		{"escaped quote", `s = 'it\'s'`, []string{"s = ", `'it\'s'`, ""}},
		{"triple closed", `d = """doc""" + x`, []string{"d = ", `"""doc"""`, " + x"}},
		{"triple open", `d = '''doc`, []string{"d = ", `'''doc`, ""}},
		{"raw string", `re = r'\d+'`, []string{"re = ", `r'\d+'`, ""}},
		{"r inside identifier", `x = fr'a'`, []string{"x = fr", "'a'", ""}},
		{"empty string", `x = ''`, []string{"x = ", "''", ""}},
		{"comment only", "# hi", []string{"", "# hi", ""}},
		{"slashes are code", "a // b", []string{"a // b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, texts(Split(tt.line, Python)))
		})
	}
}

func TestSplit_Scala(t *testing.T) {
	segs := Split(`a /* b */ c // d # e`, Scala)
	require.Len(t, segs, 5)
	assert.Equal(t, []string{"a ", "/* b */", " c ", "// d # e", ""}, texts(segs))
	assert.Equal(t, BlockComment, segs[1].Kind)
	assert.Equal(t, LineComment, segs[3].Kind)

	open := Split("x /* start", Scala)
	require.Len(t, open, 3)
	assert.True(t, open[1].Unterminated)
}

func TestSplit_Kinds(t *testing.T) {
	segs := Split(`f("a", 'b') # c`, Python)
	require.Len(t, segs, 7)
	for i, s := range segs {
		if i%2 == 0 {
			assert.Equal(t, Text, s.Kind, "segment %d", i)
			assert.False(t, s.IsDelim())
		} else {
			assert.True(t, s.IsDelim(), "segment %d", i)
		}
	}
	assert.Equal(t, String, segs[1].Kind)
	assert.Equal(t, String, segs[3].Kind)
	assert.True(t, segs[5].IsComment())
	assert.Equal(t, "line-comment", segs[5].Kind.String())
}

func TestSplit_UnterminatedSingleQuote(t *testing.T) {
	segs := Split(`x = 'abc`, Python)
	require.Len(t, segs, 3)
	assert.Equal(t, `'abc`, segs[1].Text)
	assert.True(t, segs[1].Unterminated)
}

func TestBalance(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"f(a, b)", 0},
		{`f(a, "(", [b`, 2},
		{"x[0])", -1},
		{"# (((", 0},
		{"{ (", 1},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, Balance(Split(tt.line, Python)))
		})
	}
}

func TestContinued(t *testing.T) {
	assert.True(t, Continued(Split(`x = 1 + \`, Python)))
	assert.False(t, Continued(Split(`x = 1 # \`, Python)))
	assert.False(t, Continued(Split(`x = "\\"`, Python)))
	assert.False(t, Continued(Split("", Python)))
}

func TestBlankOrComment(t *testing.T) {
	assert.True(t, BlankOrComment(Split("   ", Python)))
	assert.True(t, BlankOrComment(Split("  # note", Python)))
	assert.False(t, BlankOrComment(Split(`"doc"`, Python)))
	assert.False(t, BlankOrComment(Split("x = 1", Python)))
}

func TestEndsWithBrace(t *testing.T) {
	assert.True(t, EndsWithBrace(Split("def f() = {", Scala)))
	assert.True(t, EndsWithBrace(Split("if (x) {  // note", Scala)))
	assert.False(t, EndsWithBrace(Split(`x = "{"`, Scala)))
	assert.False(t, EndsWithBrace(Split("x = 1", Scala)))
}

func TestMultiLineDelims(t *testing.T) {
	assert.Len(t, Python.MultiLineDelims(), 2)
	assert.Contains(t, Scala.MultiLineDelims(), Delim{"/*", "*/"})
}
