package convert

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// markedBuffer returns a buffer of n marker lines with a ref on each.
func markedBuffer(n int) (*Buffer, map[string]*Ref) {
	b := NewBuffer()
	refs := make(map[string]*Ref)
	for i := 0; i < n; i++ {
		marker := fmt.Sprintf("m%d", i)
		b.Append(marker)
		refs[marker] = b.Ref(i)
	}
	return b, refs
}

func assertCoherent(t *testing.T, b *Buffer, refs map[string]*Ref) {
	t.Helper()
	for marker, r := range refs {
		require.Less(t, r.Index(), b.Len(), "ref for %s out of range", marker)
		assert.Equal(t, marker, b.Line(r.Index()), "ref for %s", marker)
	}
}

func TestBuffer_AppendAndLines(t *testing.T) {
	b := NewBuffer()
	assert.Equal(t, 0, b.Append("a", "b"))
	assert.Equal(t, 2, b.Append("c"))
	lines := b.Lines()
	assert.Equal(t, []string{"a", "b", "c"}, lines)
	lines[0] = "changed"
	assert.Equal(t, "a", b.Line(0))
}

func TestBuffer_InsertShiftsRefs(t *testing.T) {
	b, refs := markedBuffer(4)
	b.Insert(2, "x", "y")
	assert.Equal(t, []string{"m0", "m1", "x", "y", "m2", "m3"}, b.Lines())
	assertCoherent(t, b, refs)

	b.Insert(0, "top")
	b.Insert(b.Len(), "bottom")
	assertCoherent(t, b, refs)
	assert.Equal(t, "top", b.Line(0))
	assert.Equal(t, "bottom", b.Line(b.Len()-1))
}

func TestBuffer_DeleteShiftsRefs(t *testing.T) {
	b, refs := markedBuffer(5)
	removed := b.Delete(1, 2)
	assert.Equal(t, []string{"m1", "m2"}, removed)
	assert.Equal(t, []string{"m0", "m3", "m4"}, b.Lines())

	assert.Equal(t, 1, refs["m1"].Index())
	assert.Equal(t, 1, refs["m2"].Index())
	delete(refs, "m1")
	delete(refs, "m2")
	assertCoherent(t, b, refs)
}

func TestBuffer_Move(t *testing.T) {
	tests := []struct {
		name        string
		from, n, to int
		want        []string
	}{
		{"backward", 3, 2, 1, []string{"m0", "m3", "m4", "m1", "m2", "m5"}},
		{"to front", 4, 2, 0, []string{"m4", "m5", "m0", "m1", "m2", "m3"}},
		{"forward", 0, 2, 4, []string{"m2", "m3", "m0", "m1", "m4", "m5"}},
		{"to end", 1, 1, 6, []string{"m0", "m2", "m3", "m4", "m5", "m1"}},
		{"onto itself", 2, 2, 3, []string{"m0", "m1", "m2", "m3", "m4", "m5"}},
		{"nothing", 2, 0, 0, []string{"m0", "m1", "m2", "m3", "m4", "m5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, refs := markedBuffer(6)
			b.Move(tt.from, tt.n, tt.to)
			assert.Equal(t, tt.want, b.Lines())
			assertCoherent(t, b, refs)
		})
	}
}

func TestBuffer_RandomSplicesKeepRefsCoherent(t *testing.T) {
	b, refs := markedBuffer(8)
	steps := []func(){
		func() { b.Insert(3, "a", "b") },
		func() { b.Move(7, 2, 0) },
		func() { b.Insert(b.Len(), "c") },
		func() { b.Move(1, 3, b.Len()) },
		func() { b.Insert(5, "d") },
		func() { b.Move(b.Len()-4, 4, 2) },
	}
	for i, step := range steps {
		step()
		t.Run(fmt.Sprintf("step%d", i), func(t *testing.T) {
			assertCoherent(t, b, refs)
		})
	}
	assert.Equal(t, 8+4, b.Len())
}

func TestBuffer_Release(t *testing.T) {
	b, refs := markedBuffer(2)
	r := refs["m0"]
	b.Release(r)
	b.Release(r)
	b.Release(nil)
	b.Insert(0, "x")
	assert.Equal(t, 0, r.Index(), "released ref must not move")
	assert.Equal(t, 2, refs["m1"].Index())
}

func TestBuffer_OutOfRangePanics(t *testing.T) {
	b := NewBuffer()
	b.Append("a")
	assert.Panics(t, func() { b.Insert(3, "x") })
	assert.Panics(t, func() { b.Delete(0, 2) })
	assert.Panics(t, func() { b.Move(0, 1, 5) })
	assert.NotPanics(t, func() { b.Ref(1) })
}
