package convert

import "fmt"

// Ref is a handle on an output line. The buffer keeps every live Ref pointing
// at the same line across inserts, deletes and moves, so block frames, scope
// frames and variable bindings never adjust indices themselves.
type Ref struct {
	idx  int
	live bool
}

// Index returns the current line index the ref points at.
func (r *Ref) Index() int { return r.idx }

// Buffer is the growable output line sequence. Insert, Delete and Move are
// the only operations that change its shape, and each of them shifts every
// live Ref in the same call.
type Buffer struct {
	lines []string
	refs  []*Ref
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer { return &Buffer{} }

// Len returns the number of lines.
func (b *Buffer) Len() int { return len(b.lines) }

// Line returns line i.
func (b *Buffer) Line(i int) string { return b.lines[i] }

// SetLine replaces the text of line i in place.
func (b *Buffer) SetLine(i int, s string) { b.lines[i] = s }

// Lines returns a copy of the buffer contents.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Append adds lines at the end and returns the index of the first one.
// Appending never moves existing lines, so no ref changes.
func (b *Buffer) Append(lines ...string) int {
	at := len(b.lines)
	b.lines = append(b.lines, lines...)
	return at
}

// Insert splices lines in before index at. Refs at or after at move down by
// len(lines).
func (b *Buffer) Insert(at int, lines ...string) {
	b.check(at, 0)
	if len(lines) == 0 {
		return
	}
	b.lines = append(b.lines[:at], append(append([]string(nil), lines...), b.lines[at:]...)...)
	b.shift(func(i int) int {
		if i >= at {
			return i + len(lines)
		}
		return i
	})
}

// Delete removes n lines starting at at and returns them. Refs after the
// range move up by n; refs inside it collapse onto at.
func (b *Buffer) Delete(at, n int) []string {
	b.check(at, n)
	removed := append([]string(nil), b.lines[at:at+n]...)
	b.lines = append(b.lines[:at], b.lines[at+n:]...)
	b.shift(func(i int) int {
		switch {
		case i >= at+n:
			return i - n
		case i >= at:
			return at
		}
		return i
	})
	return removed
}

// Move relocates the n lines starting at from so that they end up
// immediately before the line currently at index to. Refs on the moved lines
// follow them; refs on the lines in between shift to make room.
func (b *Buffer) Move(from, n, to int) {
	b.check(from, n)
	b.check(to, 0)
	if n == 0 || (to >= from && to <= from+n) {
		return
	}
	moved := append([]string(nil), b.lines[from:from+n]...)
	var mapIdx func(int) int
	if to < from {
		copy(b.lines[to+n:from+n], b.lines[to:from])
		copy(b.lines[to:], moved)
		mapIdx = func(i int) int {
			switch {
			case i >= from && i < from+n:
				return to + i - from
			case i >= to && i < from:
				return i + n
			}
			return i
		}
	} else {
		copy(b.lines[from:to-n], b.lines[from+n:to])
		copy(b.lines[to-n:], moved)
		mapIdx = func(i int) int {
			switch {
			case i >= from && i < from+n:
				return to - n + i - from
			case i >= from+n && i < to:
				return i - n
			}
			return i
		}
	}
	b.shift(mapIdx)
}

// Ref returns a live handle on index i. i may equal Len() for a line that is
// about to be appended.
func (b *Buffer) Ref(i int) *Ref {
	b.check(i, 0)
	r := &Ref{idx: i, live: true}
	b.refs = append(b.refs, r)
	return r
}

// Release stops tracking r. Releasing nil or an already released ref is a
// no-op.
func (b *Buffer) Release(r *Ref) {
	if r == nil || !r.live {
		return
	}
	r.live = false
	for i, x := range b.refs {
		if x == r {
			b.refs = append(b.refs[:i], b.refs[i+1:]...)
			return
		}
	}
}

func (b *Buffer) shift(f func(int) int) {
	for _, r := range b.refs {
		r.idx = f(r.idx)
	}
}

// check panics on a splice outside the buffer. Such a splice means the
// engine's bookkeeping is broken; Convert recovers it into ErrInternal.
func (b *Buffer) check(at, n int) {
	if at < 0 || n < 0 || at+n > len(b.lines) {
		panic(fmt.Sprintf("buffer splice [%d,%d) out of range (len %d)", at, at+n, len(b.lines)))
	}
}
