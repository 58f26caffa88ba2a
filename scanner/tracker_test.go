package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_TripleQuoteAcrossLines(t *testing.T) {
	tr := NewTracker(Python)

	segs := tr.Split(`s = """first`)
	tr.Commit(segs)
	assert.Equal(t, `"""`, tr.Open())

	segs = tr.Split("middle (")
	require.Len(t, segs, 3)
	assert.Equal(t, "middle (", segs[1].Text)
	assert.Equal(t, `"""`, segs[1].Continues)
	assert.Equal(t, 0, Balance(segs))
	tr.Commit(segs)
	assert.Equal(t, `"""`, tr.Open())

	segs = tr.Split(`end""" + f(x)`)
	assert.Equal(t, []string{"", `end"""`, " + f(x)"}, texts(segs))
	tr.Commit(segs)
	assert.Equal(t, "", tr.Open())
}

func TestTracker_SplitDoesNotCommit(t *testing.T) {
	tr := NewTracker(Python)
	tr.Split(`'''open`)
	assert.Equal(t, "", tr.Open())
}

func TestTracker_CloserAlone(t *testing.T) {
	tr := NewTracker(Python)
	tr.Commit(tr.Split(`x = '''`))
	assert.Equal(t, `'''`, tr.Open())

	segs := tr.Split("")
	tr.Commit(segs)
	assert.Equal(t, `'''`, tr.Open())

	segs = tr.Split(`'''`)
	assert.Equal(t, `'''`, segs[1].Text)
	tr.Commit(segs)
	assert.Equal(t, "", tr.Open())
}

func TestTracker_RawTriple(t *testing.T) {
	tr := NewTracker(Python)
	tr.Commit(tr.Split(`p = r"""\d`))
	assert.Equal(t, `"""`, tr.Open())
}

func TestTracker_BlockCommentOnlyInScala(t *testing.T) {
	py := NewTracker(Python)
	py.Commit(py.Split("x = 1 /* not a comment"))
	assert.Equal(t, "", py.Open())

	sc := NewTracker(Scala)
	sc.Commit(sc.Split("x = 1 /* a comment"))
	assert.Equal(t, "/*", sc.Open())
	segs := sc.Split("still */ y = (")
	assert.Equal(t, BlockComment, segs[1].Kind)
	assert.Equal(t, 1, Balance(segs))
	sc.Commit(segs)
	assert.Equal(t, "", sc.Open())
}

func TestTracker_SingleQuoteDoesNotCarry(t *testing.T) {
	tr := NewTracker(Python)
	tr.Commit(tr.Split(`x = 'abc`))
	assert.Equal(t, "", tr.Open())
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker(Python)
	tr.Commit(tr.Split(`s = """open`))
	require.Equal(t, `"""`, tr.Open())
	tr.Reset()
	assert.Equal(t, "", tr.Open())
	assert.Equal(t, []string{"x = 1"}, texts(tr.Split("x = 1")))
}
