package dirty

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_MarkAndRuns(t *testing.T) {
	tr := New(4096)
	assert.True(t, tr.Empty())
	assert.Nil(t, tr.Runs(1<<20))

	tr.Mark(0, 5)           // page 0
	tr.Mark(4090, 10)       // pages 0-1
	tr.Mark(5*4096, 1)      // page 5
	tr.Mark(6*4096+100, 10) // page 6
	tr.Mark(100, 0)         // ignored
	tr.Mark(-1, 10)         // ignored

	assert.False(t, tr.Empty())
	assert.Equal(t, uint64(4), tr.Pages())

	runs := tr.Runs(1 << 20)
	assert.Equal(t, []Run{
		{Off: 0, Len: 2 * 4096},
		{Off: 5 * 4096, Len: 2 * 4096},
	}, runs)
	assert.Equal(t, int64(4*4096), tr.Bytes(1<<20))

	tr.Reset()
	assert.True(t, tr.Empty())
}

func TestTracker_RunsClipped(t *testing.T) {
	tr := New(4096)
	tr.Mark(0, 3*4096)
	tr.Mark(10*4096, 1)

	assert.Equal(t, []Run{{Off: 0, Len: 2*4096 + 10}}, tr.Runs(2*4096+10))
	assert.Equal(t, []Run{{Off: 0, Len: 3 * 4096}}, tr.Runs(3*4096))
	assert.Nil(t, tr.Runs(0))
}

func TestNew_InvalidPageSize(t *testing.T) {
	assert.Panics(t, func() { New(0) })
}
