package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRNG(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		a := NewRNG(42)
		b := NewRNG(42)
		assert.Equal(t, a.Bytes(64), b.Bytes(64))
	})

	t.Run("Reset", func(t *testing.T) {
		r := NewRNG(7)
		first := r.Bytes(32)
		r.Reset()
		assert.Equal(t, first, r.Bytes(32))
		assert.Equal(t, int64(7), r.Seed())
	})

	t.Run("Chunks", func(t *testing.T) {
		r := NewRNG(1)
		sizes := r.Chunks(1000, 17)
		sum := 0
		for _, n := range sizes {
			assert.GreaterOrEqual(t, n, 1)
			assert.LessOrEqual(t, n, 17)
			sum += n
		}
		assert.Equal(t, 1000, sum)
	})
}

func TestPattern(t *testing.T) {
	p := Pattern(300, 10)
	assert.Len(t, p, 300)
	assert.Equal(t, byte(10), p[0])
	assert.Equal(t, byte(9), p[255])
	assert.Equal(t, byte(10), p[256])
}

func TestTempPath(t *testing.T) {
	path := TempPath(t, "x.bin")
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))
	assert.Equal(t, int64(3), FileSize(t, path))
}
