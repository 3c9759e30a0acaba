package codec

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mmapfile/testutil"
)

func TestCodecs(t *testing.T) {
	// Half random, half repetitive so compressors have something to do.
	payload := append(testutil.NewRNG(2).Bytes(32<<10), bytes.Repeat([]byte("mmap"), 16<<10)...)

	for _, c := range []Codec{None{}, Zstd{}, Zstd{Level: 19}, LZ4{}} {
		t.Run(c.Name(), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := c.NewWriter(&buf)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			if c.ID() != idNone {
				assert.Less(t, buf.Len(), len(payload))
			}

			r, err := c.NewReader(&buf)
			require.NoError(t, err)
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, payload, got)

			byID, err := ByID(c.ID())
			require.NoError(t, err)
			assert.Equal(t, c.Name(), byID.Name())
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"none", "zstd", "lz4"} {
		c, ok := ByName(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}

	c, ok := ByName("")
	require.True(t, ok)
	assert.Equal(t, "none", c.Name())

	_, ok = ByName("brotli")
	assert.False(t, ok)

	_, err := ByID(200)
	assert.Error(t, err)
}
