package resource

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Mapped(t *testing.T) {
	c := NewController(Config{MappedLimitBytes: 100})
	assert.Equal(t, int64(100), c.MappedLimit())

	require.NoError(t, c.AcquireMapped(50))
	assert.Equal(t, int64(50), c.MappedUsage())

	require.NoError(t, c.AcquireMapped(40))
	assert.Equal(t, int64(90), c.MappedUsage())

	// Over budget
	assert.ErrorIs(t, c.AcquireMapped(20), ErrMappedLimitExceeded)
	assert.Equal(t, int64(90), c.MappedUsage())

	c.ReleaseMapped(50)
	assert.Equal(t, int64(40), c.MappedUsage())

	require.NoError(t, c.AcquireMapped(20))
	assert.Equal(t, int64(60), c.MappedUsage())

	// Non-positive amounts are ignored
	require.NoError(t, c.AcquireMapped(0))
	c.ReleaseMapped(-5)
	assert.Equal(t, int64(60), c.MappedUsage())
}

func TestController_UnlimitedMapped(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireMapped(1000))
	assert.Equal(t, int64(1000), c.MappedUsage())

	c.ReleaseMapped(500)
	assert.Equal(t, int64(500), c.MappedUsage())
	assert.Equal(t, int64(0), c.MappedLimit())
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	assert.NoError(t, c.AcquireMapped(1<<40))
	c.ReleaseMapped(1 << 40)
	assert.Equal(t, int64(0), c.MappedUsage())
	assert.Equal(t, int64(0), c.MappedLimit())
	assert.NoError(t, c.AcquireIO(context.Background(), 1<<30))
	assert.True(t, c.TryAcquireIO(1<<30))
}

func TestController_IO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1000})

	// The bucket starts full.
	assert.True(t, c.TryAcquireIO(1000))
	assert.False(t, c.TryAcquireIO(1000))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, c.AcquireIO(ctx, 5000))
}

func TestController_IOLargerThanBurst(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	// 1.5x burst: first chunk is free, the rest waits ~0.5s at most.
	require.NoError(t, c.AcquireIO(context.Background(), 1<<20+1<<19))
}

func TestRateLimitedIO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	ctx := context.Background()

	var buf bytes.Buffer
	w := NewRateLimitedWriter(ctx, &buf, c)
	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	r := NewRateLimitedReader(ctx, strings.NewReader("hello world"), c)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(out))

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewRateLimitedReader(cctx, strings.NewReader("x"), c).Read(make([]byte, 1))
	assert.ErrorIs(t, err, context.Canceled)
}
