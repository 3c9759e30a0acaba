package mmapfile

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mmapfile/internal/mmap"
	"github.com/hupe1980/mmapfile/resource"
	"github.com/hupe1980/mmapfile/testutil"
)

// syncBuffer is a bytes.Buffer safe for the cleanup goroutine to write to.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// openAndDrop leaves a File unreachable without closing it.
func openAndDrop(t *testing.T, path string, optFns ...Option) {
	f, err := Open(path, CreateIfMissing, optFns...)
	require.NoError(t, err)
	_, err = f.Append([]byte("leaked"))
	require.NoError(t, err)
}

func TestLeakedFileIsReleased(t *testing.T) {
	path := testutil.TempPath(t, "leak.bin")
	rc := resource.NewController(resource.Config{})
	out := &syncBuffer{}
	logger := NewLogger(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelWarn}))

	openAndDrop(t, path, WithResourceController(rc), WithLogger(logger))

	require.Eventually(t, func() bool {
		runtime.GC()
		return rc.MappedUsage() == 0
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, int64(6), testutil.FileSize(t, path))
	assert.Contains(t, out.String(), "file was not closed")

	f, err := Open(path, MustExist)
	require.NoError(t, err)
	defer f.Close()
	got, err := f.Read(0, 6)
	require.NoError(t, err)
	assert.Equal(t, "leaked", string(got))
}

// borrowAndDrop returns a slice into the mapping of a File that is left
// unreachable without closing it.
func borrowAndDrop(t *testing.T, path string, optFns ...Option) []byte {
	f, err := Open(path, CreateIfMissing, optFns...)
	require.NoError(t, err)
	_, err = f.Append([]byte("hello"))
	require.NoError(t, err)

	v, err := f.View(0, 5)
	require.NoError(t, err)
	b, err := v.Bytes()
	require.NoError(t, err)
	return b
}

func TestLeakedFileKeepsBorrowedSliceMapped(t *testing.T) {
	path := testutil.TempPath(t, "borrowed.bin")
	rc := resource.NewController(resource.Config{})
	port := mmap.NewFaultyPort(nil)

	b := borrowAndDrop(t, path, WithResourceController(rc), withPort(port))

	require.Eventually(t, func() bool {
		runtime.GC()
		return rc.MappedUsage() == 0
	}, 5*time.Second, 10*time.Millisecond)

	// The cleanup has run; the slice must still be readable.
	assert.Zero(t, port.Unmaps())
	assert.Equal(t, "hello", string(b))
	assert.Equal(t, int64(5), testutil.FileSize(t, path))
}

func TestCloseStopsCleanup(t *testing.T) {
	path := testutil.TempPath(t, "closed.bin")
	out := &syncBuffer{}
	logger := NewLogger(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelWarn}))

	func() {
		f, err := Open(path, CreateIfMissing, WithLogger(logger))
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}()

	for range 3 {
		runtime.GC()
	}
	time.Sleep(20 * time.Millisecond)
	assert.NotContains(t, out.String(), "file was not closed")
}

func TestMetricsCollector(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	f, _ := openTemp(t, WithMetricsCollector(metrics))

	_, err := f.Append(make([]byte, 10))
	require.NoError(t, err)
	_, err = f.Append(make([]byte, 2*pageSize()))
	require.NoError(t, err)
	require.NoError(t, f.Flush(FlushBlocking))
	require.NoError(t, f.Close())

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.GrowCount)
	assert.Zero(t, stats.GrowErrors)
	assert.Equal(t, f.Cap(), stats.MappedBytes)
	assert.Equal(t, int64(2), stats.WriteCount)
	assert.Equal(t, 10+2*pageSize(), stats.WriteBytes)
	assert.Equal(t, int64(1), stats.FlushCount)
	assert.Equal(t, 3*pageSize(), stats.FlushBytes)
	assert.Equal(t, int64(1), stats.CloseCount)
	assert.Equal(t, 10+2*pageSize(), stats.PersistedBytes)
}

func TestLoggerFields(t *testing.T) {
	var out bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	f, path := openTemp(t, WithLogger(logger))
	_, err := f.Append(make([]byte, 2*pageSize()))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	var msgs []string
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		assert.Equal(t, path, rec["path"])
		assert.Equal(t, f.ID(), rec["id"])
		msgs = append(msgs, rec["msg"].(string))
	}
	assert.Equal(t, []string{"file opened", "file grown", "file closed"}, msgs)
}

func TestNilOptionsFallBack(t *testing.T) {
	f, _ := openTemp(t, WithLogger(nil), WithMetricsCollector(nil), WithGrowthFactor(0), WithInitialCapacity(-5))
	_, err := f.Append([]byte("ok"))
	require.NoError(t, err)
	assert.Equal(t, pageSize(), f.Cap())
}
