package testutil

import (
	"math/rand"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	b := make([]byte, n)
	r.Fill(b)
	return b
}

// Fill fills dst with pseudo-random bytes.
// Locks only once per call.
func (r *RNG) Fill(dst []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.rand.Read(dst)
}

// Chunks splits total bytes into random chunk sizes in [1, maxChunk].
func (r *RNG) Chunks(total, maxChunk int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sizes []int
	for total > 0 {
		n := min(1+r.rand.Intn(maxChunk), total)
		sizes = append(sizes, n)
		total -= n
	}
	return sizes
}

// Pattern returns n bytes cycling through 0..255 starting at seed. Unlike
// RNG output it is easy to eyeball in a failing diff.
func Pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i)
	}
	return b
}

// TempPath returns a path for a file that does not exist yet inside a test
// temporary directory.
func TempPath(t testing.TB, name string) string {
	t.Helper()
	return t.TempDir() + string(os.PathSeparator) + name
}

// FileSize returns the on-disk size of path.
func FileSize(t testing.TB, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Size()
}
