package mmapfile

import (
	"os"

	"github.com/hupe1980/mmapfile/internal/fs"
	"github.com/hupe1980/mmapfile/internal/growth"
	"github.com/hupe1980/mmapfile/internal/mmap"
	"github.com/hupe1980/mmapfile/resource"
)

type options struct {
	logger          *Logger
	metrics         MetricsCollector
	growthFactor    int
	perm            os.FileMode
	resources       *resource.Controller
	growLock        bool
	truncateOnClose bool
	initialCapacity int64

	fs   fs.FileSystem
	port mmap.Port
}

func defaultOptions() options {
	return options{
		logger:          NoopLogger(),
		metrics:         NoopMetricsCollector{},
		growthFactor:    growth.DefaultFactor,
		perm:            0644,
		truncateOnClose: true,
		fs:              fs.Default,
		port:            mmap.Native(),
	}
}

// Option configures Open.
type Option func(*options)

// WithLogger configures structured logging.
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector for grow, flush, write
// and close events. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &mmapfile.BasicMetricsCollector{}
//	f, _ := mmapfile.Open(path, mmapfile.CreateIfMissing, mmapfile.WithMetricsCollector(metrics))
//	// ... use f ...
//	stats := metrics.GetStats()
//	fmt.Printf("grows: %d, flushes: %d\n", stats.GrowCount, stats.FlushCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithGrowthFactor sets the multiplier applied to the capacity on each grow.
// Values below 2 are raised to 2 so appends stay amortized.
func WithGrowthFactor(factor int) Option {
	return func(o *options) {
		if factor < growth.DefaultFactor {
			factor = growth.DefaultFactor
		}
		o.growthFactor = factor
	}
}

// WithPerm sets the permission bits used when the file is created. Default 0644.
func WithPerm(perm os.FileMode) Option {
	return func(o *options) {
		o.perm = perm
	}
}

// WithResourceController shares a mapped-bytes budget and an IO limit with
// other files. Grows that exceed the budget fail with ErrCapacity.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithGrowLock enables the internal exclusive lock tier.
//
// A grow then takes a write lock for the unmap/remap window, while ReadFunc,
// ReadAt, WriteTo and the copy step of writes take the read side. This makes
// concurrent readers safe against a single writer's grows. It does not make
// concurrent writers safe, and slices obtained from View.Bytes are still
// only valid until the next grow.
func WithGrowLock() Option {
	return func(o *options) {
		o.growLock = true
	}
}

// WithTruncateOnClose controls whether Close truncates the file to its
// logical length. Default true. Disabling it keeps the growth padding on disk.
func WithTruncateOnClose(enabled bool) Option {
	return func(o *options) {
		o.truncateOnClose = enabled
	}
}

// WithInitialCapacity maps at least n bytes on open (rounded up to a page),
// avoiding early grows when the final size is roughly known.
func WithInitialCapacity(n int64) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.initialCapacity = n
	}
}

// withFileSystem swaps the filesystem seam; used for fault injection.
func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

// withPort swaps the platform port; used for fault injection.
func withPort(p mmap.Port) Option {
	return func(o *options) {
		o.port = p
	}
}
