package mmapfile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/hupe1980/mmapfile/internal/dirty"
	"github.com/hupe1980/mmapfile/internal/fs"
	"github.com/hupe1980/mmapfile/internal/growth"
	"github.com/hupe1980/mmapfile/internal/mmap"
	"github.com/hupe1980/mmapfile/resource"
)

// File is a growable, file-backed memory mapping.
//
// The bytes [0, Len()) are the logical content. The mapping itself covers
// Cap() bytes, a page-aligned capacity that grows geometrically as writes
// extend the content. Close truncates the backing file back to Len().
//
// A File is not internally synchronized. Callers must serialize writes
// (WriteAt, Append, Truncate, Flush, Close) and must not read concurrently
// with a write that may grow the mapping. WithGrowLock makes reads safe
// against a single writer.
//
// Slices handed out by View.Bytes, AppendFunc and OverwriteFunc do not keep
// the File reachable. A File dropped without Close is released by a runtime
// cleanup that closes the handle but leaves the mapping in place, so such
// slices never fault; the mapped address space is then held until exit.
//
// A File must not be copied.
type File struct {
	_ noCopy

	path   string
	id     string
	opts   options
	logger *Logger

	h     *handle
	dirty *dirty.Tracker

	gen      atomic.Uint64
	closed   atomic.Bool
	poisoned atomic.Bool
	grows    atomic.Int64

	// mu is only used with WithGrowLock.
	mu     sync.RWMutex
	advice AccessPattern

	cleanup runtime.Cleanup
}

// handle owns the OS resources of a File. It is kept apart from File so the
// runtime cleanup can release it without keeping the File reachable.
type handle struct {
	path     string
	fh       fs.File
	m        *mmap.Mapping
	port     mmap.Port
	rc       *resource.Controller
	logger   *Logger
	capacity atomic.Int64
	length   atomic.Int64
	reserved int64 // bytes accounted against rc

	truncateOnClose bool
}

// Stats is a point-in-time snapshot of a File.
type Stats struct {
	Length     int64
	Capacity   int64
	Grows      int64
	Generation uint64
	DirtyPages uint64
}

// Open opens (or creates) the file at path and maps it.
//
// The initial capacity is the file size rounded up to a page, with a floor of
// one page. The initial logical length is the file size.
func Open(path string, mode OpenMode, optFns ...Option) (*File, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	flag, err := mode.flags()
	if err != nil {
		return nil, err
	}

	fh, err := opts.fs.OpenFile(path, flag, opts.perm)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, ioError("open", path, err))
		}
		return nil, ioError("open", path, err)
	}

	info, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return nil, ioError("stat", path, err)
	}
	size := info.Size()

	page := int64(opts.port.PageSize())
	capacity := growth.PageAlign(max(size, opts.initialCapacity, 1), page)
	if capacity > math.MaxInt {
		_ = fh.Close()
		return nil, ioError("mmap", path, capacityError(size, 0, mmap.ErrInvalidSize))
	}

	if err := opts.resources.AcquireMapped(capacity); err != nil {
		_ = fh.Close()
		return nil, ioError("mmap", path, capacityError(capacity, 0, err))
	}

	if err := opts.port.Extend(fh, capacity); err != nil {
		opts.resources.ReleaseMapped(capacity)
		_ = fh.Close()
		return nil, ioError("extend", path, err)
	}

	m, err := opts.port.Map(fh, int(capacity))
	if err != nil {
		_ = opts.port.Truncate(fh, size)
		opts.resources.ReleaseMapped(capacity)
		_ = fh.Close()
		return nil, ioError("mmap", path, err)
	}

	id := uuid.NewString()
	logger := opts.logger.WithFile(path, id)

	h := &handle{
		path:            path,
		fh:              fh,
		m:               m,
		port:            opts.port,
		rc:              opts.resources,
		logger:          logger,
		reserved:        capacity,
		truncateOnClose: opts.truncateOnClose,
	}
	h.capacity.Store(capacity)
	h.length.Store(size)

	f := &File{
		path:   path,
		id:     id,
		opts:   opts,
		logger: logger,
		h:      h,
		dirty:  dirty.New(opts.port.PageSize()),
	}
	f.cleanup = runtime.AddCleanup(f, releaseLeaked, h)

	logger.LogOpen(context.Background(), size, capacity)

	return f, nil
}

// Name returns the path the File was opened with.
func (f *File) Name() string { return f.path }

// ID returns the random identifier attached to log records of this File.
func (f *File) ID() string { return f.id }

// Len returns the logical length.
func (f *File) Len() int64 { return f.h.length.Load() }

// Cap returns the mapped capacity.
func (f *File) Cap() int64 { return f.h.capacity.Load() }

// Dirty reports whether writes are pending a blocking flush.
func (f *File) Dirty() bool { return !f.dirty.Empty() }

// Stats returns a snapshot of the File state.
func (f *File) Stats() Stats {
	return Stats{
		Length:     f.Len(),
		Capacity:   f.Cap(),
		Grows:      f.grows.Load(),
		Generation: f.gen.Load(),
		DirtyPages: f.dirty.Pages(),
	}
}

// check returns the error every operation fails with on an unusable File.
func (f *File) check() error {
	if f.closed.Load() {
		return ErrClosed
	}
	if f.poisoned.Load() {
		return ErrPoisoned
	}
	return nil
}

func (f *File) rlock() {
	if f.opts.growLock {
		f.mu.RLock()
	}
}

func (f *File) runlock() {
	if f.opts.growLock {
		f.mu.RUnlock()
	}
}

func (f *File) lock() {
	if f.opts.growLock {
		f.mu.Lock()
	}
}

func (f *File) unlock() {
	if f.opts.growLock {
		f.mu.Unlock()
	}
}

// WriteAt copies p into the mapping at off, growing it when off+len(p) exceeds
// the capacity. Writing past Len() extends the logical length; bytes between
// the old length and off read as zero.
//
// WriteAt implements io.WriterAt. A grow failure is reported with both the
// ErrIO and ErrCapacity kinds.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	if err := f.check(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, &BoundsError{Off: off, N: int64(len(p)), Len: f.Len()}
	}
	if len(p) == 0 {
		return 0, nil
	}

	end := off + int64(len(p))
	if end < off {
		return 0, ioError("write", f.path, capacityError(math.MaxInt64, f.Cap(), mmap.ErrInvalidSize))
	}
	if end > f.h.capacity.Load() {
		if err := f.grow(end); err != nil {
			return 0, ioError("write", f.path, err)
		}
	}

	f.rlock()
	copy(f.h.m.Bytes()[off:end], p)
	f.runlock()

	f.dirty.Mark(off, int64(len(p)))
	if end > f.h.length.Load() {
		f.h.length.Store(end)
	}
	f.opts.metrics.RecordWrite(len(p))

	return len(p), nil
}

// Append writes p at the end of the logical content and returns the offset it
// was placed at, which is always Len() before the call.
func (f *File) Append(p []byte) (int64, error) {
	off := f.Len()
	if _, err := f.WriteAt(p, off); err != nil {
		return 0, err
	}
	return off, nil
}

// AppendFunc reserves n bytes at the end of the logical content and lets fn
// fill them in place. The slice passed to fn must not be retained.
func (f *File) AppendFunc(n int, fn func(p []byte)) (int64, error) {
	if err := f.check(); err != nil {
		return 0, err
	}
	off := f.Len()
	if n < 0 {
		return 0, &BoundsError{Off: off, N: int64(n), Len: off}
	}
	if n == 0 {
		return off, nil
	}

	end := off + int64(n)
	if end > f.h.capacity.Load() {
		if err := f.grow(end); err != nil {
			return 0, ioError("append", f.path, err)
		}
	}

	f.borrow(off, end, fn)

	f.dirty.Mark(off, int64(n))
	f.h.length.Store(end)
	f.opts.metrics.RecordWrite(n)

	return off, nil
}

// Overwrite replaces bytes inside the logical content. Unlike WriteAt it never
// extends the content and fails with ErrBounds if [off, off+len(p)) is not
// within Len().
func (f *File) Overwrite(off int64, p []byte) error {
	if err := f.check(); err != nil {
		return err
	}
	if err := f.inBounds(off, int64(len(p))); err != nil {
		return err
	}

	f.rlock()
	copy(f.h.m.Bytes()[off:], p)
	f.runlock()

	f.dirty.Mark(off, int64(len(p)))
	f.opts.metrics.RecordWrite(len(p))

	return nil
}

// OverwriteFunc lets fn modify the n bytes at off in place. The range must be
// within Len(); the slice passed to fn must not be retained.
func (f *File) OverwriteFunc(off, n int64, fn func(p []byte)) error {
	if err := f.check(); err != nil {
		return err
	}
	if err := f.inBounds(off, n); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	f.borrow(off, off+n, fn)

	f.dirty.Mark(off, n)
	f.opts.metrics.RecordWrite(int(n))

	return nil
}

// borrow hands fn the mapped bytes [off, end). The grow lock is released even
// if fn panics.
func (f *File) borrow(off, end int64, fn func(p []byte)) {
	f.rlock()
	defer f.runlock()

	fn(f.h.m.Bytes()[off:end:end])
}

// Truncate shrinks the logical length to size. The dropped bytes are zeroed
// in the mapping and the next Close persists the shorter length. Slices
// borrowed over the dropped tail must not be used afterwards.
func (f *File) Truncate(size int64) error {
	if err := f.check(); err != nil {
		return err
	}
	length := f.Len()
	if size < 0 || size > length {
		return &BoundsError{Off: size, N: 0, Len: length}
	}
	if size == length {
		return nil
	}

	f.rlock()
	clear(f.h.m.Bytes()[size:length])
	f.runlock()

	f.dirty.Mark(size, length-size)
	f.h.length.Store(size)

	return nil
}

func (f *File) inBounds(off, n int64) error {
	length := f.Len()
	if off < 0 || n < 0 || off > length || n > length-off {
		return &BoundsError{Off: off, N: n, Len: length}
	}
	return nil
}

// Advise hints the kernel about the expected access pattern. The hint is
// re-applied after every grow.
func (f *File) Advise(pattern AccessPattern) error {
	if err := f.check(); err != nil {
		return err
	}
	f.lock()
	defer f.unlock()

	f.advice = pattern
	if err := f.h.m.Advise(pattern); err != nil {
		return ioError("madvise", f.path, err)
	}
	return nil
}

// noCopy may be embedded into structs which must not be copied after first use.
// See https://golang.org/issues/8005#issuecomment-190753527 for details.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
