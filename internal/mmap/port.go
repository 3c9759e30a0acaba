package mmap

import (
	"os"

	"github.com/hupe1980/mmapfile/internal/fs"
)

// Port is the set of platform primitives the mapped file engine is written
// against.
type Port interface {
	// PageSize is the mapping granularity; capacities are multiples of it.
	PageSize() int
	// Extend grows the backing file to size bytes.
	Extend(f fs.File, size int64) error
	// Map establishes a shared read-write mapping of the first size bytes of f.
	Map(f fs.File, size int) (*Mapping, error)
	// Unmap releases the mapping. Slices taken from it become invalid.
	Unmap(m *Mapping) error
	// Sync pushes n bytes starting at off (page aligned) to the backing file.
	Sync(m *Mapping, off, n int, mode SyncMode) error
	// Truncate sets the size of the backing file.
	Truncate(f fs.File, size int64) error
}

type nativePort struct {
	pageSize int
}

var native = &nativePort{pageSize: os.Getpagesize()}

// Native returns the port backed by the current operating system.
func Native() Port {
	return native
}

func (p *nativePort) PageSize() int { return p.pageSize }

func (p *nativePort) Extend(f fs.File, size int64) error {
	if size < 0 {
		return ErrInvalidSize
	}
	info, err := f.Stat()
	if err != nil {
		return wrap("extend", err)
	}
	cur := info.Size()
	if size <= cur {
		return nil
	}
	if err := f.Truncate(size); err != nil {
		return wrap("extend", err)
	}
	if err := osReserve(f, cur, size-cur); err != nil {
		// Give back the sparse tail; the caller keeps its old capacity.
		_ = f.Truncate(cur)
		return wrap("extend", err)
	}
	return nil
}

func (p *nativePort) Map(f fs.File, size int) (*Mapping, error) {
	if size == 0 {
		return nil, &Error{Op: "mmap", Code: CodeZeroLength}
	}
	if size < 0 {
		return nil, &Error{Op: "mmap", Code: CodeUnaligned, Err: ErrInvalidSize}
	}

	data, unmapFunc, err := osMap(f, size)
	if err != nil {
		return nil, wrap("mmap", err)
	}

	return &Mapping{
		data:  data,
		fd:    f.Fd(),
		unmap: unmapFunc,
	}, nil
}

func (p *nativePort) Unmap(m *Mapping) error {
	if m == nil {
		return nil
	}
	return wrap("munmap", m.Close())
}

func (p *nativePort) Sync(m *Mapping, off, n int, mode SyncMode) error {
	if n == 0 {
		return nil
	}
	if off%p.pageSize != 0 {
		return &Error{Op: "msync", Code: CodeUnaligned}
	}
	data, err := m.span(off, n)
	if err != nil {
		return err
	}
	return wrap("msync", osSync(m.fd, data, mode))
}

func (p *nativePort) Truncate(f fs.File, size int64) error {
	if size < 0 {
		return ErrInvalidSize
	}
	return wrap("truncate", f.Truncate(size))
}
