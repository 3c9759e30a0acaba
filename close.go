package mmapfile

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hupe1980/mmapfile/internal/mmap"
)

// Close flushes pending writes, releases the mapping, truncates the backing
// file to Len() and closes it.
//
// Every step runs even if an earlier one fails; the failures are joined into
// one ErrIO kind error. Any call after Close, including a second Close, fails
// with ErrClosed.
func (f *File) Close() error {
	if f.closed.Swap(true) {
		return ErrClosed
	}
	f.cleanup.Stop()

	var errs []error

	// Poisoned files have no mapping left to flush.
	if !f.poisoned.Load() && !f.dirty.Empty() {
		if _, err := f.sync(FlushBlocking); err != nil {
			errs = append(errs, err)
		}
	}

	f.lock()
	f.gen.Add(1)
	if err := f.h.teardown(true); err != nil {
		errs = append(errs, err)
	}
	f.unlock()

	err := errors.Join(errs...)
	length := f.h.length.Load()

	f.opts.metrics.RecordClose(length, err)
	f.logger.LogClose(context.Background(), length, err)

	return err
}

// Remove closes the File and deletes the backing file.
//
// If the file was deleted by someone else in the meantime Remove fails with
// ErrNotFound. On an already closed File it fails with ErrClosed.
func (f *File) Remove() error {
	closeErr := f.Close()
	if errors.Is(closeErr, ErrClosed) {
		return closeErr
	}

	if err := f.opts.fs.Remove(f.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errors.Join(closeErr, fmt.Errorf("%w: %w", ErrNotFound, ioError("remove", f.path, err)))
		}
		return errors.Join(closeErr, ioError("remove", f.path, err))
	}
	return closeErr
}

// teardown releases the mapping, the file handle and the mapped-bytes budget,
// in that order. With unmap false the mapping is dropped but stays in the
// address space. It is safe to call on a handle whose mapping is gone.
func (h *handle) teardown(unmap bool) error {
	var errs []error

	if h.m != nil && unmap {
		if err := h.port.Unmap(h.m); err != nil {
			errs = append(errs, ioError("munmap", h.path, err))
		}
	}
	h.m = nil

	if h.truncateOnClose {
		if err := h.port.Truncate(h.fh, h.length.Load()); err != nil {
			errs = append(errs, ioError("truncate", h.path, err))
		}
	}

	if err := h.fh.Close(); err != nil {
		errs = append(errs, ioError("close", h.path, err))
	}

	h.rc.ReleaseMapped(h.reserved)
	h.reserved = 0

	return errors.Join(errs...)
}

// releaseLeaked is the runtime cleanup of a File that became unreachable
// without Close. It syncs the whole mapping, then closes the handle and
// releases the budget.
//
// The mapping is never unmapped here: slices from View.Bytes, AppendFunc or
// OverwriteFunc do not keep the File reachable and may still be read. The
// address space stays reserved for the life of the process. Slices only cover
// [0, Len()), so truncating the file to Len() cannot fault them.
func releaseLeaked(h *handle) {
	var errs []error
	if h.m != nil {
		if err := h.port.Sync(h.m, 0, h.m.Len(), mmap.SyncBlocking); err != nil {
			errs = append(errs, ioError("flush", h.path, err))
		}
	}
	if err := h.teardown(false); err != nil {
		errs = append(errs, err)
	}
	h.logger.LogLeak(context.Background(), h.length.Load(), errors.Join(errs...))
}
