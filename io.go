package mmapfile

import (
	"errors"
	"io"
)

var (
	_ io.ReaderAt   = (*File)(nil)
	_ io.WriterAt   = (*File)(nil)
	_ io.WriterTo   = (*File)(nil)
	_ io.ReaderFrom = (*File)(nil)
)

// ReadAt implements io.ReaderAt over the logical content. Reads that reach
// Len() return the available bytes and io.EOF.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if err := f.check(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, &BoundsError{Off: off, N: int64(len(p)), Len: f.Len()}
	}

	f.rlock()
	defer f.runlock()

	length := f.Len()
	if off >= length {
		return 0, io.EOF
	}
	n := copy(p, f.h.m.Bytes()[off:length])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteTo writes the logical content to w.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	if err := f.check(); err != nil {
		return 0, err
	}

	f.rlock()
	defer f.runlock()

	n, err := w.Write(f.h.m.Bytes()[:f.Len()])
	return int64(n), err
}

// readFromChunk is the minimum room ReadFrom makes before each read.
const readFromChunk = 32 * 1024

// ReadFrom appends everything read from r until io.EOF. Data is read straight
// into the mapping, growing it as needed.
func (f *File) ReadFrom(r io.Reader) (int64, error) {
	if err := f.check(); err != nil {
		return 0, err
	}

	var total int64
	for {
		length := f.Len()
		if f.Cap()-length < readFromChunk {
			if err := f.grow(length + readFromChunk); err != nil {
				return total, ioError("read from", f.path, err)
			}
		}

		n, err := f.readInto(r, length)

		if n > 0 {
			f.dirty.Mark(length, int64(n))
			f.h.length.Store(length + int64(n))
			f.opts.metrics.RecordWrite(n)
			total += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// readInto reads from r straight into the mapping at off.
func (f *File) readInto(r io.Reader, off int64) (int, error) {
	f.rlock()
	defer f.runlock()

	return r.Read(f.h.m.Bytes()[off:f.Cap()])
}
