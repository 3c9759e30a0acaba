// Package mmapfile provides a growable, file-backed memory mapping.
//
// A File exposes the contents of a regular file as mapped memory. Writes go
// straight into the mapping; when a write reaches past the mapped capacity the
// file is extended and remapped with geometrically growing capacity, so many
// small appends cost only a logarithmic number of remaps. Close truncates the
// file back to the bytes actually written.
//
// # Quick Start
//
//	f, err := mmapfile.Open("data.bin", mmapfile.CreateIfMissing)
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	off, _ := f.Append([]byte("hello"))  // off == 0
//	_, _ = f.WriteAt([]byte("J"), off)   // "Jello"
//	b, _ := f.Read(0, f.Len())           // owned copy
//	_ = f.Flush(mmapfile.FlushBlocking)  // durable
//
// # Length and Capacity
//
// Len is the logical length: the bytes callers wrote. Cap is the mapped
// capacity, always a multiple of the page size and never smaller than Len.
// Reads are bounded by Len, never by Cap; a read past Len fails with
// ErrBounds even when the bytes are mapped.
//
// # Borrowed Memory
//
// View and ReadFunc hand out slices of the mapping itself. A grow unmaps the
// old region, so such slices are only valid until the next write that may
// grow the File. A View detects this and fails with ErrStaleView; ReadFunc
// confines the slice to a callback. Read and ReadAt copy.
//
// # Concurrency
//
// A File is not internally synchronized: one writer, and readers only while
// no write is running. WithGrowLock adds a read-write lock so readers are safe
// against a concurrent writer's grows.
//
// # Errors
//
// Failures carry a kind that is matched with errors.Is: ErrIO, ErrBounds,
// ErrCapacity, ErrClosed, ErrNotFound, ErrPoisoned, ErrStaleView and
// ErrInvalidMode. BoundsError, CapacityError and PlatformError carry the
// details. A grow whose remap fails after the file was extended, and whose
// fallback remap also fails, poisons the File: every call except Close and
// Remove then returns ErrPoisoned.
//
// # Observability
//
// WithLogger attaches a slog based Logger; WithMetricsCollector a
// MetricsCollector such as BasicMetricsCollector or the Prometheus collector
// in package metric.
package mmapfile
