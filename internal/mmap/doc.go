// Package mmap is the platform port behind the growable mapped file.
//
// # Overview
//
// The package exposes the handful of OS primitives a growable file mapping
// needs, behind a single [Port] interface:
//
//   - Extend: grow the backing file so a larger mapping is fully backed
//   - Map / Unmap: establish and release a shared read-write mapping
//   - Sync: push a page range of the mapping to stable storage
//   - Truncate: shrink the backing file to its logical length on close
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): ftruncate(2), mmap(2), msync(2), madvise(2).
//     On Linux, Extend additionally reserves blocks with fallocate(2) so a
//     full disk is reported at grow time instead of as SIGBUS on first touch.
//   - Windows: SetEndOfFile, CreateFileMapping/MapViewOfFile,
//     FlushViewOfFile + FlushFileBuffers (madvise is a no-op)
//
// # Thread Safety
//
// A [Mapping] is safe for concurrent read access. Close is idempotent and
// protected by atomic operations. Callers must ensure no goroutine touches
// Bytes() after Close returns.
//
// # Fault Injection
//
// [FaultyPort] wraps another Port and fails selected calls. Tests use it to
// drive the grow error paths that real hardware rarely produces.
package mmap
