package mmapfile

import (
	"errors"
	"fmt"

	"github.com/hupe1980/mmapfile/internal/mmap"
)

var (
	// ErrIO is the kind of every operating-system level failure: opening the
	// file, platform map/unmap/sync calls, truncation and deletion.
	ErrIO = errors.New("mmapfile: i/o error")
	// ErrBounds is the kind of a request outside the logical content.
	ErrBounds = errors.New("mmapfile: out of bounds")
	// ErrCapacity is the kind of a failed grow (extension or remap).
	ErrCapacity = errors.New("mmapfile: cannot grow capacity")
	// ErrClosed is returned by every operation after Close or Remove.
	ErrClosed = errors.New("mmapfile: file is closed")
	// ErrNotFound reports a backing file that does not exist.
	ErrNotFound = errors.New("mmapfile: file not found")
	// ErrPoisoned is returned after a grow failed between unmap and remap.
	// The File must be closed; no other operation is allowed.
	ErrPoisoned = errors.New("mmapfile: file poisoned by failed remap")
	// ErrStaleView is returned by a View used after the mapping it was taken
	// from was replaced by a grow.
	ErrStaleView = errors.New("mmapfile: view invalidated by remap")
	// ErrInvalidMode is returned by Open for contradictory OpenMode flags.
	ErrInvalidMode = errors.New("mmapfile: invalid open mode")
)

// ErrorCode classifies a platform failure.
type ErrorCode = mmap.Code

const (
	CodeUnknown      = mmap.CodeUnknown
	CodeFdNotAvail   = mmap.CodeFdNotAvail
	CodeInvalidFd    = mmap.CodeInvalidFd
	CodeUnaligned    = mmap.CodeUnaligned
	CodeNoMapSupport = mmap.CodeNoMapSupport
	CodeNoMem        = mmap.CodeNoMem
	CodeNoSpace      = mmap.CodeNoSpace
	CodeZeroLength   = mmap.CodeZeroLength
)

// BoundsError describes a request for [Off, Off+N) against logical length Len.
type BoundsError struct {
	Off int64
	N   int64
	Len int64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("mmapfile: range [%d, %d+%d) out of bounds (length %d)", e.Off, e.Off, e.N, e.Len)
}

func (e *BoundsError) Is(target error) bool { return target == ErrBounds }

// CapacityError describes a grow that could not be completed.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type CapacityError struct {
	Requested int64 // bytes that had to fit
	Capacity  int64 // capacity when the grow started
	cause     error
}

func (e *CapacityError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("mmapfile: cannot grow from %d to fit %d bytes", e.Capacity, e.Requested)
	}
	return fmt.Sprintf("mmapfile: cannot grow from %d to fit %d bytes: %v", e.Capacity, e.Requested, e.cause)
}

func (e *CapacityError) Unwrap() error { return e.cause }

func (e *CapacityError) Is(target error) bool { return target == ErrCapacity }

// PlatformError is a classified failure of a platform mapping primitive.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type PlatformError struct {
	Op    string
	Code  ErrorCode
	cause error
}

func (e *PlatformError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("mmapfile: %s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("mmapfile: %s: %s: %v", e.Op, e.Code, e.cause)
}

func (e *PlatformError) Unwrap() error { return e.cause }

// translateError lifts internal platform errors into the public types.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var me *mmap.Error
	if errors.As(err, &me) {
		return &PlatformError{Op: me.Op, Code: me.Code, cause: me.Err}
	}
	return err
}

// ioError marks err as an ErrIO kind failure of op on path.
func ioError(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, translateError(err))
}

func capacityError(requested, capacity int64, err error) error {
	return &CapacityError{Requested: requested, Capacity: capacity, cause: translateError(err)}
}
