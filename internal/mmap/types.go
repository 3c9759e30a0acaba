package mmap

import (
	"errors"
	"fmt"
)

// AccessPattern provides hints to the kernel about how the data will be accessed.
type AccessPattern int

const (
	// AccessDefault is the default access pattern (no specific advice).
	AccessDefault AccessPattern = iota
	// AccessSequential expects data to be accessed sequentially.
	AccessSequential
	// AccessRandom expects data to be accessed randomly.
	AccessRandom
	// AccessWillNeed expects data to be accessed in the near future.
	AccessWillNeed
	// AccessDontNeed expects data to not be accessed in the near future.
	AccessDontNeed
)

// SyncMode selects how Sync pushes pages to the backing file.
type SyncMode int

const (
	// SyncBlocking returns after the platform confirms the range is durable.
	SyncBlocking SyncMode = iota
	// SyncAsync schedules write-back and returns immediately.
	SyncAsync
)

func (m SyncMode) String() string {
	switch m {
	case SyncBlocking:
		return "blocking"
	case SyncAsync:
		return "async"
	default:
		return fmt.Sprintf("SyncMode(%d)", int(m))
	}
}

// Code classifies a platform failure.
type Code int

const (
	CodeUnknown Code = iota
	// CodeFdNotAvail: the handle was not open for reading and writing.
	CodeFdNotAvail
	// CodeInvalidFd: the handle was not valid.
	CodeInvalidFd
	// CodeUnaligned: unaligned offset, invalid flags or negative length.
	CodeUnaligned
	// CodeNoMapSupport: the file does not support mapping.
	CodeNoMapSupport
	// CodeNoMem: address space or kernel resources exhausted.
	CodeNoMem
	// CodeNoSpace: the device has no room to extend the file.
	CodeNoSpace
	// CodeZeroLength: a zero-length mapping was requested.
	CodeZeroLength
)

func (c Code) String() string {
	switch c {
	case CodeFdNotAvail:
		return "fd not available for reading or writing"
	case CodeInvalidFd:
		return "invalid fd"
	case CodeUnaligned:
		return "unaligned address, invalid flags, negative length or unaligned offset"
	case CodeNoMapSupport:
		return "file doesn't support mapping"
	case CodeNoMem:
		return "invalid address, or not enough available memory"
	case CodeNoSpace:
		return "no space left on device"
	case CodeZeroLength:
		return "zero-length mapping not allowed"
	default:
		return "unknown error"
	}
}

// Error is a classified platform failure.
type Error struct {
	Op   string // "extend", "mmap", "munmap", "msync", "truncate"
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("mmap: %s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("mmap: %s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return &Error{Op: op, Code: classify(err), Err: err}
}

var (
	// ErrClosed is returned when attempting to access a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when a requested size is invalid (e.g. negative or too large).
	ErrInvalidSize = errors.New("mmap: invalid size")
	// ErrOutOfBounds is returned when a range lies outside the mapping.
	ErrOutOfBounds = errors.New("mmap: out of bounds")
)
