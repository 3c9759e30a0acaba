package mmapfile

import (
	"fmt"
	"os"

	"github.com/hupe1980/mmapfile/internal/mmap"
)

// OpenMode selects how Open treats the path. The zero OpenMode opens an
// existing file or creates a new one.
type OpenMode uint8

const (
	// CreateIfMissing creates the file when it does not exist.
	CreateIfMissing OpenMode = 1 << iota
	// MustExist fails with ErrNotFound when the file does not exist.
	MustExist
	// TruncateOnOpen discards existing content.
	TruncateOnOpen
)

func (m OpenMode) flags() (int, error) {
	if m&CreateIfMissing != 0 && m&MustExist != 0 {
		return 0, fmt.Errorf("%w: CreateIfMissing and MustExist are exclusive", ErrInvalidMode)
	}
	if m&^(CreateIfMissing|MustExist|TruncateOnOpen) != 0 {
		return 0, fmt.Errorf("%w: unknown bits %#x", ErrInvalidMode, uint8(m))
	}
	flag := os.O_RDWR
	if m&MustExist == 0 {
		flag |= os.O_CREATE
	}
	if m&TruncateOnOpen != 0 {
		flag |= os.O_TRUNC
	}
	return flag, nil
}

// FlushMode selects the durability of Flush.
type FlushMode int

const (
	// FlushBlocking returns once the platform confirms the dirty pages are durable.
	FlushBlocking FlushMode = iota
	// FlushAsync schedules write-back and returns without a durability guarantee.
	FlushAsync
)

func (m FlushMode) String() string {
	switch m {
	case FlushBlocking:
		return "blocking"
	case FlushAsync:
		return "async"
	default:
		return fmt.Sprintf("FlushMode(%d)", int(m))
	}
}

func (m FlushMode) syncMode() mmap.SyncMode {
	if m == FlushAsync {
		return mmap.SyncAsync
	}
	return mmap.SyncBlocking
}

// AccessPattern provides hints to the kernel about how the mapping will be accessed.
type AccessPattern = mmap.AccessPattern

const (
	AccessDefault    = mmap.AccessDefault
	AccessSequential = mmap.AccessSequential
	AccessRandom     = mmap.AccessRandom
	AccessWillNeed   = mmap.AccessWillNeed
	AccessDontNeed   = mmap.AccessDontNeed
)
