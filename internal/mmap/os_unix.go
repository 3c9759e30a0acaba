//go:build unix

package mmap

import (
	"errors"

	"github.com/hupe1980/mmapfile/internal/fs"
	"golang.org/x/sys/unix"
)

func osMap(f fs.File, size int) ([]byte, func([]byte) error, error) {
	prot := unix.PROT_READ | unix.PROT_WRITE
	flags := unix.MAP_SHARED

	data, err := unix.Mmap(int(f.Fd()), 0, size, prot, flags)
	if err != nil {
		return nil, nil, err
	}

	return data, unix.Munmap, nil
}

func osSync(_ uintptr, data []byte, mode SyncMode) error {
	flags := unix.MS_SYNC
	if mode == SyncAsync {
		flags = unix.MS_ASYNC
	}
	return unix.Msync(data, flags)
}

func osAdvise(data []byte, pattern AccessPattern) error {
	var advice int
	switch pattern {
	case AccessSequential:
		advice = unix.MADV_SEQUENTIAL
	case AccessRandom:
		advice = unix.MADV_RANDOM
	case AccessWillNeed:
		advice = unix.MADV_WILLNEED
	case AccessDontNeed:
		advice = unix.MADV_DONTNEED
	default:
		advice = unix.MADV_NORMAL
	}

	// The hint is advisory; an alignment complaint is not worth failing for.
	err := unix.Madvise(data, advice)
	if errors.Is(err, unix.EINVAL) {
		return nil
	}
	return err
}

func classify(err error) Code {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return CodeUnknown
	}
	switch errno {
	case unix.EACCES:
		return CodeFdNotAvail
	case unix.EBADF:
		return CodeInvalidFd
	case unix.EINVAL:
		return CodeUnaligned
	case unix.ENODEV:
		return CodeNoMapSupport
	case unix.ENOMEM:
		return CodeNoMem
	case unix.ENOSPC, unix.EFBIG, unix.EDQUOT:
		return CodeNoSpace
	default:
		return CodeUnknown
	}
}
