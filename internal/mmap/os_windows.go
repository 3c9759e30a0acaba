//go:build windows

package mmap

import (
	"errors"
	"unsafe"

	"github.com/hupe1980/mmapfile/internal/fs"
	"golang.org/x/sys/windows"
)

func osMap(f fs.File, size int) ([]byte, func([]byte) error, error) {
	maxHigh := uint32(uint64(size) >> 32)
	maxLow := uint32(uint64(size) & 0xFFFFFFFF)

	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READWRITE, maxHigh, maxLow, nil)
	if err != nil {
		return nil, nil, err
	}
	// The view holds its own reference to the mapping object.
	defer windows.CloseHandle(h)

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		return nil, nil, err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)

	return data, func([]byte) error {
		return windows.UnmapViewOfFile(addr)
	}, nil
}

func osSync(fd uintptr, data []byte, mode SyncMode) error {
	if len(data) == 0 {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&data[0]))
	if err := windows.FlushViewOfFile(addr, uintptr(len(data))); err != nil {
		return err
	}
	if mode == SyncAsync {
		return nil
	}
	return windows.FlushFileBuffers(windows.Handle(fd))
}

func osAdvise([]byte, AccessPattern) error {
	return nil
}

func classify(err error) Code {
	var errno windows.Errno
	if !errors.As(err, &errno) {
		return CodeUnknown
	}
	switch errno {
	case windows.ERROR_ACCESS_DENIED:
		return CodeFdNotAvail
	case windows.ERROR_INVALID_HANDLE:
		return CodeInvalidFd
	case windows.ERROR_INVALID_PARAMETER:
		return CodeUnaligned
	case windows.ERROR_NOT_ENOUGH_MEMORY:
		return CodeNoMem
	case windows.ERROR_DISK_FULL, windows.ERROR_HANDLE_DISK_FULL:
		return CodeNoSpace
	default:
		return CodeUnknown
	}
}
