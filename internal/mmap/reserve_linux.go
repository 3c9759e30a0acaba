//go:build linux

package mmap

import (
	"errors"

	"github.com/hupe1980/mmapfile/internal/fs"
	"golang.org/x/sys/unix"
)

// osReserve allocates blocks for [off, off+n) so writes through the mapping
// cannot fault on a full device.
func osReserve(f fs.File, off, n int64) error {
	err := unix.Fallocate(int(f.Fd()), 0, off, n)
	if errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.ENOSYS) {
		return nil
	}
	return err
}
