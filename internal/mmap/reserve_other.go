//go:build !linux

package mmap

import "github.com/hupe1980/mmapfile/internal/fs"

func osReserve(fs.File, int64, int64) error { return nil }
