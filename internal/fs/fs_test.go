package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	dir := filepath.Join(tmp, "subdir")
	assert.NoError(t, lfs.MkdirAll(dir, 0755))

	fpath := filepath.Join(dir, "test.txt")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.NoError(t, f.Sync())
	assert.NotZero(t, f.Fd())
	assert.Equal(t, fpath, f.Name())

	// Grow and shrink through the handle
	require.NoError(t, f.Truncate(4096))
	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(4096), info.Size())
	require.NoError(t, f.Truncate(3))

	assert.NoError(t, f.Close())

	info2, err := lfs.Stat(fpath)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), info2.Size())

	entries, err := lfs.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)

	newPath := filepath.Join(dir, "renamed.txt")
	assert.NoError(t, lfs.Rename(fpath, newPath))

	assert.NoError(t, lfs.Remove(newPath))
	_, err = lfs.Stat(newPath)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalFS_OpenMissing(t *testing.T) {
	_, err := LocalFS{}.OpenFile(filepath.Join(t.TempDir(), "nope"), os.O_RDWR, 0)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFaultyFS_WriteLimit(t *testing.T) {
	ffs := NewFaultyFS(LocalFS{})
	ffs.AddRule("faulty", Fault{FailAfterBytes: 5})

	fpath := filepath.Join(t.TempDir(), "faulty.txt")
	f, err := ffs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)
	defer f.Close()

	n, err := f.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = f.Write([]byte("!"))
	assert.ErrorIs(t, err, ErrInjected)
	assert.Equal(t, 0, n)
}

func TestFaultyFS_Truncate(t *testing.T) {
	ffs := NewFaultyFS(nil)
	ffs.AddRule("grow", Fault{FailTruncateAbove: 8192})

	fpath := filepath.Join(t.TempDir(), "grow.bin")
	f, err := ffs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)
	defer f.Close()

	assert.NoError(t, f.Truncate(4096))
	assert.ErrorIs(t, f.Truncate(16384), ErrInjected)
	assert.NoError(t, f.Truncate(10))

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.Size())
}

func TestFaultyFS_SyncCloseRemove(t *testing.T) {
	custom := errors.New("disk on fire")
	ffs := NewFaultyFS(nil)
	ffs.AddRule("bad", Fault{FailOnSync: true, FailOnClose: true, Err: custom})

	dir := t.TempDir()
	fpath := filepath.Join(dir, "bad.bin")
	f, err := ffs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0644)
	require.NoError(t, err)

	assert.ErrorIs(t, f.Sync(), custom)
	assert.ErrorIs(t, f.Close(), custom)

	ffs.RemoveErr = custom
	assert.ErrorIs(t, ffs.Remove(fpath), custom)

	ffs.RemoveErr = nil
	ffs.ClearRules()
	assert.NoError(t, ffs.Remove(fpath))

	_, err = ffs.Stat(fpath)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ffs.MkdirAll(filepath.Join(dir, "a"), 0755))
	_, err = ffs.ReadDir(dir)
	assert.NoError(t, err)
}
