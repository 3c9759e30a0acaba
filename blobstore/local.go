package blobstore

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hupe1980/mmapfile"
)

const tmpSuffix = ".tmp"

// LocalStore implements Store on a local directory.
//
// Blobs are written through an mmapfile.File into a temporary file that is
// renamed into place on success. Reads never change the file on disk.
type LocalStore struct {
	root string
	opts []mmapfile.Option
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
// optFns are passed to every mmapfile.Open.
func NewLocalStore(root string, optFns ...mmapfile.Option) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{root: root, opts: optFns}, nil
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Put implements Store.
func (s *LocalStore) Put(ctx context.Context, name string, r io.Reader) error {
	path := s.path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + tmpSuffix
	f, err := mmapfile.Open(tmp, mmapfile.CreateIfMissing|mmapfile.TruncateOnOpen, s.opts...)
	if err != nil {
		return err
	}

	if _, err := f.ReadFrom(contextReader{ctx: ctx, r: r}); err != nil {
		_ = f.Remove()
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}

// Get implements Store. Blobs are read through a read-only handle; mapping
// them would pad the file to a page boundary while the reader is open.
func (s *LocalStore) Get(_ context.Context, name string) (io.ReadCloser, error) {
	fh, err := os.Open(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	info, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return nil, err
	}
	return &localBlob{SectionReader: io.NewSectionReader(fh, 0, info.Size()), f: fh}, nil
}

// Delete implements Store.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	err := os.Remove(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// List implements Store. Names use forward slashes.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, tmpSuffix) {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

type localBlob struct {
	*io.SectionReader
	f *os.File
}

func (b *localBlob) Close() error {
	return b.f.Close()
}

// contextReader stops a copy once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
