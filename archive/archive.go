// Package archive copies the logical content of an mmapfile.File to a
// blobstore.Store and restores it into a new File.
//
// An archive is a 32-byte Header followed by the content compressed with the
// codec named in the header. The header records the uncompressed length and a
// CRC32C so Restore can reject truncated or corrupted blobs.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/mmapfile"
	"github.com/hupe1980/mmapfile/blobstore"
	"github.com/hupe1980/mmapfile/codec"
	"github.com/hupe1980/mmapfile/internal/hash"
	"github.com/hupe1980/mmapfile/resource"
)

type options struct {
	codec     codec.Codec
	resources *resource.Controller
	fileOpts  []mmapfile.Option
}

// Option configures Save and Restore.
type Option func(*options)

// WithCodec selects the compression of Save. Default codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.None{}
		}
		o.codec = c
	}
}

// WithResourceController throttles archive transfers with the controller's
// IO limit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithFileOptions passes options to the mmapfile.Open of Restore.
func WithFileOptions(optFns ...mmapfile.Option) Option {
	return func(o *options) {
		o.fileOpts = append(o.fileOpts, optFns...)
	}
}

func buildOptions(optFns []Option) options {
	o := options{codec: codec.Default}
	for _, fn := range optFns {
		fn(&o)
	}
	return o
}

// Save writes the logical content of f to store under name.
//
// The content is read straight from the mapping; f must not be written to
// while Save runs.
func Save(ctx context.Context, f *mmapfile.File, store blobstore.Store, name string, optFns ...Option) error {
	o := buildOptions(optFns)

	h := &Header{Codec: o.codec.ID(), Length: uint64(f.Len())}
	if err := f.ReadFunc(0, f.Len(), func(p []byte) {
		h.Checksum = hash.CRC32C(p)
	}); err != nil {
		return err
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(encode(ctx, pw, f, h, o))
	}()

	err := store.Put(ctx, name, pr)
	// Unblock the encoder if Put returned early.
	_ = pr.CloseWithError(err)
	if err != nil {
		return fmt.Errorf("archive: put %s: %w", name, err)
	}
	return nil
}

func encode(ctx context.Context, w io.Writer, f *mmapfile.File, h *Header, o options) error {
	w = resource.NewRateLimitedWriter(ctx, w, o.resources)
	if err := writeHeader(w, h); err != nil {
		return err
	}
	cw, err := o.codec.NewWriter(w)
	if err != nil {
		return err
	}
	if _, err := f.WriteTo(cw); err != nil {
		_ = cw.Close()
		return err
	}
	return cw.Close()
}

// Restore rebuilds the archive name from store into a new File at path,
// replacing any existing file. On a length or checksum mismatch the file is
// removed and ErrCorrupt is returned.
func Restore(ctx context.Context, store blobstore.Store, name, path string, optFns ...Option) (*mmapfile.File, error) {
	o := buildOptions(optFns)

	rc, err := store.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("archive: get %s: %w", name, err)
	}
	defer rc.Close()

	r := resource.NewRateLimitedReader(ctx, rc, o.resources)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	c, err := codec.ByID(h.Codec)
	if err != nil {
		return nil, err
	}
	body, err := c.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	fileOpts := append([]mmapfile.Option{mmapfile.WithInitialCapacity(int64(h.Length))}, o.fileOpts...)
	f, err := mmapfile.Open(path, mmapfile.CreateIfMissing|mmapfile.TruncateOnOpen, fileOpts...)
	if err != nil {
		return nil, err
	}

	crc := hash.NewCRC32C()
	// One byte past the recorded length is enough to detect trailing data.
	if _, err := f.ReadFrom(io.TeeReader(io.LimitReader(body, int64(h.Length)+1), crc)); err != nil {
		return nil, errors.Join(err, f.Remove())
	}

	if uint64(f.Len()) != h.Length || crc.Sum32() != h.Checksum {
		err := fmt.Errorf("%w: length %d/%d, crc 0x%08x/0x%08x",
			ErrCorrupt, f.Len(), h.Length, crc.Sum32(), h.Checksum)
		return nil, errors.Join(err, f.Remove())
	}

	if err := f.Flush(mmapfile.FlushBlocking); err != nil {
		return nil, errors.Join(err, f.Remove())
	}
	return f, nil
}
