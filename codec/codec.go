// Package codec provides the stream compressors used by archives.
//
// The codec ID is persisted in archive headers: changing the ID of an existing
// codec makes older archives unreadable.
package codec

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec wraps streams with a compression format.
// Implementations must be safe for concurrent use.
type Codec interface {
	// Name is the stable, human readable name.
	Name() string
	// ID is the stable byte stored in archive headers.
	ID() uint8
	// NewWriter returns a compressing writer. Close flushes the trailer but
	// does not close w.
	NewWriter(w io.Writer) (io.WriteCloser, error)
	// NewReader returns a decompressing reader over r.
	NewReader(r io.Reader) (io.ReadCloser, error)
}

// Default is the codec used when none is configured.
var Default Codec = Zstd{}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "none", "":
		return None{}, true
	case "zstd":
		return Zstd{}, true
	case "lz4":
		return LZ4{}, true
	default:
		return nil, false
	}
}

// ByID returns a built-in codec by its header byte.
func ByID(id uint8) (Codec, error) {
	switch id {
	case idNone:
		return None{}, nil
	case idZstd:
		return Zstd{}, nil
	case idLZ4:
		return LZ4{}, nil
	default:
		return nil, fmt.Errorf("codec: unknown id %d", id)
	}
}

const (
	idNone uint8 = iota
	idZstd
	idLZ4
)

// None stores data uncompressed.
type None struct{}

func (None) Name() string { return "none" }
func (None) ID() uint8    { return idNone }

func (None) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

func (None) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// Zstd compresses with Zstandard. Level is a zstd level (1-22); zero uses the
// library default.
type Zstd struct {
	Level int
}

func (Zstd) Name() string { return "zstd" }
func (Zstd) ID() uint8    { return idZstd }

func (z Zstd) NewWriter(w io.Writer) (io.WriteCloser, error) {
	level := zstd.SpeedDefault
	if z.Level > 0 {
		level = zstd.EncoderLevelFromZstd(z.Level)
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(level))
}

func (Zstd) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}

// LZ4 compresses with the LZ4 frame format. It trades ratio for speed.
type LZ4 struct{}

func (LZ4) Name() string { return "lz4" }
func (LZ4) ID() uint8    { return idLZ4 }

func (LZ4) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}

func (LZ4) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}
