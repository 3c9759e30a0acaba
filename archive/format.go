package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// Magic identifies archive blobs (ASCII: "MMF1").
	Magic = 0x4D4D4631
	// Version is the current header version.
	Version = 1

	headerSize = 32
)

var (
	ErrInvalidMagic   = errors.New("archive: invalid magic number")
	ErrInvalidVersion = errors.New("archive: unsupported version")
	// ErrCorrupt is returned when the restored content does not match the
	// length or checksum recorded in the header.
	ErrCorrupt = errors.New("archive: content does not match header")
)

// Header is the fixed 32-byte little-endian prefix of every archive.
type Header struct {
	Magic    uint32 // 0x4D4D4631 ("MMF1")
	Version  uint16
	Codec    uint8 // codec.Codec ID of the body
	_        uint8
	Length   uint64 // uncompressed logical length
	Checksum uint32 // CRC32C of the uncompressed content
	_        [12]byte
}

func writeHeader(w io.Writer, h *Header) error {
	h.Magic = Magic
	h.Version = Version
	return binary.Write(w, binary.LittleEndian, h)
}

func readHeader(r io.Reader) (*Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("archive: read header: %w", err)
	}
	if h.Magic != Magic {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, h.Magic)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidVersion, h.Version)
	}
	return &h, nil
}
