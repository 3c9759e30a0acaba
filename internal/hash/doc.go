// Package hash provides the CRC32-Castagnoli (CRC32C) checksum used by
// archives.
//
// CRC32C is hardware accelerated on x86 (SSE4.2) and ARM (CRC extension).
// It detects accidental corruption only and is not a cryptographic hash.
//
// # Usage
//
// For one-shot checksums:
//
//	sum := hash.CRC32C(data)
//
// For streaming:
//
//	h := hash.NewCRC32C()
//	io.Copy(h, r)
//	sum := h.Sum32()
package hash
