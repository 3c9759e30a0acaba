// Package testutil provides deterministic data generators and filesystem
// helpers for tests.
//
// Everything here is seeded so failures reproduce: NewRNG(seed) always yields
// the same byte stream, and Chunks the same split of a payload into appends.
package testutil
