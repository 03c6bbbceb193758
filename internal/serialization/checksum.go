package serialization

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// ComputeChecksum returns the SHA-256 checksum of the little-endian IEEE 754
// encoding of values. Equal lists always have equal checksums, regardless
// of how they were formatted on disk.
func ComputeChecksum(values []float64) [32]byte {
	h := sha256.New()
	var buf [8]byte
	for _, v := range values {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// Fingerprint returns the first 12 hex digits of ComputeChecksum, for logs.
func Fingerprint(values []float64) string {
	sum := ComputeChecksum(values)
	return hex.EncodeToString(sum[:6])
}
