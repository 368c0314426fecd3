// File: internal/region/align.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package region

// AlignUp4 rounds n up to the next multiple of 4. Position counters and
// frame lengths in the ring are always 4-byte aligned.
func AlignUp4(n uint32) uint32 {
	return (n + 3) &^ 3
}

// Align256 rounds n up to the next multiple of 256. The arena's first
// allocation begins at Align256(HeaderSize).
func Align256(n uint64) uint64 {
	return (n + 255) &^ 255
}

// Align64 rounds n up to the next multiple of 64, the arena's alignment
// unit for every allocation after the first.
func Align64(n uint64) uint64 {
	return (n + 63) &^ 63
}

// IsPowerOfTwo reports whether n is a nonzero power of two.
func IsPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}
