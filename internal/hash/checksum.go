package hash

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Checksum computes the xxHash64 of data. Flush artifacts carry it so that a
// copy pulled off a sensor can be checked against the recorder's log line.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Hex formats a checksum as 16 lowercase hex digits.
func Hex(sum uint64) string {
	s := strconv.FormatUint(sum, 16)
	for len(s) < 16 {
		s = "0" + s
	}

	return s
}
