// Package endian provides the byte order used for binary fields in ttfr data.
//
// Event blobs carry their capture time as a leading 8-byte little-endian
// millisecond timestamp. All ttfr packages read and write that prefix through
// the engine returned by GetLittleEndianEngine, so the byte order is defined
// in exactly one place:
//
//	engine := endian.GetLittleEndianEngine()
//	blob := engine.AppendUint64(nil, uint64(tsMs))
//	blob = append(blob, payload...)
//
// All functions in this package are safe for concurrent use. The returned
// EndianEngine values are immutable and stateless.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// binary.LittleEndian satisfies it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine, the ttfr wire order.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// Uint32Size and Uint64Size are the encoded widths of the fixed-size fields.
const (
	Uint32Size = 4
	Uint64Size = 8
)
