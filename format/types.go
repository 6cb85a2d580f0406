package format

import (
	"fmt"
	"strings"
)

type (
	CompressionType uint8
	EventEncoding   uint8
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone stores the payload uncompressed.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 block compression.

	EncodingJSON EventEncoding = 0x1 // EncodingJSON encodes events as a JSON array.
	EncodingCBOR EventEncoding = 0x2 // EncodingCBOR encodes events as a deterministic CBOR array.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

func (e EventEncoding) String() string {
	switch e {
	case EncodingJSON:
		return "JSON"
	case EncodingCBOR:
		return "CBOR"
	default:
		return "Unknown"
	}
}

// ParseCompressionType parses a compression name such as "lz4" or "zstd".
// Matching is case-insensitive.
func ParseCompressionType(name string) (CompressionType, error) {
	switch strings.ToLower(name) {
	case "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression type: %q", name)
	}
}

// ParseEventEncoding parses an event encoding name ("json" or "cbor").
func ParseEventEncoding(name string) (EventEncoding, error) {
	switch strings.ToLower(name) {
	case "json":
		return EncodingJSON, nil
	case "cbor":
		return EncodingCBOR, nil
	default:
		return 0, fmt.Errorf("unknown event encoding: %q", name)
	}
}
