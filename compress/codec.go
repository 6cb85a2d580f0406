package compress

import (
	"fmt"
	"time"

	"github.com/arloliu/ttfr/format"
)

// Compressor compresses an opaque byte payload.
//
// Memory management:
//   - Returned slice is newly allocated and owned by the caller (NoOp excepted)
//   - Input slice is not modified
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// Empty input compresses to a nil result.
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores payloads produced by the matching Compressor.
//
// Thread Safety: Decompressor implementations must be safe for concurrent use.
type Decompressor interface {
	// Decompress decompresses data whose decoded length is not known in advance.
	//
	// Returns an error if the input is corrupted or was produced by another algorithm.
	Decompress(data []byte) ([]byte, error)

	// DecompressSize decompresses data that is expected to decode to exactly size bytes.
	//
	// Implementations validate size against the input before allocating, never allocate
	// more than size bytes for the output, and return an error when the decoded length
	// differs from size.
	DecompressSize(data []byte, size int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats records the outcome of compressing one snapshot. The recorder
// logs it with every artifact.
type CompressionStats struct {
	Algorithm  format.CompressionType
	InputSize  int64
	OutputSize int64
	Elapsed    time.Duration
}

// Ratio returns OutputSize/InputSize, or 0 for empty input. Below 1 the payload shrank.
func (s CompressionStats) Ratio() float64 {
	if s.InputSize == 0 {
		return 0
	}

	return float64(s.OutputSize) / float64(s.InputSize)
}

// SavingsPercent returns how much smaller the output is, in percent of the input.
// Negative values mean the payload grew.
func (s CompressionStats) SavingsPercent() float64 {
	if s.InputSize == 0 {
		return 0
	}

	return (1 - s.Ratio()) * 100
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the shared Codec for compressionType. The returned codecs are
// stateless and safe for concurrent use.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}

// checkSize rejects negative expected sizes before any allocation happens.
func checkSize(size int) error {
	if size < 0 {
		return fmt.Errorf("invalid decoded size %d", size)
	}

	return nil
}
