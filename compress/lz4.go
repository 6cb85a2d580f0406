package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains a hash table that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// lz4MaxRatio bounds the decoded/encoded ratio of a valid LZ4 block. Each extra
// length byte in a sequence adds at most 255 output bytes, so a block can never
// expand beyond this factor (plus a small constant for tokens and the last literals).
const lz4MaxRatio = 255

// LZ4Compressor compresses payloads as a raw LZ4 block (no frame, no size prefix).
type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses the input data using LZ4 block compression.
//
// The destination is sized with CompressBlockBound, so incompressible input still
// yields a valid (slightly larger) block.
//
// Returns:
//   - []byte: Compressed data (nil if input is empty)
//   - error: Compression error if any
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return dst[:n], nil
}

// Decompress decompresses an LZ4 block of unknown decoded length.
//
// The output buffer starts at 4x the input size and doubles on
// ErrInvalidSourceShortBuffer, up to a 128MB limit.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	bufSize := len(data) * 4
	const maxSize = 128 * 1024 * 1024

	for bufSize <= maxSize {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err != nil {
			if errors.Is(err, lz4.ErrInvalidSourceShortBuffer) && bufSize < maxSize {
				bufSize *= 2
				continue
			}

			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}

		return buf[:n], nil
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}

// DecompressSize decompresses an LZ4 block that must decode to exactly size bytes.
//
// A size that no LZ4 block of len(data) bytes could produce is rejected before the
// output buffer is allocated.
func (c LZ4Compressor) DecompressSize(data []byte, size int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	if size == 0 {
		// An empty payload compresses to nothing, or to a lone zero token.
		if len(data) == 0 || (len(data) == 1 && data[0] == 0) {
			return []byte{}, nil
		}

		return nil, fmt.Errorf("lz4 decompress: %d trailing bytes for empty block", len(data))
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("lz4 decompress: empty block for %d bytes", size)
	}
	if size > len(data)*lz4MaxRatio+64 {
		return nil, fmt.Errorf("lz4 decompress: %d bytes cannot decode from %d byte block", size, len(data))
	}

	buf := make([]byte, size)
	n, err := lz4.UncompressBlock(data, buf)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if n != size {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", n, size)
	}

	return buf, nil
}
