package compress

import "fmt"

// NoOpCompressor stores payloads uncompressed.
//
// Useful when debugging artifact contents with a hex dump, and as a baseline
// when comparing algorithms.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

// NewNoOpCompressor creates a new no-operation compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns the input slice as-is, without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input slice as-is, without copying.
//
// Note: The returned slice shares the same underlying memory as the input.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

// DecompressSize returns a copy of data after checking that it is exactly size bytes.
func (c NoOpCompressor) DecompressSize(data []byte, size int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	if len(data) != size {
		return nil, fmt.Errorf("uncompressed block: size %d does not match expected %d", len(data), size)
	}

	out := make([]byte, size)
	copy(out, data)

	return out, nil
}
