package compress

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdDecoderPool pools zstd decoders for reuse. The klauspost decoder is designed
// to run without allocations after a warmup, so decoders are kept rather than rebuilt.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

// zstdBoundedDecoderPool pools decoders that never write past cap(dst), used when
// the decoded size is known up front.
var zstdBoundedDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecodeAllCapLimit(true),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

// zstdEncoderPool pools zstd encoders for reuse.
var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return encoder
	},
}

// ZstdCompressor provides Zstandard compression.
//
// Best ratio of the built-in codecs. Use it for artifacts that are shipped off the
// sensor over a constrained link, where flush latency matters less than size.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

// Compress compresses the input data using a pooled Zstandard encoder.
func (c ZstdCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	encoder, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	return encoder.EncodeAll(data, nil), nil
}

// Decompress decompresses Zstd-compressed data using a pooled decoder.
func (c ZstdCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	decompressed, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}

	return decompressed, nil
}

// zstdDirectRatio bounds the up-front allocation relative to the input size. Larger
// declared sizes are decoded incrementally so that memory follows the actual output.
const zstdDirectRatio = 64

// DecompressSize decompresses a single Zstd frame that must decode to exactly size
// bytes. A frame content size that disagrees with size is rejected before any output
// is allocated, and never more than size bytes are decoded.
func (c ZstdCompressor) DecompressSize(data []byte, size int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		if size == 0 {
			return []byte{}, nil
		}

		return nil, fmt.Errorf("zstd decompress: empty frame for %d bytes", size)
	}

	var header zstd.Header
	if err := header.Decode(data); err != nil {
		return nil, fmt.Errorf("zstd decompress: frame header: %w", err)
	}
	if header.HasFCS && header.FrameContentSize != uint64(size) {
		return nil, fmt.Errorf("zstd decompress: frame declares %d bytes, expected %d", header.FrameContentSize, size)
	}

	var (
		decompressed []byte
		err          error
	)
	if uint64(size) <= uint64(len(data))*zstdDirectRatio {
		decompressed, err = decodeZstdInto(data, size)
	} else {
		decompressed, err = decodeZstdStream(data, size)
	}
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(decompressed) != size {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(decompressed), size)
	}

	return decompressed, nil
}

// decodeZstdInto decodes data into a buffer of capacity size.
func decodeZstdInto(data []byte, size int) ([]byte, error) {
	decoder, _ := zstdBoundedDecoderPool.Get().(*zstd.Decoder)
	defer zstdBoundedDecoderPool.Put(decoder)

	return decoder.DecodeAll(data, make([]byte, 0, size))
}

// decodeZstdStream decodes at most size+1 bytes, growing the output as it goes.
func decodeZstdStream(data []byte, size int) ([]byte, error) {
	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer func() {
		_ = decoder.Reset(nil)
		zstdDecoderPool.Put(decoder)
	}()

	if err := decoder.Reset(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(data) * zstdDirectRatio)
	if _, err := buf.ReadFrom(io.LimitReader(decoder, int64(size)+1)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
