package codec

import (
	"fmt"
	"time"

	"github.com/arloliu/ttfr/compress"
	"github.com/arloliu/ttfr/endian"
	"github.com/arloliu/ttfr/errs"
	"github.com/arloliu/ttfr/event"
	"github.com/arloliu/ttfr/format"
	"github.com/arloliu/ttfr/internal/options"
	"github.com/arloliu/ttfr/internal/pool"
)

// HeaderSize is the length of the block header.
const HeaderSize = endian.Uint32Size

// Codec compresses byte payloads and event collections into framed blocks.
type Codec struct {
	compression    format.CompressionType
	encoding       format.EventEncoding
	maxDecodedSize int
	block          compress.Codec
	engine         endian.EndianEngine
}

// New creates a Codec. Without options it produces JSON event documents in
// LZ4 blocks and accepts blocks up to DefaultMaxDecodedSize.
func New(opts ...Option) (*Codec, error) {
	c := &Codec{
		compression:    format.CompressionLZ4,
		encoding:       format.EncodingJSON,
		maxDecodedSize: DefaultMaxDecodedSize,
		engine:         endian.GetLittleEndianEngine(),
	}

	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	block, err := compress.GetCodec(c.compression)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidCompression, err)
	}
	c.block = block

	return c, nil
}

// Compression returns the configured block compression algorithm.
func (c *Codec) Compression() format.CompressionType {
	return c.compression
}

// Encoding returns the configured event document encoding.
func (c *Codec) Encoding() format.EventEncoding {
	return c.encoding
}

// MaxDecodedSize returns the largest declared block length Decompress accepts.
func (c *Codec) MaxDecodedSize() int {
	return c.maxDecodedSize
}

// Compress frames data as a compressed block. The result never aliases data.
func (c *Codec) Compress(data []byte) ([]byte, error) {
	if uint64(len(data)) > maxBlockSize {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrBlockTooLarge, len(data))
	}

	payload, err := c.block.Compress(data)
	if err != nil {
		return nil, fmt.Errorf("compress block: %w", err)
	}

	frame := make([]byte, 0, HeaderSize+len(payload))
	frame = c.engine.AppendUint32(frame, uint32(len(data)))

	return append(frame, payload...), nil
}

// CompressWithStats is Compress that also reports sizes and elapsed time.
func (c *Codec) CompressWithStats(data []byte) ([]byte, compress.CompressionStats, error) {
	start := time.Now()
	frame, err := c.Compress(data)
	stats := compress.CompressionStats{
		Algorithm:  c.compression,
		InputSize:  int64(len(data)),
		OutputSize: int64(len(frame)),
		Elapsed:    time.Since(start),
	}

	return frame, stats, err
}

// Decompress reverses Compress. All failures wrap errs.ErrFormat.
func (c *Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %w: %d bytes", errs.ErrFormat, errs.ErrTruncatedHeader, len(data))
	}

	size := c.engine.Uint32(data[:HeaderSize])
	if uint64(size) > uint64(c.maxDecodedSize) {
		return nil, fmt.Errorf("%w: %w: %d > %d", errs.ErrFormat, errs.ErrBlockTooLarge, size, c.maxDecodedSize)
	}

	out, err := c.block.DecompressSize(data[HeaderSize:], int(size))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrFormat, err)
	}
	if len(out) != int(size) {
		return nil, fmt.Errorf("%w: %w: got %d, header %d", errs.ErrFormat, errs.ErrLengthMismatch, len(out), size)
	}

	return out, nil
}

// CompressEvents serializes events with the configured encoding and compresses the document.
// An event whose Msg is not valid UTF-8 yields an error wrapping errs.ErrSchema.
func (c *Codec) CompressEvents(events []event.Event) ([]byte, error) {
	data, _, err := c.CompressEventsWithStats(events)
	return data, err
}

// CompressEventsWithStats is CompressEvents that also reports the serialized document
// size, the block size and the compression time.
func (c *Codec) CompressEventsWithStats(events []event.Event) ([]byte, compress.CompressionStats, error) {
	buf := pool.GetEventBuffer()
	defer pool.PutEventBuffer(buf)

	if err := event.Marshal(buf, events, c.encoding); err != nil {
		return nil, compress.CompressionStats{Algorithm: c.compression}, err
	}

	return c.CompressWithStats(buf.Bytes())
}

// DecompressEvents reverses CompressEvents.
//
// A malformed block yields an error wrapping errs.ErrFormat; a block whose content
// is not an event collection yields an error wrapping errs.ErrSchema.
func (c *Codec) DecompressEvents(data []byte) ([]event.Event, error) {
	raw, err := c.Decompress(data)
	if err != nil {
		return nil, err
	}

	return event.Unmarshal(raw, c.encoding)
}
