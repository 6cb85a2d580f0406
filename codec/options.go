package codec

import (
	"fmt"

	"github.com/arloliu/ttfr/errs"
	"github.com/arloliu/ttfr/format"
	"github.com/arloliu/ttfr/internal/options"
)

// DefaultMaxDecodedSize is the largest declared block length Decompress accepts
// unless WithMaxDecodedSize says otherwise.
const DefaultMaxDecodedSize = 128 << 20

// maxBlockSize is the largest length the 4-byte header can declare.
const maxBlockSize = 1<<32 - 1

// Option configures a Codec.
type Option = options.Option[*Codec]

// WithCompression selects the block compression algorithm.
// Default is format.CompressionLZ4.
func WithCompression(comp format.CompressionType) Option {
	return options.New(func(c *Codec) error {
		switch comp {
		case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
			c.compression = comp
			return nil
		default:
			return fmt.Errorf("%w: %s", errs.ErrInvalidCompression, comp)
		}
	})
}

// WithEventEncoding selects how event collections are serialized before compression.
// Default is format.EncodingJSON.
func WithEventEncoding(enc format.EventEncoding) Option {
	return options.New(func(c *Codec) error {
		switch enc {
		case format.EncodingJSON, format.EncodingCBOR:
			c.encoding = enc
			return nil
		default:
			return fmt.Errorf("%w: %s", errs.ErrInvalidEncoding, enc)
		}
	})
}

// WithMaxDecodedSize limits the declared block length Decompress will allocate for.
// size must be between 1 and 4GiB-1. Default is DefaultMaxDecodedSize.
func WithMaxDecodedSize(size int) Option {
	return options.New(func(c *Codec) error {
		if size < 1 || uint64(size) > maxBlockSize {
			return fmt.Errorf("%w: max decoded size %d out of range", errs.ErrInvalidConfig, size)
		}
		c.maxDecodedSize = size

		return nil
	})
}
