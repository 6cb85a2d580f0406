// Package compress provides the block compression algorithms used to serialize
// ttfr snapshots.
//
// A flush artifact is small, written once, and read rarely (usually during an
// incident review), so the default algorithm is LZ4: compression is cheap enough
// to run inside the trigger path and decompression is fast. The other algorithms
// trade CPU for ratio:
//   - None: no compression (debugging, already-compressed payloads)
//   - LZ4: fastest, moderate ratio (default)
//   - S2: balanced speed and ratio
//   - Zstd: best ratio, slower
//
// # Interfaces
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	    DecompressSize(data []byte, size int) ([]byte, error)
//	}
//
// Decompress is used when the decoded length is unknown. DecompressSize is used by
// the framed codec in package codec, which stores the decoded length in the block
// header: implementations allocate at most size bytes and report an error when the
// payload does not decode to exactly size bytes.
//
// # Choosing a Codec
//
//	c, err := compress.GetCodec(format.CompressionLZ4)
//	if err != nil {
//	    return err
//	}
//	compressed, err := c.Compress(snapshot)
//
// # Thread Safety
//
// All codecs in this package are stateless values backed by pooled encoders and
// decoders, and are safe for concurrent use.
package compress
