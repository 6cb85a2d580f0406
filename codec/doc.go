// Package codec turns event snapshots into self-describing compressed blocks and back.
//
// # Block Format
//
// Every block produced by a Codec is framed as
//
//	[4-byte little-endian uncompressed length][compressed payload]
//
// With the default LZ4 algorithm the frame is byte-compatible with the LZ4
// "block with prepended size" layout, so artifacts can be read by any LZ4 block
// decoder that understands that convention. Zstd, S2 and uncompressed payloads
// are available through WithCompression; the algorithm is not recorded in the
// block, so readers must be configured the same way as the writer.
//
// # Errors
//
// Decompress fails with an error wrapping errs.ErrFormat when the header is
// truncated, the declared length exceeds the decoder's limit, the payload is
// corrupt, or the payload decodes to a different length than declared. The
// declared length is checked against the limit before any output buffer is
// allocated.
//
// DecompressEvents additionally fails with errs.ErrSchema when the block is
// well formed but its content is not an event collection.
//
// # Usage
//
//	data, err := codec.CompressEvents([]event.Event{{Ts: 1, Msg: "boot"}})
//	if err != nil {
//	    return err
//	}
//	events, err := codec.DecompressEvents(data)
//
// A Codec is immutable after construction and safe for concurrent use.
package codec
