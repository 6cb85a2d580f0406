// Package event defines the event record captured by ttfr and its encodings.
//
// Two representations exist:
//
//   - Event blobs: the opaque byte slices stored in a ring.BlobRing. By convention
//     the first 8 bytes hold a little-endian millisecond timestamp and the rest is
//     the message. EncodeBlob and BlobTimestamp implement the convention; the ring
//     itself never enforces it.
//   - Event documents: an ordered collection of Event values serialized as a JSON
//     array (the default, {"ts": <uint64>, "msg": <string>} per element) or as a
//     deterministic CBOR array. Documents are what package codec compresses into a
//     flush artifact.
//
// Decoding a document that is not a valid event collection returns an error
// wrapping errs.ErrSchema.
package event
