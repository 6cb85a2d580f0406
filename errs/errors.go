// Package errs defines the sentinel errors returned by ttfr packages.
//
// Callers distinguish failure kinds with errors.Is:
//
//	events, err := codec.DecompressEvents(data)
//	switch {
//	case errors.Is(err, errs.ErrFormat):
//	    // not a valid compressed block
//	case errors.Is(err, errs.ErrSchema):
//	    // block decompressed, content is not an event collection
//	}
package errs

import "errors"

var (
	// ErrFormat reports malformed or corrupt compressed input: a truncated header,
	// a declared length that is out of range, a corrupt payload, or a decoded length
	// that does not match the header.
	ErrFormat = errors.New("invalid compressed block format")

	// ErrSchema reports a payload that decompressed correctly but is not a valid
	// event collection.
	ErrSchema = errors.New("invalid event document")

	// ErrInvalidCapacity is returned when a ring buffer is constructed with a capacity below 1.
	ErrInvalidCapacity = errors.New("capacity must be at least 1")

	ErrInvalidCompression = errors.New("invalid compression type")
	ErrInvalidEncoding    = errors.New("invalid event encoding")
	ErrInvalidConfig      = errors.New("invalid configuration")

	// ErrRawDisabled is returned by raw flushes on a recorder built without a raw ring.
	ErrRawDisabled = errors.New("raw byte ring disabled")

	// ErrTruncatedHeader is wrapped together with ErrFormat when the input is shorter than
	// the block header.
	ErrTruncatedHeader = errors.New("truncated block header")

	// ErrLengthMismatch is wrapped together with ErrFormat when the decoded payload length
	// differs from the length declared in the block header.
	ErrLengthMismatch = errors.New("decoded length mismatch")

	// ErrBlockTooLarge is wrapped together with ErrFormat when the declared length exceeds
	// the decoder's limit.
	ErrBlockTooLarge = errors.New("declared block length exceeds limit")
)
