// Package ttfr is a bounded-memory flight recorder for security telemetry.
//
// ttfr keeps the most recent events in memory and, when a trigger fires, turns
// them into a compact artifact with a deterministic, reason-tagged name. It is
// meant for hosts such as malware sandboxes and intrusion sensors where full
// logging costs too much but recent history must be available on demand.
//
// # Core Features
//
//   - Fixed-capacity event ring with oldest-first dumps and recency windows
//   - Lock-protected raw byte ring with rotated snapshots
//   - Framed LZ4 blocks (Zstd, S2 or uncompressed on request) with a size header
//   - JSON or deterministic CBOR event documents, schema-checked on decode
//   - Artifact names of the form flush_<reason>_<YYYY-MM-DD_HH-MM-SS>.ttfr
//
// # Basic Usage
//
// Compressing and restoring a snapshot:
//
//	import "github.com/arloliu/ttfr"
//
//	data, err := ttfr.CompressEvents([]ttfr.Event{
//	    {Ts: 1700000000000, Msg: "proc=4242 op=connect"},
//	})
//	if err != nil {
//	    return err
//	}
//	events, err := ttfr.DecompressEvents(data)
//	switch {
//	case errors.Is(err, errs.ErrFormat):
//	    // not a valid block
//	case errors.Is(err, errs.ErrSchema):
//	    // block is fine, content is not an event collection
//	}
//
// Running a recorder:
//
//	rec, err := ttfr.NewRecorder(sink, recorder.WithWindow(30))
//	go rec.Run(ctx, 100*time.Millisecond)
//	rec.Ingest(ctx, []byte("proc=4242 op=open path=/etc/shadow"))
//	artifact, err := rec.Flush(ctx, "manual")
//
// # Package Structure
//
// This package provides convenient top-level wrappers. The ring, codec, trigger
// and recorder packages expose the full API.
package ttfr

import (
	"time"

	"github.com/arloliu/ttfr/codec"
	"github.com/arloliu/ttfr/event"
	"github.com/arloliu/ttfr/recorder"
	"github.com/arloliu/ttfr/ring"
	"github.com/arloliu/ttfr/trigger"
)

// Event is one captured event: a millisecond timestamp and a message.
type Event = event.Event

// NewBlobRing creates an event ring holding at most capacity blobs.
func NewBlobRing(capacity int) (*ring.BlobRing, error) {
	return ring.NewBlobRing(capacity)
}

// NewBlobRingForBudget creates an event ring sized for budgetBytes of memory at
// ring.DefaultSlotBytes per event.
func NewBlobRingForBudget(budgetBytes int) (*ring.BlobRing, error) {
	return ring.NewBlobRing(ring.SlotsForBudget(budgetBytes, ring.DefaultSlotBytes))
}

// NewByteRing creates a raw byte ring of capacity bytes.
func NewByteRing(capacity int) (*ring.ByteRing, error) {
	return ring.NewByteRing(capacity)
}

// EncodeBlob builds an event blob carrying tsMs as its timestamp prefix.
func EncodeBlob(tsMs int64, msg []byte) []byte {
	return event.EncodeBlob(tsMs, msg)
}

// Compress frames data as an LZ4 block with a 4-byte length header.
func Compress(data []byte) ([]byte, error) {
	return codec.Compress(data)
}

// Decompress reverses Compress. Failures wrap errs.ErrFormat.
func Decompress(data []byte) ([]byte, error) {
	return codec.Decompress(data)
}

// CompressEvents serializes events as a JSON array and compresses it.
func CompressEvents(events []Event) ([]byte, error) {
	return codec.CompressEvents(events)
}

// DecompressEvents reverses CompressEvents. Malformed blocks wrap errs.ErrFormat;
// content that is not an event collection wraps errs.ErrSchema.
func DecompressEvents(data []byte) ([]Event, error) {
	return codec.DecompressEvents(data)
}

// NameFor returns the artifact name for a flush with reason at now.
func NameFor(reason string, now time.Time) string {
	return trigger.NameFor(reason, now)
}

// NewRecorder creates a recorder writing artifacts to sink.
func NewRecorder(sink recorder.Sink, opts ...recorder.Option) (*recorder.Recorder, error) {
	return recorder.New(sink, opts...)
}
