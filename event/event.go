package event

import (
	"strings"

	"github.com/arloliu/ttfr/endian"
)

// TimestampSize is the length of the timestamp prefix of an event blob.
const TimestampSize = endian.Uint64Size

// Event is one captured event: a millisecond timestamp and a message.
type Event struct {
	Ts  uint64 `json:"ts" cbor:"ts"`
	Msg string `json:"msg" cbor:"msg"`
}

var engine = endian.GetLittleEndianEngine()

// EncodeBlob builds an event blob: tsMs as 8 little-endian bytes followed by msg.
// The result is freshly allocated.
func EncodeBlob(tsMs int64, msg []byte) []byte {
	blob := make([]byte, 0, TimestampSize+len(msg))
	blob = engine.AppendUint64(blob, uint64(tsMs))

	return append(blob, msg...)
}

// BlobTimestamp returns the millisecond timestamp embedded in blob.
// ok is false when blob is shorter than TimestampSize.
func BlobTimestamp(blob []byte) (tsMs int64, ok bool) {
	if len(blob) < TimestampSize {
		return 0, false
	}

	return int64(engine.Uint64(blob[:TimestampSize])), true
}

// FromBlob converts an event blob into an Event. Invalid UTF-8 in the message is
// replaced with U+FFFD so the event always serializes to a valid document.
// ok is false when blob is shorter than TimestampSize.
func FromBlob(blob []byte) (Event, bool) {
	ts, ok := BlobTimestamp(blob)
	if !ok {
		return Event{}, false
	}

	return Event{
		Ts:  uint64(ts),
		Msg: strings.ToValidUTF8(string(blob[TimestampSize:]), "�"),
	}, true
}

// FromBlobs converts blobs in order, skipping blobs too short to carry a timestamp.
func FromBlobs(blobs [][]byte) []Event {
	events := make([]Event, 0, len(blobs))
	for _, blob := range blobs {
		if ev, ok := FromBlob(blob); ok {
			events = append(events, ev)
		}
	}

	return events
}
