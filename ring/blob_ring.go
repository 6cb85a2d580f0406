package ring

import (
	"fmt"

	"github.com/arloliu/ttfr/errs"
	"github.com/arloliu/ttfr/event"
)

// DefaultSlotBytes is the per-event size estimate used to turn a byte budget into
// a slot count.
const DefaultSlotBytes = 64

// BlobRing is a fixed-capacity ring of opaque event blobs.
//
// The zero value is not usable; create rings with NewBlobRing.
type BlobRing struct {
	slots [][]byte
	// head is the slot the next Push writes to.
	head int
	// count is the number of occupied slots, saturating at len(slots).
	count   int
	dropped uint64
}

// NewBlobRing creates a ring holding at most capacity blobs.
// A capacity below 1 returns an error wrapping errs.ErrInvalidCapacity.
func NewBlobRing(capacity int) (*BlobRing, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: blob ring capacity %d", errs.ErrInvalidCapacity, capacity)
	}

	return &BlobRing{slots: make([][]byte, capacity)}, nil
}

// SlotsForBudget converts a memory budget into a slot count, assuming each event
// occupies slotBytes bytes (DefaultSlotBytes when slotBytes < 1). The result is at
// least 1.
func SlotsForBudget(budgetBytes, slotBytes int) int {
	if slotBytes < 1 {
		slotBytes = DefaultSlotBytes
	}

	return max(budgetBytes/slotBytes, 1)
}

// Push stores blob in the next slot, evicting the oldest blob when the ring is full.
// The ring keeps blob itself; callers must not modify it afterwards.
func (r *BlobRing) Push(blob []byte) {
	if r.count == len(r.slots) {
		r.dropped++
	} else {
		r.count++
	}

	r.slots[r.head] = blob
	r.head = (r.head + 1) % len(r.slots)
}

// Dump returns copies of the retained blobs, oldest first.
// The result is empty, not nil, when the ring holds nothing.
func (r *BlobRing) Dump() [][]byte {
	out := make([][]byte, 0, r.count)
	r.each(func(blob []byte) {
		out = append(out, clone(blob))
	})

	return out
}

// DumpLastSeconds returns copies of the retained blobs whose timestamp lies no more
// than seconds before nowMs, oldest first. Blobs too short to carry a timestamp are
// skipped. Blobs stamped after nowMs are included.
func (r *BlobRing) DumpLastSeconds(seconds uint64, nowMs int64) [][]byte {
	window := windowMillis(seconds)

	out := make([][]byte, 0, r.count)
	r.each(func(blob []byte) {
		ts, ok := event.BlobTimestamp(blob)
		if !ok {
			return
		}
		if age(nowMs, ts) <= window {
			out = append(out, clone(blob))
		}
	})

	return out
}

// Len returns the number of retained blobs.
func (r *BlobRing) Len() int {
	return r.count
}

// Cap returns the slot count.
func (r *BlobRing) Cap() int {
	return len(r.slots)
}

// Dropped returns how many blobs have been evicted since creation or the last Reset.
func (r *BlobRing) Dropped() uint64 {
	return r.dropped
}

// Reset empties the ring and releases the retained blobs.
func (r *BlobRing) Reset() {
	clear(r.slots)
	r.head = 0
	r.count = 0
	r.dropped = 0
}

// each visits the occupied slots oldest first.
func (r *BlobRing) each(fn func(blob []byte)) {
	start := (r.head - r.count + len(r.slots)) % len(r.slots)
	for i := range r.count {
		fn(r.slots[(start+i)%len(r.slots)])
	}
}

// windowMillis converts seconds to milliseconds, saturating instead of overflowing.
func windowMillis(seconds uint64) uint64 {
	const maxSeconds = ^uint64(0) / 1000
	if seconds > maxSeconds {
		return ^uint64(0)
	}

	return seconds * 1000
}

// age returns nowMs - ts, or 0 when ts is in the future. The difference is computed
// in uint64 so extreme timestamps cannot overflow.
func age(nowMs, ts int64) uint64 {
	if ts >= nowMs {
		return 0
	}

	return uint64(nowMs) - uint64(ts)
}

func clone(b []byte) []byte {
	if b == nil {
		return []byte{}
	}

	return append(make([]byte, 0, len(b)), b...)
}
