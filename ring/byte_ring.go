package ring

import (
	"fmt"
	"sync"

	"github.com/arloliu/ttfr/errs"
)

// ByteRing is a fixed-size circular byte buffer. New writes overwrite the oldest
// bytes once the buffer is full.
//
// All methods are safe for concurrent use.
type ByteRing struct {
	mu   sync.Mutex
	data []byte
	// cursor is the next position to write (0 to len(data)-1).
	cursor int
	// written is the total number of bytes ever pushed.
	written uint64
}

// NewByteRing creates a zero-filled ring of capacity bytes.
// A capacity below 1 returns an error wrapping errs.ErrInvalidCapacity.
func NewByteRing(capacity int) (*ByteRing, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: byte ring capacity %d", errs.ErrInvalidCapacity, capacity)
	}

	return &ByteRing{data: make([]byte, capacity)}, nil
}

// Push writes p at the cursor, wrapping at the end of the buffer, and advances the
// cursor by len(p) modulo the capacity. When p is longer than the buffer only its
// trailing capacity bytes survive, exactly as if p had been written byte by byte.
func (r *ByteRing) Push(p []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := len(p)
	capacity := len(r.data)
	end := (r.cursor + total%capacity) % capacity

	pos := r.cursor
	if len(p) > capacity {
		skip := len(p) - capacity
		pos = (r.cursor + skip) % capacity
		p = p[skip:]
	}

	for len(p) > 0 {
		n := copy(r.data[pos:], p)
		p = p[n:]
		pos = (pos + n) % capacity
	}

	r.cursor = end
	r.written += uint64(total)
}

// Write implements io.Writer. It never fails.
func (r *ByteRing) Write(p []byte) (int, error) {
	r.Push(p)
	return len(p), nil
}

// Snapshot returns a new slice of Cap() bytes holding the buffer rotated so that
// index 0 is the oldest byte and the last index is the most recently written one.
// Positions never written hold zero.
func (r *ByteRing) Snapshot() []byte {
	return r.AppendSnapshot(make([]byte, 0, r.Cap()))
}

// AppendSnapshot appends the rotated buffer contents to dst and returns the
// extended slice.
func (r *ByteRing) AppendSnapshot(dst []byte) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	dst = append(dst, r.data[r.cursor:]...)

	return append(dst, r.data[:r.cursor]...)
}

// Cap returns the buffer size in bytes.
func (r *ByteRing) Cap() int {
	return len(r.data)
}

// Written returns the total number of bytes pushed since creation or the last Reset.
func (r *ByteRing) Written() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.written
}

// Reset zeroes the buffer and rewinds the cursor.
func (r *ByteRing) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.data)
	r.cursor = 0
	r.written = 0
}
