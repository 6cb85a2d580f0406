// Package ring provides the two bounded buffers that hold recent history in memory.
//
// BlobRing keeps the most recent N event blobs in fixed slots. Pushing into a full
// ring evicts the oldest blob. Dump returns the retained blobs oldest-first and
// DumpLastSeconds filters them by the little-endian millisecond timestamp that
// producers prefix to each blob (see package event). BlobRing is not synchronized:
// callers must serialize Push and Dump, typically by owning the ring from a single
// goroutine or guarding it with a mutex as recorder.Recorder does.
//
// ByteRing is a fixed-size circular byte store for unframed raw data. Writes wrap
// around and overwrite the oldest bytes. Snapshot returns a freshly allocated copy
// rotated so that index 0 is the oldest byte. ByteRing is safe for concurrent use;
// each Push is applied atomically with respect to other pushes and snapshots.
package ring
