package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/ttfr/clock"
	"github.com/arloliu/ttfr/codec"
	"github.com/arloliu/ttfr/compress"
	"github.com/arloliu/ttfr/errs"
	"github.com/arloliu/ttfr/event"
	"github.com/arloliu/ttfr/internal/hash"
	"github.com/arloliu/ttfr/internal/logging"
	"github.com/arloliu/ttfr/internal/options"
	"github.com/arloliu/ttfr/internal/pool"
	"github.com/arloliu/ttfr/ring"
	"github.com/arloliu/ttfr/trigger"
)

// Artifact describes one flushed snapshot.
type Artifact struct {
	Name   string
	Reason string
	// Data is the compressed block handed to the Sink.
	Data []byte
	// Events is the number of events in the snapshot; zero for raw flushes.
	Events   int
	Checksum uint64
	Stats    compress.CompressionStats
	Time     time.Time
}

// Stats is a point-in-time view of recorder counters.
type Stats struct {
	Ingested    uint64
	Retained    int
	Capacity    int
	Dropped     uint64
	RawWritten  uint64
	Flushes     uint64
	FlushErrors uint64
}

// Recorder is a bounded in-memory event recorder.
type Recorder struct {
	mu    sync.Mutex
	blobs *ring.BlobRing
	raw   *ring.ByteRing

	sink          Sink
	codec         *codec.Codec
	clock         clock.Clock
	logger        *slog.Logger
	detector      trigger.Detector
	namer         *trigger.Namer
	windowSeconds uint64

	ingested    atomic.Uint64
	flushes     atomic.Uint64
	flushErrors atomic.Uint64
}

// New creates a Recorder that writes artifacts to sink.
func New(sink Sink, opts ...Option) (*Recorder, error) {
	if sink == nil {
		return nil, fmt.Errorf("%w: nil sink", errs.ErrInvalidConfig)
	}

	cfg := &config{
		slots:  DefaultSlots,
		clock:  clock.Real(),
		logger: logging.Discard(),
		codec:  codec.Default(),
		namer:  trigger.NewNamer(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	blobs, err := ring.NewBlobRing(cfg.slots)
	if err != nil {
		return nil, err
	}

	var raw *ring.ByteRing
	if cfg.rawBytes > 0 {
		raw, err = ring.NewByteRing(cfg.rawBytes)
		if err != nil {
			return nil, err
		}
	}

	return &Recorder{
		blobs:         blobs,
		raw:           raw,
		sink:          sink,
		codec:         cfg.codec,
		clock:         cfg.clock,
		logger:        cfg.logger,
		detector:      cfg.detector,
		namer:         cfg.namer,
		windowSeconds: cfg.windowSeconds,
	}, nil
}

// Ingest records msg with the current time. When a detector is installed and
// fires for msg, Ingest flushes with the detector's reason and returns the flush
// error, if any. The message is recorded even when the flush fails.
func (r *Recorder) Ingest(ctx context.Context, msg []byte) error {
	blob := event.EncodeBlob(r.clock.Now().UnixMilli(), msg)

	r.mu.Lock()
	r.blobs.Push(blob)
	r.mu.Unlock()

	if r.raw != nil {
		line := make([]byte, len(msg)+1)
		copy(line, msg)
		line[len(msg)] = '\n'
		r.raw.Push(line)
	}
	r.ingested.Add(1)

	if r.detector == nil {
		return nil
	}
	reason, ok := r.detector.Detect(msg)
	if !ok {
		return nil
	}

	r.logger.Warn("detector triggered flush", "reason", reason)
	_, err := r.Flush(ctx, reason)

	return err
}

// Flush snapshots the event ring, compresses it and writes it to the sink under a
// name derived from reason and the current time. With a window configured only
// events from the last window seconds are included.
func (r *Recorder) Flush(ctx context.Context, reason string) (Artifact, error) {
	now := r.clock.Now()

	r.mu.Lock()
	var blobs [][]byte
	if r.windowSeconds > 0 {
		blobs = r.blobs.DumpLastSeconds(r.windowSeconds, now.UnixMilli())
	} else {
		blobs = r.blobs.Dump()
	}
	r.mu.Unlock()

	events := event.FromBlobs(blobs)
	data, stats, err := r.codec.CompressEventsWithStats(events)
	if err != nil {
		r.flushErrors.Add(1)
		r.logger.Error("compress snapshot", "reason", reason, "error", err)

		return Artifact{}, fmt.Errorf("compress snapshot: %w", err)
	}

	artifact := Artifact{
		Name:     r.namer.Name(reason, now.UTC()),
		Reason:   reason,
		Data:     data,
		Events:   len(events),
		Checksum: hash.Checksum(data),
		Stats:    stats,
		Time:     now,
	}
	if err := r.write(ctx, artifact); err != nil {
		return Artifact{}, err
	}

	return artifact, nil
}

// FlushRaw compresses the raw byte ring and writes it to the sink. The artifact
// name carries reason followed by "raw". It returns errs.ErrRawDisabled when the
// recorder has no raw ring.
func (r *Recorder) FlushRaw(ctx context.Context, reason string) (Artifact, error) {
	if r.raw == nil {
		return Artifact{}, errs.ErrRawDisabled
	}

	now := r.clock.Now()

	buf := pool.GetSnapshotBuffer()
	defer pool.PutSnapshotBuffer(buf)
	buf.Grow(r.raw.Cap())
	buf.B = r.raw.AppendSnapshot(buf.B)

	data, stats, err := r.codec.CompressWithStats(buf.Bytes())
	if err != nil {
		r.flushErrors.Add(1)
		r.logger.Error("compress raw snapshot", "reason", reason, "error", err)

		return Artifact{}, fmt.Errorf("compress raw snapshot: %w", err)
	}

	artifact := Artifact{
		Name:     r.namer.Name(reason+" raw", now.UTC()),
		Reason:   reason,
		Data:     data,
		Checksum: hash.Checksum(data),
		Stats:    stats,
		Time:     now,
	}
	if err := r.write(ctx, artifact); err != nil {
		return Artifact{}, err
	}

	return artifact, nil
}

func (r *Recorder) write(ctx context.Context, a Artifact) error {
	if err := r.sink.Write(ctx, a.Name, a.Data); err != nil {
		r.flushErrors.Add(1)
		r.logger.Error("write artifact", "name", a.Name, "reason", a.Reason, "error", err)

		return fmt.Errorf("write artifact %s: %w", a.Name, err)
	}
	r.flushes.Add(1)

	r.logger.Info("snapshot flushed",
		"name", a.Name,
		"reason", a.Reason,
		"events", a.Events,
		"bytes", len(a.Data),
		"document_bytes", a.Stats.InputSize,
		"ratio", a.Stats.Ratio(),
		"checksum", hash.Hex(a.Checksum),
	)

	return nil
}

// Run ingests HeartbeatMessage every interval until ctx is cancelled, so that a
// snapshot always shows the recorder was alive. Ingest errors are logged and do not
// stop the loop. Run returns nil when ctx is cancelled.
func (r *Recorder) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("%w: heartbeat interval %s", errs.ErrInvalidConfig, interval)
	}

	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info("recorder loop active", "interval", interval)
	defer r.logger.Info("recorder loop ended")

	heartbeat := []byte(HeartbeatMessage)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := r.Ingest(ctx, heartbeat); err != nil {
				r.logger.Error("heartbeat", "error", err)
			}
		}
	}
}

// Stats returns the current counters.
func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	retained := r.blobs.Len()
	capacity := r.blobs.Cap()
	dropped := r.blobs.Dropped()
	r.mu.Unlock()

	var rawWritten uint64
	if r.raw != nil {
		rawWritten = r.raw.Written()
	}

	return Stats{
		Ingested:    r.ingested.Load(),
		Retained:    retained,
		Capacity:    capacity,
		Dropped:     dropped,
		RawWritten:  rawWritten,
		Flushes:     r.flushes.Load(),
		FlushErrors: r.flushErrors.Load(),
	}
}
