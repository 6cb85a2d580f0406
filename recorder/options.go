package recorder

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/ttfr/clock"
	"github.com/arloliu/ttfr/codec"
	"github.com/arloliu/ttfr/errs"
	"github.com/arloliu/ttfr/internal/options"
	"github.com/arloliu/ttfr/ring"
	"github.com/arloliu/ttfr/trigger"
)

// DefaultSlots is the event ring capacity used without WithSlots: a 16MiB budget
// at DefaultSlotBytes per event.
var DefaultSlots = ring.SlotsForBudget(16<<20, ring.DefaultSlotBytes)

// HeartbeatMessage is the message Run ingests on every tick.
const HeartbeatMessage = "msg=heartbeat"

type config struct {
	slots         int
	rawBytes      int
	clock         clock.Clock
	logger        *slog.Logger
	codec         *codec.Codec
	detector      trigger.Detector
	windowSeconds uint64
	namer         *trigger.Namer
}

// Option configures a Recorder.
type Option = options.Option[*config]

// WithSlots sets the event ring capacity. slots must be at least 1.
func WithSlots(slots int) Option {
	return options.New(func(c *config) error {
		if slots < 1 {
			return fmt.Errorf("%w: %d slots", errs.ErrInvalidCapacity, slots)
		}
		c.slots = slots

		return nil
	})
}

// WithRawBytes enables the raw byte ring with the given capacity. Zero disables it,
// which is the default.
func WithRawBytes(n int) Option {
	return options.New(func(c *config) error {
		if n < 0 {
			return fmt.Errorf("%w: %d raw bytes", errs.ErrInvalidCapacity, n)
		}
		c.rawBytes = n

		return nil
	})
}

// WithClock sets the time source. Default is clock.Real().
func WithClock(clk clock.Clock) Option {
	return options.NoError(func(c *config) {
		if clk != nil {
			c.clock = clk
		}
	})
}

// WithLogger sets the logger. Default discards all records.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithCodec sets the artifact codec. Default is codec.Default().
func WithCodec(cd *codec.Codec) Option {
	return options.NoError(func(c *config) {
		if cd != nil {
			c.codec = cd
		}
	})
}

// WithDetector installs a detector consulted for every ingested message.
func WithDetector(d trigger.Detector) Option {
	return options.NoError(func(c *config) {
		c.detector = d
	})
}

// WithWindow limits flushes to events captured within the last seconds.
// Zero flushes every retained event, which is the default.
func WithWindow(seconds uint64) Option {
	return options.NoError(func(c *config) {
		c.windowSeconds = seconds
	})
}

// WithNamer shares an artifact Namer, for example between recorders writing to
// the same directory.
func WithNamer(n *trigger.Namer) Option {
	return options.NoError(func(c *config) {
		if n != nil {
			c.namer = n
		}
	})
}
