package config

import (
	"fmt"
	"strings"

	"github.com/arloliu/ttfr/errs"
	"github.com/arloliu/ttfr/format"
	"github.com/arloliu/ttfr/internal/logging"
)

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every invalid setting found by Validate.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}

	return strings.Join(msgs, "; ")
}

// Validate checks every setting. The returned error wraps errs.ErrInvalidConfig and
// a ValidationErrors listing each problem.
func (c *Config) Validate() error {
	var verrs ValidationErrors
	add := func(field, msg string, args ...any) {
		verrs = append(verrs, ValidationError{Field: field, Message: fmt.Sprintf(msg, args...)})
	}

	if c.Buffer.Slots < 0 {
		add("buffer.slots", "must not be negative, got %d", c.Buffer.Slots)
	}
	if c.Buffer.Slots == 0 && c.Buffer.BudgetBytes < 1 {
		add("buffer.budget_bytes", "must be positive when buffer.slots is unset, got %d", c.Buffer.BudgetBytes)
	}
	if c.Buffer.SlotBytes < 0 {
		add("buffer.slot_bytes", "must not be negative, got %d", c.Buffer.SlotBytes)
	}
	if c.Buffer.RawBytes < 0 {
		add("buffer.raw_bytes", "must not be negative, got %d", c.Buffer.RawBytes)
	}

	if _, err := format.ParseCompressionType(c.Codec.Compression); err != nil {
		add("codec.compression", "%v", err)
	}
	if _, err := format.ParseEventEncoding(c.Codec.Encoding); err != nil {
		add("codec.encoding", "%v", err)
	}
	if c.Codec.MaxDecodedSize < 1 {
		add("codec.max_decoded_size", "must be positive, got %d", c.Codec.MaxDecodedSize)
	}

	if c.Flush.OutputDir == "" {
		add("flush.output_dir", "must not be empty")
	}
	if c.Flush.Heartbeat < 0 {
		add("flush.heartbeat", "must not be negative, got %s", c.Flush.Heartbeat)
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		add("logging.level", "%v", err)
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		add("logging.format", "%v", err)
	}

	if len(verrs) > 0 {
		return fmt.Errorf("%w: %w", errs.ErrInvalidConfig, verrs)
	}

	return nil
}

// Compression returns the parsed codec.compression setting.
func (c *Config) Compression() (format.CompressionType, error) {
	return format.ParseCompressionType(c.Codec.Compression)
}

// Encoding returns the parsed codec.encoding setting.
func (c *Config) Encoding() (format.EventEncoding, error) {
	return format.ParseEventEncoding(c.Codec.Encoding)
}
