// Package config holds the settings of a ttfr recorder and loads them from a
// YAML or TOML file, with TTFR_* environment variables taking precedence.
package config

import (
	"time"

	"github.com/arloliu/ttfr/ring"
)

// Config is the complete recorder configuration.
type Config struct {
	Buffer  BufferConfig  `toml:"buffer" yaml:"buffer"`
	Codec   CodecConfig   `toml:"codec" yaml:"codec"`
	Flush   FlushConfig   `toml:"flush" yaml:"flush"`
	Trigger TriggerConfig `toml:"trigger" yaml:"trigger"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// BufferConfig sizes the in-memory rings.
type BufferConfig struct {
	// Slots is the event ring capacity. Zero derives it from BudgetBytes.
	Slots int `toml:"slots" yaml:"slots"`
	// BudgetBytes is the memory budget for the event ring when Slots is zero.
	BudgetBytes int `toml:"budget_bytes" yaml:"budget_bytes"`
	// SlotBytes is the assumed size of one event when deriving Slots.
	SlotBytes int `toml:"slot_bytes" yaml:"slot_bytes"`
	// RawBytes is the raw byte ring capacity. Zero disables the raw ring.
	RawBytes int `toml:"raw_bytes" yaml:"raw_bytes"`
}

// CodecConfig selects how artifacts are encoded.
type CodecConfig struct {
	Compression    string `toml:"compression" yaml:"compression"`
	Encoding       string `toml:"encoding" yaml:"encoding"`
	MaxDecodedSize int    `toml:"max_decoded_size" yaml:"max_decoded_size"`
}

// FlushConfig controls snapshot contents and destination.
type FlushConfig struct {
	OutputDir string `toml:"output_dir" yaml:"output_dir"`
	// WindowSeconds limits flushes to recent events. Zero flushes everything retained.
	WindowSeconds uint64        `toml:"window_seconds" yaml:"window_seconds"`
	Heartbeat     time.Duration `toml:"heartbeat" yaml:"heartbeat"`
}

// TriggerConfig configures automatic flush triggers.
type TriggerConfig struct {
	// Dir is watched for trigger files. Empty disables the watcher.
	Dir      string   `toml:"dir" yaml:"dir"`
	Keywords []string `toml:"keywords" yaml:"keywords"`
}

// LoggingConfig configures the slog logger.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Buffer: BufferConfig{
			BudgetBytes: 16 << 20,
			SlotBytes:   ring.DefaultSlotBytes,
			RawBytes:    4 << 20,
		},
		Codec: CodecConfig{
			Compression:    "lz4",
			Encoding:       "json",
			MaxDecodedSize: 128 << 20,
		},
		Flush: FlushConfig{
			OutputDir: "snapshots",
			Heartbeat: 100 * time.Millisecond,
		},
		Trigger: TriggerConfig{
			Keywords: []string{"malware"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SlotCount returns the event ring capacity: Slots when set, otherwise the
// slot count that fits BudgetBytes.
func (c *Config) SlotCount() int {
	if c.Buffer.Slots > 0 {
		return c.Buffer.Slots
	}

	return ring.SlotsForBudget(c.Buffer.BudgetBytes, c.Buffer.SlotBytes)
}
