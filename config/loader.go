package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/ttfr/errs"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TTFR_"

// Load reads the file at path on top of Default, applies environment overrides
// and validates the result. The format follows the extension: .toml, .yaml or .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("%w: decode TOML: %w", errs.ErrInvalidConfig, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: decode YAML: %w", errs.ErrInvalidConfig, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config file extension %q", errs.ErrInvalidConfig, filepath.Ext(path))
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromEnv returns Default with environment overrides applied and validated.
func LoadFromEnv() (*Config, error) {
	cfg := Default()
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides replaces settings with the TTFR_* variables that are set.
// A variable that cannot be parsed returns an error wrapping errs.ErrInvalidConfig.
func (c *Config) ApplyEnvOverrides() error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"SLOTS", &c.Buffer.Slots},
		{"BUDGET_BYTES", &c.Buffer.BudgetBytes},
		{"SLOT_BYTES", &c.Buffer.SlotBytes},
		{"RAW_BYTES", &c.Buffer.RawBytes},
		{"MAX_DECODED_SIZE", &c.Codec.MaxDecodedSize},
	}
	for _, v := range ints {
		s, ok := lookupEnv(v.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return envError(v.name, s, err)
		}
		*v.dst = n
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{"COMPRESSION", &c.Codec.Compression},
		{"ENCODING", &c.Codec.Encoding},
		{"OUTPUT_DIR", &c.Flush.OutputDir},
		{"TRIGGER_DIR", &c.Trigger.Dir},
		{"LOG_LEVEL", &c.Logging.Level},
		{"LOG_FORMAT", &c.Logging.Format},
	}
	for _, v := range strs {
		if s, ok := lookupEnv(v.name); ok {
			*v.dst = s
		}
	}

	if s, ok := lookupEnv("WINDOW_SECONDS"); ok {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return envError("WINDOW_SECONDS", s, err)
		}
		c.Flush.WindowSeconds = n
	}
	if s, ok := lookupEnv("HEARTBEAT"); ok {
		d, err := time.ParseDuration(s)
		if err != nil {
			return envError("HEARTBEAT", s, err)
		}
		c.Flush.Heartbeat = d
	}
	if s, ok := lookupEnv("KEYWORDS"); ok {
		c.Trigger.Keywords = splitList(s)
	}

	return nil
}

func lookupEnv(name string) (string, bool) {
	s, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || s == "" {
		return "", false
	}

	return strings.TrimSpace(s), true
}

func envError(name, value string, err error) error {
	return fmt.Errorf("%w: %s%s=%q: %w", errs.ErrInvalidConfig, EnvPrefix, name, value, err)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}

	return out
}
