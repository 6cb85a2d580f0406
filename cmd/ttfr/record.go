package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/spf13/pflag"

	"github.com/arloliu/ttfr/codec"
	"github.com/arloliu/ttfr/config"
	"github.com/arloliu/ttfr/errs"
	"github.com/arloliu/ttfr/internal/logging"
	"github.com/arloliu/ttfr/recorder"
	"github.com/arloliu/ttfr/trigger"
)

// maxLineBytes bounds a single stdin event.
const maxLineBytes = 1 << 20

func runRecord(ctx context.Context, args []string, stdin io.Reader, stderr io.Writer) error {
	cfg, err := recordConfig(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	level, _ := logging.ParseLevel(cfg.Logging.Level)
	logFormat, _ := logging.ParseFormat(cfg.Logging.Format)
	logger := logging.New(stderr, level, logFormat, "recorder")

	comp, _ := cfg.Compression()
	enc, _ := cfg.Encoding()
	cd, err := codec.New(
		codec.WithCompression(comp),
		codec.WithEventEncoding(enc),
		codec.WithMaxDecodedSize(cfg.Codec.MaxDecodedSize),
	)
	if err != nil {
		return err
	}

	sink, err := newDirSink(cfg.Flush.OutputDir)
	if err != nil {
		return err
	}

	opts := []recorder.Option{
		recorder.WithSlots(cfg.SlotCount()),
		recorder.WithRawBytes(cfg.Buffer.RawBytes),
		recorder.WithCodec(cd),
		recorder.WithLogger(logger),
		recorder.WithWindow(cfg.Flush.WindowSeconds),
	}
	if len(cfg.Trigger.Keywords) > 0 {
		opts = append(opts, recorder.WithDetector(trigger.NewKeywordDetector(cfg.Trigger.Keywords...)))
	}
	rec, err := recorder.New(sink, opts...)
	if err != nil {
		return err
	}

	logger.Info("recording",
		"slots", cfg.SlotCount(),
		"raw_bytes", cfg.Buffer.RawBytes,
		"compression", comp.String(),
		"encoding", enc.String(),
		"output_dir", cfg.Flush.OutputDir,
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	flush := func(reason string) {
		if _, err := rec.Flush(ctx, reason); err != nil {
			logger.Error("flush failed", "reason", reason, "error", err)
		}
		if _, err := rec.FlushRaw(ctx, reason); err != nil && !errors.Is(err, errs.ErrRawDisabled) {
			logger.Error("raw flush failed", "reason", reason, "error", err)
		}
	}

	var wg sync.WaitGroup
	background := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				logger.Error(name+" stopped", "error", err)
			}
		}()
	}

	if cfg.Flush.Heartbeat > 0 {
		background("heartbeat", func() error {
			return rec.Run(ctx, cfg.Flush.Heartbeat)
		})
	}

	if cfg.Trigger.Dir != "" {
		watcher, err := trigger.NewWatcher(cfg.Trigger.Dir, logger)
		if err != nil {
			return err
		}
		background("trigger watcher", func() error {
			return watcher.Run(ctx, flush)
		})
	}

	stopSignals := notifyFlushSignals(ctx, func() { flush("signal") })
	defer stopSignals()

	inputDone := make(chan error, 1)
	go func() {
		inputDone <- readEvents(ctx, stdin, rec, logger)
	}()

	var inputErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case inputErr = <-inputDone:
		logger.Info("input closed")
	}

	cancel()
	wg.Wait()

	// The recorder context is gone; the final flush gets its own.
	final, err := rec.Flush(context.WithoutCancel(ctx), "shutdown")
	if err != nil {
		return errors.Join(inputErr, err)
	}

	stats := rec.Stats()
	logger.Info("recorder stopped",
		"artifact", final.Name,
		"ingested", stats.Ingested,
		"dropped", stats.Dropped,
		"flushes", stats.Flushes,
		"flush_errors", stats.FlushErrors,
	)

	return inputErr
}

func readEvents(ctx context.Context, r io.Reader, rec *recorder.Recorder, logger *slog.Logger) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineBytes)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := rec.Ingest(ctx, line); err != nil {
			logger.Error("ingest", "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read events: %w", err)
	}

	return nil
}

func recordConfig(args []string, stderr io.Writer) (*config.Config, error) {
	var (
		configPath string
		flagCfg    = config.Default()
	)

	flagSet := pflag.NewFlagSet("record", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&configPath, "config", "c", "", "YAML or TOML configuration file")
	flagSet.IntVar(&flagCfg.Buffer.Slots, "slots", 0, "event ring capacity (default: derived from --budget-bytes)")
	flagSet.IntVar(&flagCfg.Buffer.BudgetBytes, "budget-bytes", flagCfg.Buffer.BudgetBytes, "event ring memory budget in bytes")
	flagSet.IntVar(&flagCfg.Buffer.RawBytes, "raw-bytes", flagCfg.Buffer.RawBytes, "raw byte ring capacity, 0 disables it")
	flagSet.StringVar(&flagCfg.Codec.Compression, "compression", flagCfg.Codec.Compression, "artifact compression: lz4, zstd, s2 or none")
	flagSet.StringVar(&flagCfg.Codec.Encoding, "encoding", flagCfg.Codec.Encoding, "event encoding: json or cbor")
	flagSet.Uint64Var(&flagCfg.Flush.WindowSeconds, "window", 0, "flush only events from the last N seconds, 0 for all")
	flagSet.DurationVar(&flagCfg.Flush.Heartbeat, "heartbeat", flagCfg.Flush.Heartbeat, "heartbeat interval, 0 disables heartbeats")
	flagSet.StringVarP(&flagCfg.Flush.OutputDir, "output-dir", "o", flagCfg.Flush.OutputDir, "artifact directory")
	flagSet.StringVar(&flagCfg.Trigger.Dir, "trigger-dir", "", "directory watched for trigger files")
	flagSet.StringSliceVar(&flagCfg.Trigger.Keywords, "keywords", flagCfg.Trigger.Keywords, "event keywords that trigger a flush")
	flagSet.StringVar(&flagCfg.Logging.Level, "log-level", flagCfg.Logging.Level, "debug, info, warn or error")
	flagSet.StringVar(&flagCfg.Logging.Format, "log-format", flagCfg.Logging.Format, "text or json")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	if flagSet.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", errUsage, flagSet.Arg(0))
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return nil, err
	}

	// Explicit flags win over the file and the environment.
	overrides := map[string]func(){
		"slots":        func() { cfg.Buffer.Slots = flagCfg.Buffer.Slots },
		"budget-bytes": func() { cfg.Buffer.BudgetBytes = flagCfg.Buffer.BudgetBytes },
		"raw-bytes":    func() { cfg.Buffer.RawBytes = flagCfg.Buffer.RawBytes },
		"compression":  func() { cfg.Codec.Compression = flagCfg.Codec.Compression },
		"encoding":     func() { cfg.Codec.Encoding = flagCfg.Codec.Encoding },
		"window":       func() { cfg.Flush.WindowSeconds = flagCfg.Flush.WindowSeconds },
		"heartbeat":    func() { cfg.Flush.Heartbeat = flagCfg.Flush.Heartbeat },
		"output-dir":   func() { cfg.Flush.OutputDir = flagCfg.Flush.OutputDir },
		"trigger-dir":  func() { cfg.Trigger.Dir = flagCfg.Trigger.Dir },
		"keywords":     func() { cfg.Trigger.Keywords = flagCfg.Trigger.Keywords },
		"log-level":    func() { cfg.Logging.Level = flagCfg.Logging.Level },
		"log-format":   func() { cfg.Logging.Format = flagCfg.Logging.Format },
	}
	flagSet.Visit(func(f *pflag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply()
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
