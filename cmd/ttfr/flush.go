package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/arloliu/ttfr/config"
)

// triggerExt is the extension of trigger files written by the flush command. The
// recorder's watcher strips it to recover the reason.
const triggerExt = ".trigger"

// runFlush asks a running recorder for a snapshot by dropping a trigger file into
// its trigger directory.
func runFlush(args []string, stdout, stderr io.Writer) error {
	var (
		reason     string
		triggerDir string
		configPath string
	)

	flagSet := pflag.NewFlagSet("flush", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&reason, "reason", "manual", "flush trigger reason")
	flagSet.StringVar(&triggerDir, "trigger-dir", "", "trigger directory of the running recorder")
	flagSet.StringVarP(&configPath, "config", "c", "", "YAML or TOML configuration file naming the trigger directory")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", errUsage, flagSet.Arg(0))
	}

	if triggerDir == "" {
		var cfg *config.Config
		var err error
		if configPath != "" {
			cfg, err = config.Load(configPath)
		} else {
			cfg, err = config.LoadFromEnv()
		}
		if err != nil {
			return err
		}
		triggerDir = cfg.Trigger.Dir
	}
	if triggerDir == "" {
		return fmt.Errorf("%w: no trigger directory, set --trigger-dir or trigger.dir", errUsage)
	}

	path, err := writeTrigger(triggerDir, reason)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(stdout, path)

	return err
}

// writeTrigger creates <dir>/<reason>.trigger. The file is written under a hidden
// name and renamed so the watcher never sees a partial file.
func writeTrigger(dir, reason string) (string, error) {
	if reason == "" || strings.HasPrefix(reason, ".") || strings.ContainsAny(reason, `/\`) {
		return "", fmt.Errorf("%w: invalid reason %q", errUsage, reason)
	}

	tmp, err := os.CreateTemp(dir, ".flush-*")
	if err != nil {
		return "", fmt.Errorf("create trigger file: %w", err)
	}
	tmpName := tmp.Name()
	if err := tmp.Close(); err != nil {
		return "", errors.Join(err, os.Remove(tmpName))
	}

	path := filepath.Join(dir, reason+triggerExt)
	if err := os.Rename(tmpName, path); err != nil {
		return "", errors.Join(fmt.Errorf("publish trigger file: %w", err), os.Remove(tmpName))
	}

	return path, nil
}
