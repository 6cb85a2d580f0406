package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"github.com/arloliu/ttfr/trigger"
)

func runName(args []string, stdout, stderr io.Writer) error {
	var reason string

	flagSet := pflag.NewFlagSet("name", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&reason, "reason", "manual", "flush trigger reason")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("%w: unexpected argument %q", errUsage, flagSet.Arg(0))
	}

	_, err := fmt.Fprintln(stdout, trigger.NameFor(reason, time.Now().UTC()))

	return err
}
