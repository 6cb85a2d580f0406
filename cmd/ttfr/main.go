// ttfr is a bounded-memory flight recorder for security telemetry.
//
// It keeps the most recent events in memory and writes a compressed snapshot
// when a trigger fires: SIGUSR1, a detector keyword in an event, a file dropped
// into the trigger directory, or shutdown.
//
// Usage:
//
//	ttfr record [flags] < events.log
//	ttfr replay [flags] <artifact>
//	ttfr flush [--reason <reason>] [--trigger-dir <dir>]
//	ttfr name [--reason <reason>]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errUsage
	}

	switch args[0] {
	case "record":
		return runRecord(ctx, args[1:], stdin, stderr)
	case "replay":
		return runReplay(args[1:], stdout, stderr)
	case "flush":
		return runFlush(args[1:], stdout, stderr)
	case "name":
		return runName(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		printUsage(stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `ttfr keeps recent telemetry in memory and dumps it when something happens.

Usage:
  ttfr record [flags]          read newline-delimited events from stdin
  ttfr replay [flags] <file>   print the events of an artifact as JSON lines
  ttfr flush [--reason r]      ask a running recorder for a snapshot
  ttfr name [--reason r]       print the artifact name for a flush now

Run "ttfr <command> --help" for the flags of a command.
`)
}
