//go:build unix

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// notifyFlushSignals calls flush for every SIGUSR1 until ctx is done or the
// returned stop function is called.
func notifyFlushSignals(ctx context.Context, flush func()) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGUSR1)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-sigCh:
				flush()
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}
