//go:build !unix

package main

import "context"

// notifyFlushSignals is a no-op where SIGUSR1 does not exist; use the trigger
// directory instead.
func notifyFlushSignals(context.Context, func()) (stop func()) {
	return func() {}
}
