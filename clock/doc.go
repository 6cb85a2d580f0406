// Package clock is the time boundary of ttfr.
//
// Timestamps of captured events, the recency window of a flush and the artifact
// name all derive from the current instant, so everything that reads the time does
// it through a Clock. Production code uses Real(); tests use Fake() and move time
// explicitly:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	rec, _ := recorder.New(sink, recorder.WithClock(c))
//	go rec.Run(ctx, 100*time.Millisecond)
//	c.WaitForTickers(1)
//	c.Advance(100 * time.Millisecond) // one heartbeat
package clock
