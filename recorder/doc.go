// Package recorder ties the buffers, codec and triggers into a running flight
// recorder.
//
// A Recorder timestamps every ingested message with its clock, stores it as an
// event blob in a ring.BlobRing and, when enabled, appends the raw bytes to a
// ring.ByteRing. Flush takes a snapshot of the event ring (limited to the
// configured recency window), compresses it with the codec and hands the named
// artifact to a Sink. A Detector can request a flush for individual messages.
//
//	rec, err := recorder.New(sink,
//	    recorder.WithSlots(ring.SlotsForBudget(16<<20, ring.DefaultSlotBytes)),
//	    recorder.WithDetector(trigger.NewKeywordDetector("malware")),
//	)
//	if err != nil {
//	    return err
//	}
//	go rec.Run(ctx, 100*time.Millisecond)
//	...
//	artifact, err := rec.Flush(ctx, "manual")
//
// All Recorder methods are safe for concurrent use.
package recorder
