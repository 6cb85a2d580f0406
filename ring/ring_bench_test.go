package ring

import (
	"testing"

	"github.com/arloliu/ttfr/event"
)

func BenchmarkBlobRing_Push(b *testing.B) {
	r, err := NewBlobRing(SlotsForBudget(1<<20, DefaultSlotBytes))
	if err != nil {
		b.Fatal(err)
	}
	blob := event.EncodeBlob(1700000000000, []byte("proc=4242 op=connect dst=10.0.0.1:443"))

	b.ReportAllocs()
	for b.Loop() {
		r.Push(blob)
	}
}

func BenchmarkBlobRing_DumpLastSeconds(b *testing.B) {
	r, err := NewBlobRing(16384)
	if err != nil {
		b.Fatal(err)
	}
	for i := range r.Cap() {
		r.Push(event.EncodeBlob(int64(i*10), []byte("event payload")))
	}

	b.ReportAllocs()
	for b.Loop() {
		_ = r.DumpLastSeconds(30, int64(r.Cap()*10))
	}
}

func BenchmarkByteRing_Push(b *testing.B) {
	r, err := NewByteRing(1 << 20)
	if err != nil {
		b.Fatal(err)
	}
	payload := make([]byte, 512)

	b.SetBytes(int64(len(payload)))
	b.ReportAllocs()
	for b.Loop() {
		r.Push(payload)
	}
}
