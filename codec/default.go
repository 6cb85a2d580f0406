package codec

import "github.com/arloliu/ttfr/event"

var defaultCodec = mustNew()

func mustNew() *Codec {
	c, err := New()
	if err != nil {
		panic("codec: default codec: " + err.Error())
	}

	return c
}

// Default returns the shared codec used by the package-level functions.
func Default() *Codec {
	return defaultCodec
}

// Compress frames data with the default codec.
func Compress(data []byte) ([]byte, error) {
	return defaultCodec.Compress(data)
}

// Decompress reverses Compress using the default codec.
func Decompress(data []byte) ([]byte, error) {
	return defaultCodec.Decompress(data)
}

// CompressEvents compresses a JSON event document with the default codec.
func CompressEvents(events []event.Event) ([]byte, error) {
	return defaultCodec.CompressEvents(events)
}

// DecompressEvents reverses CompressEvents using the default codec.
func DecompressEvents(data []byte) ([]event.Event, error) {
	return defaultCodec.DecompressEvents(data)
}
