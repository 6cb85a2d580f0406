package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/ttfr/errs"
	"github.com/arloliu/ttfr/event"
	"github.com/arloliu/ttfr/format"
)

func allCompressions() []format.CompressionType {
	return []format.CompressionType{
		format.CompressionLZ4,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionNone,
	}
}

func newCodec(t *testing.T, opts ...Option) *Codec {
	t.Helper()

	c, err := New(opts...)
	require.NoError(t, err)

	return c
}

func sampleEvents(n int) []event.Event {
	events := make([]event.Event, n)
	for i := range events {
		events[i] = event.Event{
			Ts:  uint64(1700000000000 + i*100),
			Msg: fmt.Sprintf("proc=%d op=open path=/tmp/sample_%d", 4000+i%7, i%13),
		}
	}

	return events
}

func TestNew_Defaults(t *testing.T) {
	c := newCodec(t)
	require.Equal(t, format.CompressionLZ4, c.Compression())
	require.Equal(t, format.EncodingJSON, c.Encoding())
	require.Equal(t, DefaultMaxDecodedSize, c.MaxDecodedSize())
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name    string
		opt     Option
		wantErr error
	}{
		{name: "compression", opt: WithCompression(format.CompressionType(0x7F)), wantErr: errs.ErrInvalidCompression},
		{name: "encoding", opt: WithEventEncoding(format.EventEncoding(0)), wantErr: errs.ErrInvalidEncoding},
		{name: "zero max size", opt: WithMaxDecodedSize(0), wantErr: errs.ErrInvalidConfig},
		{name: "negative max size", opt: WithMaxDecodedSize(-5), wantErr: errs.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.opt)
			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, c)
		})
	}
}

func TestCompress_Header(t *testing.T) {
	data := []byte("hello hello hello hello")

	for _, comp := range allCompressions() {
		t.Run(comp.String(), func(t *testing.T) {
			frame, err := newCodec(t, WithCompression(comp)).Compress(data)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(frame), HeaderSize)
			require.Equal(t, []byte{byte(len(data)), 0, 0, 0}, frame[:HeaderSize])
		})
	}
}

func TestCompress_LZ4PrependedSizeCompatible(t *testing.T) {
	data := bytes.Repeat([]byte("forensic "), 200)

	frame, err := Compress(data)
	require.NoError(t, err)

	// The payload after the header is a plain LZ4 block.
	out := make([]byte, len(data))
	n, err := lz4.UncompressBlock(frame[HeaderSize:], out)
	require.NoError(t, err)
	require.Equal(t, data, out[:n])
}

func TestCompress_Deterministic(t *testing.T) {
	data := bytes.Repeat([]byte("abc123"), 500)

	a, err := Compress(data)
	require.NoError(t, err)
	b, err := Compress(data)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestRoundTrip(t *testing.T) {
	inputs := map[string][]byte{
		"empty":  {},
		"single": {0x42},
		"text":   []byte("The quick brown fox jumps over the lazy dog"),
		"zeros":  make([]byte, 64<<10),
		"binary": func() []byte {
			b := make([]byte, 4096)
			for i := range b {
				b[i] = byte(i * 31)
			}
			return b
		}(),
	}

	for _, comp := range allCompressions() {
		c := newCodec(t, WithCompression(comp))
		for name, data := range inputs {
			t.Run(comp.String()+"/"+name, func(t *testing.T) {
				frame, err := c.Compress(data)
				require.NoError(t, err)

				out, err := c.Decompress(frame)
				require.NoError(t, err)
				require.Len(t, out, len(data))
				require.True(t, bytes.Equal(data, out))
			})
		}
	}
}

func TestCompress_DoesNotAliasInput(t *testing.T) {
	data := []byte("uncompressed payload")
	frame, err := newCodec(t, WithCompression(format.CompressionNone)).Compress(data)
	require.NoError(t, err)

	data[0] = 'X'
	require.Equal(t, byte('u'), frame[HeaderSize])
}

func TestDecompress_FormatErrors(t *testing.T) {
	valid, err := Compress(bytes.Repeat([]byte("payload "), 64))
	require.NoError(t, err)

	longer := append([]byte{}, valid...)
	longer[0]++

	tests := []struct {
		name  string
		data  []byte
		extra error
	}{
		{name: "nil", data: nil, extra: errs.ErrTruncatedHeader},
		{name: "short header", data: []byte{0x01, 0x02, 0x03}, extra: errs.ErrTruncatedHeader},
		{name: "implausible length", data: []byte{0x00, 0x01, 0x02, 0x03, 0xFF}},
		{name: "over limit", data: []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x00}, extra: errs.ErrBlockTooLarge},
		{name: "header only", data: []byte{0x10, 0x00, 0x00, 0x00}},
		{name: "truncated payload", data: valid[:len(valid)-3]},
		{name: "length mismatch", data: longer},
		{name: "garbage", data: []byte{0x20, 0x00, 0x00, 0x00, 0xF0, 0xFF, 0xFF, 0xFF, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				_, err := Decompress(tt.data)
				require.ErrorIs(t, err, errs.ErrFormat)
				require.NotErrorIs(t, err, errs.ErrSchema)
				if tt.extra != nil {
					require.ErrorIs(t, err, tt.extra)
				}
			})
		})
	}
}

func TestDecompress_MaxDecodedSize(t *testing.T) {
	data := make([]byte, 2048)
	frame, err := Compress(data)
	require.NoError(t, err)

	small := newCodec(t, WithMaxDecodedSize(1024))
	_, err = small.Decompress(frame)
	require.ErrorIs(t, err, errs.ErrFormat)
	require.ErrorIs(t, err, errs.ErrBlockTooLarge)

	exact := newCodec(t, WithMaxDecodedSize(2048))
	out, err := exact.Decompress(frame)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestDecompress_ZstdInflatedHeader(t *testing.T) {
	payload := []byte("proc=4001 op=open")
	zc := newCodec(t, WithCompression(format.CompressionZstd))

	withSize, err := zc.Compress(payload)
	require.NoError(t, err)

	// Streaming frames carry no content size in their header.
	var stream bytes.Buffer
	enc, err := zstd.NewWriter(&stream, zstd.WithWindowSize(64<<10))
	require.NoError(t, err)
	_, err = enc.Write(payload)
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	noSize := binary.LittleEndian.AppendUint32(nil, uint32(len(payload)))
	noSize = append(noSize, stream.Bytes()...)

	tests := []struct {
		name  string
		frame []byte
	}{
		{name: "frame content size", frame: withSize},
		{name: "no frame content size", frame: noSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := zc.Decompress(tt.frame)
			require.NoError(t, err)
			require.Equal(t, payload, out)

			inflated := append([]byte{}, tt.frame...)
			binary.LittleEndian.PutUint32(inflated, 0x07000000)

			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			_, err = zc.Decompress(inflated)
			runtime.ReadMemStats(&after)

			require.ErrorIs(t, err, errs.ErrFormat)
			require.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(32<<20))
		})
	}
}

func TestDecompress_MismatchedAlgorithm(t *testing.T) {
	frame, err := newCodec(t, WithCompression(format.CompressionZstd)).Compress(bytes.Repeat([]byte("zstd "), 100))
	require.NoError(t, err)

	_, err = newCodec(t, WithCompression(format.CompressionS2)).Decompress(frame)
	require.ErrorIs(t, err, errs.ErrFormat)
}

func TestEvents_RoundTrip(t *testing.T) {
	encodings := []format.EventEncoding{format.EncodingJSON, format.EncodingCBOR}

	for _, comp := range allCompressions() {
		for _, enc := range encodings {
			t.Run(comp.String()+"/"+enc.String(), func(t *testing.T) {
				c := newCodec(t, WithCompression(comp), WithEventEncoding(enc))

				for _, n := range []int{0, 1, 250} {
					events := sampleEvents(n)
					data, err := c.CompressEvents(events)
					require.NoError(t, err)

					got, err := c.DecompressEvents(data)
					require.NoError(t, err)
					require.Len(t, got, n)
					if n > 0 {
						require.Equal(t, events, got)
					}
				}
			})
		}
	}
}

func TestEvents_NilIsEmptyDocument(t *testing.T) {
	data, err := CompressEvents(nil)
	require.NoError(t, err)

	raw, err := Decompress(data)
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(raw))
}

func TestCompressEvents_InvalidUTF8(t *testing.T) {
	_, err := CompressEvents([]event.Event{{Ts: 1, Msg: "\xff\xfe"}})
	require.ErrorIs(t, err, errs.ErrSchema)
}

func TestDecompressEvents_SchemaError(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "plain text", payload: "not json"},
		{name: "object", payload: `{"ts":1,"msg":"x"}`},
		{name: "missing msg", payload: `[{"ts":1}]`},
		{name: "negative ts", payload: `[{"ts":-3,"msg":"x"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Compress([]byte(tt.payload))
			require.NoError(t, err)

			require.NotPanics(t, func() {
				_, err = DecompressEvents(data)
			})
			require.ErrorIs(t, err, errs.ErrSchema)
			require.False(t, errors.Is(err, errs.ErrFormat))
		})
	}
}

func TestDecompressEvents_FormatError(t *testing.T) {
	_, err := DecompressEvents([]byte{0x00, 0x01, 0x02, 0x03, 0xFF})
	require.ErrorIs(t, err, errs.ErrFormat)
	require.False(t, errors.Is(err, errs.ErrSchema))
}

func TestDecompressEvents_CBORSchemaError(t *testing.T) {
	c := newCodec(t, WithEventEncoding(format.EncodingCBOR))

	data, err := c.Compress([]byte("not json"))
	require.NoError(t, err)

	_, err = c.DecompressEvents(data)
	require.ErrorIs(t, err, errs.ErrSchema)
}

func TestCompressWithStats(t *testing.T) {
	data := bytes.Repeat([]byte("stat "), 1000)

	frame, stats, err := newCodec(t).CompressWithStats(data)
	require.NoError(t, err)
	require.Equal(t, format.CompressionLZ4, stats.Algorithm)
	require.Equal(t, int64(len(data)), stats.InputSize)
	require.Equal(t, int64(len(frame)), stats.OutputSize)
	require.Less(t, stats.Ratio(), 1.0)
}

func TestCodec_ConcurrentUsage(t *testing.T) {
	c := newCodec(t, WithCompression(format.CompressionZstd))
	events := sampleEvents(50)

	var wg sync.WaitGroup
	errCh := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				data, err := c.CompressEvents(events)
				if err != nil {
					errCh <- err
					return
				}
				got, err := c.DecompressEvents(data)
				if err != nil {
					errCh <- err
					return
				}
				if len(got) != len(events) {
					errCh <- fmt.Errorf("got %d events, want %d", len(got), len(events))
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}
}

func TestCompressEventsWithStats(t *testing.T) {
	events := sampleEvents(100)

	data, stats, err := newCodec(t, WithCompression(format.CompressionS2)).CompressEventsWithStats(events)
	require.NoError(t, err)
	require.Equal(t, format.CompressionS2, stats.Algorithm)
	require.Equal(t, int64(len(data)), stats.OutputSize)
	require.Greater(t, stats.InputSize, stats.OutputSize)
}
