package compress

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ttfr/format"
)

// getAllCodecs returns all available codec implementations for testing
func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp": NewNoOpCompressor(),
		"LZ4":  NewLZ4Compressor(),
		"S2":   NewS2Compressor(),
		"Zstd": NewZstdCompressor(),
	}
}

// eventLikeData mimics a JSON event document: repetitive keys with varying values.
func eventLikeData(n int) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := range n {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `{"ts":%d,"msg":"cpu=%d%%, net=%dkb/s, msg=heartbeat"}`, 1700000000000+i*100, i%17, i%251)
	}
	buf.WriteByte(']')

	return buf.Bytes()
}

func TestCompressionStats_Calculations(t *testing.T) {
	tests := []struct {
		name            string
		stats           CompressionStats
		expectedRatio   float64
		expectedSavings float64
	}{
		{
			name:            "good compression",
			stats:           CompressionStats{Algorithm: format.CompressionZstd, InputSize: 1000, OutputSize: 300},
			expectedRatio:   0.3,
			expectedSavings: 70.0,
		},
		{
			name:            "no compression benefit",
			stats:           CompressionStats{Algorithm: format.CompressionNone, InputSize: 500, OutputSize: 500},
			expectedRatio:   1.0,
			expectedSavings: 0.0,
		},
		{
			name:            "compression overhead",
			stats:           CompressionStats{Algorithm: format.CompressionLZ4, InputSize: 100, OutputSize: 120},
			expectedRatio:   1.2,
			expectedSavings: -20.0,
		},
		{
			name:            "empty input",
			stats:           CompressionStats{Algorithm: format.CompressionLZ4, InputSize: 0, OutputSize: 4},
			expectedRatio:   0.0,
			expectedSavings: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.expectedRatio, tt.stats.Ratio(), 0.001)
			require.InDelta(t, tt.expectedSavings, tt.stats.SavingsPercent(), 0.001)
		})
	}
}

func TestGetCodec(t *testing.T) {
	for _, cType := range []format.CompressionType{
		format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4,
	} {
		codec, err := GetCodec(cType)
		require.NoError(t, err)
		require.NotNil(t, codec)
	}

	_, err := GetCodec(format.CompressionType(0xFF))
	require.ErrorContains(t, err, "unsupported compression type")
}

func TestNoOpCompressor_SharesMemory(t *testing.T) {
	compressor := NewNoOpCompressor()
	data := []byte("hello world")

	compressed, err := compressor.Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &compressed[0])

	decompressed, err := compressor.Decompress(compressed)
	require.NoError(t, err)
	require.Same(t, &compressed[0], &decompressed[0])

	sized, err := compressor.DecompressSize(compressed, len(data))
	require.NoError(t, err)
	require.Equal(t, data, sized)
	require.NotSame(t, &compressed[0], &sized[0])
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Nil(t, compressed)

			decompressed, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Nil(t, decompressed)

			sized, err := codec.DecompressSize(nil, 0)
			require.NoError(t, err)
			require.Empty(t, sized)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{name: "small_text", data: []byte("The quick brown fox jumps over the lazy dog.")},
		{name: "single_byte", data: []byte{0x42}},
		{name: "binary_data", data: []byte{0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE, 0xFD, 0xFC}},
		{name: "event_document", data: eventLikeData(500)},
		{name: "highly_compressible", data: make([]byte, 1024*1024)},
		{
			name: "incompressible",
			data: func() []byte {
				data := make([]byte, 4096)
				for i := range data {
					data[i] = byte((i*31 + i*i*7 + i*i*i*3) % 256)
				}

				return data
			}(),
		},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					compressed, err := codec.Compress(tc.data)
					require.NoError(t, err)
					require.NotNil(t, compressed)

					decompressed, err := codec.Decompress(compressed)
					require.NoError(t, err)
					require.Equal(t, tc.data, decompressed)

					sized, err := codec.DecompressSize(compressed, len(tc.data))
					require.NoError(t, err)
					require.Equal(t, tc.data, sized)
				})
			}
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	invalidInputs := []struct {
		name string
		data []byte
	}{
		{name: "random_bytes", data: []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{name: "text_as_compressed", data: []byte("this is not compressed data")},
		{name: "corrupted_header", data: []byte{0xF0, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			if codecName == "NoOp" {
				t.Skip("NoOp codec doesn't validate data")
			}

			for _, input := range invalidInputs {
				t.Run(input.name, func(t *testing.T) {
					require.NotPanics(t, func() {
						_, err := codec.DecompressSize(input.data, 1024)
						require.Error(t, err)
					})
				})
			}
		})
	}
}

func TestAllCodecs_DecompressSizeMismatch(t *testing.T) {
	data := eventLikeData(50)

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			compressed, err := codec.Compress(data)
			require.NoError(t, err)

			_, err = codec.DecompressSize(compressed, len(data)+1)
			require.Error(t, err)

			_, err = codec.DecompressSize(compressed, len(data)-1)
			require.Error(t, err)

			_, err = codec.DecompressSize(compressed, -1)
			require.Error(t, err)
		})
	}
}

func TestLZ4Compressor_RejectsImplausibleSize(t *testing.T) {
	codec := NewLZ4Compressor()

	// A single byte can never expand into 50MB; rejected without allocating.
	_, err := codec.DecompressSize([]byte{0xFF}, 0x03020100)
	require.ErrorContains(t, err, "cannot decode")

	_, err = codec.DecompressSize([]byte{0x10, 0x41, 0x00}, 0)
	require.Error(t, err)

	empty, err := codec.DecompressSize([]byte{0x00}, 0)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestZstdCompressor_ContentSizeMismatch(t *testing.T) {
	codec := NewZstdCompressor()
	data := eventLikeData(10)

	compressed, err := codec.Compress(data)
	require.NoError(t, err)

	_, err = codec.DecompressSize(compressed, 0x07000000)
	require.ErrorContains(t, err, "frame declares")

	_, err = codec.DecompressSize([]byte{0x01, 0x02, 0x03}, 16)
	require.ErrorContains(t, err, "frame header")

	// Highly compressible input takes the incremental path.
	zeros := make([]byte, 1<<20)
	compressed, err = codec.Compress(zeros)
	require.NoError(t, err)
	require.Greater(t, len(zeros), len(compressed)*zstdDirectRatio)

	out, err := codec.DecompressSize(compressed, len(zeros))
	require.NoError(t, err)
	require.Equal(t, zeros, out)
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	const numGoroutines = 20
	testData := eventLikeData(64)

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			compressed, err := codec.Compress(testData)
			require.NoError(t, err)

			done := make(chan error, numGoroutines*2)
			for range numGoroutines {
				go func() {
					_, err := codec.Compress(testData)
					done <- err
				}()

				go func() {
					decompressed, err := codec.DecompressSize(compressed, len(testData))
					if err != nil {
						done <- err
						return
					}
					if !bytes.Equal(testData, decompressed) {
						done <- fmt.Errorf("data mismatch")
						return
					}
					done <- nil
				}()
			}

			for range numGoroutines * 2 {
				require.NoError(t, <-done)
			}
		})
	}
}
