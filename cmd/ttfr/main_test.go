package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ttfr/codec"
	"github.com/arloliu/ttfr/errs"
	"github.com/arloliu/ttfr/event"
	"github.com/arloliu/ttfr/trigger"
)

func runCmd(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)

	return stdout.String(), stderr.String(), err
}

func TestRun_Usage(t *testing.T) {
	_, stderr, err := runCmd(t, "")
	require.ErrorIs(t, err, errUsage)
	require.Contains(t, stderr, "Usage:")

	_, _, err = runCmd(t, "", "bogus")
	require.ErrorIs(t, err, errUsage)

	stdout, _, err := runCmd(t, "", "help")
	require.NoError(t, err)
	require.Contains(t, stdout, "ttfr record")
}

func TestName(t *testing.T) {
	stdout, _, err := runCmd(t, "", "name", "--reason", "malware test")
	require.NoError(t, err)

	name := strings.TrimSpace(stdout)
	require.True(t, strings.HasPrefix(name, "flush_malware_test_"))
	require.True(t, strings.HasSuffix(name, ".ttfr"))

	_, _, err = runCmd(t, "", "name", "extra")
	require.ErrorIs(t, err, errUsage)
}

func TestReplay(t *testing.T) {
	data, err := codec.CompressEvents([]event.Event{
		{Ts: 1, Msg: "boot"},
		{Ts: 2, Msg: "a<b"},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snap.ttfr")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	stdout, _, err := runCmd(t, "", "replay", path)
	require.NoError(t, err)
	require.Equal(t, "{\"ts\":1,\"msg\":\"boot\"}\n{\"ts\":2,\"msg\":\"a<b\"}\n", stdout)
}

func TestReplay_Errors(t *testing.T) {
	dir := t.TempDir()

	corrupt := filepath.Join(dir, "corrupt.ttfr")
	require.NoError(t, os.WriteFile(corrupt, []byte{0x00, 0x01, 0x02, 0x03, 0xFF}, 0o600))
	_, _, err := runCmd(t, "", "replay", corrupt)
	require.ErrorIs(t, err, errs.ErrFormat)

	data, err := codec.Compress([]byte("not json"))
	require.NoError(t, err)
	text := filepath.Join(dir, "text.ttfr")
	require.NoError(t, os.WriteFile(text, data, 0o600))
	_, _, err = runCmd(t, "", "replay", text)
	require.ErrorIs(t, err, errs.ErrSchema)

	stdout, _, err := runCmd(t, "", "replay", "--raw", text)
	require.NoError(t, err)
	require.Equal(t, "not json", stdout)

	_, _, err = runCmd(t, "", "replay")
	require.ErrorIs(t, err, errUsage)

	_, _, err = runCmd(t, "", "replay", "--compression", "brotli", text)
	require.Error(t, err)
}

func TestRecord_FlushesOnDetectionAndShutdown(t *testing.T) {
	out := filepath.Join(t.TempDir(), "artifacts")
	input := "OK\nproc=1 op=exec\n\nMALWARE_BEACON_C2\nOK\n"

	_, stderr, err := runCmd(t, input, "record",
		"--output-dir", out,
		"--heartbeat", "0",
		"--slots", "16",
		"--raw-bytes", "0",
		"--log-format", "json",
	)
	require.NoError(t, err, stderr)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)

	byReason := map[string][]event.Event{}
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(out, e.Name()))
		require.NoError(t, err)
		events, err := codec.DecompressEvents(data)
		require.NoError(t, err)

		switch {
		case strings.HasPrefix(e.Name(), "flush_malware_"):
			byReason["malware"] = events
		case strings.HasPrefix(e.Name(), "flush_shutdown_"):
			byReason["shutdown"] = events
		default:
			t.Fatalf("unexpected artifact %s", e.Name())
		}
	}

	require.Len(t, byReason["malware"], 3)
	require.Equal(t, "MALWARE_BEACON_C2", byReason["malware"][2].Msg)
	require.Len(t, byReason["shutdown"], 4)
	require.Equal(t, "OK", byReason["shutdown"][3].Msg)

	// Logs are JSON lines from the recorder component.
	for _, line := range strings.Split(strings.TrimSpace(stderr), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec), line)
		require.Equal(t, "recorder", rec["component"])
	}
}

func TestRecord_InvalidConfig(t *testing.T) {
	_, _, err := runCmd(t, "", "record", "--compression", "brotli", "--output-dir", t.TempDir())
	require.ErrorIs(t, err, errs.ErrInvalidConfig)

	_, _, err = runCmd(t, "", "record", "--no-such-flag")
	require.ErrorIs(t, err, errUsage)
}

func TestRecord_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	cfgPath := filepath.Join(dir, "ttfr.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
[codec]
compression = "zstd"
encoding = "cbor"

[flush]
heartbeat = "0s"
output_dir = "`+filepath.ToSlash(out)+`"
`), 0o600))

	_, stderr, err := runCmd(t, "line one\n", "record", "--config", cfgPath, "--raw-bytes", "0")
	require.NoError(t, err, stderr)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(out, entries[0].Name()))
	require.NoError(t, err)

	stdout, _, err := runCmd(t, "", "replay", "--compression", "zstd", "--encoding", "cbor", filepath.Join(out, entries[0].Name()))
	require.NoError(t, err)
	require.Contains(t, stdout, `"msg":"line one"`)
	require.NotEmpty(t, data)
}

func TestFlush_WritesTriggerFile(t *testing.T) {
	dir := t.TempDir()

	watcher, err := trigger.NewWatcher(dir, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reasons := make(chan string, 1)
	go func() {
		_ = watcher.Run(ctx, func(reason string) { reasons <- reason })
	}()

	stdout, _, err := runCmd(t, "", "flush", "--reason", "suspicious login", "--trigger-dir", dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "suspicious login.trigger"), strings.TrimSpace(stdout))

	select {
	case reason := <-reasons:
		require.Equal(t, "suspicious login", reason)
	case <-time.After(5 * time.Second):
		t.Fatal("trigger file was not observed")
	}
}

func TestFlush_Errors(t *testing.T) {
	t.Setenv("TTFR_TRIGGER_DIR", "")

	tests := []struct {
		name string
		args []string
	}{
		{name: "no trigger dir", args: []string{"flush"}},
		{name: "path in reason", args: []string{"flush", "--reason", "../x", "--trigger-dir", t.TempDir()}},
		{name: "hidden reason", args: []string{"flush", "--reason", ".x", "--trigger-dir", t.TempDir()}},
		{name: "extra argument", args: []string{"flush", "now"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCmd(t, "", tt.args...)
			require.ErrorIs(t, err, errUsage)
		})
	}

	_, _, err := runCmd(t, "", "flush", "--trigger-dir", filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDirSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	sink, err := newDirSink(dir)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sink.Write(ctx, "flush_a.ttfr", []byte("data")))

	got, err := os.ReadFile(filepath.Join(dir, "flush_a.ttfr"))
	require.NoError(t, err)
	require.Equal(t, []byte("data"), got)

	require.ErrorIs(t, sink.Write(ctx, "flush_a.ttfr", []byte("again")), os.ErrExist)
	require.Error(t, sink.Write(ctx, "../escape.ttfr", nil))
	require.Error(t, sink.Write(ctx, "", nil))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.ErrorIs(t, sink.Write(cancelled, "flush_b.ttfr", nil), context.Canceled)
}
