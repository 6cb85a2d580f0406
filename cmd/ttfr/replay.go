package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/arloliu/ttfr/codec"
	"github.com/arloliu/ttfr/format"
)

func runReplay(args []string, stdout, stderr io.Writer) error {
	var (
		compression string
		encoding    string
		raw         bool
	)

	flagSet := pflag.NewFlagSet("replay", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&compression, "compression", "lz4", "artifact compression: lz4, zstd, s2 or none")
	flagSet.StringVar(&encoding, "encoding", "json", "event encoding: json or cbor")
	flagSet.BoolVar(&raw, "raw", false, "artifact is a raw byte snapshot; write it to stdout unchanged")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if flagSet.NArg() != 1 {
		return fmt.Errorf("%w: replay takes exactly one artifact path", errUsage)
	}

	comp, err := format.ParseCompressionType(compression)
	if err != nil {
		return err
	}
	enc, err := format.ParseEventEncoding(encoding)
	if err != nil {
		return err
	}
	cd, err := codec.New(codec.WithCompression(comp), codec.WithEventEncoding(enc))
	if err != nil {
		return err
	}

	path := flagSet.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if raw {
		out, err := cd.Decompress(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		_, err = stdout.Write(out)

		return err
	}

	events, err := cd.DecompressEvents(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	lines := json.NewEncoder(stdout)
	lines.SetEscapeHTML(false)
	for _, ev := range events {
		if err := lines.Encode(ev); err != nil {
			return err
		}
	}

	return nil
}
