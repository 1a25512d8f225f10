package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/eigerco/yeti/internal/config"
	"github.com/eigerco/yeti/internal/store"
	"github.com/eigerco/yeti/internal/sweep"
	"github.com/eigerco/yeti/pkg/db/pebble"
	"github.com/eigerco/yeti/pkg/log"
	"github.com/eigerco/yeti/pkg/serialization/codec/utf8"
)

const usage = `usage: yeti <command> [flags]

commands:
  sweep   round-trip every scalar value in a range and write the artifact
  encode  print the encoding of a scalar value (0x20AC, U+20AC or 8364)
  decode  print the scalar value of a hex encoded byte sequence
  lookup  print an encoding recorded by a previous sweep
`

// main runs the codec tooling.
// go run ./cmd/yeti sweep -config config.toml
func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "sweep":
		err = runSweep(ctx, os.Args[2:])
	case "encode":
		err = runEncode(os.Args[2:], os.Stdout)
	case "decode":
		err = runDecode(os.Args[2:], os.Stdout)
	case "lookup":
		err = runLookup(os.Args[2:], os.Stdout)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "yeti %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func runSweep(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	configPath := fs.String("config", "", "TOML config file")
	out := fs.String("out", "", "artifact path, overrides sweep.output")
	dbPath := fs.String("db", "", "encoding table directory, overrides store.path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *out != "" {
		cfg.Output = *out
	}
	if *dbPath != "" {
		cfg.StorePath = *dbPath
	}

	log.Init(log.Options{LogLevel: cfg.LogLevel, Type: cfg.LogFormat, Out: os.Stderr})

	opts := []sweep.Option{sweep.WithLogger(log.Sweep)}
	var table *store.EncodingTable
	if cfg.StorePath != "" {
		kv, err := pebble.NewKVStore(cfg.StorePath)
		if err != nil {
			return err
		}
		defer kv.Close() //nolint:errcheck

		table = store.NewEncodingTable(kv, cfg.FlushEvery, log.Store)
		defer table.Close() //nolint:errcheck
		opts = append(opts, sweep.WithSink(table))
	}

	s, err := sweep.New(cfg.Sweep, opts...)
	if err != nil {
		return err
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("creating artifact: %w", err)
	}
	defer f.Close() //nolint:errcheck

	w := bufio.NewWriter(f)
	report, err := s.Run(ctx, w)
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}

	for _, m := range report.Mismatches {
		log.Sweep.Error().Uint32("value", m.Value).Err(m.Err).Msg("mismatch")
	}

	if table != nil {
		if err := table.Flush(); err != nil {
			return err
		}
		if err := compareDigest(table, cfg.Sweep, report.Digest[:]); err != nil {
			return err
		}
	}

	if !report.OK() {
		return fmt.Errorf("%d values failed to round trip", len(report.Mismatches))
	}
	return nil
}

// compareDigest checks the artifact against the previous sweep over the same range and stores the new digest
func compareDigest(table *store.EncodingTable, cfg sweep.Config, digest []byte) error {
	prev, err := table.Digest(cfg.Start, cfg.End)
	switch {
	case errors.Is(err, store.ErrDigestNotFound):
	case err != nil:
		return err
	case !bytes.Equal(prev, digest):
		log.Sweep.Warn().Hex("previous", prev).Hex("current", digest).Msg("artifact changed since last sweep")
	default:
		log.Sweep.Info().Msg("artifact matches previous sweep")
	}
	return table.PutDigest(cfg.Start, cfg.End, digest)
}

func runEncode(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	width := fs.Uint("width", 0, "force the encoded width, 0 picks the shortest")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected one scalar value")
	}

	v, err := parseScalar(fs.Arg(0))
	if err != nil {
		return err
	}
	n := utf8.Width(v)
	if *width != 0 {
		n = uint8(min(*width, utf8.MaxWidth+1))
	}
	enc, err := utf8.Encode(v, n)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "U+%04X %s\n", v, hex.EncodeToString(enc))
	return err
}

func runDecode(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	strict := fs.Bool("strict", false, "reject surrogates, out of range values and overlong forms")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected one hex byte sequence")
	}

	data, err := hex.DecodeString(strings.TrimPrefix(fs.Arg(0), "0x"))
	if err != nil {
		return fmt.Errorf("parsing hex: %w", err)
	}

	v, width, err := utf8.DecodeWidth(data)
	if err != nil {
		return err
	}
	if *strict {
		if v, err = utf8.DecodeStrict(data); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "U+%04X width=%d\n", v, width)
	return err
}

func runLookup(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	dbPath := fs.String("db", "", "encoding table directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" || fs.NArg() != 1 {
		return errors.New("expected -db and one scalar value")
	}

	v, err := parseScalar(fs.Arg(0))
	if err != nil {
		return err
	}

	kv, err := pebble.NewKVStore(*dbPath)
	if err != nil {
		return err
	}
	defer kv.Close() //nolint:errcheck

	enc, err := store.NewEncodingTable(kv, 0, log.Store).Lookup(v)
	if err != nil {
		return fmt.Errorf("U+%04X: %w", v, err)
	}
	_, err = fmt.Fprintf(w, "U+%04X %s\n", v, hex.EncodeToString(enc))
	return err
}

// parseScalar accepts U+XXXX, 0x prefixed hex and decimal
func parseScalar(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	base := 0
	if rest, ok := strings.CutPrefix(strings.ToUpper(s), "U+"); ok {
		s, base = rest, 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing scalar value %q: %w", s, err)
	}
	return uint32(v), nil
}
