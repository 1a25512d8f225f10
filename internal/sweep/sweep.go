// Package sweep checks the round-trip law over a range of scalar values and
// writes every re-encoded value to an artifact.
package sweep

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"github.com/eigerco/yeti/pkg/log"
	"github.com/eigerco/yeti/pkg/serialization"
	"github.com/eigerco/yeti/pkg/serialization/codec"
	"github.com/eigerco/yeti/pkg/serialization/codec/utf8"
)

var ErrValueMismatch = errors.New("round trip mismatch")

// Sink receives the encoding of every value that round-trips
type Sink interface {
	Record(v uint32, encoded []byte) error
}

type Mismatch struct {
	Value uint32
	Err   error
}

type Report struct {
	Checked uint64
	Encoded uint64
	// Skipped counts values the encoder rejects, surrogates and anything above utf8.MaxScalar
	Skipped    uint64
	Mismatches []Mismatch
	// Digest is the BLAKE2b-256 of the artifact
	Digest [blake2b.Size256]byte
}

func (r Report) OK() bool {
	return len(r.Mismatches) == 0
}

type Option func(*Sweeper)

func WithSink(sink Sink) Option {
	return func(s *Sweeper) {
		s.sink = sink
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Sweeper) {
		s.log = l
	}
}

func WithSerializer(ser *serialization.Serializer) Option {
	return func(s *Sweeper) {
		s.serializer = ser
	}
}

type Sweeper struct {
	cfg        Config
	sink       Sink
	log        zerolog.Logger
	serializer *serialization.Serializer
}

func New(cfg Config, opts ...Option) (*Sweeper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Sweeper{
		cfg:        cfg,
		log:        log.Sweep,
		serializer: serialization.NewSerializer(codec.NewUTF8Codec()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type chunkResult struct {
	out        []byte
	checked    uint64
	encoded    uint64
	skipped    uint64
	mismatches []Mismatch
}

// Run processes the configured range and writes the artifact to w in ascending value order.
// Chunks run concurrently, at most Workers at a time. Once ctx is done no new chunks are
// started and the context error is returned along with the partial report.
func (s *Sweeper) Run(ctx context.Context, w io.Writer) (Report, error) {
	var report Report

	h, err := blake2b.New256(nil)
	if err != nil {
		return report, err
	}
	out := io.MultiWriter(w, h)

	chunks := s.cfg.chunks()
	s.log.Info().
		Uint32("start", s.cfg.Start).
		Uint32("end", s.cfg.End).
		Int("chunks", len(chunks)).
		Int("workers", s.cfg.Workers).
		Msg("sweep started")

	for first := 0; first < len(chunks); first += s.cfg.Workers {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		window := chunks[first:min(first+s.cfg.Workers, len(chunks))]
		results := make([]chunkResult, len(window))

		g, gctx := errgroup.WithContext(ctx)
		for i, c := range window {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := s.processChunk(c[0], c[1])
				if err != nil {
					return err
				}
				results[i] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return report, err
		}

		// Results are merged in chunk order so the artifact does not depend on scheduling
		for _, res := range results {
			if _, err := out.Write(res.out); err != nil {
				return report, fmt.Errorf("writing artifact: %w", err)
			}
			report.Checked += res.checked
			report.Encoded += res.encoded
			report.Skipped += res.skipped
			report.Mismatches = append(report.Mismatches, res.mismatches...)
		}
		s.log.Debug().
			Uint32("through", window[len(window)-1][1]).
			Uint64("checked", report.Checked).
			Msg("window done")
	}

	copy(report.Digest[:], h.Sum(nil))
	s.log.Info().
		Uint64("checked", report.Checked).
		Uint64("encoded", report.Encoded).
		Uint64("skipped", report.Skipped).
		Int("mismatches", len(report.Mismatches)).
		Hex("digest", report.Digest[:]).
		Msg("sweep finished")
	return report, nil
}

func (s *Sweeper) processChunk(lo, hi uint32) (chunkResult, error) {
	var res chunkResult
	for i := uint64(lo); i <= uint64(hi); i++ {
		v := uint32(i)
		res.checked++

		enc, err := s.serializer.EncodeWidth(v, utf8.Width(v))
		if errors.Is(err, utf8.ErrInvalidCodePoint) {
			res.skipped++
			continue
		}
		if err != nil {
			res.mismatches = append(res.mismatches, Mismatch{Value: v, Err: err})
			continue
		}

		again, err := s.check(v, enc)
		if err != nil {
			s.log.Warn().Uint32("value", v).Hex("encoded", enc).Err(err).Msg("round trip failed")
			res.mismatches = append(res.mismatches, Mismatch{Value: v, Err: err})
			continue
		}

		if s.sink != nil {
			if err := s.sink.Record(v, again); err != nil {
				return res, fmt.Errorf("recording %#x: %w", v, err)
			}
		}

		res.encoded++
		res.out = append(res.out, again...)
		if v%s.cfg.LineEvery == 0 {
			res.out = append(res.out, '\n')
		}
	}
	return res, nil
}

// check decodes enc, compares against v and encodes the decoded value once more
func (s *Sweeper) check(v uint32, enc []byte) ([]byte, error) {
	decoded, err := s.serializer.Decode(enc)
	if err != nil {
		return nil, err
	}
	if decoded != v {
		return nil, fmt.Errorf("decoded %#x: %w", decoded, ErrValueMismatch)
	}

	again, err := s.serializer.RoundTrip(enc)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(again, enc) {
		return nil, fmt.Errorf("re-encoded %x from %x: %w", again, enc, ErrValueMismatch)
	}
	return again, nil
}
