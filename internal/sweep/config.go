package sweep

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/eigerco/yeti/pkg/serialization/codec/utf8"
)

var ErrInvalidConfig = errors.New("invalid sweep config")

// Config describes the scanned range and how it is split across workers
type Config struct {
	Start uint32
	End   uint32 // inclusive
	// Workers bounds the number of chunks processed at once
	Workers   int
	ChunkSize int
	// LineEvery inserts a line break after every value divisible by it
	LineEvery uint32
}

func DefaultConfig() Config {
	return Config{
		Start:     0,
		End:       utf8.MaxScalar,
		Workers:   runtime.NumCPU(),
		ChunkSize: 4096,
		LineEvery: 100,
	}
}

func (c Config) Validate() error {
	switch {
	case c.End < c.Start:
		return fmt.Errorf("end %#x before start %#x: %w", c.End, c.Start, ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("workers must be positive, got %d: %w", c.Workers, ErrInvalidConfig)
	case c.ChunkSize <= 0:
		return fmt.Errorf("chunk size must be positive, got %d: %w", c.ChunkSize, ErrInvalidConfig)
	case c.LineEvery == 0:
		return fmt.Errorf("line_every must be positive: %w", ErrInvalidConfig)
	}
	return nil
}

// chunks splits [Start, End] into inclusive ranges of at most ChunkSize values
func (c Config) chunks() [][2]uint32 {
	var out [][2]uint32
	for lo := uint64(c.Start); lo <= uint64(c.End); lo += uint64(c.ChunkSize) {
		hi := min(lo+uint64(c.ChunkSize)-1, uint64(c.End))
		out = append(out, [2]uint32{uint32(lo), uint32(hi)})
	}
	return out
}
