package sweep

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"

	"github.com/eigerco/yeti/pkg/serialization"
	"github.com/eigerco/yeti/pkg/serialization/codec"
	"github.com/eigerco/yeti/pkg/serialization/codec/utf8"
)

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Record(v uint32, encoded []byte) error {
	args := m.Called(v, encoded)
	return args.Error(0)
}

// corruptCodec decodes one chosen value as its successor
type corruptCodec struct {
	codec.UTF8Codec
	target uint32
}

func (c *corruptCodec) Unmarshal(data []byte, v *uint32) error {
	if err := c.UTF8Codec.Unmarshal(data, v); err != nil {
		return err
	}
	if *v == c.target {
		*v++
	}
	return nil
}

func testConfig(start, end uint32) Config {
	return Config{Start: start, End: end, Workers: 4, ChunkSize: 37, LineEvery: 100}
}

// expectedArtifact builds the artifact one value at a time
func expectedArtifact(t *testing.T, start, end, lineEvery uint32) []byte {
	var out []byte
	for v := start; v <= end; v++ {
		if utf8.Validate(v) != nil {
			continue
		}
		enc, err := utf8.Encode(v, utf8.Width(v))
		require.NoError(t, err)
		out = append(out, enc...)
		if v%lineEvery == 0 {
			out = append(out, '\n')
		}
	}
	return out
}

func requireSameArtifact(t *testing.T, expected, actual []byte) {
	if bytes.Equal(expected, actual) {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(expected)),
		B:        difflib.SplitLines(string(actual)),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  1,
	})
	t.Fatalf("artifact mismatch:\n%s", diff)
}

func TestSweepArtifact(t *testing.T) {
	s, err := New(testConfig(0, 0x1000), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	var buf bytes.Buffer
	report, err := s.Run(context.Background(), &buf)
	require.NoError(t, err)

	expected := expectedArtifact(t, 0, 0x1000, 100)
	requireSameArtifact(t, expected, buf.Bytes())

	assert.True(t, report.OK())
	assert.Equal(t, uint64(0x1001), report.Checked)
	assert.Equal(t, uint64(0x1001), report.Encoded)
	assert.Zero(t, report.Skipped)
	assert.Equal(t, blake2b.Sum256(expected), report.Digest)
	// value 0 starts the artifact with NUL and a line break
	assert.Equal(t, []byte{0x00, '\n', 0x01}, buf.Bytes()[:3])
}

func TestSweepSkipsSurrogates(t *testing.T) {
	s, err := New(testConfig(0xD700, 0xE0FF), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	var buf bytes.Buffer
	report, err := s.Run(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, uint64(0xA00), report.Checked)
	assert.Equal(t, uint64(0x800), report.Skipped)
	assert.Equal(t, uint64(0x200), report.Encoded)
	requireSameArtifact(t, expectedArtifact(t, 0xD700, 0xE0FF, 100), buf.Bytes())
}

func TestSweepAboveMaxScalar(t *testing.T) {
	s, err := New(testConfig(utf8.MaxScalar-9, utf8.MaxScalar+10), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	report, err := s.Run(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, uint64(10), report.Encoded)
	assert.Equal(t, uint64(10), report.Skipped)
}

func TestSweepDeterministicAcrossWorkers(t *testing.T) {
	var artifacts [][]byte
	for _, workers := range []int{1, 3, 16} {
		cfg := Config{Start: 0x700, End: 0x12000, Workers: workers, ChunkSize: 1000, LineEvery: 100}
		s, err := New(cfg, WithLogger(zerolog.Nop()))
		require.NoError(t, err)

		var buf bytes.Buffer
		report, err := s.Run(context.Background(), &buf)
		require.NoError(t, err)
		require.True(t, report.OK())
		artifacts = append(artifacts, buf.Bytes())
	}
	requireSameArtifact(t, artifacts[0], artifacts[1])
	requireSameArtifact(t, artifacts[0], artifacts[2])
}

func TestSweepSink(t *testing.T) {
	sink := new(MockSink)
	sink.On("Record", uint32(0x20AC), []byte{0xE2, 0x82, 0xAC}).Return(nil).Once()
	sink.On("Record", mock.AnythingOfType("uint32"), mock.Anything).Return(nil)

	s, err := New(testConfig(0x2000, 0x20FF), WithSink(sink), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	report, err := s.Run(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, uint64(0x100), report.Encoded)

	sink.AssertExpectations(t)
	sink.AssertNumberOfCalls(t, "Record", 0x100)
}

func TestSweepSinkFailureAborts(t *testing.T) {
	errFull := errors.New("disk full")
	sink := new(MockSink)
	sink.On("Record", uint32(0x45), mock.Anything).Return(errFull)
	sink.On("Record", mock.AnythingOfType("uint32"), mock.Anything).Return(nil)

	s, err := New(testConfig(0, 0x1000), WithSink(sink), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	_, err = s.Run(context.Background(), &bytes.Buffer{})
	require.ErrorIs(t, err, errFull)
}

func TestSweepReportsMismatch(t *testing.T) {
	ser := serialization.NewSerializer(&corruptCodec{target: 0x20AC})
	s, err := New(testConfig(0x2000, 0x20FF), WithSerializer(ser), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	var buf bytes.Buffer
	report, err := s.Run(context.Background(), &buf)
	require.NoError(t, err)

	require.False(t, report.OK())
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, uint32(0x20AC), report.Mismatches[0].Value)
	assert.ErrorIs(t, report.Mismatches[0].Err, ErrValueMismatch)
	assert.Equal(t, uint64(0xFF), report.Encoded)
	assert.NotContains(t, buf.String(), "€")
}

func TestSweepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := new(MockSink)
	s, err := New(testConfig(0, 0x1000), WithSink(sink), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = s.Run(ctx, &buf)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
	sink.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestSweepFullRange(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full code point sweep in short mode")
	}

	cfg := DefaultConfig()
	s, err := New(cfg, WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	var buf bytes.Buffer
	report, err := s.Run(context.Background(), &buf)
	require.NoError(t, err)

	assert.True(t, report.OK(), "mismatches: %v", report.Mismatches)
	assert.Equal(t, uint64(utf8.MaxScalar+1), report.Checked)
	assert.Equal(t, uint64(utf8.SurrogateMax-utf8.SurrogateMin+1), report.Skipped)
	assert.Equal(t, report.Checked-report.Skipped, report.Encoded)
}

func TestConfig(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	testCases := []struct {
		name string
		cfg  Config
	}{
		{"end before start", Config{Start: 10, End: 9, Workers: 1, ChunkSize: 1, LineEvery: 1}},
		{"no workers", Config{Workers: 0, ChunkSize: 1, LineEvery: 1}},
		{"no chunk size", Config{Workers: 1, ChunkSize: 0, LineEvery: 1}},
		{"no line break interval", Config{Workers: 1, ChunkSize: 1}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestConfigChunks(t *testing.T) {
	cfg := Config{Start: 5, End: 14, ChunkSize: 4}
	assert.Equal(t, [][2]uint32{{5, 8}, {9, 12}, {13, 14}}, cfg.chunks())

	cfg = Config{Start: ^uint32(0) - 2, End: ^uint32(0), ChunkSize: 2}
	assert.Equal(t, [][2]uint32{{^uint32(0) - 2, ^uint32(0) - 1}, {^uint32(0), ^uint32(0)}}, cfg.chunks())
}
