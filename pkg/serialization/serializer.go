package serialization

import (
	"fmt"

	"github.com/eigerco/yeti/pkg/serialization/codec"
)

// Serializer provides methods to encode and decode scalar values using a specified codec.
type Serializer struct {
	codec codec.Codec
}

// NewSerializer initializes a new Serializer with the given codec.
func NewSerializer(c codec.Codec) *Serializer {
	return &Serializer{codec: c}
}

// Encode serializes v in its shortest form.
func (s *Serializer) Encode(v uint32) ([]byte, error) {
	return s.codec.Marshal(v)
}

// EncodeWidth serializes v using exactly width bytes.
func (s *Serializer) EncodeWidth(v uint32, width uint8) ([]byte, error) {
	return s.codec.MarshalWidth(v, width)
}

// Decode deserializes the scalar value at the start of data.
func (s *Serializer) Decode(data []byte) (uint32, error) {
	var v uint32
	if err := s.codec.Unmarshal(data, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// RoundTrip decodes data, then measures and encodes the decoded value again.
// For a shortest form encoding the result equals the encoded prefix of data.
func (s *Serializer) RoundTrip(data []byte) ([]byte, error) {
	v, err := s.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding: %w", err)
	}
	out, err := s.codec.MarshalWidth(v, s.codec.Width(v))
	if err != nil {
		return nil, fmt.Errorf("re-encoding %#x: %w", v, err)
	}
	return out, nil
}
