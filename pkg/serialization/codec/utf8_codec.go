package codec

import (
	"github.com/eigerco/yeti/pkg/serialization/codec/utf8"
)

// UTF8Codec implements the Codec interface for the variable width text encoding.
// Unmarshal accepts any structurally well formed sequence.
type UTF8Codec struct{}

// NewUTF8Codec initializes an instance of the lenient text codec
func NewUTF8Codec() *UTF8Codec {
	return &UTF8Codec{}
}

func (c *UTF8Codec) Width(v uint32) uint8 {
	return utf8.Width(v)
}

func (c *UTF8Codec) Marshal(v uint32) ([]byte, error) {
	return utf8.Encode(v, utf8.Width(v))
}

func (c *UTF8Codec) MarshalWidth(v uint32, width uint8) ([]byte, error) {
	return utf8.Encode(v, width)
}

func (c *UTF8Codec) Unmarshal(data []byte, v *uint32) error {
	decoded, err := utf8.Decode(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// StrictUTF8Codec rejects surrogates, out of range values and overlong forms on Unmarshal
type StrictUTF8Codec struct {
	UTF8Codec
}

func NewStrictUTF8Codec() *StrictUTF8Codec {
	return &StrictUTF8Codec{}
}

func (c *StrictUTF8Codec) Unmarshal(data []byte, v *uint32) error {
	decoded, err := utf8.DecodeStrict(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}
