package utf8

import (
	"fmt"
)

// Decode returns the scalar value encoded at the start of b.
// Bytes past the width declared by the leading byte are ignored.
func Decode(b []byte) (uint32, error) {
	v, _, err := DecodeWidth(b)
	return v, err
}

// DecodeWidth is Decode that also reports how many bytes the encoding occupies.
// It does not check that the result is a valid or shortest-form scalar value, see DecodeStrict.
func DecodeWidth(b []byte) (uint32, uint8, error) {
	if len(b) == 0 {
		return 0, 0, ErrEmptyInput
	}

	lead := b[0]
	width := leadingOnes(lead, MaxWidth+1)
	switch {
	case width == 0:
		return uint32(lead), 1, nil
	case width == 1 || width > MaxWidth:
		return 0, 0, fmt.Errorf(errLeadingByte, lead, ErrMalformedLeadingByte)
	}

	if len(b) < width {
		return 0, 0, fmt.Errorf(errTruncated, width, len(b), ErrTruncatedInput)
	}

	var (
		v      uint32
		offset uint
	)
	for i := width - 1; i > 0; i-- {
		c := b[i]
		if !testBit(c, 7) || testBit(c, 6) {
			return 0, 0, fmt.Errorf(errContinuation, i, c, ErrMalformedContinuationByte)
		}
		v |= uint32(c&continuationMask) << offset
		offset += continuationBits
	}
	v |= uint32(lead&payloadMask(width)) << offset

	return v, uint8(width), nil
}

// DecodeStrict decodes b and additionally rejects surrogates, values above MaxScalar
// and encodings longer than the shortest form.
func DecodeStrict(b []byte) (uint32, error) {
	v, width, err := DecodeWidth(b)
	if err != nil {
		return 0, err
	}
	if err := Validate(v); err != nil {
		return 0, err
	}
	if Width(v) != width {
		return 0, fmt.Errorf("%d bytes for %#x: %w", width, v, ErrOverlongEncoding)
	}
	return v, nil
}
