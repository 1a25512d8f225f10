package utf8

import (
	"fmt"
)

// Encode returns the width-byte encoding of v.
// The width is trusted: a width smaller than Width(v) silently drops the bits that do not fit.
func Encode(v uint32, width uint8) ([]byte, error) {
	if width == 0 || width > MaxWidth {
		return nil, fmt.Errorf(errWidth, width, ErrInvalidInput)
	}
	dst := make([]byte, width)
	if err := EncodeInto(dst, v); err != nil {
		return nil, err
	}
	return dst, nil
}

// EncodeInto writes the encoding of v into dst, using len(dst) as the width.
// dst is left untouched on failure.
func EncodeInto(dst []byte, v uint32) error {
	width := len(dst)
	if width == 0 || width > MaxWidth {
		return fmt.Errorf(errWidth, width, ErrInvalidInput)
	}
	if err := Validate(v); err != nil {
		return err
	}

	if width == 1 {
		dst[0] = byte(v)
		return nil
	}

	// Fill from the least significant byte, 6 payload bits at a time
	var used uint
	for i := width - 1; i > 0; i-- {
		b := byte(v >> used)
		b = setBit(b, 7)
		b = clearBit(b, 6)
		dst[i] = b
		used += continuationBits
	}

	lead := byte(v>>used) & payloadMask(width)
	for i := 0; i < width; i++ {
		lead = setBit(lead, uint(7-i))
	}
	dst[0] = clearBit(lead, uint(7-width))
	return nil
}

// Append appends the shortest encoding of v to dst
func Append(dst []byte, v uint32) ([]byte, error) {
	var buf [MaxWidth]byte
	enc := buf[:Width(v)]
	if err := EncodeInto(enc, v); err != nil {
		return dst, err
	}
	return append(dst, enc...), nil
}

// payloadMask selects the bits of a leading byte that carry value for the given width
func payloadMask(width int) byte {
	return byte(0xFF >> (width + 1))
}
