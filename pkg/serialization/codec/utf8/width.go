// Package utf8 converts single scalar values to and from their 1 to 4 byte
// length-prefixed encoding.
//
// The leading byte of a multi-byte sequence carries as many high 1 bits as
// the sequence has bytes, followed by a 0. Every other byte is a
// continuation byte of the form 10xxxxxx carrying 6 bits of payload.
package utf8

import (
	"fmt"
)

const (
	// MaxScalar is the largest encodable scalar value
	MaxScalar = 0x10FFFF
	// MaxWidth is the widest supported encoding in bytes
	MaxWidth = 4

	SurrogateMin = 0xD800
	SurrogateMax = 0xDFFF

	max1 = 0x7F
	max2 = 0x7FF
	max3 = 0xFFFF

	continuationBits = 6
	continuationMask = 0b0011_1111
)

// Width returns the number of bytes needed to encode v.
// Every value maps to a width, values above MaxScalar report 4 and are rejected by Encode.
func Width(v uint32) uint8 {
	switch {
	case v <= max1:
		return 1
	case v <= max2:
		return 2
	case v <= max3:
		return 3
	default:
		return 4
	}
}

// Validate reports whether v is a scalar value that may be encoded
func Validate(v uint32) error {
	if v > MaxScalar || (v >= SurrogateMin && v <= SurrogateMax) {
		return fmt.Errorf(errCodePoint, v, ErrInvalidCodePoint)
	}
	return nil
}
