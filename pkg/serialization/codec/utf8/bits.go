package utf8

import (
	"math/bits"
)

type word interface {
	uint8 | uint32
}

func setBit[T word](x T, pos uint) T {
	return x | 1<<pos
}

func clearBit[T word](x T, pos uint) T {
	return x &^ (1 << pos)
}

func testBit[T word](x T, pos uint) bool {
	return x&(1<<pos) != 0
}

// leadingOnes counts the consecutive 1 bits of b starting at bit 7, capped at limit
func leadingOnes(b byte, limit int) int {
	n := bits.LeadingZeros8(^b)
	if n > limit {
		return limit
	}
	return n
}
