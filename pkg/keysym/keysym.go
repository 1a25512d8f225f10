// Package keysym maps X11 keysym values, as reported for key presses by a
// windowing toolkit, to scalar values that the text codec can encode.
package keysym

import (
	"errors"
	"fmt"

	"github.com/eigerco/yeti/pkg/serialization/codec/utf8"
)

var ErrNoScalar = errors.New("keysym has no scalar value")

const (
	NoSymbol uint32 = 0

	BackSpace uint32 = 0xff08
	Tab       uint32 = 0xff09
	Linefeed  uint32 = 0xff0a
	Clear     uint32 = 0xff0b
	Return    uint32 = 0xff0d
	Escape    uint32 = 0xff1b
	Delete    uint32 = 0xffff

	ShiftL uint32 = 0xffe1
	ShiftR uint32 = 0xffe2

	// Keysyms in [unicodeMin, unicodeMax] carry the scalar value in their low 24 bits
	unicodeOffset uint32 = 0x01000000
	unicodeMin    uint32 = 0x01000100
	unicodeMax    uint32 = 0x0110ffff

	kp0 uint32 = 0xffb0
	kp9 uint32 = 0xffb9
)

// function and keypad keys with a control or printable equivalent
var special = map[uint32]uint32{
	BackSpace: 0x08,
	Tab:       0x09,
	Linefeed:  0x0a,
	Clear:     0x0b,
	Return:    0x0d,
	Escape:    0x1b,
	Delete:    0x7f,

	0xff80: ' ',  // KP_Space
	0xff89: 0x09, // KP_Tab
	0xff8d: 0x0d, // KP_Enter
	0xffaa: '*',  // KP_Multiply
	0xffab: '+',  // KP_Add
	0xffac: ',',  // KP_Separator
	0xffad: '-',  // KP_Subtract
	0xffae: '.',  // KP_Decimal
	0xffaf: '/',  // KP_Divide
	0xffbd: '=',  // KP_Equal
}

// ToScalar returns the scalar value typed by sym.
// Modifiers, function keys without a character and unassigned keysyms report false.
func ToScalar(sym uint32) (uint32, bool) {
	switch {
	case sym >= 0x20 && sym <= 0x7e, sym >= 0xa0 && sym <= 0xff:
		return sym, true
	case sym >= unicodeMin && sym <= unicodeMax:
		v := sym - unicodeOffset
		if utf8.Validate(v) != nil {
			return 0, false
		}
		return v, true
	case sym >= kp0 && sym <= kp9:
		return '0' + sym - kp0, true
	}
	v, ok := special[sym]
	return v, ok
}

// Select picks the keysym for the current modifier state from a keycode's
// mapping, the second column being the shifted symbol.
func Select(syms []uint32, shifted bool) uint32 {
	if len(syms) == 0 {
		return NoSymbol
	}
	if shifted && len(syms) > 1 && syms[1] != NoSymbol {
		return syms[1]
	}
	return syms[0]
}

// ToUTF8 returns the encoded character typed by sym
func ToUTF8(sym uint32) ([]byte, error) {
	v, ok := ToScalar(sym)
	if !ok {
		return nil, fmt.Errorf("keysym %#x: %w", sym, ErrNoScalar)
	}
	return utf8.Encode(v, utf8.Width(v))
}
