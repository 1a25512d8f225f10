package utf8

import (
	"errors"
)

var (
	// ErrInvalidInput is returned when an encode request has no usable width or destination
	ErrInvalidInput = errors.New("invalid encode input")
	// ErrInvalidCodePoint is returned for surrogates and values above MaxScalar
	ErrInvalidCodePoint = errors.New("invalid code point")
	ErrEmptyInput       = errors.New("empty input")
	// ErrMalformedLeadingByte is returned when the leading byte declares no supported width
	ErrMalformedLeadingByte      = errors.New("malformed leading byte")
	ErrMalformedContinuationByte = errors.New("malformed continuation byte")
	// ErrTruncatedInput is returned when the input is shorter than the width its leading byte declares
	ErrTruncatedInput   = errors.New("truncated input")
	ErrOverlongEncoding = errors.New("overlong encoding")
)

const (
	errWidth        = "width %d: %w"
	errCodePoint    = "code point %#x: %w"
	errLeadingByte  = "leading byte %#02x: %w"
	errContinuation = "byte %d (%#02x): %w"
	errTruncated    = "need %d bytes, have %d: %w"
)
