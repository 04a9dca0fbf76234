package lz4

import (
	"errors"
	"fmt"
)

// Error categories. Decoding failures wrap ErrCorrupt, so callers can use
// errors.Is(err, lz4.ErrCorrupt) without caring about the exact cause.
var (
	// ErrCorrupt is returned when the compressed data is malformed:
	// a truncated token, an impossible match offset, or a length that
	// runs past the declared output size.
	ErrCorrupt = errors.New("lz4: corrupt compressed data")

	// ErrBufferTooSmall is returned when a caller-supplied destination
	// buffer cannot hold the result. The caller may retry with a larger
	// buffer.
	ErrBufferTooSmall = errors.New("lz4: destination buffer too small")
)

// Specific decode failures, all wrapping ErrCorrupt.
var (
	errTokenTruncated  = fmt.Errorf("%w: block ends in the middle of a token", ErrCorrupt)
	errLengthOverflow  = fmt.Errorf("%w: length continuation runs past the block end", ErrCorrupt)
	errLiteralOverrun  = fmt.Errorf("%w: literal run extends past the block end", ErrCorrupt)
	errOffsetZero      = fmt.Errorf("%w: match offset is zero", ErrCorrupt)
	errOffsetTooFar    = fmt.Errorf("%w: match offset exceeds available history", ErrCorrupt)
	errOutputOverrun   = fmt.Errorf("%w: decoded data exceeds the declared output size", ErrCorrupt)
	errMissingSize     = fmt.Errorf("%w: input too short for a size prefix", ErrCorrupt)
	errSizeMismatch    = fmt.Errorf("%w: decoded size does not match the size prefix", ErrCorrupt)
	errCopyOutOfBounds = fmt.Errorf("%w: copy outside buffer bounds", ErrCorrupt)
)
