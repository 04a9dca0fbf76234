package frame

import (
	"errors"
	"fmt"

	"github.com/flexpack/lz4"
)

// Error categories. Checksum failures wrap ErrChecksumMismatch so callers
// can tell data-integrity failures apart from structural corruption, which
// wraps lz4.ErrCorrupt.
var (
	// ErrWrongMagic is returned when the stream does not start with the
	// LZ4 frame magic number.
	ErrWrongMagic = errors.New("lz4: frame: wrong magic number")

	// ErrUnsupported is returned when the frame descriptor requests a
	// capability this implementation does not have.
	ErrUnsupported = errors.New("lz4: frame: unsupported feature")

	// ErrChecksumMismatch is returned when a stored checksum does not
	// match the data. The stream is not recoverable.
	ErrChecksumMismatch = errors.New("lz4: frame: checksum mismatch")

	// ErrClosed is returned from operations on a closed Writer.
	ErrClosed = errors.New("lz4: frame: writer is closed")
)

var (
	errVersion       = fmt.Errorf("%w: frame version", ErrUnsupported)
	errBlockSizeCode = fmt.Errorf("%w: reserved block size code", ErrUnsupported)
	errReservedBits  = fmt.Errorf("%w: reserved descriptor bits set", ErrUnsupported)
	errDictRequired  = fmt.Errorf("%w: frame requires an external dictionary", ErrUnsupported)

	errHeaderChecksum  = fmt.Errorf("%w: frame header", ErrChecksumMismatch)
	errBlockChecksum   = fmt.Errorf("%w: block", ErrChecksumMismatch)
	errContentChecksum = fmt.Errorf("%w: content", ErrChecksumMismatch)

	errTruncated     = fmt.Errorf("%w: truncated frame", lz4.ErrCorrupt)
	errBlockTooLarge = fmt.Errorf("%w: block larger than the declared maximum", lz4.ErrCorrupt)
	errContentSize   = fmt.Errorf("%w: decoded length does not match the declared content size", lz4.ErrCorrupt)
	errWriterSize    = errors.New("lz4: frame: written length does not match Header.ContentSize")
)
