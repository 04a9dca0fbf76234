package lz4

import (
	"encoding/binary"
	"math/bits"
)

// This file is the buffer access layer: the copy and load primitives shared
// by the encoder and decoder. Each copy operation comes in two forms with
// identical results. The checked form validates every access against the
// buffer bounds and reports violations as errors; the fast form assumes the
// caller has already validated the operation at token granularity and copies
// in 8-byte words where the destination has room. The lz4safe build tag
// (safety_*.go) selects which form the decoder's hot loop uses.

// decodeMargin is the spare capacity Decompress allocates past the logical
// output size so the fast copy loops can round writes up to a full word.
const decodeMargin = 8

func loadU16(b []byte, i int) uint16 {
	return binary.LittleEndian.Uint16(b[i:])
}

func loadU32(b []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(b[i:])
}

func loadU64(b []byte, i int) uint64 {
	return binary.LittleEndian.Uint64(b[i:])
}

// extendMatch returns the largest k such that k <= len(src) and
// src[match:match+k-pos] and src[pos:k] have the same contents.
// It requires match < pos.
func extendMatch(src []byte, match, pos int) int {
	for pos+8 <= len(src) {
		a := loadU64(src, match)
		b := loadU64(src, pos)
		if a != b {
			// The index of the first differing byte: the XOR has its
			// lowest set bit inside that byte (little-endian).
			return pos + bits.TrailingZeros64(a^b)>>3
		}
		match += 8
		pos += 8
	}
	for pos < len(src) && src[match] == src[pos] {
		match++
		pos++
	}
	return pos
}

// copyLiterals copies a literal run into dst at pos. The caller validates
// bounds; this is a plain copy in both safety modes.
func copyLiterals(dst []byte, pos int, lit []byte) {
	copy(dst[pos:], lit)
}

// copyMatchChecked replays length bytes from pos-offset into dst at pos,
// validating every bound before touching the buffer. When offset < length
// the source overlaps the destination and the copy proceeds byte by byte so
// that repeating patterns replicate correctly.
func copyMatchChecked(dst []byte, pos, offset, length int) error {
	src := pos - offset
	if src < 0 || offset == 0 {
		return errCopyOutOfBounds
	}
	if pos+length > len(dst) {
		return errCopyOutOfBounds
	}

	if offset >= length {
		copy(dst[pos:pos+length], dst[src:src+length])
		return nil
	}

	for i := 0; i < length; i++ {
		dst[pos+i] = dst[src+i]
	}
	return nil
}

// copyMatchFast is the unchecked counterpart of copyMatchChecked. The
// caller must have validated offset and length against the logical output
// bounds already; full may extend past the logical output (the decode
// margin), and copies are rounded up to 8-byte words where it has room.
func copyMatchFast(full []byte, pos, offset, length int) {
	src := pos - offset

	if offset >= 8 {
		n := 0
		for n < length && pos+n+8 <= len(full) {
			binary.LittleEndian.PutUint64(full[pos+n:], loadU64(full, src+n))
			n += 8
		}
		if n >= length {
			return
		}
		pos += n
		src += n
		length -= n
	}

	// Overlapping or tail copy: byte by byte.
	for i := 0; i < length; i++ {
		full[pos+i] = full[src+i]
	}
}

// copyMatchAcross replays a match whose source begins in an external
// dictionary, treated as a virtual prefix of dst. Bounds are validated by
// the caller; the dst-resident part may still self-overlap.
func copyMatchAcross(dst []byte, pos, offset, length int, dict []byte) {
	src := pos - offset
	for i := 0; i < length; i++ {
		at := src + i
		if at < 0 {
			dst[pos+i] = dict[len(dict)+at]
		} else {
			dst[pos+i] = dst[at]
		}
	}
}
