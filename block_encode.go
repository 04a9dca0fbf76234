package lz4

import "encoding/binary"

// CompressBound returns the worst-case size of compressing n bytes: the
// incompressible case costs one token byte plus a length continuation byte
// per 255 literals, plus a small constant. Callers can pre-size output
// buffers with it; CompressInto never writes more than this.
func CompressBound(n int) int {
	return n + n/255 + 16
}

// appendBlock serializes src as an LZ4 block using the match information in
// matches, appending to dst. Each token is a header byte holding the
// literal-run length and the match length in two nibbles, length
// continuations in 255-a-byte form, the literal bytes, and a 2-byte
// little-endian offset. The block always closes with a literals-only token,
// which may be empty.
func appendBlock(dst []byte, src []byte, matches []Match) []byte {
	pos := 0
	for _, m := range matches {
		if m.Length == 0 {
			// A terminal literals-only entry; the closing token below
			// picks these bytes up.
			continue
		}

		token := byte(0)
		if m.Unmatched >= 15 {
			token |= 0xf0
		} else {
			token |= byte(m.Unmatched << 4)
		}
		if m.Length-minMatch >= 15 {
			token |= 0x0f
		} else {
			token |= byte(m.Length - minMatch)
		}
		dst = append(dst, token)

		if m.Unmatched >= 15 {
			dst = appendLength(dst, m.Unmatched-15)
		}
		dst = append(dst, src[pos:pos+m.Unmatched]...)

		dst = binary.LittleEndian.AppendUint16(dst, uint16(m.Distance))
		if m.Length-minMatch >= 15 {
			dst = appendLength(dst, m.Length-minMatch-15)
		}

		pos += m.Unmatched + m.Length
	}

	// The closing literals-only token.
	trailing := len(src) - pos
	token := byte(0)
	if trailing >= 15 {
		token |= 0xf0
	} else {
		token |= byte(trailing << 4)
	}
	dst = append(dst, token)
	if trailing >= 15 {
		dst = appendLength(dst, trailing-15)
	}
	dst = append(dst, src[pos:]...)

	return dst
}

// appendLength appends n to dst in LZ4's variable-length format: a byte of
// 255 for each full 255 in n, then the remainder.
func appendLength(dst []byte, n int) []byte {
	for n >= 255 {
		dst = append(dst, 255)
		n -= 255
	}
	dst = append(dst, byte(n))
	return dst
}
