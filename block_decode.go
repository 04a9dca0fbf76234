package lz4

// decompressBlock decodes the LZ4 block in src, writing at most limit bytes
// of output into dst. len(dst) may exceed limit by the decode margin, which
// the fast copy path is allowed to scribble into; the logical output is
// still bounds-checked against limit. dict, if non-empty, is treated as a
// virtual prefix of the output that match offsets may reach into.
//
// It returns the number of bytes written. Every structural defect in src
// surfaces as an error wrapping ErrCorrupt.
func decompressBlock(dst []byte, limit int, src, dict []byte) (int, error) {
	var di, si int

	for {
		if si >= len(src) {
			return 0, errTokenTruncated
		}
		token := src[si]
		si++

		// Literal run.
		ll := int(token >> 4)
		if ll == 15 {
			var err error
			ll, si, err = readLength(src, si, ll)
			if err != nil {
				return 0, err
			}
		}
		if ll > 0 {
			if ll > len(src)-si {
				return 0, errLiteralOverrun
			}
			if ll > limit-di {
				return 0, errOutputOverrun
			}
			if safeAccess && di+ll > len(dst) {
				return 0, errCopyOutOfBounds
			}
			copyLiterals(dst, di, src[si:si+ll])
			si += ll
			di += ll
		}

		if si == len(src) {
			// The block ends with a literals-only token.
			return di, nil
		}

		// Match: 2-byte offset, then the extended length.
		if len(src)-si < 2 {
			return 0, errTokenTruncated
		}
		offset := int(loadU16(src, si))
		si += 2
		if offset == 0 {
			return 0, errOffsetZero
		}

		ml := int(token&0x0f) + minMatch
		if ml == 15+minMatch {
			var err error
			ml, si, err = readLength(src, si, ml)
			if err != nil {
				return 0, err
			}
		}

		if offset > di+len(dict) {
			return 0, errOffsetTooFar
		}
		if ml > limit-di {
			return 0, errOutputOverrun
		}

		switch {
		case offset > di:
			// The match starts inside the dictionary prefix.
			copyMatchAcross(dst, di, offset, ml, dict)
		case safeAccess:
			if err := copyMatchChecked(dst[:limit], di, offset, ml); err != nil {
				return 0, err
			}
		default:
			copyMatchFast(dst, di, offset, ml)
		}
		di += ml
	}
}

// readLength reads the 255-a-byte continuation of a length field whose
// nibble was saturated. base is the value accumulated so far. It returns
// the full length and the new input position.
func readLength(src []byte, si, base int) (int, int, error) {
	n := base
	for {
		if si >= len(src) {
			return 0, 0, errLengthOverflow
		}
		b := src[si]
		si++
		n += int(b)
		if n < 0 {
			return 0, 0, errLengthOverflow
		}
		if b != 255 {
			return n, si, nil
		}
	}
}
