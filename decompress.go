package lz4

import "encoding/binary"

// Decompress decodes a single LZ4 block. maxSize is the size the output is
// allowed to reach; decoding that would exceed it fails with an error
// wrapping ErrCorrupt. The returned slice's length is the actual decoded
// size, which may be smaller.
func Decompress(src []byte, maxSize int) ([]byte, error) {
	return DecompressWithDict(src, maxSize, nil)
}

// DecompressWithDict is like Decompress, with dict installed as a virtual
// prefix of the output that match offsets may reach into. It must be the
// same dictionary the block was compressed with.
func DecompressWithDict(src []byte, maxSize int, dict []byte) ([]byte, error) {
	if maxSize < 0 {
		return nil, errOutputOverrun
	}

	// The margin past maxSize lets the fast copy path round writes up to
	// whole words without touching caller-visible memory.
	dst := make([]byte, maxSize+decodeMargin)
	n, err := decompressBlock(dst, maxSize, src, dict)
	if err != nil {
		return nil, err
	}
	return dst[:n:n], nil
}

// DecompressInto decodes a single LZ4 block into dst and returns the
// number of bytes written. The block must fit in dst exactly; decoding
// that would write past len(dst) fails with an error wrapping ErrCorrupt.
func DecompressInto(src, dst []byte) (int, error) {
	return decompressBlock(dst, len(dst), src, nil)
}

// DecompressIntoWithDict is DecompressInto with an external dictionary.
func DecompressIntoWithDict(src, dst, dict []byte) (int, error) {
	return decompressBlock(dst, len(dst), src, dict)
}

// DecompressSizePrepended decodes a block produced by CompressPrependSize.
// The decoded size must match the prefix exactly.
func DecompressSizePrepended(src []byte) ([]byte, error) {
	if len(src) < sizePrefixLen {
		return nil, errMissingSize
	}
	size := int(binary.LittleEndian.Uint32(src))

	out, err := Decompress(src[sizePrefixLen:], size)
	if err != nil {
		return nil, err
	}
	if len(out) != size {
		return nil, errSizeMismatch
	}
	return out, nil
}
