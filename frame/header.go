// Package frame implements the LZ4 frame format: a self-describing
// container of LZ4 blocks with checksums, suitable for streaming and
// interchange with other LZ4 implementations.
//
// A frame is a magic number, a descriptor (block size, block linkage,
// optional content size and dictionary id, checksum flags), a sequence of
// blocks each prefixed by a 4-byte size word, an end mark, and an optional
// content checksum. All checksums are xxHash32 with seed 0.
package frame

import (
	"encoding/binary"

	"github.com/pierrec/xxHash/xxHash32"
)

const (
	frameMagic        uint32 = 0x184D2204
	skippableMagicMin uint32 = 0x184D2A50
	skippableMagicMax uint32 = 0x184D2A5F
)

// FLG byte layout.
const (
	versionMask         byte = 0xC0
	versionBits         byte = 0x40 // format version 01
	flagIndependent     byte = 0x20
	flagBlockChecksums  byte = 0x10
	flagContentSize     byte = 0x08
	flagContentChecksum byte = 0x04
	flagDictID          byte = 0x01

	// Reserved for future format versions; must be zero.
	flagReserved   byte = 0x02
	bdReservedMask byte = 0x8F
)

// blockUncompressedBit marks a block stored without compression in its
// size word. A size word of zero is the end mark.
const blockUncompressedBit uint32 = 0x80000000

// maxWindow is how far back linked blocks may reference, independent of the
// block size.
const maxWindow = 64 * 1024

// A BlockSize is the frame descriptor's code for the maximum decoded size
// of a block.
type BlockSize byte

// Valid block size codes. Codes below Block64KB are reserved by the format.
const (
	Block64KB  BlockSize = 4
	Block256KB BlockSize = 5
	Block1MB   BlockSize = 6
	Block4MB   BlockSize = 7
)

func (b BlockSize) valid() bool {
	return b >= Block64KB && b <= Block4MB
}

// Bytes returns the block size in bytes.
func (b BlockSize) Bytes() int {
	return 1 << (8 + 2*b)
}

// A Header describes a frame. The zero value is a usable default:
// independent 64 KiB blocks, no checksums, no declared content size.
type Header struct {
	// BlockSize is the maximum decoded size of each block. The zero
	// value selects Block64KB.
	BlockSize BlockSize

	// Linked chains blocks together: match offsets may reference the
	// last 64 KiB of the preceding blocks. Smaller output, but blocks
	// can only be decoded in order.
	Linked bool

	// BlockChecksums appends an xxHash32 checksum to every block.
	BlockChecksums bool

	// ContentChecksum appends an xxHash32 checksum of the whole decoded
	// stream after the end mark.
	ContentChecksum bool

	// ContentSize, when nonzero, is recorded in the header and verified
	// against the decoded length.
	ContentSize uint64

	// DictID, when nonzero, records the id of the external dictionary
	// the frame was compressed with.
	DictID uint32
}

func (h Header) blockSize() BlockSize {
	if h.BlockSize == 0 {
		return Block64KB
	}
	return h.BlockSize
}

// appendTo serializes the magic number and frame descriptor, including the
// header checksum byte: the second byte of the xxHash32 of the descriptor.
func (h Header) appendTo(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, frameMagic)

	flg := versionBits
	if !h.Linked {
		flg |= flagIndependent
	}
	if h.BlockChecksums {
		flg |= flagBlockChecksums
	}
	if h.ContentSize > 0 {
		flg |= flagContentSize
	}
	if h.ContentChecksum {
		flg |= flagContentChecksum
	}
	if h.DictID != 0 {
		flg |= flagDictID
	}

	mark := len(dst)
	dst = append(dst, flg, byte(h.blockSize())<<4)
	if h.ContentSize > 0 {
		dst = binary.LittleEndian.AppendUint64(dst, h.ContentSize)
	}
	if h.DictID != 0 {
		dst = binary.LittleEndian.AppendUint32(dst, h.DictID)
	}

	hc := byte(xxHash32.Checksum(dst[mark:], 0) >> 8)
	return append(dst, hc)
}

// parseDescriptor decodes the frame descriptor bytes that follow the magic
// number. flg and bd are the two fixed bytes; rest holds the optional
// fields and the header checksum byte, in order.
func parseDescriptor(flg, bd byte, rest []byte) (Header, error) {
	var h Header

	if flg&versionMask != versionBits {
		return h, errVersion
	}
	if flg&flagReserved != 0 || bd&bdReservedMask != 0 {
		return h, errReservedBits
	}

	h.Linked = flg&flagIndependent == 0
	h.BlockChecksums = flg&flagBlockChecksums != 0
	h.ContentChecksum = flg&flagContentChecksum != 0

	h.BlockSize = BlockSize(bd >> 4 & 0x07)
	if !h.BlockSize.valid() {
		return h, errBlockSizeCode
	}

	if flg&flagContentSize != 0 {
		h.ContentSize = binary.LittleEndian.Uint64(rest)
		rest = rest[8:]
	}
	if flg&flagDictID != 0 {
		h.DictID = binary.LittleEndian.Uint32(rest)
		rest = rest[4:]
	}

	return h, nil
}

// descriptorLen returns how many bytes of optional fields plus the header
// checksum byte follow FLG and BD.
func descriptorLen(flg byte) int {
	n := 1 // header checksum
	if flg&flagContentSize != 0 {
		n += 8
	}
	if flg&flagDictID != 0 {
		n += 4
	}
	return n
}
