package frame

import (
	"encoding/binary"
	"errors"
	"hash"
	"io"

	"github.com/pierrec/xxHash/xxHash32"

	"github.com/flexpack/lz4"
)

type readerState int

// The decoder advances through the frame one structural element per step:
// header, then blocks until the end mark, then done.
const (
	stateHeader readerState = iota
	stateBlocks
	stateDone
)

// A Reader decompresses an LZ4 frame read from an underlying reader. It
// holds one decoded block plus the 64 KiB linked-mode window, regardless of
// the total stream length, and keeps all decoder state between Read calls.
type Reader struct {
	src    io.Reader
	header Header
	state  readerState
	err    error

	dict     []byte
	window   []byte // linked-mode history, at most maxWindow bytes
	decoded  []byte // the current block's remaining output
	pos      int
	blockDst []byte
	compBuf  []byte
	hasher   hash.Hash32
	produced uint64
	scratch  [16]byte
}

// NewReader returns a Reader decompressing the LZ4 frame from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{src: r}
}

// SetDict provides the external dictionary the frame was compressed with.
// It must be called before the first Read. A frame that declares a
// dictionary id fails with ErrUnsupported if no dictionary is set; matching
// the id against the right dictionary is the caller's business.
func (z *Reader) SetDict(dict []byte) {
	if len(dict) > maxWindow {
		dict = dict[len(dict)-maxWindow:]
	}
	z.dict = dict
}

// Header returns the frame descriptor, reading it from the stream first if
// necessary.
func (z *Reader) Header() (Header, error) {
	if z.state == stateHeader && z.err == nil {
		z.err = z.readHeader()
	}
	if z.err != nil {
		return Header{}, z.err
	}
	return z.header, nil
}

func (z *Reader) Read(p []byte) (int, error) {
	for {
		if z.pos < len(z.decoded) {
			n := copy(p, z.decoded[z.pos:])
			z.pos += n
			return n, nil
		}
		if z.err != nil {
			return 0, z.err
		}

		switch z.state {
		case stateHeader:
			if err := z.readHeader(); err != nil {
				z.err = err
				return 0, err
			}
		case stateBlocks:
			if err := z.nextBlock(); err != nil {
				z.err = err
				return 0, err
			}
		case stateDone:
			return 0, io.EOF
		}
	}
}

// readHeader consumes the magic number and frame descriptor, skipping any
// skippable frames that precede the real one.
func (z *Reader) readHeader() error {
	for {
		if err := z.readFull(z.scratch[:4], true); err != nil {
			return err
		}
		magic := binary.LittleEndian.Uint32(z.scratch[:4])

		if magic >= skippableMagicMin && magic <= skippableMagicMax {
			if err := z.readFull(z.scratch[:4], false); err != nil {
				return err
			}
			n := binary.LittleEndian.Uint32(z.scratch[:4])
			if _, err := io.CopyN(io.Discard, z.src, int64(n)); err != nil {
				return errTruncated
			}
			continue
		}
		if magic != frameMagic {
			return ErrWrongMagic
		}
		break
	}

	if err := z.readFull(z.scratch[:2], false); err != nil {
		return err
	}
	flg, bd := z.scratch[0], z.scratch[1]
	extra := descriptorLen(flg)
	if err := z.readFull(z.scratch[2:2+extra], false); err != nil {
		return err
	}

	// The header checksum byte covers FLG through the last optional field.
	desc := z.scratch[:2+extra-1]
	if byte(xxHash32.Checksum(desc, 0)>>8) != z.scratch[2+extra-1] {
		return errHeaderChecksum
	}

	h, err := parseDescriptor(flg, bd, z.scratch[2:2+extra-1])
	if err != nil {
		return err
	}
	z.header = h

	if h.DictID != 0 && z.dict == nil {
		return errDictRequired
	}
	if h.ContentChecksum {
		z.hasher = xxHash32.New(0)
	}
	if h.Linked && z.dict != nil {
		z.window = append(z.window[:0], z.dict...)
	}
	z.blockDst = make([]byte, h.blockSize().Bytes())
	z.state = stateBlocks
	return nil
}

// nextBlock reads and decodes one block, or handles the end mark.
func (z *Reader) nextBlock() error {
	if err := z.readFull(z.scratch[:4], false); err != nil {
		return err
	}
	word := binary.LittleEndian.Uint32(z.scratch[:4])
	if word == 0 {
		return z.finish()
	}

	stored := word&blockUncompressedBit != 0
	size := int(word &^ blockUncompressedBit)
	blockCap := z.header.blockSize().Bytes()
	if stored && size > blockCap {
		return errBlockTooLarge
	}
	if !stored && size > lz4.CompressBound(blockCap) {
		return errBlockTooLarge
	}

	if cap(z.compBuf) < size {
		z.compBuf = make([]byte, size)
	}
	payload := z.compBuf[:size]
	if err := z.readFull(payload, false); err != nil {
		return err
	}

	if z.header.BlockChecksums {
		if err := z.readFull(z.scratch[:4], false); err != nil {
			return err
		}
		if binary.LittleEndian.Uint32(z.scratch[:4]) != xxHash32.Checksum(payload, 0) {
			return errBlockChecksum
		}
	}

	var n int
	if stored {
		n = copy(z.blockDst, payload)
	} else {
		var err error
		n, err = lz4.DecompressIntoWithDict(payload, z.blockDst, z.blockDict())
		if err != nil {
			return err
		}
	}

	z.decoded = z.blockDst[:n]
	z.pos = 0
	if z.header.Linked {
		z.window = appendWindow(z.window, z.decoded)
	}
	if z.hasher != nil {
		z.hasher.Write(z.decoded)
	}
	z.produced += uint64(n)
	return nil
}

// blockDict returns the history the current block's offsets may reference:
// the rolling window in linked mode, the external dictionary (for every
// block) in independent mode.
func (z *Reader) blockDict() []byte {
	if z.header.Linked {
		return z.window
	}
	return z.dict
}

// finish validates the stream trailer at the end mark.
func (z *Reader) finish() error {
	z.state = stateDone
	if z.hasher != nil {
		if err := z.readFull(z.scratch[:4], false); err != nil {
			return err
		}
		if binary.LittleEndian.Uint32(z.scratch[:4]) != z.hasher.Sum32() {
			return errContentChecksum
		}
	}
	if z.header.ContentSize > 0 && z.produced != z.header.ContentSize {
		return errContentSize
	}
	return nil
}

func (z *Reader) readFull(buf []byte, eofOK bool) error {
	_, err := io.ReadFull(z.src, buf)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF) && eofOK:
		return io.EOF
	case errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF):
		return errTruncated
	}
	return err
}

// appendWindow appends b to the rolling window, keeping only the last
// maxWindow bytes.
func appendWindow(w, b []byte) []byte {
	if len(b) >= maxWindow {
		return append(w[:0], b[len(b)-maxWindow:]...)
	}
	w = append(w, b...)
	if len(w) > maxWindow {
		copy(w, w[len(w)-maxWindow:])
		w = w[:maxWindow]
	}
	return w
}
