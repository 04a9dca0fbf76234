package frame

import (
	"encoding/binary"
	"hash"
	"io"

	"github.com/pierrec/xxHash/xxHash32"

	"github.com/flexpack/lz4"
)

// A Writer compresses data written to it into an LZ4 frame on Dest.
// Configure it through the Header field before the first Write; Close
// finishes the frame. Memory use is bounded by the block size plus the
// match finder's window, whatever the stream length.
type Writer struct {
	// Dest is where the frame is written.
	Dest io.Writer

	// Header configures the frame. Changes after the first Write have
	// no effect.
	Header Header

	comp    lz4.Compressor
	dict    []byte
	buf     []byte // pending uncompressed bytes, less than one block
	out     []byte // scratch for the header and compressed blocks
	hasher  hash.Hash32
	written uint64

	wroteHeader bool
	closed      bool
}

// NewWriter returns a Writer that writes an LZ4 frame to w with the
// default Header.
func NewWriter(w io.Writer) *Writer {
	return &Writer{Dest: w}
}

// SetDict provides an external dictionary to compress against. It must be
// called before the first Write, and the frame can only be decoded with
// the same dictionary; set Header.DictID to record which one it was.
// Only the last 64 KiB of dict are used.
func (w *Writer) SetDict(dict []byte) {
	if len(dict) > maxWindow {
		dict = dict[len(dict)-maxWindow:]
	}
	w.dict = dict
}

func (w *Writer) start() error {
	if w.wroteHeader {
		return nil
	}
	w.wroteHeader = true

	if w.buf == nil {
		w.buf = make([]byte, 0, w.Header.blockSize().Bytes())
	}
	if w.Header.ContentChecksum {
		w.hasher = xxHash32.New(0)
	}
	// In linked mode the dictionary seeds the window once; in
	// independent mode writeBlock re-seeds it for every block.
	if w.Header.Linked && w.dict != nil {
		w.comp.SetDict(w.dict)
	}

	w.out = w.Header.appendTo(w.out[:0])
	_, err := w.Dest.Write(w.out)
	return err
}

func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	if err := w.start(); err != nil {
		return 0, err
	}

	blockCap := w.Header.blockSize().Bytes()
	n := 0
	for len(p) > 0 {
		take := blockCap - len(w.buf)
		if take > len(p) {
			take = len(p)
		}
		w.buf = append(w.buf, p[:take]...)
		p = p[take:]
		n += take

		if len(w.buf) == blockCap {
			if err := w.writeBlock(w.buf); err != nil {
				return n, err
			}
			w.buf = w.buf[:0]
		}
	}
	return n, nil
}

// writeBlock compresses data and writes it as one block, falling back to
// the stored representation when compression does not shrink it, so a
// block never grows by more than its size word.
func (w *Writer) writeBlock(data []byte) error {
	if !w.Header.Linked {
		if w.dict != nil {
			w.comp.SetDict(w.dict)
		} else {
			w.comp.Reset()
		}
	}
	w.out = w.comp.AppendCompressed(w.out[:0], data)

	payload := w.out
	size := uint32(len(payload))
	if len(payload) >= len(data) {
		payload = data
		size = uint32(len(data)) | blockUncompressedBit
	}

	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], size)
	if _, err := w.Dest.Write(word[:]); err != nil {
		return err
	}
	if _, err := w.Dest.Write(payload); err != nil {
		return err
	}
	if w.Header.BlockChecksums {
		binary.LittleEndian.PutUint32(word[:], xxHash32.Checksum(payload, 0))
		if _, err := w.Dest.Write(word[:]); err != nil {
			return err
		}
	}

	if w.hasher != nil {
		w.hasher.Write(data)
	}
	w.written += uint64(len(data))
	return nil
}

// Flush writes any buffered data as a (possibly short) block. It does not
// finish the frame.
func (w *Writer) Flush() error {
	if w.closed {
		return ErrClosed
	}
	if err := w.start(); err != nil {
		return err
	}
	if len(w.buf) == 0 {
		return nil
	}
	err := w.writeBlock(w.buf)
	w.buf = w.buf[:0]
	return err
}

// Close flushes buffered data and writes the end mark and, if enabled, the
// content checksum. It does not close Dest.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	if err := w.Flush(); err != nil {
		return err
	}
	w.closed = true

	if w.Header.ContentSize > 0 && w.written != w.Header.ContentSize {
		return errWriterSize
	}

	var word [4]byte
	if _, err := w.Dest.Write(word[:]); err != nil { // end mark
		return err
	}
	if w.hasher != nil {
		binary.LittleEndian.PutUint32(word[:], w.hasher.Sum32())
		if _, err := w.Dest.Write(word[:]); err != nil {
			return err
		}
	}
	return nil
}
