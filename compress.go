package lz4

import (
	"encoding/binary"
	"sync"
)

// A Compressor encodes LZ4 blocks. The zero value is ready to use with the
// default greedy configuration; set MatchFinder to change the matching
// policy. A Compressor retains its match finder's window across calls, so
// one Compressor fed a stream chunk by chunk produces linked blocks; call
// Reset to start an independent stream.
//
// A Compressor is not safe for concurrent use; each goroutine needs its
// own.
type Compressor struct {
	// MatchFinder performs the LZ77 stage. The default is a
	// HashMatchFinder with a GreedyParser.
	MatchFinder MatchFinder

	matches []Match
}

func (c *Compressor) init() {
	if c.MatchFinder == nil {
		c.MatchFinder = &HashMatchFinder{}
	}
}

// Reset clears the window and any other internal state.
func (c *Compressor) Reset() {
	if c.MatchFinder != nil {
		c.MatchFinder.Reset()
	}
	c.matches = c.matches[:0]
}

// SetDict resets the Compressor and installs dict as a virtual prefix of
// the stream. It requires the MatchFinder to be a *HashMatchFinder (the
// default).
func (c *Compressor) SetDict(dict []byte) {
	c.init()
	c.matches = c.matches[:0]
	if hf, ok := c.MatchFinder.(*HashMatchFinder); ok {
		hf.SetDict(dict)
		return
	}
	c.MatchFinder.Reset()
}

// AppendCompressed compresses src as one LZ4 block and appends it to dst,
// returning the result.
func (c *Compressor) AppendCompressed(dst, src []byte) []byte {
	c.init()
	c.matches = c.MatchFinder.FindMatches(c.matches[:0], src)
	return appendBlock(dst, src, c.matches)
}

// compressorPool recycles default-configuration Compressors for the
// package-level helpers, so each call doesn't pay for a fresh hash table.
var compressorPool = sync.Pool{
	New: func() any {
		return new(Compressor)
	},
}

func acquireCompressor() *Compressor {
	c := compressorPool.Get().(*Compressor)
	c.Reset()
	return c
}

func releaseCompressor(c *Compressor) {
	compressorPool.Put(c)
}

// Compress compresses src as a single LZ4 block and returns it.
// The output carries no size information; keep len(src) around or use
// CompressPrependSize.
func Compress(src []byte) []byte {
	c := acquireCompressor()
	defer releaseCompressor(c)

	return c.AppendCompressed(make([]byte, 0, CompressBound(len(src))), src)
}

// CompressInto compresses src as a single LZ4 block into dst and returns
// the compressed size. If dst is smaller than the compressed output, it
// returns ErrBufferTooSmall; sizing dst with CompressBound always fits.
func CompressInto(src, dst []byte) (int, error) {
	c := acquireCompressor()
	defer releaseCompressor(c)

	out := c.AppendCompressed(dst[:0], src)
	if len(out) > len(dst) {
		return 0, ErrBufferTooSmall
	}
	return len(out), nil
}

// CompressPrependSize compresses src as a single LZ4 block with the
// uncompressed size prepended as a 4-byte little-endian integer, making
// the result self-describing for DecompressSizePrepended.
func CompressPrependSize(src []byte) []byte {
	c := acquireCompressor()
	defer releaseCompressor(c)

	dst := make([]byte, sizePrefixLen, sizePrefixLen+CompressBound(len(src)))
	binary.LittleEndian.PutUint32(dst, uint32(len(src)))
	return c.AppendCompressed(dst, src)
}

// CompressWithDict compresses src as a single LZ4 block whose match
// offsets may reference dict as a virtual prefix. The result can only be
// decoded with the same dictionary.
func CompressWithDict(src, dict []byte) []byte {
	var c Compressor
	c.SetDict(dict)
	return c.AppendCompressed(make([]byte, 0, CompressBound(len(src))), src)
}

// sizePrefixLen is the length of the size header used by the PrependSize
// API pair.
const sizePrefixLen = 4
