package frame

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"testing"
	"testing/iotest"

	"github.com/pierrec/xxHash/xxHash32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flexpack/lz4"
)

func compressFrame(t *testing.T, hdr Header, data []byte, chunkSize int) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Header = hdr

	for off := 0; off < len(data); off += chunkSize {
		end := off + chunkSize
		if end > len(data) {
			end = len(data)
		}
		n, err := w.Write(data[off:end])
		require.NoError(t, err)
		require.Equal(t, end-off, n)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func decompressFrame(t *testing.T, compressed []byte) []byte {
	t.Helper()

	out, err := io.ReadAll(NewReader(bytes.NewReader(compressed)))
	require.NoError(t, err)
	return out
}

func testPayload(n int) []byte {
	phrase := []byte("frame layer test payload with enough repetition to compress. ")
	return bytes.Repeat(phrase, n/len(phrase)+1)[:n]
}

func TestRoundTripOptions(t *testing.T) {
	data := testPayload(300000)

	headers := []Header{
		{},
		{BlockSize: Block256KB},
		{BlockSize: Block4MB},
		{Linked: true},
		{BlockChecksums: true},
		{ContentChecksum: true},
		{Linked: true, BlockChecksums: true, ContentChecksum: true},
		{ContentSize: uint64(len(data))},
	}

	for i, hdr := range headers {
		t.Run(fmt.Sprintf("header-%d", i), func(t *testing.T) {
			compressed := compressFrame(t, hdr, data, 1<<20)
			require.Less(t, len(compressed), len(data))
			assert.Equal(t, data, decompressFrame(t, compressed))
		})
	}
}

func TestRoundTripIncompressible(t *testing.T) {
	// Random data forces the stored-block fallback; the frame may not
	// grow by more than the per-block and header overhead.
	data := make([]byte, 200000)
	rand.New(rand.NewSource(3)).Read(data)

	compressed := compressFrame(t, Header{}, data, 1<<20)
	blocks := (len(data) + Block64KB.Bytes() - 1) / Block64KB.Bytes()
	require.LessOrEqual(t, len(compressed), len(data)+4*blocks+15)

	assert.Equal(t, data, decompressFrame(t, compressed))
}

func TestStreamingEquivalence(t *testing.T) {
	// The chunking of Write calls must not change the output at all:
	// blocks are cut by size, not by call boundary.
	data := testPayload(200000)

	whole := compressFrame(t, Header{Linked: true}, data, len(data))
	for _, chunkSize := range []int{1, 7, 1000, 65536, 65537} {
		chunked := compressFrame(t, Header{Linked: true}, data, chunkSize)
		require.True(t, bytes.Equal(whole, chunked), "chunkSize=%d", chunkSize)
	}

	assert.Equal(t, data, decompressFrame(t, whole))
}

func TestSmallReads(t *testing.T) {
	// Decoder state must survive suspension between arbitrarily small
	// Read calls.
	data := testPayload(150000)
	compressed := compressFrame(t, Header{Linked: true, ContentChecksum: true}, data, 1<<20)

	out, err := io.ReadAll(iotest.OneByteReader(NewReader(bytes.NewReader(compressed))))
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestFlush(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	_, err := w.Write([]byte("first part, "))
	require.NoError(t, err)
	require.NoError(t, w.Flush()) // forces a short block
	_, err = w.Write([]byte("second part"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Equal(t, []byte("first part, second part"), decompressFrame(t, buf.Bytes()))
}

func TestEmptyStream(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Close())

	assert.Empty(t, decompressFrame(t, buf.Bytes()))
}

func TestLinkedBeatsIndependentAcrossBlocks(t *testing.T) {
	// Two identical random halves, each smaller than the 64 KiB window so
	// the second half's bytes stay within match range of their copies.
	// Independent blocks can't see across the block boundary; linked
	// blocks replay the repetition.
	half := make([]byte, 60000)
	rand.New(rand.NewSource(5)).Read(half)
	data := append(append([]byte(nil), half...), half...)

	independent := compressFrame(t, Header{}, data, 1<<20)
	linked := compressFrame(t, Header{Linked: true}, data, 1<<20)

	require.Less(t, len(linked), len(independent))
	assert.Equal(t, data, decompressFrame(t, linked))
	assert.Equal(t, data, decompressFrame(t, independent))
}

func TestContentSize(t *testing.T) {
	data := testPayload(100000)
	compressed := compressFrame(t, Header{ContentSize: uint64(len(data))}, data, 1<<20)

	z := NewReader(bytes.NewReader(compressed))
	hdr, err := z.Header()
	require.NoError(t, err)
	assert.Equal(t, uint64(len(data)), hdr.ContentSize)

	out, err := io.ReadAll(z)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestWriterContentSizeMismatch(t *testing.T) {
	w := NewWriter(io.Discard)
	w.Header.ContentSize = 100

	_, err := w.Write([]byte("only a few bytes"))
	require.NoError(t, err)
	assert.Error(t, w.Close())
}

func TestDictionary(t *testing.T) {
	dict := make([]byte, 4096)
	rand.New(rand.NewSource(11)).Read(dict)
	data := append(append([]byte(nil), dict...), dict[:1000]...)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Header.DictID = 42
	w.SetDict(dict)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// Without the dictionary the frame must be refused up front.
	_, err = io.ReadAll(NewReader(bytes.NewReader(buf.Bytes())))
	assert.ErrorIs(t, err, ErrUnsupported)

	z := NewReader(bytes.NewReader(buf.Bytes()))
	z.SetDict(dict)
	hdr, err := z.Header()
	require.NoError(t, err)
	assert.Equal(t, uint32(42), hdr.DictID)

	out, err := io.ReadAll(z)
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestSkippableFrame(t *testing.T) {
	data := testPayload(5000)
	compressed := compressFrame(t, Header{}, data, 1<<20)

	prefixed := []byte{0x50, 0x2A, 0x4D, 0x18, 8, 0, 0, 0}
	prefixed = append(prefixed, []byte("userdata")...)
	prefixed = append(prefixed, compressed...)

	assert.Equal(t, data, decompressFrame(t, prefixed))
}

func TestWrongMagic(t *testing.T) {
	_, err := io.ReadAll(NewReader(bytes.NewReader([]byte{1, 2, 3, 4, 5, 6, 7, 8})))
	assert.ErrorIs(t, err, ErrWrongMagic)
}

func TestReservedDescriptorBits(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Close())
	valid := buf.Bytes()

	// Set a reserved bit and recompute the header checksum, so the
	// descriptor itself is what gets rejected.
	cases := map[string]byte{
		"flg-reserved":     0x02,
		"bd-high-reserved": 0x80,
		"bd-low-reserved":  0x08,
	}
	for name, bit := range cases {
		t.Run(name, func(t *testing.T) {
			evil := append([]byte(nil), valid...)
			if name == "flg-reserved" {
				evil[4] |= bit
			} else {
				evil[5] |= bit
			}
			evil[6] = byte(xxHash32.Checksum(evil[4:6], 0) >> 8)

			_, err := io.ReadAll(NewReader(bytes.NewReader(evil)))
			assert.ErrorIs(t, err, ErrUnsupported)
		})
	}
}

func TestHeaderChecksumCorruption(t *testing.T) {
	compressed := compressFrame(t, Header{}, []byte("payload"), 1<<20)
	compressed[6] ^= 0xFF // the header checksum byte of a minimal descriptor

	_, err := io.ReadAll(NewReader(bytes.NewReader(compressed)))
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestBlockChecksumCorruption(t *testing.T) {
	data := testPayload(50000)
	compressed := compressFrame(t, Header{BlockChecksums: true}, data, 1<<20)
	compressed[7+4+10] ^= 0x01 // a byte inside the first block's payload

	_, err := io.ReadAll(NewReader(bytes.NewReader(compressed)))
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestContentChecksumCorruption(t *testing.T) {
	data := testPayload(50000)
	compressed := compressFrame(t, Header{ContentChecksum: true}, data, 1<<20)
	compressed[len(compressed)-1] ^= 0x01

	_, err := io.ReadAll(NewReader(bytes.NewReader(compressed)))
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestTruncation(t *testing.T) {
	data := testPayload(50000)
	compressed := compressFrame(t, Header{}, data, 1<<20)

	for _, cut := range []int{5, 12, len(compressed) / 2, len(compressed) - 1} {
		_, err := io.ReadAll(NewReader(bytes.NewReader(compressed[:cut])))
		assert.ErrorIs(t, err, lz4.ErrCorrupt, "cut=%d", cut)
	}
}

func TestBlockTooLarge(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Close())
	header := buf.Bytes()[:7]

	// A size word past CompressBound of the declared 64 KiB maximum.
	evil := append(append([]byte(nil), header...), 0x00, 0x00, 0x02, 0x00)

	_, err := io.ReadAll(NewReader(bytes.NewReader(evil)))
	assert.ErrorIs(t, err, lz4.ErrCorrupt)
}

func TestWriteAfterClose(t *testing.T) {
	w := NewWriter(io.Discard)
	require.NoError(t, w.Close())

	_, err := w.Write([]byte("late"))
	assert.ErrorIs(t, err, ErrClosed)
}
