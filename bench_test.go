package lz4

import (
	"bytes"
	"io"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/s2"
)

func benchmarkInput() []byte {
	return bytes.Repeat([]byte("a reasonably compressible benchmark payload, with some repetition. "), 2000)
}

func BenchmarkCompress(b *testing.B) {
	data := benchmarkInput()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		Compress(data)
	}
}

func BenchmarkCompressLazy(b *testing.B) {
	data := benchmarkInput()
	c := Compressor{MatchFinder: &HashMatchFinder{Parser: &LazyParser{}}}
	var dst []byte
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		c.Reset()
		dst = c.AppendCompressed(dst[:0], data)
	}
}

func BenchmarkDecompress(b *testing.B) {
	data := benchmarkInput()
	compressed := Compress(data)
	dst := make([]byte, len(data))
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := DecompressInto(compressed, dst); err != nil {
			b.Fatal(err)
		}
	}
}

// Baselines from other codecs, for ratio and throughput comparison.

func BenchmarkBaselineSnappy(b *testing.B) {
	data := benchmarkInput()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		snappy.Encode(nil, data)
	}
}

func BenchmarkBaselineS2(b *testing.B) {
	data := benchmarkInput()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		s2.Encode(nil, data)
	}
}

func BenchmarkBaselineBrotli(b *testing.B) {
	data := benchmarkInput()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		w := brotli.NewWriterLevel(io.Discard, 1)
		if _, err := w.Write(data); err != nil {
			b.Fatal(err)
		}
		if err := w.Close(); err != nil {
			b.Fatal(err)
		}
	}
}
