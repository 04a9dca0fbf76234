// Package lz4 implements the LZ4 block format with a modular compression
// pipeline.
//
// Compression is split into two stages that can be configured separately:
// a MatchFinder that performs the LZ77 stage, looking for repeated byte
// sequences, and a serializer that writes the sequences in the LZ4 block
// format. A Parser sits between them and decides which of the candidate
// matches to use (greedy or lazy matching).
//
// The package has two buffer-access strategies for the hot copy loops,
// selected with the "lz4safe" build tag. The default build uses wide
// 8-byte copies with coarse per-token validation; building with lz4safe
// validates every copy against the buffer bounds individually. Both
// strategies produce byte-identical output.
//
// Whole-buffer use:
//
//	compressed := lz4.CompressPrependSize(data)
//	data, err := lz4.DecompressSizePrepended(compressed)
//
// The frame subpackage wraps blocks in the LZ4 frame format for streaming
// and interoperability with other LZ4 tools.
package lz4
