package lz4

// A Match is the basic unit of LZ77 compression: a run of unmatched bytes
// followed by a back-reference into earlier data.
type Match struct {
	Unmatched int // the number of unmatched bytes since the previous match
	Length    int // the number of bytes in the matched string; it may be 0 at the end of the input
	Distance  int // how far back in the stream to copy from
}

// A MatchFinder performs the LZ77 stage of compression, looking for matches.
type MatchFinder interface {
	// FindMatches looks for matches in src, appends them to dst, and returns dst.
	FindMatches(dst []Match, src []byte) []Match

	// Reset clears any internal state, preparing the MatchFinder to be used with
	// a new stream.
	Reset()
}

// Compression format parameters. minMatch and maxDistance are fixed by the
// LZ4 block format; hash-table sizing lives on HashMatchFinder where it can
// be tuned.
const (
	minMatch    = 4     // the shortest back-reference the format can encode
	maxDistance = 65535 // the window size: the largest encodable offset
)
