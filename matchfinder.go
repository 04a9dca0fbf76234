package lz4

// A HashMatchFinder is an implementation of the MatchFinder interface that
// hashes 4-byte prefixes into a table of recent positions. Colliding
// entries are overwritten rather than chained, which bounds both memory and
// lookup cost. It keeps a rolling history buffer, so feeding it a stream
// chunk by chunk finds matches across chunk boundaries, and an external
// dictionary can be installed with SetDict.
type HashMatchFinder struct {
	// MaxDistance is the maximum distance (in bytes) to look back for
	// a match. The default is 65535, the LZ4 window size.
	MaxDistance int

	// TableBits is the log2 of the hash table size. The default is 14
	// (16384 entries). Larger tables find more matches on large inputs
	// at the cost of memory and reset time.
	TableBits int

	// Parser selects the match emission policy. The default is a
	// GreedyParser.
	Parser Parser

	table []uint32

	history []byte
}

const (
	minHistory = 1 << 16
	maxHistory = 1 << 18

	defaultTableBits = 14

	// hashMul is the multiplicative hash constant (from snappy); the
	// hash of a 4-byte prefix u is (u * hashMul) >> (32 - TableBits).
	hashMul = 0x1e35a7bd
)

func (q *HashMatchFinder) init() {
	if q.MaxDistance == 0 {
		q.MaxDistance = maxDistance
	}
	if q.TableBits == 0 {
		q.TableBits = defaultTableBits
	}
	if q.table == nil {
		q.table = make([]uint32, 1<<q.TableBits)
	}
	if q.Parser == nil {
		q.Parser = &GreedyParser{}
	}
}

func (q *HashMatchFinder) hash(u uint32) uint32 {
	return (u * hashMul) >> (32 - uint(q.TableBits))
}

func (q *HashMatchFinder) Reset() {
	for i := range q.table {
		q.table[i] = 0
	}
	q.history = q.history[:0]
}

// SetDict resets the finder and installs dict as a virtual prefix of the
// stream, so that matches may reference into it. Only the last window's
// worth of dict is kept.
func (q *HashMatchFinder) SetDict(dict []byte) {
	q.init()
	q.Reset()

	if len(dict) > q.MaxDistance {
		dict = dict[len(dict)-q.MaxDistance:]
	}
	q.history = append(q.history, dict...)

	// Index the dictionary. Position 0 can't be stored (the table uses 0
	// for "empty"), so indexing starts at 1.
	for i := 1; i+minMatch <= len(dict); i++ {
		h := q.hash(loadU32(dict, i))
		q.table[h] = uint32(i)
	}
}

// FindMatches looks for matches in src, appends them to dst, and returns dst.
func (q *HashMatchFinder) FindMatches(dst []Match, src []byte) []Match {
	q.init()

	if len(q.history) > maxHistory {
		// Trim down the history buffer.
		delta := len(q.history) - minHistory
		copy(q.history, q.history[delta:])
		q.history = q.history[:minHistory]

		for i, v := range q.table {
			newV := int(v) - delta
			if newV < 0 {
				newV = 0
			}
			q.table[i] = uint32(newV)
		}
	}

	// Append src to the history buffer and parse the new portion.
	nextEmit := len(q.history)
	q.history = append(q.history, src...)

	return q.Parser.Parse(dst, q, nextEmit, len(q.history))
}

func (q *HashMatchFinder) Search(dst []AbsoluteMatch, pos, min, max int) []AbsoluteMatch {
	if pos+minMatch > len(q.history) {
		return dst
	}
	src := q.history

	h := q.hash(loadU32(src, pos))
	candidate := int(q.table[h])
	q.table[h] = uint32(pos)

	if candidate == 0 || pos-candidate > q.MaxDistance {
		return dst
	}

	if loadU32(src, pos) != loadU32(src, candidate) {
		return dst
	}

	// We have a 4-byte match; extend it in both directions.

	start := pos
	match := candidate
	end := extendMatch(src[:max], match+minMatch, start+minMatch)
	for start > min && match > 0 && src[start-1] == src[match-1] {
		start--
		match--
	}

	return append(dst, AbsoluteMatch{
		Start: start,
		End:   end,
		Match: match,
	})
}
