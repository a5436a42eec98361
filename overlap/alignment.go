// Package overlap models pairwise read-to-read (or read-to-closure) overlap
// alignments and the filtering pipeline that turns a raw alignment stream
// into the pruned set of overlaps the assembler's betweenness-cut engine
// consumes.
package overlap

// Pair is a single aligned position pair within an Alignment: the step
// index into the left and right paths, plus each side's orientation at
// that step.
type Pair struct {
	LeftIndex, RightIndex       int
	LeftReverse, RightReverse bool
}

// Alignment is one pairwise overlap between two paths (reads, or read
// closures during iterative assembly). LeftPath/RightPath index into the
// caller's path table; LeftStart/LeftEnd and RightStart/RightEnd are
// inclusive step ranges; RightReverse records whether the right path is
// aligned in reverse orientation relative to the left.
type Alignment struct {
	LeftPath, RightPath   int
	LeftStart, LeftEnd    int
	RightStart, RightEnd  int
	RightReverse          bool
	AlignedPairs          []Pair
	AlignmentLength       int
	AlignmentIdentity     float64
}

// ReadPairKey identifies the ordered (left, right) pair of paths an
// alignment connects; (a, b) and (b, a) are distinct keys.
type ReadPairKey struct {
	Left, Right int
}

// Key returns the (left, right) path pair this alignment connects.
func (a Alignment) Key() ReadPairKey {
	return ReadPairKey{a.LeftPath, a.RightPath}
}
