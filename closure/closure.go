// Package closure builds the output sequence graph from a set of surviving
// read-to-read overlaps: it takes the transitive closure of overlap-implied
// node equivalences, merges the two strands of each closure into a single
// doubly-sided node, filters by coverage, derives edges from adjacent path
// steps, bridges short tip gaps, strips low-support chimeric edges, and
// finally emits a gfa.Graph plus remapped walks.
package closure

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/graphasm/gfa"
	"github.com/grailbio/graphasm/overlap"
	"github.com/grailbio/graphasm/unionfind"
	"github.com/grailbio/graphasm/walk"
)

// StepKey identifies one step of one path, independent of orientation.
type StepKey struct {
	Path, Step int
}

// DoublestrandMapping maps every path step to the doubly-sided graph node it
// was folded into; NodePos.End records which strand of that node the step's
// forward orientation corresponds to.
type DoublestrandMapping map[StepKey]gfa.NodePos

// BuildTransitiveClosure unions every pair of oriented steps joined by a
// picked alignment's aligned pairs (and, since orientation is symmetric,
// their reverse-complement pair too), then numbers each resulting set with a
// dense integer id starting at 1. The returned mapping covers every
// (path, step, orientation) touched by walks, including singleton sets that
// no alignment ever reached.
func BuildTransitiveClosure(walks []walk.Walk, picked map[overlap.ReadPairKey]bool, alns []overlap.Alignment) map[unionfind.Key]int {
	uf := unionfind.New(len(walks))
	for _, a := range alns {
		if !picked[a.Key()] {
			continue
		}
		for _, pair := range a.AlignedPairs {
			leftKey := unionfind.Key{Path: a.LeftPath, Pos: gfa.NodePos{ID: pair.LeftIndex, End: pair.LeftReverse}}
			rightKey := unionfind.Key{Path: a.RightPath, Pos: gfa.NodePos{ID: pair.RightIndex, End: pair.RightReverse}}
			uf.UnionStrandPair(leftKey, rightKey)
		}
	}

	result := make(map[unionfind.Key]int)
	numbering := make(map[unionfind.Key]int)
	nextClosure := 1
	for i, w := range walks {
		for j := range w.Steps {
			for _, end := range [2]bool{true, false} {
				key := unionfind.Key{Path: i, Pos: gfa.NodePos{ID: j, End: end}}
				root := uf.Find(key)
				id, ok := numbering[root]
				if !ok {
					id = nextClosure
					numbering[root] = id
					nextClosure++
				}
				result[key] = id
			}
		}
	}
	log.Printf("closure: %d transitive closure sets, %d items", nextClosure-1, len(result))
	return result
}

// MergeDoublestrand collapses the forward/reverse pair of single-strand
// closure numbers BuildTransitiveClosure assigned to every step into one
// doubly-sided gfa node id: the two single-strand set ids that pair up at
// some step become NodePos{newID, true} and NodePos{newID, false}
// respectively. It is a fatal inconsistency for a step's forward and
// backward closure number to coincide -- that would mean a read's two
// strands were unified into a single-sided node, which the doubly-sided
// graph invariant forbids.
func MergeDoublestrand(walks []walk.Walk, mapping map[unionfind.Key]int) DoublestrandMapping {
	assigned := make(map[int]gfa.NodePos)
	result := make(DoublestrandMapping, len(mapping)/2)
	nextID := 1
	for i, w := range walks {
		for j := range w.Steps {
			fwSet := mapping[unionfind.Key{Path: i, Pos: gfa.NodePos{ID: j, End: true}}]
			bwSet := mapping[unionfind.Key{Path: i, Pos: gfa.NodePos{ID: j, End: false}}]
			if _, ok := assigned[fwSet]; !ok {
				if fwSet == bwSet {
					log.Panicf("closure: step %d of path %d self-fused: forward and backward strands share closure set %d", j, i, fwSet)
				}
				assigned[fwSet] = gfa.NodePos{ID: nextID, End: true}
				assigned[bwSet] = gfa.NodePos{ID: nextID, End: false}
				nextID++
			}
			result[StepKey{i, j}] = assigned[fwSet]
		}
	}
	log.Printf("closure: %d doublestranded closure sets", nextID-1)
	return result
}

// RemoveOutsideCoverage drops every mapping entry whose doublestrand
// closure id is supported by fewer than minCoverage or more than
// maxCoverage path steps.
func RemoveOutsideCoverage(mapping DoublestrandMapping, minCoverage, maxCoverage int) DoublestrandMapping {
	coverage := make(map[int]int)
	for _, pos := range mapping {
		coverage[pos.ID]++
	}
	result := make(DoublestrandMapping)
	numbers := make(map[int]bool)
	for key, pos := range mapping {
		if c := coverage[pos.ID]; c >= minCoverage && c <= maxCoverage {
			result[key] = pos
			numbers[pos.ID] = true
		}
	}
	log.Printf("closure: %d closures, %d items after removing low/high coverage", len(numbers), len(result))
	return result
}
