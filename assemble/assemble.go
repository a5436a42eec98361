// Package assemble orchestrates the overlap-to-graph assembly pipeline:
// filtering raw overlap alignments, cutting the highest-betweenness
// ambiguous overlaps, building the transitive closure of what survives, and
// emitting the resulting sequence graph and remapped reads.
package assemble

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/graphasm/closure"
	"github.com/grailbio/graphasm/closure/betweenness"
	"github.com/grailbio/graphasm/gfa"
	"github.com/grailbio/graphasm/overlap"
	"github.com/grailbio/graphasm/walk"
)

// Tuning constants for the filtering stages, matching the defaults the
// upstream aligner hardcodes rather than exposing as flags.
const (
	maxOverlapCoverage  = 100
	maxPerReadByError   = 10
	maxPerReadByLength  = 5
	minClosureCoverage  = 3
	maxClosureCoverage  = 10000
	bridgeTipCoverage   = 3
	chimericLowCutoff   = 5
	chimericLowFraction = 0.2
	chimericHiCutoff    = 10
	chimericHiFraction  = 0.1
)

// Run filters raw alignments, cuts ambiguous high-betweenness overlaps, and
// builds a new sequence graph (plus its remapped reads) from what survives.
func Run(g *gfa.Graph, walks []walk.Walk, alns []overlap.Alignment, numThreads, maxGroupSize int) (*gfa.Graph, []walk.Walk) {
	g.ConfirmDoubleSidedEdges()

	pathLengths := make([]int, len(walks))
	for i, w := range walks {
		pathLengths[i] = w.Len()
	}

	alns = overlap.Double(alns)
	alns = overlap.Dedupe(alns)
	alns = overlap.RemoveContained(pathLengths, alns)
	alns = overlap.RemoveNonDovetails(pathLengths, alns)
	alns = overlap.RemoveHighCoverage(pathLengths, alns, maxOverlapCoverage)
	alns = overlap.PickLowestErrorPerRead(pathLengths, alns, maxPerReadByError)
	picked := overlap.PickLongestPerRead(pathLengths, alns, maxPerReadByLength)

	picked = cutAmbiguousOverlaps(pathLengths, alns, picked, numThreads, maxGroupSize)

	mapping := closure.BuildTransitiveClosure(walks, picked, alns)
	doubled := closure.MergeDoublestrand(walks, mapping)
	doubled = closure.RemoveOutsideCoverage(doubled, minClosureCoverage, maxClosureCoverage)

	edges := closure.BuildEdges(doubled, walks)
	edges = closure.BridgeTips(edges, doubled, walks, bridgeTipCoverage)
	edges = closure.RemoveChimericEdges(edges, chimericLowCutoff, chimericLowFraction)
	edges = closure.RemoveChimericEdges(edges, chimericHiCutoff, chimericHiFraction)
	edges = closure.DetermineOverlaps(walks, doubled, edges, g)

	out := closure.EmitGraph(doubled, edges, walks, g)
	remapped := closure.RemapWalks(walks, doubled, edges)
	return out, remapped
}

// cutAmbiguousOverlaps runs the edge-betweenness cut engine over the
// incidence graph formed by every aligned base pair of a picked overlap,
// and returns picked with any alignment whose overlap got forbidden removed.
func cutAmbiguousOverlaps(pathLengths []int, alns []overlap.Alignment, picked map[overlap.ReadPairKey]bool, numThreads, maxGroupSize int) map[overlap.ReadPairKey]bool {
	offset := make([]int, len(pathLengths))
	total := 0
	for i, n := range pathLengths {
		offset[i] = total
		total += n
	}
	flat := func(path, step int) int { return offset[path] + step }

	engine := betweenness.New(total, len(alns), maxGroupSize)
	for i, a := range alns {
		if !picked[a.Key()] {
			continue
		}
		for _, pair := range a.AlignedPairs {
			engine.AddOverlapEdge(i, flat(a.LeftPath, pair.LeftIndex), flat(a.RightPath, pair.RightIndex))
		}
	}
	engine.LockSmallComponents()
	engine.AccumulateInitialBetweenness(numThreads)
	engine.PickCuts()

	result := make(map[overlap.ReadPairKey]bool, len(picked))
	cut := 0
	for i, a := range alns {
		if !picked[a.Key()] {
			continue
		}
		if engine.Forbidden(i) {
			cut++
			continue
		}
		result[a.Key()] = true
	}
	log.Printf("assemble: cut engine forbade %d of %d picked overlaps", cut, len(picked))
	return result
}
