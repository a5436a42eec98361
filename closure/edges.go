package closure

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/graphasm/gfa"
	"github.com/grailbio/graphasm/walk"
)

// Edges holds, for every canonical oriented node pair the closure graph
// connects, the number of path steps that support the edge and (once
// DetermineOverlaps has run) the overlap length to use for it.
type Edges struct {
	Coverage map[gfa.EdgeKey]int
	Overlap  map[gfa.EdgeKey]int
}

func newEdges() Edges {
	return Edges{Coverage: map[gfa.EdgeKey]int{}, Overlap: map[gfa.EdgeKey]int{}}
}

// BuildEdges derives one edge per pair of adjacent path steps that both
// survived closure mapping, counting how many path steps support each
// canonical oriented edge.
func BuildEdges(mapping DoublestrandMapping, walks []walk.Walk) Edges {
	result := newEdges()
	for i, w := range walks {
		for j := 1; j < len(w.Steps); j++ {
			oldPos, ok1 := mapping[StepKey{i, j - 1}]
			newPos, ok2 := mapping[StepKey{i, j}]
			if !ok1 || !ok2 {
				continue
			}
			from, to := gfa.Canon(oldPos, newPos)
			result.Coverage[gfa.EdgeKey{From: from, To: to}]++
		}
	}
	log.Printf("closure: %d edges", len(result.Coverage))
	return result
}

// RemoveChimericEdges drops low-coverage edges that look like chimeric
// artifacts: an edge at or below maxRemovableCoverage is dropped if its
// coverage is below fraction of the highest-coverage edge leaving either
// of its endpoints, the way a single stray low-coverage branch off a
// well-supported node is assumed to be noise rather than real sequence.
func RemoveChimericEdges(edges Edges, maxRemovableCoverage int, fraction float64) Edges {
	maxOutEdgeCoverage := make(map[gfa.NodePos]int)
	for key, coverage := range edges.Coverage {
		if coverage > maxOutEdgeCoverage[key.From] {
			maxOutEdgeCoverage[key.From] = coverage
		}
		rev := key.To.Reverse()
		if coverage > maxOutEdgeCoverage[rev] {
			maxOutEdgeCoverage[rev] = coverage
		}
	}
	result := newEdges()
	for key, coverage := range edges.Coverage {
		if coverage <= maxRemovableCoverage {
			if float64(coverage) < float64(maxOutEdgeCoverage[key.From])*fraction {
				continue
			}
			if float64(coverage) < float64(maxOutEdgeCoverage[key.To.Reverse()])*fraction {
				continue
			}
		}
		result.Coverage[key] = coverage
	}
	log.Printf("closure: %d edges after chimeric removal", len(result.Coverage))
	return result
}

// BridgeTips adds an edge from every mapped path step whose closure endpoint
// is a tip (no edge leaves it) to every later mapped step of the same path
// whose incoming side is a tip -- provided at least minCoverage distinct
// reads independently support the same bridge. Steps between the two may be
// unmapped (e.g. filtered by coverage); the bridge's coverage is the number
// of supporting reads.
func BridgeTips(edges Edges, mapping DoublestrandMapping, walks []walk.Walk, minCoverage int) Edges {
	isNotTip := make(map[gfa.NodePos]bool)
	for key := range edges.Coverage {
		isNotTip[key.From] = true
		isNotTip[key.To.Reverse()] = true
	}

	type bridgeReads map[int]bool
	pathsSupportingEdge := make(map[gfa.EdgeKey]bridgeReads)
	for i, w := range walks {
		var gapStarts []int
		for j := 1; j < len(w.Steps); j++ {
			if prev, ok := mapping[StepKey{i, j - 1}]; ok && !isNotTip[prev] {
				gapStarts = append(gapStarts, j-1)
			}
			if cur, ok := mapping[StepKey{i, j}]; ok && !isNotTip[cur.Reverse()] {
				for _, start := range gapStarts {
					startPos := mapping[StepKey{i, start}]
					from, to := gfa.Canon(startPos, cur)
					key := gfa.EdgeKey{From: from, To: to}
					if pathsSupportingEdge[key] == nil {
						pathsSupportingEdge[key] = bridgeReads{}
					}
					pathsSupportingEdge[key][i] = true
				}
			}
		}
	}

	result := Edges{Coverage: copyCoverage(edges.Coverage), Overlap: copyCoverage(edges.Overlap)}
	for key, reads := range pathsSupportingEdge {
		if len(reads) >= minCoverage {
			result.Coverage[key] = len(reads)
		}
	}
	log.Printf("closure: %d edges after bridging tips", len(result.Coverage))
	return result
}

func copyCoverage(m map[gfa.EdgeKey]int) map[gfa.EdgeKey]int {
	out := make(map[gfa.EdgeKey]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// DetermineOverlaps fills in Edges.Overlap for every surviving edge, trying
// three sources in priority order: (1) an explicit per-edge override
// inherited from the input graph, (2) the input graph's default edge
// overlap, if the two closure endpoints' representative nodes already had a
// graph edge between them, and (3) the longest actual sequence overlap
// between the two representative node sequences, computed directly.
func DetermineOverlaps(walks []walk.Walk, mapping DoublestrandMapping, edges Edges, g *gfa.Graph) Edges {
	closureRepresentsNode := make(map[int]gfa.NodePos)
	for key, pos := range mapping {
		nodePos := walks[key.Path].Steps[key.Step]
		if !pos.End {
			nodePos = nodePos.Reverse()
		}
		closureRepresentsNode[pos.ID] = nodePos
	}

	result := newEdges()
	for key, coverage := range edges.Coverage {
		fromClosure, toClosure := key.From, key.To
		fromRep, ok1 := closureRepresentsNode[fromClosure.ID]
		toRep, ok2 := closureRepresentsNode[toClosure.ID]
		if !ok1 || !ok2 {
			continue
		}
		result.Coverage[key] = coverage

		if override, ok := g.VaryingOverlaps[gfa.EdgeKey{From: fromClosure, To: toClosure}]; ok {
			result.Overlap[key] = override
			continue
		}

		fromNode := fromRep
		if !fromClosure.End {
			fromNode = fromNode.Reverse()
		}
		toNode := toRep
		if !toClosure.End {
			toNode = toNode.Reverse()
		}
		if override, ok := g.VaryingOverlaps[gfa.EdgeKey{From: fromNode, To: toNode}]; ok {
			result.Overlap[key] = override
			continue
		}
		if g.HasEdge(fromNode, toNode) {
			result.Overlap[key] = g.EdgeOverlap
			continue
		}

		before := g.Nodes[fromNode.ID]
		if !fromNode.End {
			before = gfa.ReverseComplement(before)
		}
		after := g.Nodes[toNode.ID]
		if !toNode.End {
			after = gfa.ReverseComplement(after)
		}
		result.Overlap[key] = gfa.LongestOverlap(before, after, g.EdgeOverlap)
	}
	return result
}
