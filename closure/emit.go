package closure

import (
	"fmt"

	"github.com/grailbio/base/log"
	"github.com/grailbio/graphasm/gfa"
	"github.com/grailbio/graphasm/walk"
)

// EmitGraph renders the final doublestranded closure mapping and its edges
// as a gfa.Graph: one node per closure id, its sequence taken (and reverse
// complemented as needed) from whichever step first represents it, tagged
// with length/coverage/k-mer/origin tags, plus one edge per surviving
// Edges.Coverage entry tagged with its read-coverage count.
func EmitGraph(mapping DoublestrandMapping, edges Edges, walks []walk.Walk, input *gfa.Graph) *gfa.Graph {
	closureCoverage := make(map[int]int)
	for _, pos := range mapping {
		closureCoverage[pos.ID]++
	}

	result := gfa.New()
	result.EdgeOverlap = input.EdgeOverlap
	outputted := make(map[int]bool)
	for key, pos := range mapping {
		if outputted[pos.ID] {
			continue
		}
		nodePos := walks[key.Path].Steps[key.Step]
		seq := input.Nodes[nodePos.ID]
		if !nodePos.End {
			seq = gfa.ReverseComplement(seq)
		}
		if !pos.End {
			seq = gfa.ReverseComplement(seq)
		}
		result.Nodes[pos.ID] = seq
		length := len(seq) - input.EdgeOverlap
		coverage := closureCoverage[pos.ID]
		km := float64(coverage)
		result.Tags[pos.ID] = gfa.FormatNodeTags(length, length*coverage, km, nodePos)
		outputted[pos.ID] = true
	}
	log.Printf("closure: %d outputted closures", len(outputted))

	emitted := 0
	for key, coverage := range edges.Coverage {
		if !outputted[key.From.ID] || !outputted[key.To.ID] {
			continue
		}
		result.AddEdge(key.From, key.To)
		result.EdgeTags[key] = gfa.FormatEdgeTag(coverage)
		if overlap, ok := edges.Overlap[key]; ok && overlap != result.EdgeOverlap {
			result.VaryingOverlaps[key] = overlap
		}
		emitted++
	}
	log.Printf("closure: %d outputted edges", emitted)
	return result
}

// RemapWalks translates every input walk through the closure mapping,
// splitting it at any step pair whose closure nodes no longer have a
// surviving edge between them. Each surviving subpath is emitted as its own
// walk named "<originalName>_<k>" for its index k among that read's
// subpaths.
func RemapWalks(walks []walk.Walk, mapping DoublestrandMapping, edges Edges) []walk.Walk {
	result := []walk.Walk{}
	for i, w := range walks {
		var translated []gfa.NodePos
		for j := range w.Steps {
			pos, ok := mapping[StepKey{i, j}]
			if !ok {
				continue
			}
			translated = append(translated, pos)
		}
		if len(translated) == 0 {
			continue
		}
		var subpaths [][]gfa.NodePos
		subpaths = append(subpaths, []gfa.NodePos{translated[0]})
		for j := 1; j < len(translated); j++ {
			from, to := gfa.Canon(translated[j-1], translated[j])
			if _, ok := edges.Coverage[gfa.EdgeKey{From: from, To: to}]; !ok {
				subpaths = append(subpaths, nil)
			}
			subpaths[len(subpaths)-1] = append(subpaths[len(subpaths)-1], translated[j])
		}
		num := 0
		for _, steps := range subpaths {
			if len(steps) == 0 {
				continue
			}
			result = append(result, walk.Walk{Name: fmt.Sprintf("%s_%d", w.Name, num), Steps: steps})
			num++
		}
	}
	return result
}
