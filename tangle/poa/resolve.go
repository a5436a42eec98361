package poa

import (
	"github.com/grailbio/graphasm/gfa"
	"github.com/grailbio/graphasm/tangle"
)

// Result is the linearized replacement for one component: the brand-new
// consensus nodes to add (valued by the oriented node their sequence is
// copied from), the edges of the fully threaded skeleton, and the set of
// existing node ids that were reused as-is (every node of the subpath that
// seeded each skeleton, safe boundaries included).
type Result struct {
	NewNodes map[int]gfa.NodePos
	NewEdges []gfa.EdgeKey
	Keep     map[int]bool
}

func reverseSteps(steps []gfa.NodePos) []gfa.NodePos {
	out := make([]gfa.NodePos, len(steps))
	for i, s := range steps {
		out[len(steps)-1-i] = s.Reverse()
	}
	return out
}

func isSafeAnchor(id int, safeChains map[int]bool, belongsToChain map[int]int) bool {
	chain, ok := belongsToChain[id]
	return ok && safeChains[chain]
}

// Resolve threads every safely-anchored subpath of a component through one
// partial-order skeleton per connection (pair of safe boundary nodes it
// runs between), reusing the first subpath's own nodes as the initial
// skeleton and splicing every later subpath's unmatched runs in as new
// consensus nodes. Subpaths that do not reach a safe chain at both ends are
// skipped -- without a trusted anchor on each side, threading them through
// would reuse or extend a skeleton from an untrustworthy endpoint.
func Resolve(subpaths []tangle.Subpath, nodeSizes map[int]int, safeChains map[int]bool, belongsToChain map[int]int, nextID *int) *Result {
	groups := map[tangle.Connection][][]gfa.NodePos{}
	for _, sp := range subpaths {
		entry, exit := sp.Steps[0].ID, sp.Steps[len(sp.Steps)-1].ID
		if !isSafeAnchor(entry, safeChains, belongsToChain) || !isSafeAnchor(exit, safeChains, belongsToChain) {
			continue
		}
		canon, flipped := sp.Connection().Canonical()
		steps := sp.Steps
		if flipped {
			steps = reverseSteps(steps)
		}
		groups[canon] = append(groups[canon], steps)
	}

	result := &Result{NewNodes: map[int]gfa.NodePos{}, Keep: map[int]bool{}}
	for _, stepsList := range groups {
		skeleton := NewSkeleton(stepsList[0])
		for _, pos := range skeleton.Order {
			result.Keep[pos.ID] = true
		}
		for _, steps := range stepsList[1:] {
			matches := Align(steps, skeleton, nodeSizes)
			result.Keep[steps[0].ID] = true
			result.Keep[steps[len(steps)-1].ID] = true
			spliceUnmatched(steps, matches, skeleton, result, nextID)
		}
		for nodeID, preds := range skeleton.Predecessor {
			for _, p := range preds {
				result.NewEdges = append(result.NewEdges, gfa.EdgeKey{
					From: gfa.NodePos{ID: p, End: true},
					To:   gfa.NodePos{ID: nodeID, End: true},
				})
			}
		}
	}
	return result
}

// spliceUnmatched walks steps in order, threading matched steps straight
// through the existing skeleton and chaining each run of unmatched steps in
// between as brand-new skeleton nodes anchored on the matched step before
// and after the run (when one exists).
func spliceUnmatched(steps []gfa.NodePos, matches []Match, skeleton *Skeleton, result *Result, nextID *int) {
	prevNodeID := -1
	matchIdx := 0
	i := 0
	for i < len(steps) {
		if matchIdx < len(matches) && matches[matchIdx].StepIndex == i {
			prevNodeID = matches[matchIdx].NodeID
			matchIdx++
			i++
			continue
		}
		runStart := i
		for i < len(steps) && !(matchIdx < len(matches) && matches[matchIdx].StepIndex == i) {
			i++
		}
		nextAnchor := -1
		if matchIdx < len(matches) {
			nextAnchor = matches[matchIdx].NodeID
		}
		chainPrev := prevNodeID
		for k := runStart; k < i; k++ {
			newID := *nextID
			*nextID++
			skeleton.addNode(gfa.NodePos{ID: newID, End: true}, chainPrev)
			result.NewNodes[newID] = steps[k]
			chainPrev = newID
		}
		if nextAnchor >= 0 && i > runStart {
			skeleton.Predecessor[nextAnchor] = append(skeleton.Predecessor[nextAnchor], chainPrev)
		}
		prevNodeID = chainPrev
	}
}

func removeEdge(g *gfa.Graph, from, to gfa.NodePos) {
	list := g.Edges[from]
	for i, t := range list {
		if t == to {
			g.Edges[from] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(g.Edges[from]) == 0 {
		delete(g.Edges, from)
	}
}

// UpdateGraph materializes a component's resolution into g: the original
// tangle's internal edges are stripped, every new consensus node is added
// (reverse complemented from its origin sequence as needed) along with the
// skeleton's edges, and every non-safe node that was not reused is erased.
func UpdateGraph(g *gfa.Graph, comp *tangle.Component, result *Result) {
	for key := range comp.Edges {
		removeEdge(g, key.From, key.To)
		removeEdge(g, key.To.Reverse(), key.From.Reverse())
	}

	for newID, origin := range result.NewNodes {
		seq := g.Nodes[origin.ID]
		if !origin.End {
			seq = gfa.ReverseComplement(seq)
		}
		g.Nodes[newID] = seq
		if tags, ok := g.Tags[origin.ID]; ok {
			g.Tags[newID] = tags
		}
	}

	for _, key := range result.NewEdges {
		g.AddEdge(key.From, key.To)
		g.AddEdge(key.To.Reverse(), key.From.Reverse())
	}

	for nodeID := range comp.NodeIDs {
		if result.Keep[nodeID] {
			continue
		}
		delete(g.Nodes, nodeID)
		delete(g.Tags, nodeID)
		delete(g.Edges, gfa.NodePos{ID: nodeID, End: true})
		delete(g.Edges, gfa.NodePos{ID: nodeID, End: false})
	}
}
