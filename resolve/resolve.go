// Package resolve orchestrates tangle resolution: it finds every small
// unresolved component bounded by safe chains in a sequence graph, threads
// the reads crossing each one through a partial-order alignment, and
// replaces the component with the resulting consensus nodes.
package resolve

import (
	"github.com/grailbio/base/log"
	"github.com/grailbio/graphasm/gfa"
	"github.com/grailbio/graphasm/tangle"
	"github.com/grailbio/graphasm/tangle/poa"
	"github.com/grailbio/graphasm/walk"
)

// MaxComponentBases bounds how large (in total node bp) a component may be
// before it is skipped as too large to align with a simple DP, matching the
// cutoff ResolveSmallTangles applies before attempting POA.
const MaxComponentBases = 5000

func nodeSizes(g *gfa.Graph) map[int]int {
	sizes := make(map[int]int, len(g.Nodes))
	for id, seq := range g.Nodes {
		sizes[id] = len(seq) - g.EdgeOverlap
	}
	return sizes
}

func componentBases(comp *tangle.Component, sizes map[int]int) int {
	total := 0
	for id := range comp.NodeIDs {
		total += sizes[id]
	}
	return total
}

// Components resolves every safely-bounded small tangle in g in place,
// mutating g's nodes and edges directly, and returns the count of resolved,
// unresolvable, and too-large components it encountered.
func Components(g *gfa.Graph, walks []walk.Walk, safeChainSize int) (resolved, unresolved, tooBig int) {
	safe := tangle.SafeChains(g, safeChainSize)
	belongers := tangle.ChainBelongers(g)
	components := tangle.GetComponents(g, safe, belongers)
	sizes := nodeSizes(g)

	nextID := 0
	for id := range g.Nodes {
		if id >= nextID {
			nextID = id + 1
		}
	}

	log.Printf("resolve: %d candidate components", len(components))
	for _, comp := range components {
		if componentBases(comp, sizes) > MaxComponentBases {
			tooBig++
			continue
		}
		subpaths := tangle.SplitPathsPerComponent(walks, comp)
		if !tangle.CanResolve(subpaths, comp, safe, belongers) {
			unresolved++
			continue
		}
		result := poa.Resolve(subpaths, sizes, safe, belongers, &nextID)
		poa.UpdateGraph(g, comp, result)
		resolved++
	}
	log.Printf("resolve: %d resolved, %d unresolved, %d too large", resolved, unresolved, tooBig)
	return resolved, unresolved, tooBig
}
