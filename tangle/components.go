package tangle

import "github.com/grailbio/graphasm/gfa"

// Component is a maximal cluster of non-safe-chain edges: a small tangle
// bounded on every side by safe chains (or graph tips), small enough that a
// partial-order alignment over the reads crossing it can plausibly resolve
// it into a small DAG of new nodes.
// NodeIDs holds only the unsafe (non-safe-chain) node ids inside the
// tangle, i.e. its total unsafe sequence length -- its safe boundary nodes
// are named by Edges but deliberately excluded from NodeIDs.
type Component struct {
	NodeIDs map[int]bool
	Edges   map[gfa.EdgeKey]bool
}

func newComponent() *Component {
	return &Component{NodeIDs: map[int]bool{}, Edges: map[gfa.EdgeKey]bool{}}
}

type nodeUnionFind struct {
	parent map[int]int
}

func newNodeUnionFind() *nodeUnionFind {
	return &nodeUnionFind{parent: map[int]int{}}
}

func (u *nodeUnionFind) find(x int) int {
	p, ok := u.parent[x]
	if !ok {
		u.parent[x] = x
		return x
	}
	if p == x {
		return x
	}
	root := u.find(p)
	u.parent[x] = root
	return root
}

func (u *nodeUnionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}

// sameChain reports whether both node ids are tagged as belonging to the
// same safe chain, i.e. the edge between them runs inside a trusted chain
// rather than across a tangle.
func sameChain(a, b int, safeChains map[int]bool, belongsToChain map[int]int) bool {
	chainA, okA := belongsToChain[a]
	chainB, okB := belongsToChain[b]
	if !okA || !okB || chainA != chainB {
		return false
	}
	return safeChains[chainA]
}

// isSafeNode reports whether id belongs to a chain long enough to be
// trusted, i.e. it is a boundary of a tangle rather than part of it.
func isSafeNode(id int, safeChains map[int]bool, belongsToChain map[int]int) bool {
	chain, ok := belongsToChain[id]
	return ok && safeChains[chain]
}

// GetComponents partitions every edge of g that does not run inside a single
// safe chain into maximal connected components, the way ResolveSmallTangles
// groups non-safe edges into resolvable tangles bounded by safe chains.
// Components with no edges (an isolated safe-chain node with nothing to
// resolve around it) are dropped.
func GetComponents(g *gfa.Graph, safeChains map[int]bool, belongsToChain map[int]int) []*Component {
	uf := newNodeUnionFind()
	var candidateEdges []gfa.EdgeKey
	for from, tos := range g.Edges {
		for _, to := range tos {
			left, right := gfa.Canon(from, to)
			key := gfa.EdgeKey{From: left, To: right}
			if sameChain(left.ID, right.ID, safeChains, belongsToChain) {
				continue
			}
			candidateEdges = append(candidateEdges, key)
			uf.union(left.ID, right.ID)
		}
	}

	byRoot := make(map[int]*Component)
	for _, key := range candidateEdges {
		root := uf.find(key.From.ID)
		comp, ok := byRoot[root]
		if !ok {
			comp = newComponent()
			byRoot[root] = comp
		}
		if comp.Edges[key] {
			continue
		}
		comp.Edges[key] = true
		if !isSafeNode(key.From.ID, safeChains, belongsToChain) {
			comp.NodeIDs[key.From.ID] = true
		}
		if !isSafeNode(key.To.ID, safeChains, belongsToChain) {
			comp.NodeIDs[key.To.ID] = true
		}
	}

	result := make([]*Component, 0, len(byRoot))
	for _, comp := range byRoot {
		if len(comp.Edges) == 0 {
			continue
		}
		result = append(result, comp)
	}
	return result
}
