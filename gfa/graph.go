package gfa

import (
	"github.com/grailbio/base/log"
)

// Graph is a sequence graph: nodes labelled with nucleotide strings, edges
// between oriented endpoints carrying a default or per-edge overlap length,
// and opaque tags attached to nodes and edges.
//
// Invariant ("doubly-sided edges"): for every edge (u,v) in Edges, the
// reversed edge (v.Reverse(), u.Reverse()) is also in Edges. ConfirmDoubleSidedEdges
// restores this invariant after a load.
type Graph struct {
	Nodes map[int]string

	// Edges maps a source endpoint to its ordered outgoing targets.
	Edges map[NodePos][]NodePos

	// EdgeOverlap is the default overlap length, in base pairs, applied to
	// every edge unless overridden in VaryingOverlaps.
	EdgeOverlap int

	// VaryingOverlaps holds per-edge overlap overrides.
	VaryingOverlaps map[EdgeKey]int

	// Tags holds opaque per-node tag strings (tab-separated SAM-style tags,
	// e.g. "LN:i:120\tbc:Z:4").
	Tags map[int]string

	// EdgeTags holds opaque per-edge tag strings.
	EdgeTags map[EdgeKey]string
}

// New returns an empty Graph ready for population.
func New() *Graph {
	return &Graph{
		Nodes:           map[int]string{},
		Edges:           map[NodePos][]NodePos{},
		VaryingOverlaps: map[EdgeKey]int{},
		Tags:            map[int]string{},
		EdgeTags:        map[EdgeKey]string{},
	}
}

// AddEdge appends target to the outgoing edge list of from, without adding
// the reverse complement edge. Callers that need the doubly-sided invariant
// should call ConfirmDoubleSidedEdges once all edges are added.
func (g *Graph) AddEdge(from, to NodePos) {
	g.Edges[from] = append(g.Edges[from], to)
}

// HasEdge reports whether an edge from -> to is present.
func (g *Graph) HasEdge(from, to NodePos) bool {
	for _, t := range g.Edges[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Overlap returns the overlap length for an edge, honoring VaryingOverlaps
// before falling back to EdgeOverlap.
func (g *Graph) Overlap(from, to NodePos) int {
	if v, ok := g.VaryingOverlaps[EdgeKey{from, to}]; ok {
		return v
	}
	return g.EdgeOverlap
}

// ConfirmDoubleSidedEdges adds the reverse-complement of every edge that is
// missing one, restoring the doubly-sided-edges invariant. It is idempotent.
func (g *Graph) ConfirmDoubleSidedEdges() {
	added := 0
	// Snapshot the source endpoints first since we mutate g.Edges as we go.
	froms := make([]NodePos, 0, len(g.Edges))
	for from := range g.Edges {
		froms = append(froms, from)
	}
	for _, from := range froms {
		for _, to := range g.Edges[from] {
			revFrom, revTo := to.Reverse(), from.Reverse()
			if !g.HasEdge(revFrom, revTo) {
				g.Edges[revFrom] = append(g.Edges[revFrom], revTo)
				added++
			}
		}
	}
	if added > 0 {
		log.Printf("gfa: added %d missing reverse-complement edges", added)
	}
}

// LongestOverlap returns the length of the longest suffix of before that
// equals a prefix of after, capped at maxOverlap. If either string is shorter
// than maxOverlap, the cap is the length of the shorter string.
func LongestOverlap(before, after string, maxOverlap int) int {
	if len(before) < maxOverlap || len(after) < maxOverlap {
		maxOverlap = min(len(before), len(after))
	}
	for i := maxOverlap; i > 0; i-- {
		if before[len(before)-i:] == after[:i] {
			return i
		}
	}
	return 0
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Stats summarizes a graph's size for progress logging.
type Stats struct {
	Nodes, Edges int
	TotalBases   int
}

// ComputeStats walks the graph once to build a Stats summary.
func (g *Graph) ComputeStats() Stats {
	var s Stats
	s.Nodes = len(g.Nodes)
	for _, seq := range g.Nodes {
		s.TotalBases += len(seq)
	}
	for _, targets := range g.Edges {
		s.Edges += len(targets)
	}
	return s
}
