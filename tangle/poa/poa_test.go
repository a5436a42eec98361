package poa

import (
	"testing"

	"github.com/grailbio/graphasm/gfa"
	"github.com/grailbio/graphasm/tangle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(id int) gfa.NodePos { return gfa.NodePos{ID: id, End: true} }

func TestAlignMatchesIdenticalRun(t *testing.T) {
	skeleton := NewSkeleton([]gfa.NodePos{node(1), node(2), node(3)})
	sizes := map[int]int{1: 10, 2: 10, 3: 10}
	matches := Align([]gfa.NodePos{node(1), node(2), node(3)}, skeleton, sizes)
	require.Len(t, matches, 3)
	assert.Equal(t, 2, matches[1].NodeID)
}

func TestResolveReusesSharedNodesAndSplicesNovelOnes(t *testing.T) {
	subpaths := []tangle.Subpath{
		{PathIndex: 0, StartStep: 0, Steps: []gfa.NodePos{node(1), node(2), node(3)}},
		{PathIndex: 1, StartStep: 0, Steps: []gfa.NodePos{node(1), node(99), node(3)}},
	}
	sizes := map[int]int{1: 10, 2: 10, 3: 10, 99: 10}
	// 1 and 3 are the shared safe-chain anchors both subpaths cross between;
	// node 99 is the interior divergence neither chain tags.
	safeChains := map[int]bool{1: true}
	belongsToChain := map[int]int{1: 1, 3: 1}
	nextID := 1000
	result := Resolve(subpaths, sizes, safeChains, belongsToChain, &nextID)

	assert.True(t, result.Keep[1])
	assert.True(t, result.Keep[3])
	require.Len(t, result.NewNodes, 1)
	for newID, origin := range result.NewNodes {
		assert.Equal(t, 1000, newID)
		assert.Equal(t, 99, origin.ID)
	}
}

func TestUpdateGraphMaterializesNewNodesAndErasesReplaced(t *testing.T) {
	g := gfa.New()
	g.Nodes[1] = "AAAA"
	g.Nodes[2] = "CCCC"
	g.Nodes[3] = "GGGG"
	g.AddEdge(node(1), node(2))
	g.AddEdge(node(2).Reverse(), node(1).Reverse())
	g.AddEdge(node(2), node(3))
	g.AddEdge(node(3).Reverse(), node(2).Reverse())

	comp := &tangle.Component{
		NodeIDs: map[int]bool{1: true, 2: true, 3: true},
		Edges: map[gfa.EdgeKey]bool{
			{From: node(1), To: node(2)}: true,
			{From: node(2), To: node(3)}: true,
		},
	}
	result := &Result{
		NewNodes: map[int]gfa.NodePos{1000: node(2)},
		NewEdges: []gfa.EdgeKey{
			{From: node(1), To: node(1000)},
			{From: node(1000), To: node(3)},
		},
		Keep: map[int]bool{1: true, 3: true},
	}
	UpdateGraph(g, comp, result)

	_, has2 := g.Nodes[2]
	assert.False(t, has2)
	assert.Equal(t, "CCCC", g.Nodes[1000])
	assert.True(t, g.HasEdge(node(1), node(1000)))
	assert.True(t, g.HasEdge(node(1000), node(3)))
}
