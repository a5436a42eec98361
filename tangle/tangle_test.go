package tangle

import (
	"testing"

	"github.com/grailbio/graphasm/gfa"
	"github.com/grailbio/graphasm/walk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainGraph() *gfa.Graph {
	g := gfa.New()
	// safe chain 1: nodes 1,2 ; tangle: node 3 (bubble alt), node 4 ; safe chain 2: node 5
	for id, length := range map[int]int{1: 3000, 2: 3000, 3: 50, 4: 50, 5: 3000} {
		g.Tags[id] = gfa.FormatNodeTags(length, length, 1, gfa.NodePos{ID: id, End: true})
	}
	g.Tags[1] += "\tbc:Z:10"
	g.Tags[2] += "\tbc:Z:10"
	g.Tags[5] += "\tbc:Z:20"
	g.AddEdge(gfa.NodePos{ID: 1, End: true}, gfa.NodePos{ID: 2, End: true})
	g.AddEdge(gfa.NodePos{ID: 2, End: true}, gfa.NodePos{ID: 3, End: true})
	g.AddEdge(gfa.NodePos{ID: 3, End: true}, gfa.NodePos{ID: 4, End: true})
	g.AddEdge(gfa.NodePos{ID: 4, End: true}, gfa.NodePos{ID: 5, End: true})
	return g
}

func TestSafeChainsThresholdsByTotalLength(t *testing.T) {
	g := chainGraph()
	safe := SafeChains(g, 5000)
	assert.True(t, safe[10])
	assert.False(t, safe[20])
}

func TestChainBelongersMapsTaggedNodes(t *testing.T) {
	g := chainGraph()
	belongers := ChainBelongers(g)
	assert.Equal(t, 10, belongers[1])
	assert.Equal(t, 10, belongers[2])
	assert.Equal(t, 20, belongers[5])
	_, ok := belongers[3]
	assert.False(t, ok)
}

func TestGetComponentsIsolatesNonSafeEdges(t *testing.T) {
	g := chainGraph()
	safe := SafeChains(g, 5000)
	belongers := ChainBelongers(g)
	components := GetComponents(g, safe, belongers)
	require.Len(t, components, 1)
	comp := components[0]
	assert.False(t, comp.NodeIDs[2], "node 2 is a safe boundary, not part of the tangle")
	assert.True(t, comp.NodeIDs[3])
	assert.True(t, comp.NodeIDs[4])
	assert.True(t, comp.NodeIDs[5])
	assert.Len(t, comp.Edges, 3)
}

// twoSidedChainGraph bounds the tangle (nodes 3,4) by a safe chain on both
// sides, so a subpath crossing it end to end is a genuine safe crosser.
func twoSidedChainGraph() *gfa.Graph {
	g := gfa.New()
	for id, length := range map[int]int{1: 3000, 2: 3000, 3: 50, 4: 50, 5: 3000, 6: 3000} {
		g.Tags[id] = gfa.FormatNodeTags(length, length, 1, gfa.NodePos{ID: id, End: true})
	}
	g.Tags[1] += "\tbc:Z:10"
	g.Tags[2] += "\tbc:Z:10"
	g.Tags[5] += "\tbc:Z:20"
	g.Tags[6] += "\tbc:Z:20"
	g.AddEdge(gfa.NodePos{ID: 1, End: true}, gfa.NodePos{ID: 2, End: true})
	g.AddEdge(gfa.NodePos{ID: 2, End: true}, gfa.NodePos{ID: 3, End: true})
	g.AddEdge(gfa.NodePos{ID: 3, End: true}, gfa.NodePos{ID: 4, End: true})
	g.AddEdge(gfa.NodePos{ID: 4, End: true}, gfa.NodePos{ID: 5, End: true})
	g.AddEdge(gfa.NodePos{ID: 5, End: true}, gfa.NodePos{ID: 6, End: true})
	return g
}

func TestSplitPathsPerComponentAndCanResolve(t *testing.T) {
	g := twoSidedChainGraph()
	safe := SafeChains(g, 5000)
	belongers := ChainBelongers(g)
	components := GetComponents(g, safe, belongers)
	require.Len(t, components, 1)
	comp := components[0]

	walks := []walk.Walk{
		{Name: "r0", Steps: []gfa.NodePos{
			{ID: 1, End: true}, {ID: 2, End: true}, {ID: 3, End: true},
			{ID: 4, End: true}, {ID: 5, End: true}, {ID: 6, End: true},
		}},
	}
	subpaths := SplitPathsPerComponent(walks, comp)
	require.Len(t, subpaths, 1)
	assert.Equal(t, 1, subpaths[0].StartStep)
	assert.Len(t, subpaths[0].Steps, 4)

	assert.True(t, CanResolve(subpaths, comp, safe, belongers))
}

func TestCanResolveFailsWithoutFullCrossing(t *testing.T) {
	g := twoSidedChainGraph()
	safe := SafeChains(g, 5000)
	belongers := ChainBelongers(g)
	components := GetComponents(g, safe, belongers)
	comp := components[0]

	walks := []walk.Walk{
		{Name: "r0", Steps: []gfa.NodePos{{ID: 1, End: true}, {ID: 2, End: true}, {ID: 3, End: true}}},
	}
	subpaths := SplitPathsPerComponent(walks, comp)
	assert.False(t, CanResolve(subpaths, comp, safe, belongers))
}
