package closure

import (
	"testing"

	"github.com/grailbio/graphasm/gfa"
	"github.com/grailbio/graphasm/walk"
	"github.com/stretchr/testify/assert"
)

func edgeKey(fromID int, fromEnd bool, toID int, toEnd bool) gfa.EdgeKey {
	return gfa.EdgeKey{From: gfa.NodePos{ID: fromID, End: fromEnd}, To: gfa.NodePos{ID: toID, End: toEnd}}
}

func TestRemoveChimericEdgesDropsLowSupportBranch(t *testing.T) {
	edges := newEdges()
	main := edgeKey(1, true, 2, true)
	chimeric := edgeKey(1, true, 3, true)
	edges.Coverage[main] = 100
	edges.Coverage[chimeric] = 1
	result := RemoveChimericEdges(edges, 5, 0.2)
	_, hasMain := result.Coverage[main]
	_, hasChimeric := result.Coverage[chimeric]
	assert.True(t, hasMain)
	assert.False(t, hasChimeric)
}

func TestRemoveChimericEdgesKeepsProportionalBranches(t *testing.T) {
	edges := newEdges()
	a := edgeKey(1, true, 2, true)
	b := edgeKey(1, true, 3, true)
	edges.Coverage[a] = 5
	edges.Coverage[b] = 4
	result := RemoveChimericEdges(edges, 5, 0.5)
	assert.Len(t, result.Coverage, 2)
}

func TestBridgeTipsAddsEdgeAcrossUnmappedGap(t *testing.T) {
	walks := []walk.Walk{
		{Name: "r0", Steps: []gfa.NodePos{{ID: 0, End: true}, {ID: 99, End: true}, {ID: 1, End: true}}},
	}
	mapping := DoublestrandMapping{
		{0, 0}: {ID: 1, End: true},
		{0, 2}: {ID: 2, End: true},
	}
	edges := newEdges()
	bridged := BridgeTips(edges, mapping, walks, 1)
	_, ok := bridged.Coverage[edgeKey(1, true, 2, true)]
	assert.True(t, ok)
}

func TestDetermineOverlapsFallsBackToSequenceOverlap(t *testing.T) {
	walks := []walk.Walk{
		{Name: "r0", Steps: []gfa.NodePos{{ID: 0, End: true}, {ID: 1, End: true}}},
	}
	mapping := DoublestrandMapping{
		{0, 0}: {ID: 1, End: true},
		{0, 1}: {ID: 2, End: true},
	}
	edges := newEdges()
	key := edgeKey(1, true, 2, true)
	edges.Coverage[key] = 3

	g := gfa.New()
	g.EdgeOverlap = 3
	g.Nodes[0] = "AAACCC"
	g.Nodes[1] = "CCCGGG"

	result := DetermineOverlaps(walks, mapping, edges, g)
	assert.Equal(t, 3, result.Overlap[key])
}
