package resolve

import (
	"testing"

	"github.com/grailbio/graphasm/gfa"
	"github.com/grailbio/graphasm/walk"
	"github.com/stretchr/testify/assert"
)

func bubbleGraph() (*gfa.Graph, []walk.Walk) {
	g := gfa.New()
	seqs := map[int]string{1: "AAAAAAAAAA", 2: "CCCCCCCCCC", 3: "TTTTTTTTTT", 4: "GGGGGGGGGG", 5: "ACACACACAC"}
	for id, seq := range seqs {
		g.Nodes[id] = seq
		g.Tags[id] = gfa.FormatNodeTags(len(seq), len(seq), 1, gfa.NodePos{ID: id, End: true})
	}
	g.Tags[1] += "\tbc:Z:1"
	g.Tags[2] += "\tbc:Z:1"
	g.Tags[5] += "\tbc:Z:2"
	pos := func(id int) gfa.NodePos { return gfa.NodePos{ID: id, End: true} }
	g.AddEdge(pos(1), pos(2))
	g.AddEdge(pos(2).Reverse(), pos(1).Reverse())
	g.AddEdge(pos(2), pos(3))
	g.AddEdge(pos(3).Reverse(), pos(2).Reverse())
	g.AddEdge(pos(3), pos(5))
	g.AddEdge(pos(5).Reverse(), pos(3).Reverse())
	g.AddEdge(pos(2), pos(4))
	g.AddEdge(pos(4).Reverse(), pos(2).Reverse())
	g.AddEdge(pos(4), pos(5))
	g.AddEdge(pos(5).Reverse(), pos(4).Reverse())

	walks := []walk.Walk{
		{Name: "r0", Steps: []gfa.NodePos{pos(1), pos(2), pos(3), pos(5)}},
		{Name: "r1", Steps: []gfa.NodePos{pos(1), pos(2), pos(4), pos(5)}},
	}
	return g, walks
}

func TestComponentsSkipsNonSafeChainBoundedTangleWithoutFullCrossing(t *testing.T) {
	g, walks := bubbleGraph()
	resolved, unresolved, tooBig := Components(g, walks, 100)
	assert.Equal(t, 0, tooBig)
	assert.Equal(t, 0, resolved)
	assert.Equal(t, 1, unresolved)
}
