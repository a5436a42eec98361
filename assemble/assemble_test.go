package assemble

import (
	"testing"

	"github.com/grailbio/graphasm/gfa"
	"github.com/grailbio/graphasm/overlap"
	"github.com/grailbio/graphasm/walk"
	"github.com/stretchr/testify/assert"
)

func TestRunProducesAGraphWithoutPanicking(t *testing.T) {
	g := gfa.New()
	g.Nodes[0] = "ACGTACGTAC"
	g.Nodes[1] = "TACGGGTTTT"
	g.EdgeOverlap = 3

	walks := []walk.Walk{
		{Name: "r0", Steps: []gfa.NodePos{{ID: 0, End: true}}},
		{Name: "r1", Steps: []gfa.NodePos{{ID: 1, End: true}}},
	}
	alns := []overlap.Alignment{
		{
			LeftPath: 0, RightPath: 1,
			LeftStart: 0, LeftEnd: 0, RightStart: 0, RightEnd: 0,
			AlignedPairs:      []overlap.Pair{{LeftIndex: 0, RightIndex: 0}},
			AlignmentLength:   7,
			AlignmentIdentity: 0.95,
		},
	}

	out, remapped := Run(g, walks, alns, 2, 10)
	assert.NotNil(t, out)
	assert.NotNil(t, remapped)
}
