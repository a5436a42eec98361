package gfa

import "testing"

import "github.com/stretchr/testify/assert"
import "github.com/stretchr/testify/require"

func TestCanonSymmetric(t *testing.T) {
	a := NodePos{ID: 3, End: true}
	b := NodePos{ID: 7, End: false}
	l1, r1 := Canon(a, b)
	l2, r2 := Canon(b.Reverse(), a.Reverse())
	assert.Equal(t, l1, l2)
	assert.Equal(t, r1, r2)
}

func TestCanonSelfLoop(t *testing.T) {
	a := NodePos{ID: 5, End: false}
	b := NodePos{ID: 5, End: false}
	l, r := Canon(a, b)
	assert.Equal(t, NodePos{5, true}, l)
	assert.Equal(t, NodePos{5, true}, r)
}

func TestConfirmDoubleSidedEdges(t *testing.T) {
	g := New()
	g.Nodes[1] = "ACGT"
	g.Nodes[2] = "GGTT"
	u := NodePos{1, true}
	v := NodePos{2, false}
	g.AddEdge(u, v)
	require.False(t, g.HasEdge(v.Reverse(), u.Reverse()))
	g.ConfirmDoubleSidedEdges()
	assert.True(t, g.HasEdge(v.Reverse(), u.Reverse()))
	g.ConfirmDoubleSidedEdges()
	assert.Len(t, g.Edges[v.Reverse()], 1)
}

func TestLongestOverlap(t *testing.T) {
	assert.Equal(t, 3, LongestOverlap("AACCGGT", "GGTAAAA", 5))
	assert.Equal(t, 0, LongestOverlap("AAAA", "CCCC", 3))
	assert.Equal(t, 2, LongestOverlap("AT", "ATCG", 4))
}

func TestReverseComplement(t *testing.T) {
	assert.Equal(t, "ACGT", ReverseComplement("ACGT"))
	assert.Equal(t, "NNacgt", ReverseComplement("acgtNN"))
}
