package unionfind

import (
	"testing"

	"github.com/grailbio/graphasm/gfa"
	"github.com/stretchr/testify/assert"
)

func TestFindDefaultsToSingleton(t *testing.T) {
	u := New(2)
	k := Key{Path: 0, Pos: gfa.NodePos{ID: 3, End: true}}
	assert.Equal(t, k, u.Find(k))
}

func TestUnionMergesSets(t *testing.T) {
	u := New(2)
	a := Key{Path: 0, Pos: gfa.NodePos{ID: 1, End: true}}
	b := Key{Path: 1, Pos: gfa.NodePos{ID: 2, End: false}}
	c := Key{Path: 1, Pos: gfa.NodePos{ID: 3, End: true}}
	u.Union(a, b)
	u.Union(b, c)
	assert.Equal(t, u.Find(a), u.Find(b))
	assert.Equal(t, u.Find(b), u.Find(c))
}

func TestUnionStrandPairUnionsReverseToo(t *testing.T) {
	u := New(2)
	a := Key{Path: 0, Pos: gfa.NodePos{ID: 1, End: true}}
	b := Key{Path: 1, Pos: gfa.NodePos{ID: 2, End: false}}
	u.UnionStrandPair(a, b)
	assert.Equal(t, u.Find(a), u.Find(b))
	ra := Key{Path: 0, Pos: gfa.NodePos{ID: 1, End: false}}
	rb := Key{Path: 1, Pos: gfa.NodePos{ID: 2, End: true}}
	assert.Equal(t, u.Find(ra), u.Find(rb))
}
