// Package unionfind implements the disjoint-set structure the closure
// builder uses to take the transitive closure of overlap-implied node
// equivalences.
package unionfind

import "github.com/grailbio/graphasm/gfa"

// Key identifies one oriented step of one path: the path index plus the
// oriented node position visited at that step.
type Key struct {
	Path int
	Pos  gfa.NodePos
}

// Oriented is a union-find over Keys, two levels deep: a path index
// selecting a per-path parent table, and within it a node id/orientation
// pair. Every Key is implicitly its own singleton set until first touched,
// so callers never need to pre-register path/step counts.
type Oriented struct {
	parent []map[gfa.NodePos]Key
}

// New returns an Oriented union-find sized for numPaths paths. Parent maps
// are allocated lazily per path on first use.
func New(numPaths int) *Oriented {
	return &Oriented{parent: make([]map[gfa.NodePos]Key, numPaths)}
}

func (u *Oriented) table(path int) map[gfa.NodePos]Key {
	if u.parent[path] == nil {
		u.parent[path] = make(map[gfa.NodePos]Key)
	}
	return u.parent[path]
}

// Find returns the representative of key's set, path-compressing along the
// way.
func (u *Oriented) Find(key Key) Key {
	table := u.table(key.Path)
	parent, ok := table[key.Pos]
	if !ok {
		table[key.Pos] = key
		return key
	}
	if parent == key {
		return key
	}
	root := u.Find(parent)
	table[key.Pos] = root
	return root
}

// Union merges the sets containing a and b.
func (u *Oriented) Union(a, b Key) {
	rootA := u.Find(a)
	rootB := u.Find(b)
	if rootA == rootB {
		return
	}
	u.table(rootA.Path)[rootA.Pos] = rootB
}

// UnionStrandPair unions a with b, and -- since every equivalence an
// aligner reports between two oriented positions implies the same
// equivalence between their reverse complements -- also unions a.Reverse()
// with b.Reverse().
func (u *Oriented) UnionStrandPair(a, b Key) {
	u.Union(a, b)
	u.Union(Key{a.Path, a.Pos.Reverse()}, Key{b.Path, b.Pos.Reverse()})
}
