// Package gfa models the sequence graph that the assembler reads and
// rewrites: nodes labelled with nucleotide strings, oriented edges carrying
// an overlap length, and opaque per-node/per-edge tags.
package gfa

import "fmt"

// NodePos is an oriented endpoint of a graph node: the node id plus which
// extremity is being referred to. End == true means the forward
// (rightward-reading) endpoint; End == false means the reverse endpoint.
type NodePos struct {
	ID  int
	End bool
}

// Reverse flips the orientation of a NodePos.
func (p NodePos) Reverse() NodePos {
	return NodePos{ID: p.ID, End: !p.End}
}

// Less orders NodePos lexicographically on (ID, End), with End==false
// sorting before End==true.
func (p NodePos) Less(o NodePos) bool {
	if p.ID != o.ID {
		return p.ID < o.ID
	}
	return !p.End && o.End
}

func (p NodePos) String() string {
	if p.End {
		return fmt.Sprintf("%d+", p.ID)
	}
	return fmt.Sprintf("%d-", p.ID)
}

// EdgeKey identifies a directed edge by its oriented endpoints. It is used as
// a map key for per-edge tags and overlap overrides.
type EdgeKey struct {
	From, To NodePos
}

// Canon returns the canonical representative of the undirected-in-orientation
// pair (left, right): the same value is returned for (left, right) and for
// (right.Reverse(), left.Reverse()).
func Canon(left, right NodePos) (NodePos, NodePos) {
	if left.ID == right.ID {
		if !left.End && !right.End {
			return right.Reverse(), left.Reverse()
		}
		return left, right
	}
	if left.Less(right) {
		return left, right
	}
	return right.Reverse(), left.Reverse()
}
