// Package poa implements partial-order alignment of tangle subpaths against
// a growing skeleton DAG, the way ResolveSmallTangles threads raw reads
// through a small unresolved cluster of nodes to rebuild it as a small DAG
// of consensus nodes.
package poa

import "github.com/grailbio/graphasm/gfa"

// Skeleton is the growing partial-order graph a connection's subpaths are
// aligned against: an ordered (topological) list of oriented node visits
// plus each node's predecessors within the skeleton. A node with no recorded
// predecessor is a source -- reachable directly from the empty prefix.
type Skeleton struct {
	Order       []gfa.NodePos
	Predecessor map[int][]int
	indexOf     map[int]int
}

// NewSkeleton seeds a skeleton from the first subpath assigned to a
// connection: every step becomes a skeleton node in order, each pointing
// back to the step before it.
func NewSkeleton(steps []gfa.NodePos) *Skeleton {
	s := &Skeleton{Predecessor: map[int][]int{}, indexOf: map[int]int{}}
	for i, step := range steps {
		s.indexOf[step.ID] = i
		s.Order = append(s.Order, step)
		if i > 0 {
			s.Predecessor[step.ID] = append(s.Predecessor[step.ID], steps[i-1].ID)
		}
	}
	return s
}

func (s *Skeleton) has(id int) bool {
	_, ok := s.indexOf[id]
	return ok
}

// addNode appends a brand-new skeleton node at pos. If predecessor is
// non-negative, it is recorded as one of pos's predecessors in the skeleton.
func (s *Skeleton) addNode(pos gfa.NodePos, predecessor int) {
	s.indexOf[pos.ID] = len(s.Order)
	s.Order = append(s.Order, pos)
	if predecessor >= 0 {
		s.Predecessor[pos.ID] = append(s.Predecessor[pos.ID], predecessor)
	}
}

// predColumns returns the DP columns (1-indexed into the cell grid, matching
// skeleton.Order[col-1]) that stand as "already aligned up to" states for
// the skeleton node at column col: one entry per in-neighbor of that node in
// the skeleton DAG, or the virtual start column (0) when the node is a
// source.
func (s *Skeleton) predColumns(col int) []int {
	nodeID := s.Order[col-1].ID
	preds := s.Predecessor[nodeID]
	if len(preds) == 0 {
		return []int{0}
	}
	cols := make([]int, len(preds))
	for i, p := range preds {
		cols[i] = s.indexOf[p] + 1
	}
	return cols
}

// Match pairs a subpath step index with the skeleton node id it aligned to.
type Match struct {
	StepIndex int
	NodeID    int
}

const (
	dirNone = iota
	dirDiag
	dirUp
	dirLeft
)

// Align runs a partial-order alignment of steps against the skeleton DAG,
// scoring a step/node pair as a match (+max(len(step), len(node)) bp) when
// the step's oriented node position is identical to the skeleton node's --
// same id *and* strand -- and as a mismatch (the same magnitude, negated)
// otherwise. An unmatched path step costs -len(step) bp (an insertion); an
// unmatched skeleton node costs -len(node) bp (a deletion). Diagonal and
// deletion moves consider every in-neighbor of the skeleton node being
// matched against, maximizing over them the way a true partial-order
// alignment does once the skeleton has branched. It returns the list of
// steps that matched an existing skeleton node, in subpath order; unmatched
// steps are left to the caller to splice in as new nodes.
func Align(steps []gfa.NodePos, skeleton *Skeleton, nodeSizes map[int]int) []Match {
	rows := len(steps) + 1
	cols := len(skeleton.Order) + 1
	cell := func(i, j int) int { return i*cols + j }
	score := make([]int, rows*cols)
	dir := make([]int, rows*cols)
	from := make([]int, rows*cols)

	score[cell(0, 0)] = nodeSizes[steps[0].ID]

	for i := 1; i < rows; i++ {
		score[cell(i, 0)] = score[cell(i-1, 0)] - nodeSizes[steps[i-1].ID]
		dir[cell(i, 0)] = dirUp
	}
	for j := 1; j < cols; j++ {
		nodeID := skeleton.Order[j-1].ID
		best, bestFrom := -1<<62, -1
		for _, p := range skeleton.predColumns(j) {
			c := score[cell(0, p)] - nodeSizes[nodeID]
			if c > best {
				best, bestFrom = c, p
			}
		}
		score[cell(0, j)] = best
		dir[cell(0, j)] = dirLeft
		from[cell(0, j)] = bestFrom
	}

	for i := 1; i < rows; i++ {
		stepLen := nodeSizes[steps[i-1].ID]
		for j := 1; j < cols; j++ {
			nodePos := skeleton.Order[j-1]
			nodeLen := nodeSizes[nodePos.ID]
			maxLen := stepLen
			if nodeLen > maxLen {
				maxLen = nodeLen
			}
			preds := skeleton.predColumns(j)

			diagBest, diagFrom := -1<<62, -1
			for _, p := range preds {
				c := score[cell(i-1, p)]
				if steps[i-1] == nodePos {
					c += maxLen
				} else {
					c -= maxLen
				}
				if c > diagBest {
					diagBest, diagFrom = c, p
				}
			}

			up := score[cell(i-1, j)] - stepLen

			leftBest, leftFrom := -1<<62, -1
			for _, p := range preds {
				c := score[cell(i, p)] - nodeLen
				if c > leftBest {
					leftBest, leftFrom = c, p
				}
			}

			best, bestDir, bestFrom := diagBest, dirDiag, diagFrom
			if up > best {
				best, bestDir, bestFrom = up, dirUp, j
			}
			if leftBest > best {
				best, bestDir, bestFrom = leftBest, dirLeft, leftFrom
			}
			score[cell(i, j)] = best
			dir[cell(i, j)] = bestDir
			from[cell(i, j)] = bestFrom
		}
	}

	var matches []Match
	i, j := rows-1, cols-1
	for i > 0 || j > 0 {
		switch dir[cell(i, j)] {
		case dirDiag:
			if steps[i-1] == skeleton.Order[j-1] {
				matches = append(matches, Match{StepIndex: i - 1, NodeID: skeleton.Order[j-1].ID})
			}
			pf := from[cell(i, j)]
			i--
			j = pf
		case dirUp:
			i--
		case dirLeft:
			j = from[cell(i, j)]
		default:
			if i > 0 {
				i--
			} else {
				j--
			}
		}
	}
	// matches were collected back-to-front; reverse to subpath order.
	for l, r := 0, len(matches)-1; l < r; l, r = l+1, r-1 {
		matches[l], matches[r] = matches[r], matches[l]
	}
	return matches
}
