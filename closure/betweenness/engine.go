// Package betweenness implements the edge-betweenness overlap-cut pass: it
// treats every aligned base pair as an edge in a bipartite node-incidence
// graph, and repeatedly forbids the single highest-betweenness overlap,
// locking every connected component that has shrunk to at most the caller's
// maximum group size, until its queue of candidate overlaps is empty.
package betweenness

import (
	"sync"

	"github.com/biogo/store/llrb"
	"github.com/grailbio/base/log"
)

// edge is one step of the incidence graph: node is the node-table index on
// the far end, overlap is the index of the alignment (in the caller's
// alignment slice) that this traversal step belongs to.
type edge struct {
	node, overlap int
}

// Engine holds the incidence graph and per-overlap betweenness accumulator
// used to repeatedly identify and forbid the highest-betweenness overlap.
type Engine struct {
	edges       [][]edge
	forbidden   map[int]bool
	locked      []bool
	betweenness []float64

	// overlapLeftNodes maps an overlap index to the node-table indices its
	// aligned pairs touch on the left side, used to seed forbidOverlap's
	// affected-node walk.
	overlapLeftNodes [][]int

	alignedPairCount []int
	maxGroupSize     int
}

// New builds an empty Engine over nodeCount incidence-graph nodes and
// numOverlaps candidate overlaps. Callers populate the incidence graph with
// AddOverlapEdge, one call per aligned base-pair edge, before running
// LockSmallComponents / AccumulateInitialBetweenness / PickCuts.
func New(nodeCount, numOverlaps, maxGroupSize int) *Engine {
	return &Engine{
		edges:            make([][]edge, nodeCount),
		forbidden:        make(map[int]bool),
		locked:           make([]bool, nodeCount),
		overlapLeftNodes: make([][]int, numOverlaps),
		alignedPairCount: make([]int, numOverlaps),
		betweenness:      make([]float64, numOverlaps),
		maxGroupSize:     maxGroupSize,
	}
}

// AddOverlapEdge registers one aligned-pair edge belonging to overlap
// overlapIndex between incidence-graph nodes a and b.
func (e *Engine) AddOverlapEdge(overlapIndex, a, b int) {
	e.edges[a] = append(e.edges[a], edge{node: b, overlap: overlapIndex})
	e.edges[b] = append(e.edges[b], edge{node: a, overlap: overlapIndex})
	e.overlapLeftNodes[overlapIndex] = append(e.overlapLeftNodes[overlapIndex], a)
	e.alignedPairCount[overlapIndex]++
}

// LockSmallComponents walks every still-unlocked node's connected component
// (honoring the current forbidden set) and freezes it -- marks every node in
// it locked -- if the component has at most maxGroupSize nodes. Locked
// nodes are never chosen as a betweenness-accumulation root and never
// appear in an affected-node set, since cutting further inside an
// already-small component would only fragment it further.
func (e *Engine) LockSmallComponents() {
	checked := make([]bool, len(e.edges))
	for i := range e.edges {
		e.checkLocked(i, checked)
	}
}

func (e *Engine) checkLocked(start int, checked []bool) {
	if checked[start] {
		return
	}
	nodes := map[int]bool{}
	stack := []int{start}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if nodes[i] {
			continue
		}
		checked[i] = true
		nodes[i] = true
		for _, ed := range e.edges[i] {
			if e.forbidden[ed.overlap] {
				continue
			}
			stack = append(stack, ed.node)
		}
	}
	if len(nodes) <= e.maxGroupSize {
		for n := range nodes {
			e.locked[n] = true
		}
	}
}

// AccumulateInitialBetweenness computes the starting betweenness of every
// overlap by running a BFS-based Brandes-style accumulation pass from every
// unlocked node, splitting the root set across numThreads goroutines with a
// per-goroutine accumulator that is reduced once all goroutines finish.
func (e *Engine) AccumulateInitialBetweenness(numThreads int) {
	if numThreads < 1 {
		numThreads = 1
	}
	perThread := make([][]float64, numThreads)
	for t := range perThread {
		perThread[t] = make([]float64, len(e.betweenness))
	}
	var next int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for t := 0; t < numThreads; t++ {
		wg.Add(1)
		go func(t int) {
			defer wg.Done()
			for {
				mu.Lock()
				i := next
				next++
				mu.Unlock()
				if i >= len(e.edges) {
					return
				}
				if e.locked[i] {
					continue
				}
				addBetweenness(i, e.edges, e.forbidden, perThread[t])
			}
		}(t)
	}
	wg.Wait()
	for t := 0; t < numThreads; t++ {
		for i := range e.betweenness {
			e.betweenness[i] += perThread[t][i]
		}
	}
	log.Printf("betweenness: accumulated initial betweenness over %d nodes, %d overlaps", len(e.edges), len(e.betweenness))
}

type queueItem struct {
	overlap     int
	betweenness float64
}

func (q queueItem) Compare(other llrb.Comparable) int {
	o := other.(queueItem)
	switch {
	case q.betweenness > o.betweenness:
		return -1
	case q.betweenness < o.betweenness:
		return 1
	case q.overlap < o.overlap:
		return -1
	case q.overlap > o.overlap:
		return 1
	default:
		return 0
	}
}

// Forbidden reports whether PickCuts forbade overlapIndex.
func (e *Engine) Forbidden(overlapIndex int) bool {
	return e.forbidden[overlapIndex]
}

// PickCuts repeatedly pops the overlap with the highest per-aligned-pair
// betweenness off a max-priority queue (built from biogo/store/llrb.Tree by
// inverting queueItem's comparison order, so the tree's minimum is the
// highest-priority overlap),
// re-validates its stored priority against the current betweenness within a
// drift tolerance of 1 (betweenness changes incrementally as earlier cuts
// are applied, so a slightly stale priority is still usable without a full
// recompute), and forbids it if still valid. The process stops once the
// queue is empty.
func (e *Engine) PickCuts() {
	queue := llrb.Tree{}
	for i := range e.betweenness {
		queue.Insert(queueItem{overlap: i, betweenness: e.priority(i)})
	}
	cuts := 0
	for queue.Len() > 0 {
		var top queueItem
		queue.Do(func(item llrb.Comparable) bool {
			top = item.(queueItem)
			return false
		})
		queue.DeleteMin()
		if e.forbidden[top.overlap] {
			continue
		}
		current := e.priority(top.overlap)
		if top.betweenness > current+1 || top.betweenness < current-1 {
			continue
		}
		affected := e.forbidOverlap(top.overlap)
		for _, overlapIdx := range affected {
			queue.Insert(queueItem{overlap: overlapIdx, betweenness: e.priority(overlapIdx)})
		}
		cuts++
	}
	log.Printf("betweenness: forbade %d overlaps, %d remain", len(e.forbidden), len(e.betweenness)-len(e.forbidden))
}

func (e *Engine) priority(overlapIndex int) float64 {
	if e.alignedPairCount[overlapIndex] == 0 {
		return 0
	}
	return e.betweenness[overlapIndex] / float64(e.alignedPairCount[overlapIndex])
}

// forbidOverlap forbids overlapIndex: it walks the affected component
// (every node reachable from one of the overlap's left-side nodes without
// crossing an already-forbidden overlap), subtracts their contribution to
// the betweenness accumulator, marks the overlap forbidden, re-adds their
// contribution under the new forbidden set, re-checks whether any of them
// now belong to a small-enough locked component, and returns the set of
// overlaps whose betweenness changed so the caller can refresh the queue.
func (e *Engine) forbidOverlap(overlapIndex int) []int {
	affectedNodes := map[int]bool{}
	affectedOverlaps := map[int]bool{}
	for _, n := range e.overlapLeftNodes[overlapIndex] {
		if e.locked[n] {
			continue
		}
		addAffectedNodes(n, e.edges, e.forbidden, affectedNodes, affectedOverlaps)
	}
	for n := range affectedNodes {
		reduceBetweenness(n, e.edges, e.forbidden, e.betweenness)
	}
	e.forbidden[overlapIndex] = true
	for n := range affectedNodes {
		addBetweenness(n, e.edges, e.forbidden, e.betweenness)
	}
	checked := make([]bool, len(e.edges))
	for n := range affectedNodes {
		e.checkLocked(n, checked)
	}
	result := make([]int, 0, len(affectedOverlaps))
	for o := range affectedOverlaps {
		result = append(result, o)
	}
	return result
}

func addAffectedNodes(node int, edges [][]edge, forbidden map[int]bool, affectedNodes, affectedOverlaps map[int]bool) {
	if affectedNodes[node] {
		return
	}
	affectedNodes[node] = true
	for _, ed := range edges[node] {
		if forbidden[ed.overlap] {
			continue
		}
		affectedOverlaps[ed.overlap] = true
		addAffectedNodes(ed.node, edges, forbidden, affectedNodes, affectedOverlaps)
	}
}

func addBetweenness(startNode int, edges [][]edge, forbidden map[int]bool, totalBetweenness []float64) {
	modBetweenness(startNode, edges, forbidden, totalBetweenness, 1)
}

func reduceBetweenness(startNode int, edges [][]edge, forbidden map[int]bool, totalBetweenness []float64) {
	modBetweenness(startNode, edges, forbidden, totalBetweenness, -1)
}

// modBetweenness runs a single-source BFS shortest-path DAG construction
// from startNode, then walks it back-to-front accumulating each node's
// "backwards juice" (Brandes' dependency accumulation), adding
// multiplier*juice to the betweenness of every overlap edge that lies on a
// shortest path. multiplier is -1 to undo a previous addBetweenness pass
// before the forbidden set changes, and +1 to redo it afterwards.
func modBetweenness(startNode int, edges [][]edge, forbidden map[int]bool, totalBetweenness []float64, multiplier float64) {
	type frontierEntry struct {
		node  int
		depth int
	}
	queue := []frontierEntry{{startNode, 0}}
	explored := map[int]int{startNode: 0}
	numPaths := []float64{1}
	var takenEdge, parents [][]int
	takenEdge = append(takenEdge, nil)
	parents = append(parents, nil)

	for qi := 0; qi < len(queue); qi++ {
		node := queue[qi].node
		depth := queue[qi].depth
		pathsHere := numPaths[qi]
		for _, ed := range edges[node] {
			if forbidden[ed.overlap] {
				continue
			}
			var targetIndex int
			if idx, ok := explored[ed.node]; !ok {
				targetIndex = len(queue)
				explored[ed.node] = targetIndex
				queue = append(queue, frontierEntry{ed.node, depth + 1})
				takenEdge = append(takenEdge, nil)
				parents = append(parents, nil)
				numPaths = append(numPaths, 0)
			} else {
				targetIndex = idx
				if queue[targetIndex].depth <= depth {
					continue
				}
			}
			parents[targetIndex] = append(parents[targetIndex], qi)
			takenEdge[targetIndex] = append(takenEdge[targetIndex], ed.overlap)
			numPaths[targetIndex] += pathsHere
		}
	}

	backwardsJuice := make([]float64, len(queue))
	for i := range backwardsJuice {
		backwardsJuice[i] = 1
	}
	for i := len(queue) - 1; i > 0; i-- {
		for j, parent := range parents[i] {
			contribution := backwardsJuice[i] * numPaths[parent] / numPaths[i]
			backwardsJuice[parent] += contribution
			overlapIdx := takenEdge[i][j]
			totalBetweenness[overlapIdx] += contribution * multiplier
			if totalBetweenness[overlapIdx] > -0.01 && totalBetweenness[overlapIdx] < 0.01 {
				totalBetweenness[overlapIdx] = 0
			}
		}
	}
}
