package tangle

import (
	"github.com/grailbio/graphasm/gfa"
	"github.com/grailbio/graphasm/walk"
)

// Subpath is one read's traversal of a single component, extracted without
// regard for whether either end lands on a safe-chain node. A read that
// starts or ends mid-tangle has no trusted anchor on that side; it is kept
// here (SplitPathsPerComponent does not filter by endpoint safety) but
// excluded later, at resolution time, from seeding or extending a skeleton.
type Subpath struct {
	PathIndex int
	StartStep int
	Steps     []gfa.NodePos
}

// Connection identifies the (entry, exit) pair of safe boundary nodes a
// subpath runs between, used to group subpaths that cross the same part of
// the tangle so they can be aligned into one partial-order skeleton.
type Connection struct {
	Entry, Exit gfa.NodePos
}

// Canonical returns the connection in a fixed orientation so a subpath
// walked in either direction groups with the same connection.
func (c Connection) Canonical() (Connection, bool) {
	entry, exit := gfa.Canon(c.Entry, c.Exit)
	return Connection{Entry: entry, Exit: exit}, entry != c.Entry
}

// SplitPathsPerComponent extracts, from every walk, each maximal run of
// consecutive steps whose connecting edges all belong to comp. A run starts
// and ends at the outer endpoints of its first and last component edge (the
// nodes where the read enters and exits the component); steps beyond them
// are not included.
func SplitPathsPerComponent(walks []walk.Walk, comp *Component) []Subpath {
	var result []Subpath
	for i, w := range walks {
		steps := w.Steps
		j := 1
		for j < len(steps) {
			left, right := gfa.Canon(steps[j-1], steps[j])
			if !comp.Edges[gfa.EdgeKey{From: left, To: right}] {
				j++
				continue
			}
			start := j - 1
			end := j
			for end+1 < len(steps) {
				left, right = gfa.Canon(steps[end], steps[end+1])
				if !comp.Edges[gfa.EdgeKey{From: left, To: right}] {
					break
				}
				end++
			}
			sub := make([]gfa.NodePos, end-start+1)
			copy(sub, steps[start:end+1])
			result = append(result, Subpath{PathIndex: i, StartStep: start, Steps: sub})
			j = end + 1
		}
	}
	return result
}

// Connection returns the (entry, exit) boundary pair a subpath crosses.
func (s Subpath) Connection() Connection {
	return Connection{Entry: s.Steps[0], Exit: s.Steps[len(s.Steps)-1]}
}

func isSafeEnd(id int, safeChains map[int]bool, belongsToChain map[int]int) bool {
	chain, ok := belongsToChain[id]
	return ok && safeChains[chain]
}

// CanResolve reports whether enough read evidence crosses comp to attempt
// resolution, mirroring canResolve's four checks:
//  1. at least one subpath exists;
//  2. totalSafeCrossing -- the count of subpath ends that land on a safe
//     chain, summed over every subpath -- is at least the number of
//     subpaths (on average each subpath is anchored at both ends);
//  3. every safe boundary node comp touches is crossed by at least one
//     "safe crosser": a subpath anchored by a safe chain at both ends,
//     not merely one whose end happens to coincide with that node; and
//  4. per safe boundary node, the count of safe crossers touching it is at
//     least the count of all subpaths touching it, so no read traffic
//     through that boundary goes unexplained by a trustworthy crossing.
func CanResolve(subpaths []Subpath, comp *Component, safeChains map[int]bool, belongsToChain map[int]int) bool {
	if len(subpaths) == 0 {
		return false
	}

	totalSafeCrossing := 0
	for _, s := range subpaths {
		if isSafeEnd(s.Steps[0].ID, safeChains, belongsToChain) {
			totalSafeCrossing++
		}
		if isSafeEnd(s.Steps[len(s.Steps)-1].ID, safeChains, belongsToChain) {
			totalSafeCrossing++
		}
	}
	if totalSafeCrossing < len(subpaths) {
		return false
	}

	boundarySafe := make(map[int]bool)
	for key := range comp.Edges {
		if isSafeEnd(key.From.ID, safeChains, belongsToChain) {
			boundarySafe[key.From.ID] = true
		}
		if isSafeEnd(key.To.ID, safeChains, belongsToChain) {
			boundarySafe[key.To.ID] = true
		}
	}

	pathsCrossingPerSafe := make(map[int]int)
	safeCrossingPerSafe := make(map[int]int)
	for _, s := range subpaths {
		entry, exit := s.Steps[0].ID, s.Steps[len(s.Steps)-1].ID
		bothSafe := isSafeEnd(entry, safeChains, belongsToChain) && isSafeEnd(exit, safeChains, belongsToChain)
		for _, end := range [2]int{entry, exit} {
			if !boundarySafe[end] {
				continue
			}
			pathsCrossingPerSafe[end]++
			if bothSafe {
				safeCrossingPerSafe[end]++
			}
		}
	}

	for nodeID := range boundarySafe {
		if safeCrossingPerSafe[nodeID] == 0 {
			return false
		}
		if safeCrossingPerSafe[nodeID] < pathsCrossingPerSafe[nodeID] {
			return false
		}
	}
	return true
}
