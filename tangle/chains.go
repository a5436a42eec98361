// Package tangle finds small unresolved tangle components in a sequence
// graph -- the non-safe node clusters bounded by safe chains -- that the
// partial-order resolver can then attempt to thread with read evidence.
package tangle

import (
	"github.com/grailbio/graphasm/gfa"
)

// SafeChains returns the set of chain ids (the "bc:Z:" tag value) whose
// total node length reaches safeChainSize. A node belongs to a safe chain
// when its tags name a chain at or above this length; everything else is
// fair game for tangle resolution.
func SafeChains(g *gfa.Graph, safeChainSize int) map[int]bool {
	chainSize := make(map[int]int)
	for _, tags := range g.Tags {
		length, hasLength, err := gfa.TagInt(tags, gfa.TagLength)
		if err != nil || !hasLength {
			continue
		}
		chain, hasChain, err := gfa.TagInt(tags, gfa.TagChain)
		if err != nil || !hasChain {
			continue
		}
		chainSize[chain] += length
	}
	result := make(map[int]bool)
	for chain, size := range chainSize {
		if size >= safeChainSize {
			result[chain] = true
		}
	}
	return result
}

// ChainBelongers maps every tagged node id to the chain id it belongs to.
func ChainBelongers(g *gfa.Graph) map[int]int {
	result := make(map[int]int)
	for nodeID, tags := range g.Tags {
		chain, ok, err := gfa.TagInt(tags, gfa.TagChain)
		if err != nil || !ok {
			continue
		}
		result[nodeID] = chain
	}
	return result
}
