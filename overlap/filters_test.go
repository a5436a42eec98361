package overlap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDoubleFlipsOrientation(t *testing.T) {
	alns := []Alignment{{
		LeftPath: 0, RightPath: 1,
		AlignedPairs: []Pair{{LeftIndex: 0, RightIndex: 0, LeftReverse: false, RightReverse: true}},
	}}
	doubled := Double(alns)
	assert.Len(t, doubled, 2)
	assert.True(t, doubled[1].AlignedPairs[0].LeftReverse)
	assert.False(t, doubled[1].AlignedPairs[0].RightReverse)
}

func TestDedupeRemovesExactDuplicates(t *testing.T) {
	a := Alignment{LeftPath: 0, RightPath: 1, LeftStart: 0, LeftEnd: 2, RightStart: 0, RightEnd: 2}
	deduped := Dedupe([]Alignment{a, a, a})
	assert.Len(t, deduped, 1)
}

func TestRemoveContainedDropsNestedAlignment(t *testing.T) {
	pathLengths := []int{5, 5}
	outer := Alignment{LeftPath: 0, RightPath: 1, LeftStart: 0, LeftEnd: 4, RightStart: 0, RightEnd: 4}
	inner := Alignment{LeftPath: 0, RightPath: 1, LeftStart: 1, LeftEnd: 2, RightStart: 1, RightEnd: 2}
	result := RemoveContained(pathLengths, []Alignment{outer, inner})
	assert.Len(t, result, 1)
	assert.Equal(t, outer, result[0])
}

func TestRemoveNonDovetailsKeepsDovetailShape(t *testing.T) {
	pathLengths := []int{3, 3}
	dovetail := Alignment{LeftPath: 0, RightPath: 1, LeftStart: 0, LeftEnd: 2, RightStart: 0, RightEnd: 1}
	internal := Alignment{LeftPath: 0, RightPath: 1, LeftStart: 1, LeftEnd: 1, RightStart: 0, RightEnd: 1}
	result := RemoveNonDovetails(pathLengths, []Alignment{dovetail, internal})
	assert.Len(t, result, 1)
	assert.Equal(t, dovetail, result[0])
}

func TestRemoveHighCoverageDropsOversaturatedAlignments(t *testing.T) {
	pathLengths := []int{1}
	alns := make([]Alignment, 0, 5)
	for r := 1; r <= 5; r++ {
		alns = append(alns, Alignment{LeftPath: 0, RightPath: r, LeftStart: 0, LeftEnd: 0, RightStart: 0, RightEnd: 0})
	}
	pathLengths = append(pathLengths, 1, 1, 1, 1, 1)
	result := RemoveHighCoverage(pathLengths, alns, 2)
	assert.Empty(t, result)
}

func TestPickLowestErrorPerReadCapsPerRead(t *testing.T) {
	pathLengths := []int{1, 1, 1}
	alns := []Alignment{
		{LeftPath: 0, RightPath: 1, AlignmentIdentity: 0.80},
		{LeftPath: 0, RightPath: 2, AlignmentIdentity: 0.99},
	}
	result := PickLowestErrorPerRead(pathLengths, alns, 1)
	assert.Len(t, result, 2)
}

func TestPickLongestPerReadRequiresAllFourRoles(t *testing.T) {
	pathLengths := []int{2, 2}
	a := Alignment{
		LeftPath: 0, RightPath: 1,
		LeftStart: 1, LeftEnd: 1, RightStart: 0, RightEnd: 0,
		AlignmentLength: 100, AlignmentIdentity: 0.95,
	}
	result := PickLongestPerRead(pathLengths, []Alignment{a}, 4)
	assert.True(t, result[a.Key()])
}
