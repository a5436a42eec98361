package overlap

import (
	"math"
	"sort"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/log"
)

// Double returns alns with every alignment's reverse-orientation twin
// appended, so downstream consumers never need to special-case which side
// of a pair they were handed.
func Double(alns []Alignment) []Alignment {
	result := make([]Alignment, 0, len(alns)*2)
	result = append(result, alns...)
	for _, a := range alns {
		rev := a
		rev.AlignedPairs = append([]Pair(nil), a.AlignedPairs...)
		for i := range rev.AlignedPairs {
			rev.AlignedPairs[i].LeftReverse = !rev.AlignedPairs[i].LeftReverse
			rev.AlignedPairs[i].RightReverse = !rev.AlignedPairs[i].RightReverse
		}
		result = append(result, rev)
	}
	log.Printf("overlap: %d alignments after doubling", len(result))
	return result
}

// Dedupe removes exact duplicate alignments, fingerprinting each one with a
// content hash so the comparison stays O(1) per alignment rather than a
// struct-equality scan.
func Dedupe(alns []Alignment) []Alignment {
	seen := make(map[uint64]struct{}, len(alns))
	result := make([]Alignment, 0, len(alns))
	for _, a := range alns {
		h := fingerprint(a)
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		result = append(result, a)
	}
	log.Printf("overlap: %d alignments after dedup", len(result))
	return result
}

func fingerprint(a Alignment) uint64 {
	buf := make([]byte, 0, 32+len(a.AlignedPairs)*4)
	putInt := func(v int) {
		buf = append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	putInt(a.LeftPath)
	putInt(a.RightPath)
	putInt(a.LeftStart)
	putInt(a.LeftEnd)
	putInt(a.RightStart)
	putInt(a.RightEnd)
	putInt(int(boolToUint(a.RightReverse)))
	putInt(a.AlignmentLength)
	identityBits := math.Float64bits(a.AlignmentIdentity)
	putInt(int(identityBits))
	putInt(int(identityBits >> 32))
	for _, p := range a.AlignedPairs {
		putInt(p.LeftIndex)
		putInt(p.RightIndex)
		putInt(int(boolToUint(p.LeftReverse)))
		putInt(int(boolToUint(p.RightReverse)))
	}
	return farm.Hash64WithSeed(buf, 0)
}

// RemoveContained drops alignments that are wholly contained, on either
// side, within a longer alignment spanning the same steps -- an alignment
// contained within another carries no information a cut or closure pass
// doesn't already have from the containing one.
func RemoveContained(pathLengths []int, alns []Alignment) []Alignment {
	continuousEnd := make([][]int, len(pathLengths))
	for i, n := range pathLengths {
		continuousEnd[i] = make([]int, n)
	}
	for _, a := range alns {
		for i := a.LeftStart; i <= a.LeftEnd; i++ {
			if a.LeftEnd > continuousEnd[a.LeftPath][i] {
				continuousEnd[a.LeftPath][i] = a.LeftEnd
			}
		}
		for i := a.RightStart; i <= a.RightEnd; i++ {
			if a.RightEnd > continuousEnd[a.RightPath][i] {
				continuousEnd[a.RightPath][i] = a.RightEnd
			}
		}
	}
	result := make([]Alignment, 0, len(alns))
	for _, a := range alns {
		if continuousEnd[a.LeftPath][a.LeftStart] > a.LeftEnd {
			continue
		}
		if a.LeftStart > 0 && continuousEnd[a.LeftPath][a.LeftStart-1] >= a.LeftEnd {
			continue
		}
		if continuousEnd[a.RightPath][a.RightStart] > a.RightEnd {
			continue
		}
		if a.RightStart > 0 && continuousEnd[a.RightPath][a.RightStart-1] >= a.RightEnd {
			continue
		}
		result = append(result, a)
	}
	log.Printf("overlap: %d alignments after removing contained", len(result))
	return result
}

// RemoveNonDovetails keeps only alignments that join the right end of the
// left path to the start of the right path (accounting for the right path's
// orientation) -- the dovetail shape a linear overlap-layout edge requires.
func RemoveNonDovetails(pathLengths []int, alns []Alignment) []Alignment {
	result := make([]Alignment, 0, len(alns))
	for _, a := range alns {
		if a.LeftEnd != pathLengths[a.LeftPath]-1 {
			continue
		}
		if a.RightReverse {
			if a.RightStart == 0 {
				continue
			}
			if a.RightEnd != pathLengths[a.RightPath]-1 {
				continue
			}
		} else {
			if a.RightStart != 0 {
				continue
			}
			if a.RightEnd == pathLengths[a.RightPath]-1 {
				continue
			}
		}
		result = append(result, a)
	}
	log.Printf("overlap: %d alignments after removing non-dovetails", len(result))
	return result
}

// RemoveHighCoverage drops alignments whose entire span sits in a region of
// a path covered by more than maxCoverage alignments (the alignment itself
// included), the way an
// overrepresented repeat region is thinned before the cut engine ever sees
// it.
func RemoveHighCoverage(pathLengths []int, alns []Alignment, maxCoverage int) []Alignment {
	alnsPerRead := make([][]int, len(pathLengths))
	for i, a := range alns {
		alnsPerRead[a.LeftPath] = append(alnsPerRead[a.LeftPath], i)
		alnsPerRead[a.RightPath] = append(alnsPerRead[a.RightPath], i)
	}
	valid := make([]bool, len(alns))
	for i := range valid {
		valid[i] = true
	}
	for i, n := range pathLengths {
		startCount := make([]int, n)
		endCount := make([]int, n)
		for _, alnIdx := range alnsPerRead[i] {
			a := alns[alnIdx]
			if a.LeftPath == i {
				startCount[a.LeftStart]++
				endCount[a.LeftEnd]++
			} else {
				startCount[a.RightStart]++
				endCount[a.RightEnd]++
			}
		}
		coverage := make([]int, n)
		if n > 0 {
			coverage[0] = startCount[0]
		}
		for j := 1; j < n; j++ {
			coverage[j] = coverage[j-1] + startCount[j] - endCount[j-1]
		}
		for _, alnIdx := range alnsPerRead[i] {
			a := alns[alnIdx]
			var start, end int
			if a.LeftPath == i {
				start, end = a.LeftStart, a.LeftEnd
			} else {
				start, end = a.RightStart, a.RightEnd
			}
			ok := false
			for j := start; j <= end; j++ {
				if coverage[j] <= maxCoverage {
					ok = true
					break
				}
			}
			if !ok {
				valid[alnIdx] = false
			}
		}
	}
	result := make([]Alignment, 0, len(alns))
	for i, a := range alns {
		if valid[i] {
			result = append(result, a)
		}
	}
	log.Printf("overlap: %d alignments after removing high coverage", len(result))
	return result
}

// PickLowestErrorPerRead caps, per read, how many alignments survive,
// keeping the maxNum with the highest alignment identity. An alignment
// survives if either of its two reads keeps it, and appears once in the
// result.
func PickLowestErrorPerRead(pathLengths []int, alns []Alignment, maxNum int) []Alignment {
	perRead := make([][]int, len(pathLengths))
	for i, a := range alns {
		perRead[a.LeftPath] = append(perRead[a.LeftPath], i)
		perRead[a.RightPath] = append(perRead[a.RightPath], i)
	}
	kept := make([]bool, len(alns))
	for _, bucket := range perRead {
		if len(bucket) > maxNum {
			sort.Slice(bucket, func(i, j int) bool {
				return alns[bucket[i]].AlignmentIdentity < alns[bucket[j]].AlignmentIdentity
			})
			bucket = bucket[len(bucket)-maxNum:]
		}
		for _, idx := range bucket {
			kept[idx] = true
		}
	}
	result := make([]Alignment, 0, len(alns))
	for i, a := range alns {
		if kept[i] {
			result = append(result, a)
		}
	}
	log.Printf("overlap: %d alignments after picking lowest error", len(result))
	return result
}

// PickLongestPerRead returns the set of (leftPath, rightPath) pairs whose
// alignment survives a per-read cap of maxNum, followed by an iterative
// left/right rebalance that drops alignments from whichever side of a read
// has disproportionately more survivors (over a 1.2x ratio) until the counts
// converge. Each read ranks the alignments touching its start and those
// touching its end separately, once by alignment length and once by
// identity, and every top-maxNum placement is one vote. An alignment is kept
// only with exactly four votes: a dovetail that touches one end of each read
// and places in the top maxNum of all four rankings. An alignment touching
// more read ends than that has more than four chances to vote and is kept
// only if exactly four of them count.
func PickLongestPerRead(pathLengths []int, alns []Alignment, maxNum int) map[ReadPairKey]bool {
	leftAlnsPerRead := make([][]int, len(pathLengths))
	rightAlnsPerRead := make([][]int, len(pathLengths))
	for i, a := range alns {
		if a.LeftStart == 0 {
			leftAlnsPerRead[a.LeftPath] = append(leftAlnsPerRead[a.LeftPath], i)
		}
		if a.LeftEnd == pathLengths[a.LeftPath]-1 {
			rightAlnsPerRead[a.LeftPath] = append(rightAlnsPerRead[a.LeftPath], i)
		}
		if a.RightStart == 0 {
			leftAlnsPerRead[a.RightPath] = append(leftAlnsPerRead[a.RightPath], i)
		}
		if a.RightEnd == pathLengths[a.RightPath]-1 {
			rightAlnsPerRead[a.RightPath] = append(rightAlnsPerRead[a.RightPath], i)
		}
	}

	picked := make([]int, len(alns))
	byMatchLength := func(bucket []int) func(i, j int) bool {
		return func(i, j int) bool {
			return alns[bucket[i]].AlignmentLength < alns[bucket[j]].AlignmentLength
		}
	}
	byIdentity := func(bucket []int) func(i, j int) bool {
		return func(i, j int) bool {
			return alns[bucket[i]].AlignmentIdentity < alns[bucket[j]].AlignmentIdentity
		}
	}
	markTop := func(bucket []int, less func(i, j int) bool) {
		sort.Slice(bucket, less)
		start := 0
		if len(bucket) > maxNum {
			start = len(bucket) - maxNum
		}
		for _, idx := range bucket[start:] {
			picked[idx]++
		}
	}
	for i := range pathLengths {
		markTop(leftAlnsPerRead[i], byMatchLength(leftAlnsPerRead[i]))
		markTop(rightAlnsPerRead[i], byMatchLength(rightAlnsPerRead[i]))
		markTop(leftAlnsPerRead[i], byIdentity(leftAlnsPerRead[i]))
		markTop(rightAlnsPerRead[i], byIdentity(rightAlnsPerRead[i]))
	}

	result := make(map[ReadPairKey]bool)
	for i, a := range alns {
		if picked[i] == 4 {
			result[a.Key()] = true
		}
	}
	log.Printf("overlap: %d alignments after picking longest", len(result))

	checkStack := make([]int, 0, len(pathLengths))
	for i := range pathLengths {
		countLeft, countRight := 0, 0
		for _, j := range leftAlnsPerRead[i] {
			if result[alns[j].Key()] {
				countLeft++
			}
		}
		for _, j := range rightAlnsPerRead[i] {
			if result[alns[j].Key()] {
				countRight++
			}
		}
		if countLeft != countRight {
			checkStack = append(checkStack, i)
		}
	}
	for len(checkStack) > 0 {
		i := checkStack[len(checkStack)-1]
		checkStack = checkStack[:len(checkStack)-1]

		countLeft, countRight := 0, 0
		lastLeft, lastRight := 0, 0
		for j, idx := range leftAlnsPerRead[i] {
			if result[alns[idx].Key()] {
				lastLeft = j
				countLeft++
			}
		}
		for j, idx := range rightAlnsPerRead[i] {
			if result[alns[idx].Key()] {
				lastRight = j
				countRight++
			}
		}
		for j := lastRight; j > 0 && float64(countRight) > float64(countLeft)*1.2; j-- {
			key := alns[rightAlnsPerRead[i][j]].Key()
			if result[key] {
				countRight--
				delete(result, key)
				checkStack = append(checkStack, key.Left, key.Right)
			}
		}
		for j := lastLeft; j > 0 && float64(countLeft) > float64(countRight)*1.2; j-- {
			key := alns[leftAlnsPerRead[i][j]].Key()
			if result[key] {
				countLeft--
				delete(result, key)
				checkStack = append(checkStack, key.Left, key.Right)
			}
		}
	}
	log.Printf("overlap: %d alignments after converging sides", len(result))
	return result
}
