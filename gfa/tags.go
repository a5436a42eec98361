package gfa

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag name prefixes used by this codebase, matching the SAM-style
// "XX:type:value" tags that the upstream per-read aligner and chain-tagging
// tool attach to nodes.
const (
	TagLength = "LN:i:" // sequence length, minus the trailing overlap
	TagChain  = "bc:Z:" // the safe/unsafe chain id a node belongs to
	TagKmer   = "km:f:" // mean k-mer coverage (closure cardinality)
	TagReadCoverage = "RC:i:" // total base coverage (LN * coverage)
	TagOrigin = "oi:Z:"       // the original node id and strand this node derives from
)

// FormatNodeTags renders the synthetic tag set the closure emitter attaches
// to every output node.
func FormatNodeTags(length, readCoverage int, coverage float64, origin NodePos) string {
	return fmt.Sprintf("%s%d\t%s%d\t%s%s\t%s%d%s",
		TagLength, length,
		TagReadCoverage, readCoverage,
		TagKmer, strconv.FormatFloat(coverage, 'f', -1, 64),
		TagOrigin, origin.ID, strandSuffix(origin.End))
}

// FormatEdgeTag renders the synthetic coverage tag attached to output edges.
func FormatEdgeTag(coverage int) string {
	return fmt.Sprintf("%s%d", TagReadCoverage, coverage)
}

func strandSuffix(end bool) string {
	if end {
		return "+"
	}
	return "-"
}

// TagValue scans a tab-separated tag string for a single occurrence of the
// tag named by prefix (e.g. gfa.TagLength) and returns its value. ok is false
// if the tag is absent.
func TagValue(tags string, prefix string) (value string, ok bool) {
	for _, tag := range strings.Split(tags, "\t") {
		if strings.HasPrefix(tag, prefix) {
			return tag[len(prefix):], true
		}
	}
	return "", false
}

// TagInt is TagValue followed by a base-10 integer parse.
func TagInt(tags string, prefix string) (value int, ok bool, err error) {
	s, found := TagValue(tags, prefix)
	if !found {
		return 0, false, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, true, err
	}
	return n, true, nil
}

var complement = [256]byte{}

func init() {
	for i := range complement {
		complement[i] = byte(i)
	}
	pairs := "ACGTacgtNn"
	comps := "TGCAtgcaNn"
	for i := 0; i < len(pairs); i++ {
		complement[pairs[i]] = comps[i]
	}
}

// ReverseComplement returns the reverse complement of a nucleotide sequence.
// Bytes outside the standard IUPAC A/C/G/T/N alphabet are passed through
// unchanged (case preserved), matching the permissive behavior long-read
// sequence graphs rely on for ambiguity codes.
func ReverseComplement(seq string) string {
	n := len(seq)
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = complement[seq[i]]
	}
	return string(out)
}
