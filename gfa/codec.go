package gfa

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

// Load reads a Graph from the text GFA-like codec described in spec §6:
// tab-separated H (header), S (segment/node), and L (link/edge) records.
//
//	H	EO:i:<defaultOverlap>
//	S	<id>	<sequence>	[tag]...
//	L	<fromID>	<fromStrand +|->	<toID>	<toStrand +|->	<overlapBp>M	[tag]...
//
// This is a narrow rendition of the on-disk format; the full grammar used by
// upstream graph-construction tools is treated as an external collaborator
// (spec §1) and is not reproduced here.
func Load(ctx context.Context, path string) (*Graph, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "gfa: open %s", path)
	}
	defer f.Close(ctx)

	g := New()
	sc := bufio.NewScanner(f.Reader(ctx))
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Split(line, "\t")
		switch fields[0] {
		case "H":
			for _, tag := range fields[1:] {
				if strings.HasPrefix(tag, "EO:i:") {
					n, err := strconv.Atoi(tag[len("EO:i:"):])
					if err != nil {
						return nil, errors.Wrapf(err, "gfa: %s:%d: malformed EO tag", path, lineNo)
					}
					g.EdgeOverlap = n
				}
			}
		case "S":
			if len(fields) < 3 {
				return nil, errors.Errorf("gfa: %s:%d: malformed S record", path, lineNo)
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, errors.Wrapf(err, "gfa: %s:%d: bad node id", path, lineNo)
			}
			g.Nodes[id] = fields[2]
			if len(fields) > 3 {
				g.Tags[id] = strings.Join(fields[3:], "\t")
			}
		case "L":
			if len(fields) < 6 {
				return nil, errors.Errorf("gfa: %s:%d: malformed L record", path, lineNo)
			}
			from, err := parseOrientedRef(fields[1], fields[2])
			if err != nil {
				return nil, errors.Wrapf(err, "gfa: %s:%d", path, lineNo)
			}
			to, err := parseOrientedRef(fields[3], fields[4])
			if err != nil {
				return nil, errors.Wrapf(err, "gfa: %s:%d", path, lineNo)
			}
			overlap, err := parseOverlapCigar(fields[5])
			if err != nil {
				return nil, errors.Wrapf(err, "gfa: %s:%d: bad overlap", path, lineNo)
			}
			g.AddEdge(from, to)
			if overlap != g.EdgeOverlap {
				g.VaryingOverlaps[EdgeKey{from, to}] = overlap
			}
			if len(fields) > 6 {
				g.EdgeTags[EdgeKey{from, to}] = strings.Join(fields[6:], "\t")
			}
		default:
			return nil, errors.Errorf("gfa: %s:%d: unknown record type %q", path, lineNo, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "gfa: read %s", path)
	}
	stats := g.ComputeStats()
	log.Printf("gfa: loaded %s: %d nodes, %d edges, %d bp", path, stats.Nodes, stats.Edges, stats.TotalBases)
	return g, nil
}

func parseOrientedRef(id, strand string) (NodePos, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return NodePos{}, errors.Wrapf(err, "bad node reference %q", id)
	}
	switch strand {
	case "+":
		return NodePos{ID: n, End: true}, nil
	case "-":
		return NodePos{ID: n, End: false}, nil
	default:
		return NodePos{}, errors.Errorf("bad strand %q", strand)
	}
}

func parseOverlapCigar(s string) (int, error) {
	if !strings.HasSuffix(s, "M") {
		return 0, errors.Errorf("expected a simple <n>M overlap, got %q", s)
	}
	return strconv.Atoi(s[:len(s)-1])
}

// Save writes a Graph back out in the codec Load reads. Node and edge
// iteration order follows ascending node id / endpoint ordering so repeated
// saves of an unmodified graph are byte-for-byte identical.
func Save(ctx context.Context, path string, g *Graph) error {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "gfa: create %s", path)
	}
	w := bufio.NewWriter(out.Writer(ctx))

	fmt.Fprintf(w, "H\tEO:i:%d\n", g.EdgeOverlap)

	ids := make([]int, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sortInts(ids)
	for _, id := range ids {
		if tags, ok := g.Tags[id]; ok && tags != "" {
			fmt.Fprintf(w, "S\t%d\t%s\t%s\n", id, g.Nodes[id], tags)
		} else {
			fmt.Fprintf(w, "S\t%d\t%s\n", id, g.Nodes[id])
		}
	}

	froms := make([]NodePos, 0, len(g.Edges))
	for from := range g.Edges {
		froms = append(froms, from)
	}
	sortNodePos(froms)
	for _, from := range froms {
		targets := append([]NodePos(nil), g.Edges[from]...)
		sortNodePos(targets)
		for _, to := range targets {
			overlap := g.Overlap(from, to)
			if tags, ok := g.EdgeTags[EdgeKey{from, to}]; ok && tags != "" {
				fmt.Fprintf(w, "L\t%d\t%s\t%d\t%s\t%dM\t%s\n", from.ID, strandSuffix(from.End), to.ID, strandSuffix(to.End), overlap, tags)
			} else {
				fmt.Fprintf(w, "L\t%d\t%s\t%d\t%s\t%dM\n", from.ID, strandSuffix(from.End), to.ID, strandSuffix(to.End), overlap)
			}
		}
	}

	if err := w.Flush(); err != nil {
		out.Close(ctx)
		return errors.Wrapf(err, "gfa: write %s", path)
	}
	if err := out.Close(ctx); err != nil {
		return errors.Wrapf(err, "gfa: close %s", path)
	}
	stats := g.ComputeStats()
	log.Printf("gfa: saved %s: %d nodes, %d edges, %d bp", path, stats.Nodes, stats.Edges, stats.TotalBases)
	return nil
}

func sortInts(xs []int) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

func sortNodePos(xs []NodePos) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j].Less(xs[j-1]); j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
