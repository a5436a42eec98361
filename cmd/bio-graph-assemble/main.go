// bio-graph-assemble builds a sequence graph from a set of read walks over a
// seed graph and their pairwise overlap alignments, cutting ambiguous
// high-betweenness overlaps before closing reads into consensus nodes.
//
// Usage:
//
//	bio-graph-assemble [flags] <graphIn> <walksIn> <overlapsIn> <graphOut> <walksOut>
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/graphasm/assemble"
	"github.com/grailbio/graphasm/gfa"
	"github.com/grailbio/graphasm/overlap"
	"github.com/grailbio/graphasm/walk"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [flags] <graphIn> <walksIn> <overlapsIn> <graphOut> <walksOut>\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	numThreads := flag.Int("threads", 4, "number of worker goroutines for the betweenness cut pass")
	maxGroupSize := flag.Int("max-group-size", 20, "connected components at or below this size are locked against further cuts")
	flag.Parse()

	if flag.NArg() != 5 {
		usage()
	}
	graphInPath := flag.Arg(0)
	walksInPath := flag.Arg(1)
	overlapsInPath := flag.Arg(2)
	graphOutPath := flag.Arg(3)
	walksOutPath := flag.Arg(4)

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	g, err := gfa.Load(ctx, graphInPath)
	if err != nil {
		log.Fatalf("load graph: %v", err)
	}
	walks, err := loadWalks(ctx, walksInPath)
	if err != nil {
		log.Fatalf("load walks: %v", err)
	}
	alns, err := loadAlignments(ctx, overlapsInPath)
	if err != nil {
		log.Fatalf("load overlaps: %v", err)
	}
	log.Printf("bio-graph-assemble: loaded %d nodes, %d walks, %d alignments", len(g.Nodes), len(walks), len(alns))

	outGraph, outWalks := assemble.Run(g, walks, alns, *numThreads, *maxGroupSize)

	if err := gfa.Save(ctx, graphOutPath, outGraph); err != nil {
		log.Fatalf("save graph: %v", err)
	}
	if err := saveWalks(ctx, walksOutPath, outWalks); err != nil {
		log.Fatalf("save walks: %v", err)
	}
	stats := outGraph.ComputeStats()
	log.Printf("bio-graph-assemble: wrote %d nodes, %d edges, %d walks", stats.Nodes, stats.Edges, len(outWalks))
}

func loadWalks(ctx context.Context, path string) ([]walk.Walk, error) {
	r, err := walk.NewReader(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close(ctx)
	var result []walk.Walk
	for {
		w, err := r.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		result = append(result, w)
	}
	return result, nil
}

func saveWalks(ctx context.Context, path string, walks []walk.Walk) error {
	w, err := walk.NewWriter(ctx, path)
	if err != nil {
		return err
	}
	for _, wk := range walks {
		if err := w.Write(wk); err != nil {
			w.Close(ctx)
			return err
		}
	}
	return w.Close(ctx)
}

func loadAlignments(ctx context.Context, path string) ([]overlap.Alignment, error) {
	var result []overlap.Alignment
	err := overlap.StreamAlignments(ctx, path, overlap.SinkFunc(func(a overlap.Alignment) error {
		result = append(result, a)
		return nil
	}))
	return result, err
}
