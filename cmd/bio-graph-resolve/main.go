// bio-graph-resolve finds small tangles in a sequence graph bounded by safe
// chains, threads the reads crossing each one through a partial-order
// alignment, and replaces it with the resulting consensus nodes.
//
// Usage:
//
//	bio-graph-resolve [flags] <graphIn> <walksIn> <graphOut> <walksOut>
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
	"github.com/grailbio/graphasm/gfa"
	"github.com/grailbio/graphasm/resolve"
	"github.com/grailbio/graphasm/walk"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [flags] <graphIn> <walksIn> <graphOut> <walksOut>\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	safeChainSize := flag.Int("safe-chain-size", 10000, "total node bp a chain must reach to be trusted as a tangle boundary")
	flag.Parse()

	if flag.NArg() != 4 {
		usage()
	}
	graphInPath := flag.Arg(0)
	walksInPath := flag.Arg(1)
	graphOutPath := flag.Arg(2)
	walksOutPath := flag.Arg(3)

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
	log.Printf("bio-graph-resolve: loaded %d nodes, %d walks", len(g.Nodes), len(walks))

	resolved, unresolved, tooBig := resolve.Components(g, walks, *safeChainSize)
	log.Printf("bio-graph-resolve: %d resolved, %d unresolved, %d too large", resolved, unresolved, tooBig)

	if err := gfa.Save(ctx, graphOutPath, g); err != nil {
		log.Fatalf("save graph: %v", err)
	}
	if err := saveWalks(ctx, walksOutPath, walks); err != nil {
		log.Fatalf("save walks: %v", err)
	}
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
