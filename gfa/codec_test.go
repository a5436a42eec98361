package gfa

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/grailbio/base/file"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir, cleanup := testutil.TempDir(t, "", "gfa")
	defer cleanup()

	g := New()
	g.EdgeOverlap = 4
	g.Nodes[1] = "ACGTACGT"
	g.Nodes[2] = "ACGTGGGG"
	g.Tags[1] = TagLength + "8"
	from := NodePos{1, true}
	to := NodePos{2, true}
	g.AddEdge(from, to)
	g.VaryingOverlaps[EdgeKey{from, to}] = 6
	g.EdgeTags[EdgeKey{from, to}] = FormatEdgeTag(3)
	g.ConfirmDoubleSidedEdges()

	path := filepath.Join(dir, "graph.txt")
	require.NoError(t, Save(ctx, path, g))

	loaded, err := Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, g.Nodes, loaded.Nodes)
	assert.Equal(t, g.EdgeOverlap, loaded.EdgeOverlap)
	assert.Equal(t, 6, loaded.Overlap(from, to))
	assert.True(t, loaded.HasEdge(from, to))
	assert.True(t, loaded.HasEdge(to.Reverse(), from.Reverse()))
	assert.Equal(t, FormatEdgeTag(3), loaded.EdgeTags[EdgeKey{from, to}])
}

func TestLoadRejectsMalformedRecord(t *testing.T) {
	ctx := context.Background()
	dir, cleanup := testutil.TempDir(t, "", "gfa")
	defer cleanup()
	path := filepath.Join(dir, "bad.txt")
	out, err := file.Create(ctx, path)
	require.NoError(t, err)
	_, err = out.Writer(ctx).Write([]byte("S\t1\n"))
	require.NoError(t, err)
	require.NoError(t, out.Close(ctx))

	_, err = Load(ctx, path)
	assert.Error(t, err)
}
