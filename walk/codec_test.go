package walk

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/grailbio/graphasm/gfa"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir, cleanup := testutil.TempDir(t, "", "walk")
	defer cleanup()
	path := filepath.Join(dir, "walks.bin")

	walks := []Walk{
		{Name: "read/0", Steps: []Step{{ID: 1, End: true}, {ID: 2, End: false}}},
		{Name: "read/1", Steps: []Step{}},
		{Name: "read/2", Steps: []Step{{ID: 9999, End: true}}},
	}

	w, err := NewWriter(ctx, path)
	require.NoError(t, err)
	for _, walk := range walks {
		require.NoError(t, w.Write(walk))
	}
	require.NoError(t, w.Close(ctx))

	r, err := NewReader(ctx, path)
	require.NoError(t, err)
	var got []Walk
	for {
		wk, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, wk)
	}
	require.NoError(t, r.Close(ctx))
	assert.Equal(t, walks, got)
}

func TestWalkReverse(t *testing.T) {
	w := Walk{Name: "x", Steps: []Step{{ID: 1, End: true}, {ID: 2, End: false}}}
	rev := w.Reverse()
	assert.Equal(t, []Step{{ID: 2, End: true}, {ID: 1, End: false}}, rev.Steps)
}

func TestEncodeDecodeStep(t *testing.T) {
	s := gfa.NodePos{ID: 42, End: true}
	assert.Equal(t, s, decodeStep(encodeStep(s)))
}
