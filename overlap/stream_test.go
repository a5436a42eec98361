package overlap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterStreamAlignmentsRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir, cleanup := testutil.TempDir(t, "", "overlap")
	defer cleanup()
	path := filepath.Join(dir, "alns.bin")

	alns := []Alignment{
		{
			LeftPath: 2, RightPath: 5,
			LeftStart: 0, LeftEnd: 3, RightStart: 1, RightEnd: 4,
			RightReverse: true, AlignmentLength: 120, AlignmentIdentity: 0.974,
			AlignedPairs: []Pair{
				{LeftIndex: 0, RightIndex: 1, LeftReverse: false, RightReverse: true},
				{LeftIndex: 3, RightIndex: 4, LeftReverse: true, RightReverse: false},
			},
		},
		{LeftPath: 0, RightPath: 1},
	}

	w, err := NewWriter(ctx, path)
	require.NoError(t, err)
	for _, a := range alns {
		require.NoError(t, w.Write(a))
	}
	require.NoError(t, w.Close(ctx))

	var got []Alignment
	require.NoError(t, StreamAlignments(ctx, path, SinkFunc(func(a Alignment) error {
		got = append(got, a)
		return nil
	})))
	require.Len(t, got, 2)
	assert.Equal(t, alns[0].AlignmentIdentity, got[0].AlignmentIdentity)
	assert.Equal(t, alns[0].AlignedPairs, got[0].AlignedPairs)
	assert.Equal(t, alns[0].RightReverse, got[0].RightReverse)
	assert.Equal(t, alns[1].LeftPath, got[1].LeftPath)
	assert.Empty(t, got[1].AlignedPairs)
}
