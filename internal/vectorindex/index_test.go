package vectorindex

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Build(
		[]int{10, 20, 30, 40, 50, 60, 70},
		[][]float64{
			{1, 0},
			{0.9, 0.1},
			{0, 1},
			{-1, 0},
			{0.5, 0.5},
			{0, 0},
			{2, 0},
		},
	)
	require.NoError(t, err)
	return idx
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build([]int{1}, nil)
	assert.Error(t, err)
	_, err = Build(nil, nil)
	assert.Error(t, err)
	_, err = Build([]int{1, 2}, [][]float64{{1, 2}, {1}})
	assert.Error(t, err)
	_, err = Build([]int{1}, [][]float64{{}})
	assert.Error(t, err)
}

func TestQuery_OrderedByCosineDistance(t *testing.T) {
	idx := sampleIndex(t)

	got, err := idx.Query([]float64{1, 0}, 6)
	require.NoError(t, err)
	require.Len(t, got, 6)

	// {1,0} and {2,0} are the same direction; index order breaks the tie
	assert.Equal(t, 10, got[0].ID)
	assert.InDelta(t, 0, got[0].Distance, 1e-12)
	assert.Equal(t, 70, got[1].ID)
	assert.Equal(t, 20, got[2].ID)
	assert.Equal(t, 50, got[3].ID)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Distance, got[i].Distance)
	}
	ids := map[int]bool{}
	for _, n := range got {
		ids[n.ID] = true
	}
	assert.False(t, ids[40], "opposite vector is the farthest")
}

func TestQuery_ZeroVectors(t *testing.T) {
	idx := sampleIndex(t)

	got, err := idx.Query([]float64{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, n := range got {
		assert.InDelta(t, 1, n.Distance, 1e-12)
		assert.False(t, math.IsNaN(n.Distance))
	}
}

func TestQuery_Validation(t *testing.T) {
	idx := sampleIndex(t)

	_, err := idx.Query([]float64{1, 0, 0}, 6)
	assert.Error(t, err)
	_, err = idx.Query([]float64{math.NaN(), 0}, 6)
	assert.Error(t, err)

	got, err := idx.Query([]float64{0, 1}, 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultK)

	got, err = idx.Query([]float64{0, 1}, 100)
	require.NoError(t, err)
	assert.Len(t, got, idx.Len())
}

func TestQuery_ConcurrentReads(t *testing.T) {
	idx := sampleIndex(t)
	want, err := idx.Query([]float64{0.3, 0.7}, 6)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := idx.Query([]float64{0.3, 0.7}, 6)
			assert.NoError(t, err)
			assert.Equal(t, want, got)
		}()
	}
	wg.Wait()
}
