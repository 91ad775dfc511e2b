// Package vectorindex provides an immutable brute-force cosine nearest-neighbor index.
package vectorindex

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"bookchat/internal/domain"
)

// DefaultK is the neighbor count used when a query asks for k <= 0.
const DefaultK = 6

// Index holds L2-normalized copies of every vector. It is never mutated after
// Build, so concurrent queries need no locking.
type Index struct {
	dimension int
	ids       []int
	vectors   [][]float64
}

// Build indexes vectors under the parallel ids. All vectors must share one dimension.
func Build(ids []int, vectors [][]float64) (*Index, error) {
	if len(ids) != len(vectors) {
		return nil, errors.New("ids and vectors length mismatch")
	}
	if len(vectors) == 0 {
		return nil, errors.New("no vectors to index")
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, errors.New("invalid dimension")
	}
	idx := &Index{
		dimension: dim,
		ids:       append([]int(nil), ids...),
		vectors:   make([][]float64, len(vectors)),
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector for id %d has dimension %d, want %d", ids[i], len(v), dim)
		}
		idx.vectors[i] = normalize(v)
	}
	return idx, nil
}

// Dimension returns the vector size.
func (x *Index) Dimension() int { return x.dimension }

// Len returns the number of indexed vectors.
func (x *Index) Len() int { return len(x.vectors) }

// Query returns the k nearest ids by cosine distance (1 - cosine similarity), ascending.
// Zero vectors have similarity 0 to everything. Equal distances keep index order.
func (x *Index) Query(vector []float64, k int) ([]domain.Neighbor, error) {
	if len(vector) != x.dimension {
		return nil, fmt.Errorf("query dimension %d, want %d", len(vector), x.dimension)
	}
	if k <= 0 {
		k = DefaultK
	}
	q := normalize(vector)
	for _, f := range q {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errors.New("query vector contains NaN or Inf")
		}
	}
	dist := make([]float64, len(x.vectors))
	for i := range x.vectors {
		dist[i] = 1 - dot(x.vectors[i], q)
	}
	order := make([]int, len(dist))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return dist[order[a]] < dist[order[b]] })
	if k > len(order) {
		k = len(order)
	}
	out := make([]domain.Neighbor, k)
	for i := 0; i < k; i++ {
		j := order[i]
		out[i] = domain.Neighbor{ID: x.ids[j], Distance: dist[j]}
	}
	return out, nil
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	norm := math.Sqrt(dot(v, v))
	if norm == 0 {
		return out
	}
	for i, f := range v {
		out[i] = f / norm
	}
	return out
}
