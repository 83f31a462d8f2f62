package sampling

import (
	"fmt"
	"math"
)

// Clusterer partitions rows into a fixed number of clusters and reports distances from rows
// to cluster centres.
type Clusterer interface {
	Fit(X [][]float64) error
	Predict(X [][]float64) ([]int, error)
	Transform(X [][]float64) ([][]float64, error)
}

// Sampler picks one representative row per non-empty cluster of a class subset.
type Sampler struct {
	newClusterer func(k int) Clusterer
}

// NewSampler creates a sampler that builds a fresh clusterer for every Sample call.
func NewSampler(newClusterer func(k int) Clusterer) *Sampler {
	return &Sampler{newClusterer: newClusterer}
}

// Sample compresses subset into at most k rows. A subset with fewer than k rows is returned
// unchanged. Otherwise the subset is clustered into k clusters and, for every cluster with at
// least one member, the member closest to its centre is kept. Representatives are ordered by
// cluster index.
func (s *Sampler) Sample(subset [][]float64, k int) ([][]float64, error) {
	if len(subset) < k || len(subset) == 0 {
		return subset, nil
	}

	model := s.newClusterer(k)
	if err := model.Fit(subset); err != nil {
		return nil, fmt.Errorf("cluster subset: %w", err)
	}
	labels, err := model.Predict(subset)
	if err != nil {
		return nil, fmt.Errorf("assign clusters: %w", err)
	}
	dist, err := model.Transform(subset)
	if err != nil {
		return nil, fmt.Errorf("centroid distances: %w", err)
	}

	nearest := make([]int, k)
	best := make([]float64, k)
	for c := range nearest {
		nearest[c] = -1
		best[c] = math.Inf(1)
	}
	for i, c := range labels {
		if c < 0 || c >= k {
			return nil, fmt.Errorf("clusterer returned label %d outside [0, %d)", c, k)
		}
		if d := dist[i][c]; d < best[c] || nearest[c] < 0 {
			nearest[c], best[c] = i, d
		}
	}

	reps := make([][]float64, 0, k)
	for _, i := range nearest {
		if i >= 0 {
			reps = append(reps, subset[i])
		}
	}
	return reps, nil
}
