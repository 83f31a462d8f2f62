package sampling

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/nidsguard/pkg/cluster"
	"github.com/hed1ad/nidsguard/pkg/dataset"
)

func TestSplit(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {3}, {4}}
	y := []int{1, 0, 1, 0, 0}

	attack, normal, err := Split(X, y)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0}, {2}}, attack)
	assert.Equal(t, [][]float64{{1}, {3}, {4}}, normal)
	assert.Equal(t, [][]float64{{0}, {1}, {2}, {3}, {4}}, X, "input untouched")

	t.Run("absent class", func(t *testing.T) {
		attack, normal, err := Split(X, []int{0, 0, 0, 0, 0})
		require.NoError(t, err)
		assert.Empty(t, attack)
		assert.Len(t, normal, 5)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, _, err := Split(X, []int{0})
		assert.ErrorIs(t, err, dataset.ErrDataShape)
	})

	t.Run("bad label", func(t *testing.T) {
		_, _, err := Split([][]float64{{0}}, []int{2})
		assert.ErrorIs(t, err, dataset.ErrDataShape)
	})
}

func newSampler() *Sampler {
	return NewSampler(func(k int) Clusterer {
		return cluster.New(k, cluster.WithSeed(42))
	})
}

func TestSampleBounds(t *testing.T) {
	tests := []struct {
		name string
		n    int
		k    int
	}{
		{name: "single row", n: 1, k: 1},
		{name: "fewer than k", n: 3, k: 5},
		{name: "exactly k", n: 4, k: 4},
		{name: "many rows", n: 200, k: 10},
		{name: "k of one", n: 50, k: 1},
	}

	s := newSampler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subset := generateTestData(tt.n, 3)
			reps, err := s.Sample(subset, tt.k)
			require.NoError(t, err)

			assert.GreaterOrEqual(t, len(reps), 1)
			assert.LessOrEqual(t, len(reps), max(1, min(tt.k, tt.n)))
			for _, r := range reps {
				assert.Contains(t, subset, r, "representatives are members of the subset")
			}
		})
	}
}

func TestSamplePassThrough(t *testing.T) {
	subset := generateTestData(3, 2)
	reps, err := newSampler().Sample(subset, 4)
	require.NoError(t, err)
	assert.Equal(t, subset, reps)

	reps, err = newSampler().Sample(nil, 4)
	require.NoError(t, err)
	assert.Empty(t, reps)
}

func TestSampleExactlyK(t *testing.T) {
	t.Run("distinct rows become singletons", func(t *testing.T) {
		subset := [][]float64{{0, 0}, {5, 5}, {10, 0}}
		reps, err := newSampler().Sample(subset, 3)
		require.NoError(t, err)
		assert.ElementsMatch(t, subset, reps)
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		subset := [][]float64{{1, 1}, {1, 1}, {1, 1}}
		reps, err := newSampler().Sample(subset, 3)
		require.NoError(t, err)
		assert.Less(t, len(reps), 3)
		assert.GreaterOrEqual(t, len(reps), 1)
	})
}

func TestSampleNearestMember(t *testing.T) {
	// Two tight groups; the middle row of each group is closest to its centroid.
	subset := [][]float64{{0}, {1}, {2}, {100}, {101}, {102}}
	reps, err := newSampler().Sample(subset, 2)
	require.NoError(t, err)
	assert.ElementsMatch(t, [][]float64{{1}, {101}}, reps)
}

// stubClusterer puts every row in cluster 0 of k, with distance equal to the first feature.
type stubClusterer struct{}

func (stubClusterer) Fit(X [][]float64) error { return nil }

func (stubClusterer) Predict(X [][]float64) ([]int, error) {
	return make([]int, len(X)), nil
}

func (stubClusterer) Transform(X [][]float64) ([][]float64, error) {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = []float64{row[0], 0, 0}
	}
	return out, nil
}

func TestSampleSkipsEmptyClusters(t *testing.T) {
	s := NewSampler(func(k int) Clusterer { return stubClusterer{} })
	reps, err := s.Sample([][]float64{{3}, {1}, {2}}, 3)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1}}, reps)
}

func TestSampleDeterministic(t *testing.T) {
	subset := generateTestData(300, 4)
	a, err := newSampler().Sample(subset, 8)
	require.NoError(t, err)
	b, err := newSampler().Sample(subset, 8)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func generateTestData(n, features int) [][]float64 {
	rng := rand.New(rand.NewSource(int64(n)))
	data := make([][]float64, n)
	for i := 0; i < n; i++ {
		data[i] = make([]float64, features)
		for j := 0; j < features; j++ {
			data[i][j] = rng.NormFloat64()
		}
	}
	return data
}
