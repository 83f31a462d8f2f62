package forest

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		opts       []Option
		wantNTrees int
		wantSeed   int64
	}{
		{name: "defaults", wantNTrees: 100, wantSeed: 42},
		{name: "custom trees", opts: []Option{WithTrees(10)}, wantNTrees: 10, wantSeed: 42},
		{name: "custom seed", opts: []Option{WithTrees(5), WithSeed(7)}, wantNTrees: 5, wantSeed: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(tt.opts...)
			assert.Equal(t, tt.wantNTrees, f.nTrees)
			assert.Equal(t, tt.wantSeed, f.seed)
		})
	}
}

func TestFitErrors(t *testing.T) {
	tests := []struct {
		name string
		X    [][]float64
		y    []int
	}{
		{name: "empty", X: nil, y: nil},
		{name: "length mismatch", X: [][]float64{{1}, {2}}, y: []int{0}},
		{name: "ragged", X: [][]float64{{1, 2}, {2}}, y: []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, New(WithTrees(3)).Fit(tt.X, tt.y))
		})
	}
}

func TestFeatureImportances(t *testing.T) {
	X, y := generateInformative(300, 5, 2)
	f := New(WithTrees(30), WithSeed(1))
	require.NoError(t, f.Fit(X, y))

	imp := f.FeatureImportances()
	require.Len(t, imp, 5)

	sum := 0.0
	for _, v := range imp {
		assert.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	for j := range imp {
		if j != 2 {
			assert.Greater(t, imp[2], imp[j], "informative column should dominate")
		}
	}
}

func TestDeterministic(t *testing.T) {
	X, y := generateInformative(200, 6, 4)

	a := New(WithTrees(20), WithSeed(99))
	b := New(WithTrees(20), WithSeed(99))
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	assert.Equal(t, a.FeatureImportances(), b.FeatureImportances())
}

func TestPredict(t *testing.T) {
	X, y := generateInformative(300, 3, 0)
	f := New(WithTrees(25), WithSeed(3))
	require.NoError(t, f.Fit(X, y))

	pred, err := f.Predict(X)
	require.NoError(t, err)

	correct := 0
	for i := range pred {
		if pred[i] == y[i] {
			correct++
		}
	}
	assert.Greater(t, float64(correct)/float64(len(y)), 0.9)
	assert.Equal(t, []int{0, 1}, f.Classes())

	_, err = New().Predict(X)
	assert.Error(t, err)
}

func TestConstantFeatures(t *testing.T) {
	X := [][]float64{{1, 1}, {1, 1}, {1, 1}, {1, 1}}
	y := []int{0, 1, 0, 1}
	f := New(WithTrees(5))
	require.NoError(t, f.Fit(X, y))
	assert.Equal(t, []float64{0, 0}, f.FeatureImportances())
}

func BenchmarkFit(b *testing.B) {
	X, y := generateInformative(1000, 20, 5)
	f := New(WithTrees(50))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		f.Fit(X, y)
	}
}

// generateInformative returns noise features where column informative decides the label.
func generateInformative(n, features, informative int) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(5))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		X[i] = make([]float64, features)
		for j := range X[i] {
			X[i][j] = rng.Float64()
		}
		if X[i][informative] > 0.5 {
			y[i] = 1
		}
	}
	return X, y
}
