// Package cluster implements mini-batch k-means.
package cluster

import (
	"errors"
	"math"
	"math/rand"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// MiniBatchKMeans partitions rows into k clusters, updating centroids from small random
// batches. It is deterministic for a fixed seed.
type MiniBatchKMeans struct {
	k         int
	batchSize int
	nInit     int
	maxIter   int
	tol       float64
	seed      int64

	centroids [][]float64
	inertia   float64
}

// Option configures MiniBatchKMeans.
type Option func(*MiniBatchKMeans)

// WithBatchSize sets the number of rows drawn per update step. Zero or less, or more than
// the number of rows, updates from every row.
func WithBatchSize(n int) Option {
	return func(m *MiniBatchKMeans) { m.batchSize = n }
}

// WithInit sets how many seeded restarts run; the lowest-inertia run wins.
func WithInit(n int) Option {
	return func(m *MiniBatchKMeans) { m.nInit = n }
}

// WithMaxIter bounds the number of batch updates per restart.
func WithMaxIter(n int) Option {
	return func(m *MiniBatchKMeans) { m.maxIter = n }
}

// WithTol sets the convergence tolerance on centroid movement, relative to data variance.
func WithTol(tol float64) Option {
	return func(m *MiniBatchKMeans) { m.tol = tol }
}

// WithSeed sets the random seed. Restart i uses seed+i.
func WithSeed(seed int64) Option {
	return func(m *MiniBatchKMeans) { m.seed = seed }
}

// New creates a clusterer for k clusters.
func New(k int, opts ...Option) *MiniBatchKMeans {
	m := &MiniBatchKMeans{
		k:         k,
		batchSize: 100,
		nInit:     10,
		maxIter:   100,
		tol:       0.01,
		seed:      42,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// K returns the configured number of clusters.
func (m *MiniBatchKMeans) K() int { return m.k }

// Centroids returns a copy of the fitted centroids.
func (m *MiniBatchKMeans) Centroids() [][]float64 {
	out := make([][]float64, len(m.centroids))
	for i, c := range m.centroids {
		out[i] = append([]float64(nil), c...)
	}
	return out
}

// Inertia returns the sum of squared distances of the training rows to their centroid.
func (m *MiniBatchKMeans) Inertia() float64 { return m.inertia }

// Fit clusters X. Some clusters may end up with no members.
func (m *MiniBatchKMeans) Fit(X [][]float64) error {
	if len(X) == 0 {
		return errors.New("kmeans: empty input")
	}
	if m.k < 1 {
		return errors.New("kmeans: k must be positive")
	}
	if len(X) < m.k {
		return errors.New("kmeans: fewer rows than clusters")
	}
	p := len(X[0])
	for _, row := range X {
		if len(row) != p {
			return errors.New("kmeans: inconsistent number of features")
		}
	}

	tol := m.tol * meanVariance(X)
	runs := m.nInit
	if runs < 1 {
		runs = 1
	}

	m.centroids = nil
	m.inertia = math.Inf(1)
	for run := 0; run < runs; run++ {
		rng := rand.New(rand.NewSource(m.seed + int64(run)))
		centroids := m.fitOnce(X, tol, rng)
		labels := assign(X, centroids)
		inertia := 0.0
		for i, row := range X {
			inertia += squaredDistance(row, centroids[labels[i]])
		}
		if inertia < m.inertia {
			m.inertia = inertia
			m.centroids = centroids
		}
	}
	return nil
}

func (m *MiniBatchKMeans) fitOnce(X [][]float64, tol float64, rng *rand.Rand) [][]float64 {
	centroids := initPlusPlus(X, m.k, rng)
	counts := make([]float64, m.k)

	n := len(X)
	batchSize := m.batchSize
	if batchSize <= 0 || batchSize > n {
		batchSize = n
	}
	batch := make([][]float64, batchSize)

	for it := 0; it < m.maxIter; it++ {
		if batchSize == n {
			copy(batch, X)
		} else {
			for b := range batch {
				batch[b] = X[rng.Intn(n)]
			}
		}

		labels := assign(batch, centroids)
		old := make([][]float64, m.k)
		for c := range centroids {
			old[c] = append([]float64(nil), centroids[c]...)
		}

		for b, row := range batch {
			c := labels[b]
			counts[c]++
			eta := 1 / counts[c]
			for j := range row {
				centroids[c][j] += eta * (row[j] - centroids[c][j])
			}
		}

		shift := 0.0
		for c := range centroids {
			shift += squaredDistance(centroids[c], old[c])
		}
		if shift <= tol {
			break
		}
	}
	return centroids
}

// Predict returns the index of the nearest centroid for each row.
func (m *MiniBatchKMeans) Predict(X [][]float64) ([]int, error) {
	if m.centroids == nil {
		return nil, errors.New("kmeans: model not trained")
	}
	if err := m.checkWidth(X); err != nil {
		return nil, err
	}
	return assign(X, m.centroids), nil
}

// Transform returns the Euclidean distance from each row to every centroid.
func (m *MiniBatchKMeans) Transform(X [][]float64) ([][]float64, error) {
	if m.centroids == nil {
		return nil, errors.New("kmeans: model not trained")
	}
	if err := m.checkWidth(X); err != nil {
		return nil, err
	}

	out := make([][]float64, len(X))
	parallelRows(len(X), func(i int) {
		d := make([]float64, len(m.centroids))
		for c, centroid := range m.centroids {
			d[c] = floats.Distance(X[i], centroid, 2)
		}
		out[i] = d
	})
	return out, nil
}

func (m *MiniBatchKMeans) checkWidth(X [][]float64) error {
	p := len(m.centroids[0])
	for _, row := range X {
		if len(row) != p {
			return errors.New("kmeans: feature count mismatch between input and centroids")
		}
	}
	return nil
}

// initPlusPlus picks k initial centroids with k-means++ seeding.
func initPlusPlus(X [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(X)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, append([]float64(nil), X[rng.Intn(n)]...))

	minDist := make([]float64, n)
	for i, row := range X {
		minDist[i] = squaredDistance(row, centroids[0])
	}

	for len(centroids) < k {
		total := floats.Sum(minDist)
		next := rng.Intn(n)
		if total > 0 {
			r := rng.Float64() * total
			cumulative := 0.0
			for i, d := range minDist {
				cumulative += d
				if cumulative >= r && d > 0 {
					next = i
					break
				}
			}
		}
		c := append([]float64(nil), X[next]...)
		centroids = append(centroids, c)
		for i, row := range X {
			if d := squaredDistance(row, c); d < minDist[i] {
				minDist[i] = d
			}
		}
	}
	return centroids
}

// assign labels each row with its nearest centroid, first centroid on ties.
func assign(X [][]float64, centroids [][]float64) []int {
	labels := make([]int, len(X))
	parallelRows(len(X), func(i int) {
		best, bestDist := 0, math.MaxFloat64
		for c, centroid := range centroids {
			if d := squaredDistance(X[i], centroid); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
	})
	return labels
}

// parallelRows runs fn over [0, n) split into contiguous chunks, one per worker.
func parallelRows(n int, fn func(i int)) {
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, n)
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}

func squaredDistance(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

// meanVariance is the average per-column variance of X.
func meanVariance(X [][]float64) float64 {
	p := len(X[0])
	if p == 0 {
		return 0
	}
	col := make([]float64, len(X))
	total := 0.0
	for j := 0; j < p; j++ {
		for i, row := range X {
			col[i] = row[j]
		}
		mean := floats.Sum(col) / float64(len(col))
		v := 0.0
		for _, x := range col {
			v += (x - mean) * (x - mean)
		}
		total += v / float64(len(col))
	}
	return total / float64(p)
}
