// Package forest implements a random forest classifier whose main use here is ranking
// features by mean decrease in gini impurity.
package forest

import (
	"errors"
	"math"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// RandomForest is a bagged ensemble of gini CART trees.
type RandomForest struct {
	nTrees          int
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int // 0 => sqrt(p)
	bootstrap       bool
	seed            int64

	classes     []int
	trees       []*tree
	importances []float64
}

// Option configures a RandomForest.
type Option func(*RandomForest)

// WithTrees sets the number of trees.
func WithTrees(n int) Option {
	return func(f *RandomForest) { f.nTrees = n }
}

// WithMaxDepth limits tree depth. 0 grows trees until leaves are pure.
func WithMaxDepth(d int) Option {
	return func(f *RandomForest) { f.maxDepth = d }
}

// WithMaxFeatures sets how many features each split considers. 0 uses sqrt(p).
func WithMaxFeatures(k int) Option {
	return func(f *RandomForest) { f.maxFeatures = k }
}

// WithBootstrap toggles sampling rows with replacement per tree.
func WithBootstrap(b bool) Option {
	return func(f *RandomForest) { f.bootstrap = b }
}

// WithSeed sets the random seed. Tree i uses seed+i.
func WithSeed(seed int64) Option {
	return func(f *RandomForest) { f.seed = seed }
}

// New creates a RandomForest with the given options.
func New(opts ...Option) *RandomForest {
	f := &RandomForest{
		nTrees:          100,
		minSamplesSplit: 2,
		bootstrap:       true,
		seed:            42,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fit grows the forest on X and integer class labels y. Trees are grown concurrently; each
// uses its own seeded source so the result does not depend on scheduling.
func (f *RandomForest) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return errors.New("forest: empty training data")
	}
	if len(y) != len(X) {
		return errors.New("forest: X and y length mismatch")
	}
	if f.nTrees < 1 {
		return errors.New("forest: need at least one tree")
	}
	p := len(X[0])
	for _, row := range X {
		if len(row) != p {
			return errors.New("forest: inconsistent number of features")
		}
	}

	f.classes = uniqueSorted(y)
	classIdx := make(map[int]int, len(f.classes))
	for i, c := range f.classes {
		classIdx[c] = i
	}
	yIdx := make([]int, len(y))
	for i, v := range y {
		yIdx[i] = classIdx[v]
	}

	maxFeatures := f.maxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Max(1, math.Sqrt(float64(p))))
	}

	n := len(X)
	f.trees = make([]*tree, f.nTrees)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < f.nTrees; i++ {
		i := i
		g.Go(func() error {
			rng := rand.New(rand.NewSource(f.seed + int64(i)))
			idx := make([]int, n)
			for j := range idx {
				if f.bootstrap {
					idx[j] = rng.Intn(n)
				} else {
					idx[j] = j
				}
			}
			t := &tree{
				maxDepth:        f.maxDepth,
				minSamplesSplit: f.minSamplesSplit,
				maxFeatures:     maxFeatures,
				nClasses:        len(f.classes),
				rng:             rng,
			}
			t.grow(X, yIdx, idx)
			f.trees[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f.importances = make([]float64, p)
	for _, t := range f.trees {
		addNormalized(f.importances, t.importances)
	}
	normalize(f.importances)
	return nil
}

// FeatureImportances returns the mean decrease in impurity per feature, summing to 1 unless
// no tree found a useful split, in which case all scores are 0.
func (f *RandomForest) FeatureImportances() []float64 {
	out := make([]float64, len(f.importances))
	copy(out, f.importances)
	return out
}

// PredictProba returns per-class probabilities averaged across trees. Columns follow
// Classes().
func (f *RandomForest) PredictProba(X [][]float64) ([][]float64, error) {
	if f.trees == nil {
		return nil, errors.New("forest: model not trained")
	}
	out := make([][]float64, len(X))
	for i, x := range X {
		probas := make([]float64, len(f.classes))
		for _, t := range f.trees {
			for c, p := range t.predictProba(x) {
				probas[c] += p
			}
		}
		for c := range probas {
			probas[c] /= float64(len(f.trees))
		}
		out[i] = probas
	}
	return out, nil
}

// Predict returns the most probable class per row.
func (f *RandomForest) Predict(X [][]float64) ([]int, error) {
	probas, err := f.PredictProba(X)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(X))
	for i, p := range probas {
		best := 0
		for c := 1; c < len(p); c++ {
			if p[c] > p[best] {
				best = c
			}
		}
		out[i] = f.classes[best]
	}
	return out, nil
}

// Classes returns the sorted class labels seen in training.
func (f *RandomForest) Classes() []int {
	out := make([]int, len(f.classes))
	copy(out, f.classes)
	return out
}

func addNormalized(dst, src []float64) {
	total := 0.0
	for _, v := range src {
		total += v
	}
	if total == 0 {
		return
	}
	for i, v := range src {
		dst[i] += v / total
	}
}

func normalize(v []float64) {
	total := 0.0
	for _, x := range v {
		total += x
	}
	if total == 0 {
		return
	}
	for i := range v {
		v[i] /= total
	}
}

func uniqueSorted(y []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, v := range y {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}
