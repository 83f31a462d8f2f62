package forest

import (
	"math/rand"
	"sort"
)

// tree is a CART classification tree grown with the gini criterion.
type tree struct {
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int
	nClasses        int
	rng             *rand.Rand

	root *treeNode

	// Weighted impurity decrease accumulated per feature while growing.
	importances []float64
}

type treeNode struct {
	leaf      bool
	feature   int
	threshold float64 // x <= threshold goes left
	left      *treeNode
	right     *treeNode
	probas    []float64
}

type split struct {
	feature   int
	threshold float64
	gain      float64
	nLeft     int
}

// grow builds the tree over X rows listed in idx. y holds class indices in [0, nClasses).
func (t *tree) grow(X [][]float64, y []int, idx []int) {
	t.importances = make([]float64, len(X[0]))
	t.root = t.build(X, y, idx, 0)
}

func (t *tree) build(X [][]float64, y []int, idx []int, depth int) *treeNode {
	counts := make([]int, t.nClasses)
	for _, i := range idx {
		counts[y[i]]++
	}

	if isPure(counts) || len(idx) < t.minSamplesSplit || (t.maxDepth > 0 && depth >= t.maxDepth) {
		return newLeaf(counts)
	}

	best, ok := t.bestSplit(X, y, idx, counts)
	if !ok {
		return newLeaf(counts)
	}
	t.importances[best.feature] += best.gain

	// Stable partition keeps row order, and so the tree, deterministic.
	left := make([]int, 0, best.nLeft)
	right := make([]int, 0, len(idx)-best.nLeft)
	for _, i := range idx {
		if X[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		feature:   best.feature,
		threshold: best.threshold,
		left:      t.build(X, y, left, depth+1),
		right:     t.build(X, y, right, depth+1),
	}
}

// bestSplit searches a random subset of features for the threshold with the largest weighted
// gini decrease. Gain is expressed in samples: n*G(parent) - nL*G(left) - nR*G(right).
func (t *tree) bestSplit(X [][]float64, y []int, idx []int, counts []int) (split, bool) {
	p := len(X[0])
	features := t.rng.Perm(p)
	if t.maxFeatures > 0 && t.maxFeatures < p {
		features = features[:t.maxFeatures]
	}

	n := len(idx)
	parent := float64(n) * gini(counts, n)
	best := split{feature: -1}

	sorted := make([]int, n)
	leftCounts := make([]int, t.nClasses)
	rightCounts := make([]int, t.nClasses)

	for _, f := range features {
		copy(sorted, idx)
		sort.SliceStable(sorted, func(a, b int) bool {
			return X[sorted[a]][f] < X[sorted[b]][f]
		})
		for c := range leftCounts {
			leftCounts[c] = 0
			rightCounts[c] = counts[c]
		}

		for k := 0; k < n-1; k++ {
			c := y[sorted[k]]
			leftCounts[c]++
			rightCounts[c]--

			lo, hi := X[sorted[k]][f], X[sorted[k+1]][f]
			if lo == hi {
				continue
			}
			nl, nr := k+1, n-k-1
			gain := parent - float64(nl)*gini(leftCounts, nl) - float64(nr)*gini(rightCounts, nr)
			if gain > best.gain {
				best = split{feature: f, threshold: lo + (hi-lo)/2, gain: gain, nLeft: nl}
			}
		}
	}

	return best, best.feature >= 0
}

func (t *tree) predictProba(x []float64) []float64 {
	n := t.root
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.probas
}

func newLeaf(counts []int) *treeNode {
	total := 0
	for _, c := range counts {
		total += c
	}
	probas := make([]float64, len(counts))
	if total > 0 {
		for i, c := range counts {
			probas[i] = float64(c) / float64(total)
		}
	}
	return &treeNode{leaf: true, probas: probas}
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	g := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		g -= p * p
	}
	return g
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}
