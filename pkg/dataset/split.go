package dataset

import (
	"math"
	"math/rand"
)

// TrainTestSplit shuffles rows with the given seed and holds out ceil(testSize*n) of them.
func TrainTestSplit(t *Table, y Labels, testSize float64, seed int64) (train, test *Table, trainY, testY Labels, err error) {
	if err := y.Validate(t.Len()); err != nil {
		return nil, nil, nil, nil, err
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, shapeErrorf("split", "test size %v outside (0, 1)", testSize)
	}

	n := t.Len()
	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest == 0 || nTest >= n {
		return nil, nil, nil, nil, shapeErrorf("split", "cannot hold out %d of %d rows", nTest, n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	testIdx, trainIdx := perm[:nTest], perm[nTest:]

	return t.Rows(trainIdx), t.Rows(testIdx), y.pick(trainIdx), y.pick(testIdx), nil
}

// Head keeps the first n rows.
func Head(t *Table, y Labels, n int) (*Table, Labels) {
	if n >= t.Len() || n < 0 {
		return t, y
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.Rows(idx), y.pick(idx)
}

// Balance keeps at most n/2 leading rows of each class, normal rows first.
func Balance(t *Table, y Labels, n int) (*Table, Labels) {
	if n > t.Len() {
		n = t.Len()
	}
	half := n / 2
	var normal, attack []int
	for i, v := range y {
		switch {
		case v == Normal && len(normal) < half:
			normal = append(normal, i)
		case v == Attack && len(attack) < half:
			attack = append(attack, i)
		}
	}
	idx := append(normal, attack...)
	return t.Rows(idx), y.pick(idx)
}

func (l Labels) pick(idx []int) Labels {
	out := make(Labels, len(idx))
	for k, i := range idx {
		out[k] = l[i]
	}
	return out
}
