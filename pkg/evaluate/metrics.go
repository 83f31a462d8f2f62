// Package evaluate scores predictions against ground truth labels.
package evaluate

import (
	"fmt"
	"sort"

	"github.com/hed1ad/nidsguard/pkg/dataset"
)

func checkLengths(truth, pred []int) error {
	if len(truth) != len(pred) {
		return dataset.NewShapeError("evaluate", "%d truth labels, %d predictions", len(truth), len(pred))
	}
	if len(truth) == 0 {
		return dataset.NewShapeError("evaluate", "no labels")
	}
	return nil
}

// Accuracy returns the fraction of predictions equal to the truth.
func Accuracy(truth, pred []int) (float64, error) {
	if err := checkLengths(truth, pred); err != nil {
		return 0, err
	}
	hits := 0
	for i := range truth {
		if truth[i] == pred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(truth)), nil
}

// Labels returns the sorted set of values in truth and pred.
func Labels(truth, pred []int) []int {
	seen := map[int]bool{}
	for _, v := range truth {
		seen[v] = true
	}
	for _, v := range pred {
		seen[v] = true
	}
	out := make([]int, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// ConfusionMatrix counts rows by (truth, prediction). Row i is truth labels[i], column j is
// prediction labels[j]. Pairs involving values outside labels are not counted.
func ConfusionMatrix(truth, pred, labels []int) ([][]int, error) {
	if err := checkLengths(truth, pred); err != nil {
		return nil, err
	}
	pos := make(map[int]int, len(labels))
	for i, l := range labels {
		if _, dup := pos[l]; dup {
			return nil, fmt.Errorf("confusion matrix: duplicate label %d", l)
		}
		pos[l] = i
	}

	m := make([][]int, len(labels))
	for i := range m {
		m[i] = make([]int, len(labels))
	}
	for k := range truth {
		i, ok := pos[truth[k]]
		if !ok {
			continue
		}
		if j, ok := pos[pred[k]]; ok {
			m[i][j]++
		}
	}
	return m, nil
}

// WeightedF1 averages the per-label F1 scores over every label present in truth or pred,
// weighted by the label's support in truth. A label with no predicted and no true rows
// cannot occur; one with a zero denominator scores 0.
func WeightedF1(truth, pred []int) (float64, error) {
	labels := Labels(truth, pred)
	m, err := ConfusionMatrix(truth, pred, labels)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := range labels {
		tp, support, predicted := m[i][i], 0, 0
		for j := range labels {
			support += m[i][j]
			predicted += m[j][i]
		}
		if support == 0 {
			continue
		}
		var f1 float64
		if denom := support + predicted; denom > 0 {
			f1 = 2 * float64(tp) / float64(denom)
		}
		sum += f1 * float64(support)
	}
	return sum / float64(len(truth)), nil
}
