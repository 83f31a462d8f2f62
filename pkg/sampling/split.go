// Package sampling partitions the training matrix by class and compresses each class into a
// small set of representative rows.
package sampling

import "github.com/hed1ad/nidsguard/pkg/dataset"

// Split returns the rows labeled Attack and the rows labeled Normal, each in original order.
// Row slices are shared with X; neither input is modified. Either result may be empty.
func Split(X [][]float64, y []int) (attack, normal [][]float64, err error) {
	if len(X) != len(y) {
		return nil, nil, dataset.NewShapeError("split", "have %d labels for %d rows", len(y), len(X))
	}
	for i, row := range X {
		switch y[i] {
		case dataset.Attack:
			attack = append(attack, row)
		case dataset.Normal:
			normal = append(normal, row)
		default:
			return nil, nil, dataset.NewShapeError("split", "label %d at row %d is not 0 or 1", y[i], i)
		}
	}
	return attack, normal, nil
}
