package features

import (
	"fmt"
	"sort"

	"github.com/hed1ad/nidsguard/pkg/dataset"
)

// ImportanceModel is a supervised model that scores how much each column contributes to
// predicting the label.
type ImportanceModel interface {
	Fit(X [][]float64, y []int) error
	FeatureImportances() []float64
}

// Selector keeps the n most important columns of an encoded matrix.
type Selector struct {
	model   ImportanceModel
	nFI     int
	width   int
	indices []int
	scores  []float64
	clamped bool
}

// NewSelector creates a selector that keeps nFI columns ranked by model.
func NewSelector(model ImportanceModel, nFI int) *Selector {
	return &Selector{model: model, nFI: nFI}
}

// Fit trains the importance model on X and y and fixes the selected indices: descending
// importance, ties in original column order. nFI larger than the width is clamped.
func (s *Selector) Fit(X [][]float64, y []int) error {
	if len(X) == 0 {
		return dataset.NewShapeError("select", "empty matrix")
	}
	width := len(X[0])

	if err := s.model.Fit(X, y); err != nil {
		return fmt.Errorf("fit importance model: %w", err)
	}
	scores := s.model.FeatureImportances()
	if len(scores) != width {
		return dataset.NewShapeError("select", "model returned %d importances for %d columns", len(scores), width)
	}

	order := make([]int, width)
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	n := s.nFI
	s.clamped = n > width
	if s.clamped {
		n = width
	}

	s.width = width
	s.indices = order[:n:n]
	s.scores = make([]float64, width)
	copy(s.scores, scores)
	return nil
}

// Select returns X restricted to the selected columns, in selection order.
func (s *Selector) Select(X [][]float64) ([][]float64, error) {
	if s.indices == nil {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		if len(row) != s.width {
			return nil, dataset.NewShapeError("select", "row %d has %d columns, want %d", i, len(row), s.width)
		}
		r := make([]float64, len(s.indices))
		for k, j := range s.indices {
			r[k] = row[j]
		}
		out[i] = r
	}
	return out, nil
}

// Indices returns a copy of the selected column indices.
func (s *Selector) Indices() []int {
	out := make([]int, len(s.indices))
	copy(out, s.indices)
	return out
}

// Importances returns the importance score of every input column.
func (s *Selector) Importances() []float64 {
	out := make([]float64, len(s.scores))
	copy(out, s.scores)
	return out
}

// Clamped reports whether the configured count exceeded the available columns.
func (s *Selector) Clamped() bool { return s.clamped }
