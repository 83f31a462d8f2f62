// Package features turns a raw dataset.Table into the numeric matrix the detector works on
// and picks the columns of that matrix worth keeping.
package features

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/hed1ad/nidsguard/pkg/dataset"
)

// ErrNotFitted is returned when Transform or Select runs before Fit.
var ErrNotFitted = errors.New("features: not fitted")

// UnseenCategories counts, per categorical column, the cells whose category was not observed
// at fit time. Such cells are encoded as an all-zero indicator block.
type UnseenCategories map[string]int

// Total returns the number of unseen cells across all columns.
func (u UnseenCategories) Total() int {
	n := 0
	for _, c := range u {
		n += c
	}
	return n
}

// Projector one-hot encodes categorical columns and min-max scales numeric columns.
// The encoded matrix holds the categorical blocks first, in declared order, followed by the
// numeric columns in table order.
type Projector struct {
	categorical []string
	numeric     []string

	// Per categorical column: sorted vocabulary and category -> block offset.
	vocab  [][]string
	lookup []map[string]int

	mins []float64
	maxs []float64

	width  int
	fitted bool
}

// NewProjector creates a projector for the given categorical column names. Every other
// column of the fitted table is treated as numeric.
func NewProjector(categorical []string) *Projector {
	cols := make([]string, len(categorical))
	copy(cols, categorical)
	return &Projector{categorical: cols}
}

// Fit learns category vocabularies and numeric ranges from t.
func (p *Projector) Fit(t *dataset.Table) error {
	if t.Len() == 0 {
		return dataset.NewShapeError("project", "empty table")
	}

	isCat := make(map[string]bool, len(p.categorical))
	for _, c := range p.categorical {
		if !t.Has(c) {
			return dataset.NewShapeError("project", "categorical column %q not in table", c)
		}
		isCat[c] = true
	}

	p.numeric = p.numeric[:0]
	for _, c := range t.Columns() {
		if !isCat[c] {
			p.numeric = append(p.numeric, c)
		}
	}

	p.vocab = make([][]string, len(p.categorical))
	p.lookup = make([]map[string]int, len(p.categorical))
	width := 0
	for k, c := range p.categorical {
		j, _ := t.Index(c)
		seen := map[string]bool{}
		for i := 0; i < t.Len(); i++ {
			seen[t.Cell(i, j)] = true
		}
		vocab := make([]string, 0, len(seen))
		for v := range seen {
			vocab = append(vocab, v)
		}
		sort.Strings(vocab)

		lookup := make(map[string]int, len(vocab))
		for pos, v := range vocab {
			lookup[v] = pos
		}
		p.vocab[k] = vocab
		p.lookup[k] = lookup
		width += len(vocab)
	}

	p.mins = make([]float64, len(p.numeric))
	p.maxs = make([]float64, len(p.numeric))
	col := make([]float64, t.Len())
	for k, c := range p.numeric {
		j, _ := t.Index(c)
		for i := range col {
			v, err := t.Number(i, j)
			if err != nil {
				return fmt.Errorf("fit projector: %w", err)
			}
			col[i] = v
		}
		p.mins[k] = floats.Min(col)
		p.maxs[k] = floats.Max(col)
	}

	p.width = width + len(p.numeric)
	p.fitted = true
	return nil
}

// Transform encodes t with the fitted parameters. Columns are looked up by name, so t may
// order them differently from the fitted table. Numeric values outside the fitted range are
// not clipped.
func (p *Projector) Transform(t *dataset.Table) ([][]float64, UnseenCategories, error) {
	if !p.fitted {
		return nil, nil, ErrNotFitted
	}

	catIdx, err := columnIndices(t, p.categorical)
	if err != nil {
		return nil, nil, err
	}
	numIdx, err := columnIndices(t, p.numeric)
	if err != nil {
		return nil, nil, err
	}

	unseen := UnseenCategories{}
	out := make([][]float64, t.Len())
	for i := range out {
		row := make([]float64, p.width)
		offset := 0
		for k, j := range catIdx {
			if pos, ok := p.lookup[k][t.Cell(i, j)]; ok {
				row[offset+pos] = 1
			} else {
				unseen[p.categorical[k]]++
			}
			offset += len(p.vocab[k])
		}
		for k, j := range numIdx {
			v, err := t.Number(i, j)
			if err != nil {
				return nil, nil, fmt.Errorf("transform: %w", err)
			}
			if span := p.maxs[k] - p.mins[k]; span != 0 {
				row[offset+k] = (v - p.mins[k]) / span
			}
		}
		out[i] = row
	}

	return out, unseen, nil
}

// FitTransform runs Fit then Transform on the same table.
func (p *Projector) FitTransform(t *dataset.Table) ([][]float64, error) {
	if err := p.Fit(t); err != nil {
		return nil, err
	}
	out, _, err := p.Transform(t)
	return out, err
}

// Width returns the number of encoded columns.
func (p *Projector) Width() int { return p.width }

// FeatureNames names every encoded column: "column=category" for indicator columns and the
// plain column name for numeric ones.
func (p *Projector) FeatureNames() []string {
	names := make([]string, 0, p.width)
	for k, c := range p.categorical {
		for _, v := range p.vocab[k] {
			names = append(names, c+"="+v)
		}
	}
	return append(names, p.numeric...)
}

func columnIndices(t *dataset.Table, names []string) ([]int, error) {
	idx := make([]int, len(names))
	for k, c := range names {
		j, ok := t.Index(c)
		if !ok {
			return nil, dataset.NewShapeError("transform", "column %q not in table", c)
		}
		idx[k] = j
	}
	return idx, nil
}
