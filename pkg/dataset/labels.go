package dataset

import "strconv"

// Labels holds one binary class label per table row: Normal (0) or Attack (1).
type Labels []int

// Validate checks that the vector has n entries, each 0 or 1.
func (l Labels) Validate(n int) error {
	if len(l) != n {
		return shapeErrorf("labels", "have %d labels for %d rows", len(l), n)
	}
	for i, v := range l {
		if v != Normal && v != Attack {
			return shapeErrorf("labels", "label %d at row %d is not 0 or 1", v, i)
		}
	}
	return nil
}

// Count returns the number of entries equal to class.
func (l Labels) Count(class int) int {
	n := 0
	for _, v := range l {
		if v == class {
			n++
		}
	}
	return n
}

// SplitLabels removes column from t and parses it as the label vector.
func SplitLabels(t *Table, column string) (*Table, Labels, error) {
	j, ok := t.Index(column)
	if !ok {
		return nil, nil, shapeErrorf("labels", "no label column %q", column)
	}
	labels := make(Labels, t.Len())
	for i := range t.rows {
		v, err := strconv.Atoi(t.rows[i][j])
		if err != nil {
			f, ferr := ParseNumber(t.rows[i][j])
			if ferr != nil {
				return nil, nil, shapeErrorf("labels", "row %d: %q is not a label", i, t.rows[i][j])
			}
			v = int(f)
		}
		labels[i] = v
	}
	if err := labels.Validate(t.Len()); err != nil {
		return nil, nil, err
	}
	return t.Drop(column), labels, nil
}
