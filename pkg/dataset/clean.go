package dataset

import "sort"

// DropUnparsable removes the rows where any of the named columns does not hold a finite
// number, and reports how many were removed.
func DropUnparsable(t *Table, y Labels, columns ...string) (*Table, Labels, int, error) {
	if err := y.Validate(t.Len()); err != nil {
		return nil, nil, 0, err
	}
	idx := make([]int, len(columns))
	for k, c := range columns {
		j, ok := t.Index(c)
		if !ok {
			return nil, nil, 0, shapeErrorf("clean", "no column %q", c)
		}
		idx[k] = j
	}

	keep := make([]int, 0, t.Len())
rows:
	for i, row := range t.rows {
		for _, j := range idx {
			if _, err := ParseNumber(row[j]); err != nil {
				continue rows
			}
		}
		keep = append(keep, i)
	}
	return t.Rows(keep), y.pick(keep), t.Len() - len(keep), nil
}

// KeepTopValues keeps the rows whose value in column is among the n most frequent values.
// Ties in frequency go to the value seen first. n < 1 keeps every row.
func KeepTopValues(t *Table, y Labels, column string, n int) (*Table, Labels, error) {
	if err := y.Validate(t.Len()); err != nil {
		return nil, nil, err
	}
	j, ok := t.Index(column)
	if !ok {
		return nil, nil, shapeErrorf("clean", "no column %q", column)
	}
	if n < 1 {
		return t, y, nil
	}

	counts := map[string]int{}
	var values []string
	for _, row := range t.rows {
		if counts[row[j]] == 0 {
			values = append(values, row[j])
		}
		counts[row[j]]++
	}
	sort.SliceStable(values, func(a, b int) bool {
		return counts[values[a]] > counts[values[b]]
	})
	top := make(map[string]bool, n)
	for _, v := range values[:min(n, len(values))] {
		top[v] = true
	}

	var keep []int
	for i, row := range t.rows {
		if top[row[j]] {
			keep = append(keep, i)
		}
	}
	return t.Rows(keep), y.pick(keep), nil
}
