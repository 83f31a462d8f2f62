package dataset

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "443", want: 443},
		{in: " 1.5 ", want: 1.5},
		{in: "0x1bb", want: 443},
		{in: "-3", want: -3},
		{in: "tcp", wantErr: true},
		{in: "", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "+Inf", wantErr: true},
		{in: "-infinity", wantErr: true},
		{in: "1e400", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseNumber(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTable(t *testing.T) {
	tbl := MustTable("proto", "sbytes", "state")
	require.NoError(t, tbl.Append("tcp", "100", "FIN"))
	require.NoError(t, tbl.Append("udp", "0x10", "CON"))

	t.Run("ragged row", func(t *testing.T) {
		err := tbl.Append("tcp")
		assert.ErrorIs(t, err, ErrDataShape)
	})

	t.Run("duplicate column", func(t *testing.T) {
		_, err := NewTable("a", "a")
		assert.ErrorIs(t, err, ErrDataShape)
	})

	t.Run("select reorders", func(t *testing.T) {
		sel, err := tbl.Select("state", "proto")
		require.NoError(t, err)
		assert.Equal(t, []string{"state", "proto"}, sel.Columns())
		assert.Equal(t, []string{"CON", "udp"}, sel.Row(1))
	})

	t.Run("select unknown column", func(t *testing.T) {
		_, err := tbl.Select("dur")
		var shapeErr *ShapeError
		assert.True(t, errors.As(err, &shapeErr))
	})

	t.Run("non-finite number", func(t *testing.T) {
		nf := MustTable("dbytes")
		require.NoError(t, nf.Append("NaN"))
		require.NoError(t, nf.Append("Inf"))
		for i := 0; i < nf.Len(); i++ {
			_, err := nf.Number(i, 0)
			assert.ErrorIs(t, err, ErrDataShape, "row %d", i)
		}
	})

	t.Run("drop", func(t *testing.T) {
		d := tbl.Drop("sbytes", "missing")
		assert.Equal(t, []string{"proto", "state"}, d.Columns())
		assert.Equal(t, 2, d.Len())
	})

	t.Run("number", func(t *testing.T) {
		v, err := tbl.Number(1, 1)
		require.NoError(t, err)
		assert.Equal(t, 16.0, v)

		_, err = tbl.Number(0, 0)
		assert.ErrorIs(t, err, ErrDataShape)
	})
}

func TestSplitLabels(t *testing.T) {
	tbl := MustTable("sbytes", "Label")
	require.NoError(t, tbl.Append("1", "0"))
	require.NoError(t, tbl.Append("2", "1"))
	require.NoError(t, tbl.Append("3", "1.0"))

	features, labels, err := SplitLabels(tbl, "Label")
	require.NoError(t, err)
	assert.Equal(t, Labels{0, 1, 1}, labels)
	assert.Equal(t, []string{"sbytes"}, features.Columns())

	bad := MustTable("Label")
	require.NoError(t, bad.Append("2"))
	_, _, err = SplitLabels(bad, "Label")
	assert.ErrorIs(t, err, ErrDataShape)

	_, _, err = SplitLabels(tbl, "label")
	assert.ErrorIs(t, err, ErrDataShape)
}

func TestLabelsValidate(t *testing.T) {
	assert.NoError(t, Labels{0, 1}.Validate(2))
	assert.ErrorIs(t, Labels{0, 1}.Validate(3), ErrDataShape)
	assert.ErrorIs(t, Labels{0, -1}.Validate(2), ErrDataShape)
	assert.Equal(t, 2, Labels{1, 0, 1}.Count(Attack))
}

func TestTrainTestSplit(t *testing.T) {
	tbl, y := generateTable(10)

	train, test, trainY, testY, err := TrainTestSplit(tbl, y, 0.3, 42)
	require.NoError(t, err)
	assert.Equal(t, 7, train.Len())
	assert.Equal(t, 3, test.Len())
	assert.Len(t, trainY, 7)
	assert.Len(t, testY, 3)

	seen := map[string]bool{}
	for i := 0; i < train.Len(); i++ {
		seen[train.Cell(i, 0)] = true
	}
	for i := 0; i < test.Len(); i++ {
		assert.False(t, seen[test.Cell(i, 0)], "row in both splits")
		id, _ := strconv.Atoi(test.Cell(i, 0))
		assert.Equal(t, y[id], testY[i])
	}

	again, _, _, _, err := TrainTestSplit(tbl, y, 0.3, 42)
	require.NoError(t, err)
	assert.Equal(t, train.Row(0), again.Row(0))

	_, _, _, _, err = TrainTestSplit(tbl, y, 1.5, 42)
	assert.ErrorIs(t, err, ErrDataShape)
}

func TestHeadAndBalance(t *testing.T) {
	tbl, y := generateTable(10)

	h, hy := Head(tbl, y, 4)
	assert.Equal(t, 4, h.Len())
	assert.Equal(t, y[:4], hy)

	b, by := Balance(tbl, y, 6)
	assert.Equal(t, 6, b.Len())
	assert.Equal(t, 3, by.Count(Normal))
	assert.Equal(t, 3, by.Count(Attack))
}

// generateTable builds n rows whose first cell is the row id; labels alternate.
func generateTable(n int) (*Table, Labels) {
	tbl := MustTable("id", "proto")
	y := make(Labels, n)
	for i := 0; i < n; i++ {
		_ = tbl.Append(strconv.Itoa(i), "tcp")
		y[i] = i % 2
	}
	return tbl, y
}

func TestDropUnparsable(t *testing.T) {
	tbl := MustTable("proto", "sport", "dsport")
	rows := [][]string{
		{"tcp", "1043", "0x000b"},
		{"udp", "1044", "-"},
		{"tcp", "0x20205321", "53"},
		{"icmp", "-", "0"},
		{"udp", "1045", "NaN"},
		{"tcp", "1046", "80"},
	}
	for _, r := range rows {
		require.NoError(t, tbl.Append(r...))
	}
	y := Labels{0, 1, 0, 1, 1, 0}

	clean, cleanY, dropped, err := DropUnparsable(tbl, y, "sport", "dsport")
	require.NoError(t, err)
	assert.Equal(t, 3, dropped)
	assert.Equal(t, 3, clean.Len())
	assert.Equal(t, Labels{0, 0, 0}, cleanY)
	assert.Equal(t, []string{"tcp", "1046", "80"}, clean.Row(2))

	_, _, _, err = DropUnparsable(tbl, y, "dur")
	assert.ErrorIs(t, err, ErrDataShape)
	_, _, _, err = DropUnparsable(tbl, y[:2], "sport")
	assert.ErrorIs(t, err, ErrDataShape)
}

func TestKeepTopValues(t *testing.T) {
	tbl := MustTable("srcip", "sbytes")
	for _, ip := range []string{"a", "b", "a", "c", "b", "a", "d"} {
		require.NoError(t, tbl.Append(ip, "1"))
	}
	y := Labels{0, 1, 0, 1, 1, 0, 1}

	top, topY, err := KeepTopValues(tbl, y, "srcip", 2)
	require.NoError(t, err)
	assert.Equal(t, 5, top.Len())
	assert.Equal(t, Labels{0, 1, 0, 1, 0}, topY)
	for i := 0; i < top.Len(); i++ {
		assert.Contains(t, []string{"a", "b"}, top.Cell(i, 0))
	}

	all, _, err := KeepTopValues(tbl, y, "srcip", 0)
	require.NoError(t, err)
	assert.Equal(t, tbl.Len(), all.Len())

	_, _, err = KeepTopValues(tbl, y, "dstip", 2)
	assert.ErrorIs(t, err, ErrDataShape)
}
