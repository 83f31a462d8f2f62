package evaluate

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hed1ad/nidsguard/pkg/dataset"
	"github.com/hed1ad/nidsguard/pkg/ensemble"
)

func TestAccuracy(t *testing.T) {
	acc, err := Accuracy([]int{1, 0, 1, 0}, []int{1, 0, 0, -1})
	require.NoError(t, err)
	assert.Equal(t, 0.5, acc)

	_, err = Accuracy([]int{1}, []int{1, 0})
	assert.ErrorIs(t, err, dataset.ErrDataShape)
	_, err = Accuracy(nil, nil)
	assert.ErrorIs(t, err, dataset.ErrDataShape)
}

func TestConfusionMatrix(t *testing.T) {
	truth := []int{0, 0, 1, 1, 1}
	pred := []int{0, -1, 1, 0, 1}

	m, err := ConfusionMatrix(truth, pred, []int{-1, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, [][]int{
		{0, 0, 0},
		{1, 1, 0},
		{0, 1, 2},
	}, m)

	m, err = ConfusionMatrix(truth, pred, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 0}, {1, 2}}, m, "unknown predictions are dropped")

	_, err = ConfusionMatrix(truth, pred, []int{0, 0})
	assert.Error(t, err)
}

func TestWeightedF1(t *testing.T) {
	tests := []struct {
		name  string
		truth []int
		pred  []int
		want  float64
	}{
		{name: "perfect", truth: []int{0, 1, 1}, pred: []int{0, 1, 1}, want: 1},
		{name: "all wrong", truth: []int{0, 1}, pred: []int{1, 0}, want: 0},
		// label 0: tp 1, support 2, predicted 1 -> 2/3; label 1: tp 2, support 2, predicted 2 -> 1.
		{name: "with unknown", truth: []int{0, 0, 1, 1}, pred: []int{0, -1, 1, 1}, want: (2.0/3*2 + 1*2) / 4},
		// label 0: tp 1, support 1, predicted 2 -> 2/3; label 1: tp 2, support 3, predicted 2 -> 4/5.
		{name: "imbalanced", truth: []int{0, 1, 1, 1}, pred: []int{0, 1, 1, 0}, want: (2.0/3*1 + 0.8*3) / 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WeightedF1(tt.truth, tt.pred)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestReport(t *testing.T) {
	truth := []int{1, 1, 0, 0}
	p := &ensemble.Prediction{
		Labels: []ensemble.Label{ensemble.Attack, ensemble.Unknown, ensemble.Normal, ensemble.Normal},
		Attack: []int{1, 0, 0, 0},
		Normal: []int{0, 0, 1, 1},
	}

	r, err := NewReport(truth, p, 1500*time.Millisecond, 20*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, r.Scores, 3)
	assert.Equal(t, 0.75, r.Scores[0].Accuracy)
	assert.Equal(t, 0.75, r.Scores[1].Accuracy, "attack votes 1,0,0,0")
	assert.Equal(t, 1.0, r.Scores[2].Accuracy, "normal votes 1,1,0,0")

	var buf bytes.Buffer
	_, err = r.WriteTo(&buf)
	require.NoError(t, err)

	out := buf.String()
	for _, want := range []string{"Predictor", "ensemble", "attack subsystem", "normal subsystem", "0.75", "1.00", "unknown", "Fit: 1.5s"} {
		assert.Contains(t, out, want)
	}
}
