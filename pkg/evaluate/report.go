package evaluate

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/tatsushid/go-prettytable"

	"github.com/hed1ad/nidsguard/pkg/ensemble"
)

// Score is the accuracy and weighted F1 of one set of predictions.
type Score struct {
	Name       string
	Accuracy   float64
	WeightedF1 float64
	Confusion  [][]int
	Labels     []int
}

// Report compares the fused prediction and each subsystem's own vote with the truth.
type Report struct {
	Rows        int
	Scores      []Score
	FitTime     time.Duration
	PredictTime time.Duration
}

// NewReport scores p against truth.
func NewReport(truth []int, p *ensemble.Prediction, fitTime, predictTime time.Duration) (*Report, error) {
	r := &Report{Rows: len(truth), FitTime: fitTime, PredictTime: predictTime}
	sets := []struct {
		name string
		pred []int
	}{
		{"ensemble", p.Ints()},
		{"attack subsystem", p.AttackVotes()},
		{"normal subsystem", p.NormalVotes()},
	}
	for _, s := range sets {
		score, err := NewScore(s.name, truth, s.pred)
		if err != nil {
			return nil, err
		}
		r.Scores = append(r.Scores, score)
	}
	return r, nil
}

// NewScore scores one prediction vector.
func NewScore(name string, truth, pred []int) (Score, error) {
	acc, err := Accuracy(truth, pred)
	if err != nil {
		return Score{}, err
	}
	f1, err := WeightedF1(truth, pred)
	if err != nil {
		return Score{}, err
	}
	labels := Labels(truth, pred)
	cm, err := ConfusionMatrix(truth, pred, labels)
	if err != nil {
		return Score{}, err
	}
	return Score{Name: name, Accuracy: acc, WeightedF1: f1, Confusion: cm, Labels: labels}, nil
}

// WriteTo renders the summary table followed by one confusion matrix per score.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	var total int64
	add := func(n int64, err error) error {
		total += n
		return err
	}

	summary, _ := prettytable.NewTable(
		prettytable.Column{Header: "Predictor"},
		prettytable.Column{Header: "Accuracy", AlignRight: true},
		prettytable.Column{Header: "F1 (weighted)", AlignRight: true},
	)
	summary.Separator = "  "
	for _, s := range r.Scores {
		summary.AddRow(s.Name, fmt.Sprintf("%.2f", s.Accuracy), fmt.Sprintf("%.2f", s.WeightedF1))
	}
	if err := add(summary.WriteTo(w)); err != nil {
		return total, err
	}

	n, err := fmt.Fprintf(w, "\nRows: %d  Fit: %s  Predict: %s\n",
		r.Rows, r.FitTime.Round(time.Millisecond), r.PredictTime.Round(time.Millisecond))
	if err := add(int64(n), err); err != nil {
		return total, err
	}

	for _, s := range r.Scores {
		n, err := fmt.Fprintf(w, "\n%s (rows: truth, columns: predicted)\n", s.Name)
		if err := add(int64(n), err); err != nil {
			return total, err
		}
		if err := add(confusionTable(s).WriteTo(w)); err != nil {
			return total, err
		}
	}
	return total, nil
}

func confusionTable(s Score) *prettytable.Table {
	columns := []prettytable.Column{{Header: "truth"}}
	for _, l := range s.Labels {
		columns = append(columns, prettytable.Column{Header: labelName(l), AlignRight: true})
	}
	table, _ := prettytable.NewTable(columns...)
	table.Separator = "  "

	for i, l := range s.Labels {
		row := []interface{}{labelName(l)}
		for _, c := range s.Confusion[i] {
			row = append(row, strconv.Itoa(c))
		}
		table.AddRow(row...)
	}
	return table
}

func labelName(l int) string {
	return ensemble.Label(l).String()
}
