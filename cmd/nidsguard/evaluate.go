package main

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hed1ad/nidsguard/pkg/dataset"
	"github.com/hed1ad/nidsguard/pkg/ensemble"
	"github.com/hed1ad/nidsguard/pkg/evaluate"
	"github.com/hed1ad/nidsguard/pkg/io/csv"
)

// loadLabeled reads a labeled CSV and separates the label column.
func (a *app) loadLabeled(cmd *cobra.Command, flag string) (*dataset.Table, dataset.Labels, error) {
	path, _ := cmd.Flags().GetString(flag)
	if path == "" {
		path = a.cfg.Dataset.Path
	}
	if path == "" {
		return nil, nil, requiredUsage{cmd: cmd, msg: "--" + flag + " or dataset.path must be set"}
	}

	tbl, err := csv.ReadFile(a.fs, path)
	if err != nil {
		return nil, nil, err
	}
	tbl, y, err := dataset.SplitLabels(tbl, a.cfg.Dataset.LabelColumn)
	if err != nil {
		return nil, nil, err
	}

	if n := a.cfg.Dataset.NRows; n > 0 {
		if a.cfg.Dataset.FixImbalance {
			tbl, y = dataset.Balance(tbl, y, n)
		} else {
			tbl, y = dataset.Head(tbl, y, n)
		}
	}
	if tbl, y, err = a.clean(tbl, y); err != nil {
		return nil, nil, err
	}
	log.Info().
		Str("path", path).
		Int("rows", tbl.Len()).
		Int("attack", y.Count(dataset.Attack)).
		Msg("Dataset loaded")
	return tbl, y, nil
}

// clean applies the dataset filters and then removes the configured drop columns.
func (a *app) clean(tbl *dataset.Table, y dataset.Labels) (*dataset.Table, dataset.Labels, error) {
	ds := a.cfg.Dataset
	var err error
	if ds.TopValues > 0 {
		before := tbl.Len()
		if tbl, y, err = dataset.KeepTopValues(tbl, y, ds.TopColumn, ds.TopValues); err != nil {
			return nil, nil, err
		}
		log.Debug().
			Str("column", ds.TopColumn).
			Int("rows", before-tbl.Len()).
			Msg("Dropped rows outside the most frequent values")
	}
	tbl = tbl.Drop(ds.DropColumns...)

	if ds.DropInvalid {
		categorical := make(map[string]bool)
		for _, c := range a.cfg.Detector.CategoricalColumns {
			categorical[c] = true
		}
		var numeric []string
		for _, c := range tbl.Columns() {
			if !categorical[c] {
				numeric = append(numeric, c)
			}
		}
		var dropped int
		if tbl, y, dropped, err = dataset.DropUnparsable(tbl, y, numeric...); err != nil {
			return nil, nil, err
		}
		if dropped > 0 {
			log.Warn().Int("rows", dropped).Msg("Dropped rows with unparsable numeric cells")
		}
	}
	return tbl, y, nil
}

func (a *app) evaluate(cmd *cobra.Command, args []string) error {
	tbl, y, err := a.loadLabeled(cmd, "data")
	if err != nil {
		return err
	}

	train, test, trainY, testY, err := dataset.TrainTestSplit(tbl, y, a.cfg.Dataset.TestSize, a.cfg.Dataset.SplitSeed)
	if err != nil {
		return err
	}

	det, err := ensemble.New(a.cfg.Detector.EnsembleConfig(), ensemble.WithMetrics(a.metrics))
	if err != nil {
		return err
	}

	start := time.Now()
	model, err := det.Fit(train, trainY)
	if err != nil {
		return err
	}
	fitTime := time.Since(start)

	start = time.Now()
	p, err := model.Predict(test)
	if err != nil {
		return err
	}
	predictTime := time.Since(start)

	report, err := evaluate.NewReport(testY, p, fitTime, predictTime)
	if err != nil {
		return err
	}
	_, err = report.WriteTo(a.out)
	return err
}
