package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hed1ad/nidsguard/pkg/dataset"
	"github.com/hed1ad/nidsguard/pkg/ensemble"
	nidsio "github.com/hed1ad/nidsguard/pkg/io"
	"github.com/hed1ad/nidsguard/pkg/io/csv"
	"github.com/hed1ad/nidsguard/pkg/io/pcap"
)

func (a *app) classify(cmd *cobra.Command, args []string) error {
	train, y, err := a.loadLabeled(cmd, "train")
	if err != nil {
		return err
	}
	if train, err = train.Select(pcap.Columns...); err != nil {
		return err
	}

	cfg := a.cfg.Detector.EnsembleConfig()
	cfg.CategoricalColumns = flowColumns(cfg.CategoricalColumns)
	det, err := ensemble.New(cfg, ensemble.WithMetrics(a.metrics))
	if err != nil {
		return err
	}
	model, err := det.Fit(train, y)
	if err != nil {
		return err
	}

	flows, descriptions, err := a.readFlows(cmd)
	if err != nil {
		return err
	}
	p, err := model.Predict(flows)
	if err != nil {
		return err
	}

	w, err := a.resultWriter(cmd)
	if err != nil {
		return err
	}
	if err := w.WriteAll(nidsio.Results(p, descriptions)); err != nil {
		w.Close()
		return err
	}

	log.Info().
		Str("model", model.ID()).
		Int("flows", len(p.Labels)).
		Int("attack", p.Count(ensemble.Attack)).
		Int("normal", p.Count(ensemble.Normal)).
		Int("unknown", p.Count(ensemble.Unknown)).
		Msg("Flows classified")
	return w.Close()
}

// readFlows returns the flows to classify and, for captures, their endpoint descriptions.
func (a *app) readFlows(cmd *cobra.Command) (*dataset.Table, []string, error) {
	if path, _ := cmd.Flags().GetString("pcap"); path != "" {
		r, err := pcap.NewFileReader(path)
		if err != nil {
			return nil, nil, err
		}
		defer r.Close()
		tbl, err := r.Read()
		if err != nil {
			return nil, nil, err
		}
		return tbl, r.Flows(), nil
	}

	path, _ := cmd.Flags().GetString("flows")
	tbl, err := csv.ReadFile(a.fs, path)
	if err != nil {
		return nil, nil, err
	}
	tbl, err = tbl.Select(pcap.Columns...)
	return tbl, nil, err
}

func (a *app) resultWriter(cmd *cobra.Command) (nidsio.Writer, error) {
	if path, _ := cmd.Flags().GetString("out"); path != "" {
		return csv.CreateWriter(a.fs, path)
	}
	return csv.NewWriter(a.out), nil
}

// flowColumns keeps the categorical columns a capture can produce.
func flowColumns(categorical []string) []string {
	available := make(map[string]bool, len(pcap.Columns))
	for _, c := range pcap.Columns {
		available[c] = true
	}
	var out []string
	for _, c := range categorical {
		if available[c] {
			out = append(out, c)
		}
	}
	return out
}
