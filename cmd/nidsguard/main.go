// Command nidsguard fits the class-specialized anomaly ensemble on labeled flow records and
// evaluates it or classifies captured traffic with it.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/hed1ad/nidsguard/pkg/config"
	"github.com/hed1ad/nidsguard/pkg/metrics"
)

type app struct {
	fs  afero.Fs
	out io.Writer

	cfg      *config.Config
	reg      *prometheus.Registry
	metrics  *metrics.Collector
	closeLog func() error
}

type requiredUsage struct {
	cmd *cobra.Command
	msg string
}

func (e requiredUsage) Error() string { return e.msg }

func (a *app) setup(cmd *cobra.Command, args []string) error {
	// Usage is printed for argument errors only, which cobra reports before this runs.
	cmd.SilenceUsage = true

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFs(a.fs, path)
	if err != nil {
		return err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	closeLog, err := config.SetupLogging(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	a.cfg = cfg
	a.closeLog = closeLog
	a.reg = prometheus.NewRegistry()
	a.metrics = metrics.New(a.reg)
	return nil
}

func (a *app) writeMetrics(cmd *cobra.Command, args []string) error {
	if a.cfg == nil || a.cfg.Metrics.Textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.cfg.Metrics.Textfile, a.reg); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	log.Debug().Str("textfile", a.cfg.Metrics.Textfile).Msg("Metrics written")
	return nil
}

// close releases the log file opened by setup.
func (a *app) close() error {
	if a.closeLog == nil {
		return nil
	}
	return a.closeLog()
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:                "nidsguard",
		Short:              "Two-stage anomaly ensemble for network flow records",
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.writeMetrics,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", "", "override logging.level")

	evaluateCmd := &cobra.Command{
		Use:   "evaluate [flags]",
		Short: "Fit on a split of a labeled CSV and score the held-out rows",
		Args:  cobra.NoArgs,
		RunE:  a.evaluate,
	}
	evaluateCmd.Flags().StringP("data", "d", "", "labeled CSV (default dataset.path)")
	rootCmd.AddCommand(evaluateCmd)

	classifyCmd := &cobra.Command{
		Use:   "classify [flags]",
		Short: "Fit on a labeled CSV and classify the flows of a capture or flow CSV",
		Args:  cobra.NoArgs,
		RunE:  a.classify,
	}
	classifyCmd.Flags().StringP("train", "t", "", "labeled CSV to fit on (default dataset.path)")
	classifyCmd.Flags().StringP("pcap", "p", "", "packet capture to classify")
	classifyCmd.Flags().StringP("flows", "f", "", "unlabeled flow CSV to classify")
	classifyCmd.Flags().StringP("out", "o", "", "result CSV (default stdout)")
	classifyCmd.MarkFlagsMutuallyExclusive("pcap", "flows")
	classifyCmd.MarkFlagsOneRequired("pcap", "flows")
	rootCmd.AddCommand(classifyCmd)

	return rootCmd
}

func main() {
	a := &app{fs: afero.NewOsFs(), out: os.Stdout}
	rootCmd := newRootCmd(a)

	err := rootCmd.Execute()
	if cerr := a.close(); cerr != nil {
		fmt.Fprintln(os.Stderr, "close log file:", cerr)
	}
	var usage requiredUsage
	if errors.As(err, &usage) {
		usage.cmd.Usage()
		os.Exit(2)
	}
	os.Exit(map[bool]int{true: 0, false: 1}[err == nil])
}
