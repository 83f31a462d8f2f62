// Package ensemble fits and runs the two-stage class-specialized anomaly detector: one
// outlier model per class, trained on a few cluster representatives of that class in a
// feature space chosen by supervised importance, fused into normal, attack or unknown.
package ensemble

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hed1ad/nidsguard/pkg/cluster"
	"github.com/hed1ad/nidsguard/pkg/dataset"
	"github.com/hed1ad/nidsguard/pkg/detectors"
	"github.com/hed1ad/nidsguard/pkg/detectors/iforest"
	"github.com/hed1ad/nidsguard/pkg/features"
	"github.com/hed1ad/nidsguard/pkg/forest"
	"github.com/hed1ad/nidsguard/pkg/metrics"
	"github.com/hed1ad/nidsguard/pkg/sampling"
)

// Detector fits Models. It holds configuration and component factories only; all trained
// state lives in the Model returned by Fit.
type Detector struct {
	cfg Config

	newImportance func() features.ImportanceModel
	newClusterer  func(k int) sampling.Clusterer
	newOutlier    DetectorFactory

	metrics *metrics.Collector
	logger  zerolog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithImportanceModel replaces the random forest used to rank features.
func WithImportanceModel(fn func() features.ImportanceModel) Option {
	return func(d *Detector) { d.newImportance = fn }
}

// WithClusterer replaces the mini-batch k-means used to pick representatives.
func WithClusterer(fn func(k int) sampling.Clusterer) Option {
	return func(d *Detector) { d.newClusterer = fn }
}

// WithOutlierDetector replaces the isolation forest used by the subsystems.
func WithOutlierDetector(fn DetectorFactory) Option {
	return func(d *Detector) { d.newOutlier = fn }
}

// WithMetrics records fit and predict metrics on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(d *Detector) { d.metrics = c }
}

// WithLogger sets the logger. The default is the global zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Detector) { d.logger = l }
}

// New validates cfg and creates a Detector.
func New(cfg Config, opts ...Option) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &Detector{
		cfg:    cfg,
		logger: log.Logger.With().Str("component", "ensemble").Logger(),
	}
	d.newImportance = func() features.ImportanceModel {
		return forest.New(forest.WithTrees(cfg.ImportanceTrees), forest.WithSeed(cfg.Seed))
	}
	d.newClusterer = func(k int) sampling.Clusterer {
		return cluster.New(k,
			cluster.WithBatchSize(cfg.BatchSize),
			cluster.WithInit(cfg.NInit),
			cluster.WithMaxIter(cfg.MaxIter),
			cluster.WithTol(cfg.Tol),
			cluster.WithSeed(cfg.Seed),
		)
	}
	d.newOutlier = func(maxSamples int, contamination float64) detectors.Detector {
		return iforest.NewFromConfig(detectors.Config{
			Trees:         cfg.Trees,
			MaxSamples:    maxSamples,
			Contamination: contamination,
			RandomSeed:    cfg.Seed,
		})
	}

	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Config returns the detector configuration.
func (d *Detector) Config() Config { return d.cfg }

// Fit trains a Model on t and its labels. Shape problems are reported before any training
// work. A class with no rows leaves its subsystem unfitted and is reported through
// Model.Warnings; Fit fails only when neither subsystem can be fitted.
func (d *Detector) Fit(t *dataset.Table, y dataset.Labels) (*Model, error) {
	start := time.Now()

	if err := d.checkShape(t, y); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	logger := d.logger.With().Str("run_id", id).Logger()
	logger.Info().
		Int("rows", t.Len()).
		Int("attack_rows", y.Count(dataset.Attack)).
		Int("normal_rows", y.Count(dataset.Normal)).
		Msg("Fitting ensemble")

	projector := features.NewProjector(d.cfg.CategoricalColumns)
	encoded, err := projector.FitTransform(t)
	if err != nil {
		return nil, fmt.Errorf("project features: %w", err)
	}

	selector := features.NewSelector(d.newImportance(), d.cfg.NFI)
	if err := selector.Fit(encoded, y); err != nil {
		return nil, fmt.Errorf("select features: %w", err)
	}
	if selector.Clamped() {
		logger.Warn().
			Err(&ConfigurationError{Field: "n_fi", Reason: fmt.Sprintf("%d exceeds %d encoded features", d.cfg.NFI, projector.Width())}).
			Msg("Keeping all encoded features")
	}
	selected, err := selector.Select(encoded)
	if err != nil {
		return nil, fmt.Errorf("select features: %w", err)
	}

	attackRows, normalRows, err := sampling.Split(selected, y)
	if err != nil {
		return nil, err
	}

	m := &Model{
		id:        id,
		cfg:       d.cfg,
		projector: projector,
		selector:  selector,
		metrics:   d.metrics,
		logger:    logger,
	}

	sampler := sampling.NewSampler(d.newClusterer)
	classes := [2]Class{AttackClass, NormalClass}
	subsets := [2][][]float64{attackRows, normalRows}
	var (
		fitted     [2]*Subsystem
		degenerate [2]error
	)

	// The two classes share nothing after the split.
	var g errgroup.Group
	for i, class := range classes {
		i, class := i, class
		g.Go(func() error {
			reps, err := sampler.Sample(subsets[i], d.cfg.K)
			if err != nil {
				return fmt.Errorf("sample %s representatives: %w", class, err)
			}
			s, err := fitSubsystem(class, d.cfg.contamination(class), d.cfg.MaxSamples, reps, d.newOutlier)
			if errors.Is(err, ErrDegenerateClass) {
				degenerate[i] = err
				return nil
			}
			fitted[i] = s
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if fitted[0] == nil && fitted[1] == nil {
		return nil, errors.Join(degenerate[0], degenerate[1])
	}
	m.attack, m.normal = fitted[0], fitted[1]

	for i, class := range classes {
		if degenerate[i] != nil {
			m.warnings = append(m.warnings, degenerate[i])
			d.metrics.IncDegenerate(class.String())
			logger.Warn().Err(degenerate[i]).Str("class", class.String()).Msg("Subsystem not fitted")
			continue
		}
		n := len(fitted[i].Representatives())
		d.metrics.SetRepresentatives(class.String(), n)
		logger.Debug().
			Str("class", class.String()).
			Int("rows", len(subsets[i])).
			Int("representatives", n).
			Msg("Subsystem fitted")
	}

	elapsed := time.Since(start)
	d.metrics.ObserveFit(elapsed)
	logger.Info().
		Strs("features", m.SelectedFeatures()).
		Dur("elapsed", elapsed).
		Msg("Ensemble fitted")

	return m, nil
}

func (d *Detector) checkShape(t *dataset.Table, y dataset.Labels) error {
	if t == nil || t.Len() == 0 {
		return dataset.NewShapeError("fit", "empty table")
	}
	if err := y.Validate(t.Len()); err != nil {
		return err
	}
	for _, c := range d.cfg.CategoricalColumns {
		if !t.Has(c) {
			return dataset.NewShapeError("fit", "categorical column %q not in table", c)
		}
	}
	return nil
}
