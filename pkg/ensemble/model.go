package ensemble

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hed1ad/nidsguard/pkg/dataset"
	"github.com/hed1ad/nidsguard/pkg/features"
	"github.com/hed1ad/nidsguard/pkg/metrics"
)

// Model is the trained ensemble: fitted projector, selected features and the two class
// subsystems. It is never modified after Fit returns, so Predict may be called concurrently.
type Model struct {
	id        string
	cfg       Config
	projector *features.Projector
	selector  *features.Selector
	attack    *Subsystem
	normal    *Subsystem
	warnings  []error

	metrics *metrics.Collector
	logger  zerolog.Logger
}

// Prediction holds the fused labels of a batch and the subsystem verdicts they came from.
type Prediction struct {
	// Labels is the final label per row.
	Labels []Label
	// Attack is 1 where the row is an inlier of the attack subsystem (looks like an attack).
	Attack []int
	// Normal is 1 where the row is an inlier of the normal subsystem (looks normal).
	Normal []int
	// Unseen counts categorical cells that were not observed at fit time.
	Unseen features.UnseenCategories
}

// Ints returns the labels as plain integers in {-1, 0, 1}.
func (p *Prediction) Ints() []int {
	out := make([]int, len(p.Labels))
	for i, l := range p.Labels {
		out[i] = int(l)
	}
	return out
}

// AttackVotes returns the attack subsystem's own binary prediction in label space:
// 1 (attack) for its inliers.
func (p *Prediction) AttackVotes() []int {
	out := make([]int, len(p.Attack))
	copy(out, p.Attack)
	return out
}

// NormalVotes returns the normal subsystem's own binary prediction in label space:
// 1 (attack) for rows that do not look normal.
func (p *Prediction) NormalVotes() []int {
	out := make([]int, len(p.Normal))
	for i, v := range p.Normal {
		out[i] = 1 - v
	}
	return out
}

// Count returns how many rows received label l.
func (p *Prediction) Count(l Label) int {
	n := 0
	for _, v := range p.Labels {
		if v == l {
			n++
		}
	}
	return n
}

// Predict classifies every row of t.
func (m *Model) Predict(t *dataset.Table) (*Prediction, error) {
	start := time.Now()

	encoded, unseen, err := m.projector.Transform(t)
	if err != nil {
		return nil, fmt.Errorf("project features: %w", err)
	}
	if n := unseen.Total(); n > 0 {
		ev := m.logger.Warn().Int("cells", n)
		for column, c := range unseen {
			ev = ev.Int("unseen_"+column, c)
		}
		ev.Msg("Unseen categories encoded as zeros")
		m.metrics.AddUnseen(unseen)
	}

	selected, err := m.selector.Select(encoded)
	if err != nil {
		return nil, fmt.Errorf("select features: %w", err)
	}

	var attack, normal []int
	var g errgroup.Group
	g.Go(func() (err error) {
		attack, err = verdicts(m.attack, selected)
		return err
	})
	g.Go(func() (err error) {
		normal, err = verdicts(m.normal, selected)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	labels, err := Fuse(attack, normal)
	if err != nil {
		return nil, err
	}

	p := &Prediction{Labels: labels, Attack: attack, Normal: normal, Unseen: unseen}
	for _, l := range []Label{Unknown, Normal, Attack} {
		m.metrics.AddPredictions(l.String(), p.Count(l))
	}
	m.metrics.ObservePredict(time.Since(start))
	m.logger.Debug().
		Int("rows", len(labels)).
		Int("attack", p.Count(Attack)).
		Int("normal", p.Count(Normal)).
		Int("unknown", p.Count(Unknown)).
		Msg("Batch classified")

	return p, nil
}

// verdicts runs s over X. A missing subsystem never claims a row.
func verdicts(s *Subsystem, X [][]float64) ([]int, error) {
	if s == nil {
		return make([]int, len(X)), nil
	}
	return s.Verdicts(X)
}

// ID returns the identifier of the fit that produced this model.
func (m *Model) ID() string { return m.id }

// Config returns the configuration the model was fitted with.
func (m *Model) Config() Config { return m.cfg }

// Subsystem returns the subsystem for class, or nil when that class had no training rows.
func (m *Model) Subsystem(class Class) *Subsystem {
	if class == AttackClass {
		return m.attack
	}
	return m.normal
}

// SelectedIndices returns the encoded column indices kept by feature selection.
func (m *Model) SelectedIndices() []int { return m.selector.Indices() }

// SelectedFeatures names the encoded columns kept by feature selection, most important first.
func (m *Model) SelectedFeatures() []string {
	names := m.projector.FeatureNames()
	idx := m.selector.Indices()
	out := make([]string, len(idx))
	for k, j := range idx {
		out[k] = names[j]
	}
	return out
}

// Warnings returns the non-fatal problems found during Fit, such as *DegenerateClassError.
func (m *Model) Warnings() []error {
	out := make([]error, len(m.warnings))
	copy(out, m.warnings)
	return out
}
