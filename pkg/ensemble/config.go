package ensemble

import (
	"github.com/hed1ad/nidsguard/pkg/detectors"
)

// Config holds the detector hyperparameters.
type Config struct {
	// K is the number of clusters, and so the maximum number of representatives, per class.
	K int
	// NFI is the number of encoded features kept after importance ranking.
	NFI int
	// CAttack and CNormal are the contamination rates of the attack and normal subsystems.
	CAttack float64
	CNormal float64
	// CategoricalColumns are one-hot encoded; every other column is min-max scaled.
	CategoricalColumns []string

	// Trees and MaxSamples configure each subsystem's isolation forest.
	Trees      int
	MaxSamples int

	// Importance forest and clustering settings.
	ImportanceTrees int
	BatchSize       int
	NInit           int
	MaxIter         int
	Tol             float64

	// Seed drives every random choice in Fit.
	Seed int64
}

// DefaultConfig returns the detector defaults.
func DefaultConfig() Config {
	dc := detectors.DefaultConfig()
	return Config{
		K:               50,
		NFI:             10,
		CAttack:         dc.Contamination,
		CNormal:         dc.Contamination,
		Trees:           dc.Trees,
		MaxSamples:      dc.MaxSamples,
		ImportanceTrees: 100,
		BatchSize:       100,
		NInit:           10,
		MaxIter:         100,
		Tol:             0.01,
		Seed:            dc.RandomSeed,
	}
}

// Validate rejects configurations that cannot be fitted.
func (c Config) Validate() error {
	positive := []struct {
		field string
		value int
	}{
		{"k", c.K},
		{"n_fi", c.NFI},
		{"trees", c.Trees},
		{"max_samples", c.MaxSamples},
		{"importance_trees", c.ImportanceTrees},
		{"batch_size", c.BatchSize},
		{"n_init", c.NInit},
		{"max_iter", c.MaxIter},
	}
	for _, p := range positive {
		if p.value < 1 {
			return &ConfigurationError{Field: p.field, Reason: "must be at least 1"}
		}
	}

	if err := detectors.ValidateContamination(c.CAttack); err != nil {
		return &ConfigurationError{Field: "c_attack", Reason: err.Error()}
	}
	if err := detectors.ValidateContamination(c.CNormal); err != nil {
		return &ConfigurationError{Field: "c_normal", Reason: err.Error()}
	}
	if c.Tol < 0 {
		return &ConfigurationError{Field: "tol", Reason: "must not be negative"}
	}

	seen := make(map[string]bool, len(c.CategoricalColumns))
	for _, col := range c.CategoricalColumns {
		if seen[col] {
			return &ConfigurationError{Field: "categorical_columns", Reason: "duplicate column " + col}
		}
		seen[col] = true
	}
	return nil
}

func (c Config) contamination(class Class) float64 {
	if class == AttackClass {
		return c.CAttack
	}
	return c.CNormal
}
