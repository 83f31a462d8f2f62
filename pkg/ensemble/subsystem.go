package ensemble

import (
	"fmt"

	"github.com/hed1ad/nidsguard/pkg/dataset"
	"github.com/hed1ad/nidsguard/pkg/detectors"
)

// Class identifies which training class a subsystem models.
type Class int

// Subsystem classes, matching the dataset label values.
const (
	NormalClass Class = dataset.Normal
	AttackClass Class = dataset.Attack
)

func (c Class) String() string {
	if c == AttackClass {
		return "attack"
	}
	return "normal"
}

// Subsystem is an outlier model fitted only on one class's representative rows. It is
// immutable once fitted.
type Subsystem struct {
	class           Class
	contamination   float64
	detector        detectors.Detector
	representatives [][]float64
}

// DetectorFactory builds the outlier model for a subsystem. maxSamples is already bounded
// by the size of the representative set.
type DetectorFactory func(maxSamples int, contamination float64) detectors.Detector

func fitSubsystem(class Class, contamination float64, maxSamples int, reps [][]float64, newDetector DetectorFactory) (*Subsystem, error) {
	if len(reps) == 0 {
		return nil, &DegenerateClassError{Class: class}
	}

	d := newDetector(min(maxSamples, len(reps)), contamination)
	if err := d.Fit(reps); err != nil {
		return nil, fmt.Errorf("fit %s subsystem: %w", class, err)
	}

	return &Subsystem{
		class:           class,
		contamination:   contamination,
		detector:        d,
		representatives: reps,
	}, nil
}

// Class returns the class this subsystem was fitted on.
func (s *Subsystem) Class() Class { return s.class }

// Contamination returns the expected outlier fraction the subsystem was fitted with.
func (s *Subsystem) Contamination() float64 { return s.contamination }

// Representatives returns the rows the subsystem was fitted on.
func (s *Subsystem) Representatives() [][]float64 { return s.representatives }

// Verdicts returns 1 for rows that are inliers of this class ("looks like <class>") and 0
// for outliers.
func (s *Subsystem) Verdicts(X [][]float64) ([]int, error) {
	outliers, err := s.detector.Outliers(X)
	if err != nil {
		return nil, fmt.Errorf("%s subsystem: %w", s.class, err)
	}
	out := make([]int, len(outliers))
	for i, o := range outliers {
		if !o {
			out[i] = 1
		}
	}
	return out, nil
}

// Scores returns the raw anomaly scores of the underlying detector.
func (s *Subsystem) Scores(X [][]float64) ([]float64, error) {
	return s.detector.Predict(X)
}
