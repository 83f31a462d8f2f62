// Package detectors provides unsupervised outlier detection algorithms.
package detectors

import "fmt"

// Detector is the common interface for outlier detection algorithms.
type Detector interface {
	// Fit trains the detector on reference data.
	// data is a 2D slice where each row is a sample and each column is a feature.
	Fit(data [][]float64) error

	// Predict returns anomaly scores for the given samples.
	// Scores are normalized to [0, 1] where higher values indicate anomalies.
	Predict(data [][]float64) ([]float64, error)

	// PredictOne returns the anomaly score for a single sample.
	PredictOne(sample []float64) (float64, error)

	// Outliers reports, per sample, whether its score exceeds the fitted threshold.
	Outliers(data [][]float64) ([]bool, error)

	// Threshold returns the score above which a sample is an outlier.
	Threshold() float64
}

// Config holds common configuration for detectors.
type Config struct {
	// Trees is the number of estimators in tree-based detectors.
	Trees int
	// MaxSamples caps the subsample drawn per estimator.
	MaxSamples int
	// Contamination is the expected proportion of outliers in training data, in [0, 0.5).
	// Zero keeps the default score threshold of 0.5.
	Contamination float64
	// RandomSeed for reproducibility.
	RandomSeed int64
}

// DefaultConfig returns sensible defaults for detector configuration.
func DefaultConfig() Config {
	return Config{
		Trees:         50,
		MaxSamples:    100,
		Contamination: 0.1,
		RandomSeed:    42,
	}
}

// ValidateContamination checks that c lies in [0, 0.5). NaN is rejected.
func ValidateContamination(c float64) error {
	if !(c >= 0 && c < 0.5) {
		return fmt.Errorf("contamination %v outside [0, 0.5)", c)
	}
	return nil
}
