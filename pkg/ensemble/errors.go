package ensemble

import (
	"errors"
	"fmt"

	"github.com/hed1ad/nidsguard/pkg/dataset"
)

var (
	// ErrConfiguration is wrapped by every ConfigurationError.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrDegenerateClass is wrapped by every DegenerateClassError.
	ErrDegenerateClass = errors.New("degenerate class")

	// ErrDataShape matches table, label and matrix shape problems.
	ErrDataShape = dataset.ErrDataShape
)

// ConfigurationError reports a configuration value the detector cannot work with.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// DegenerateClassError reports a class with no training rows; its subsystem cannot be fitted.
type DegenerateClassError struct {
	Class Class
}

func (e *DegenerateClassError) Error() string {
	return fmt.Sprintf("no %s rows to train the %s subsystem on", e.Class, e.Class)
}

func (e *DegenerateClassError) Unwrap() error { return ErrDegenerateClass }
