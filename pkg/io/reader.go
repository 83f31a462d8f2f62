// Package io provides input/output utilities for flow tables and classification results.
package io

import (
	"github.com/hed1ad/nidsguard/pkg/dataset"
	"github.com/hed1ad/nidsguard/pkg/ensemble"
)

// TableReader is the interface for reading flow records from various sources.
type TableReader interface {
	// Read returns every record as a table, one column per field.
	Read() (*dataset.Table, error)

	// Close releases resources.
	Close() error
}

// Writer is the interface for writing classification results.
type Writer interface {
	// Write outputs a single result.
	Write(result Result) error

	// WriteAll outputs multiple results.
	WriteAll(results []Result) error

	// Close flushes and releases resources.
	Close() error
}

// Result is the classification of one record.
type Result struct {
	Row    int    `json:"row"`
	Label  int    `json:"label"` // -1 unknown, 0 normal, 1 attack
	Attack int    `json:"attack"`
	Normal int    `json:"normal"`
	Flow   string `json:"flow,omitempty"`
}

// Results pairs a prediction with optional per-row flow descriptions. flows may be nil.
func Results(p *ensemble.Prediction, flows []string) []Result {
	out := make([]Result, len(p.Labels))
	for i, l := range p.Labels {
		out[i] = Result{Row: i, Label: int(l), Attack: p.Attack[i], Normal: p.Normal[i]}
		if i < len(flows) {
			out[i].Flow = flows[i]
		}
	}
	return out
}
