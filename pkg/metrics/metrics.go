// Package metrics exposes Prometheus instrumentation for detector fits and predictions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nidsguard"

// Collector groups the detector's Prometheus metrics. A nil *Collector is valid and records
// nothing.
type Collector struct {
	fitDuration       prometheus.Histogram
	predictDuration   prometheus.Histogram
	predictions       *prometheus.CounterVec
	unseenCategories  *prometheus.CounterVec
	representatives   *prometheus.GaugeVec
	degenerateClasses *prometheus.CounterVec
}

// New creates the metrics and registers them with reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fit_duration_seconds",
			Help:      "Time spent fitting the ensemble.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		predictDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "predict_duration_seconds",
			Help:      "Time spent classifying a batch of records.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Records classified, by final label.",
		}, []string{"label"}),
		unseenCategories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unseen_categories_total",
			Help:      "Categorical cells not observed at fit time, by column.",
		}, []string{"column"}),
		representatives: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "representatives",
			Help:      "Representative rows the subsystem model was fitted on, by class.",
		}, []string{"class"}),
		degenerateClasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degenerate_classes_total",
			Help:      "Fits where a class had no training rows, by class.",
		}, []string{"class"}),
	}

	if reg != nil {
		reg.MustRegister(
			c.fitDuration,
			c.predictDuration,
			c.predictions,
			c.unseenCategories,
			c.representatives,
			c.degenerateClasses,
		)
	}
	return c
}

// ObserveFit records the duration of one fit.
func (c *Collector) ObserveFit(d time.Duration) {
	if c == nil {
		return
	}
	c.fitDuration.Observe(d.Seconds())
}

// ObservePredict records the duration of one predict call.
func (c *Collector) ObservePredict(d time.Duration) {
	if c == nil {
		return
	}
	c.predictDuration.Observe(d.Seconds())
}

// AddPredictions counts n records classified as label.
func (c *Collector) AddPredictions(label string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.predictions.WithLabelValues(label).Add(float64(n))
}

// AddUnseen counts unseen categorical cells per column.
func (c *Collector) AddUnseen(unseen map[string]int) {
	if c == nil {
		return
	}
	for column, n := range unseen {
		c.unseenCategories.WithLabelValues(column).Add(float64(n))
	}
}

// SetRepresentatives records the representative set size for class.
func (c *Collector) SetRepresentatives(class string, n int) {
	if c == nil {
		return
	}
	c.representatives.WithLabelValues(class).Set(float64(n))
}

// IncDegenerate counts a fit where class had no rows.
func (c *Collector) IncDegenerate(class string) {
	if c == nil {
		return
	}
	c.degenerateClasses.WithLabelValues(class).Inc()
}
