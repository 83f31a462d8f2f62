package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveFit(2 * time.Second)
	c.ObservePredict(10 * time.Millisecond)
	c.AddPredictions("attack", 3)
	c.AddPredictions("unknown", 0)
	c.AddUnseen(map[string]int{"proto": 2, "state": 1})
	c.SetRepresentatives("normal", 7)
	c.IncDegenerate("attack")

	assert.Equal(t, 3.0, testutil.ToFloat64(c.predictions.WithLabelValues("attack")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.unseenCategories.WithLabelValues("proto")))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.representatives.WithLabelValues("normal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.degenerateClasses.WithLabelValues("attack")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.fitDuration))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "nidsguard_fit_duration_seconds")
	assert.Contains(t, names, "nidsguard_predictions_total")
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveFit(time.Second)
		c.ObservePredict(time.Second)
		c.AddPredictions("normal", 1)
		c.AddUnseen(map[string]int{"proto": 1})
		c.SetRepresentatives("attack", 1)
		c.IncDegenerate("normal")
	})
}

func TestUnregistered(t *testing.T) {
	c := New(nil)
	c.AddPredictions("normal", 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.predictions.WithLabelValues("normal")))
}
