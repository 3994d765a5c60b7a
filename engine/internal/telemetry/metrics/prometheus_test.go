package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusProviderRegistersAndRecords(t *testing.T) {
	p := NewPrometheusProvider(PrometheusProviderOptions{})

	counter := p.NewCounter(CounterOpts{CommonOpts: CommonOpts{Namespace: "groundtrack", Subsystem: "resources", Name: "alerts_total", Labels: []string{"channel"}}})
	counter.Inc(1, "sps_propellant_kg")
	counter.Inc(2, "sps_propellant_kg")

	gauge := p.NewGauge(GaugeOpts{CommonOpts: CommonOpts{Namespace: "groundtrack", Name: "power_margin_pct"}})
	gauge.Set(42)

	require.NotNil(t, p.MetricsHandler())
	assert.NoError(t, p.Health(context.Background()))
}

func TestPrometheusProviderRejectsInvalidName(t *testing.T) {
	p := NewPrometheusProvider(PrometheusProviderOptions{})
	c := p.NewCounter(CounterOpts{CommonOpts: CommonOpts{Name: "bad name with spaces"}})
	// invalid names degrade to a noop instrument rather than panicking.
	c.Inc(1)
}

func TestPrometheusProviderCardinalityWarning(t *testing.T) {
	p := NewPrometheusProvider(PrometheusProviderOptions{CardinalityLimit: 1})
	counter := p.NewCounter(CounterOpts{CommonOpts: CommonOpts{Name: "groundtrack_test_labels_total", Labels: []string{"id"}}})
	counter.Inc(1, "a")
	counter.Inc(1, "b")
	assert.NoError(t, p.Health(context.Background()))
}
