package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopProviderSatisfiesHealth(t *testing.T) {
	p := NewNoopProvider()
	assert.NoError(t, p.Health(context.Background()))

	c := p.NewCounter(CounterOpts{})
	g := p.NewGauge(GaugeOpts{})
	h := p.NewHistogram(HistogramOpts{})
	timer := p.NewTimer(HistogramOpts{})

	c.Inc(1)
	g.Set(1)
	g.Add(1)
	h.Observe(1)
	timer().ObserveDuration()
}
