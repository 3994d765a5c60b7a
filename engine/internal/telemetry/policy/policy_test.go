package policy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultIsAlreadyNormalized(t *testing.T) {
	d := Default()
	assert.Equal(t, d, d.Normalize())
}

func TestNormalizeFillsZeroFields(t *testing.T) {
	var p TelemetryPolicy
	n := p.Normalize()
	assert.Equal(t, 2*time.Second, n.Health.ProbeTTL)
	assert.Equal(t, 10, n.Health.SchedulerMinSamples)
	assert.Equal(t, 64, n.Audio.MaxPendingCues)
}

func TestNormalizeClampsSamplePercent(t *testing.T) {
	p := TelemetryPolicy{Tracing: TracingPolicy{SamplePercent: 250}}
	assert.Equal(t, 100.0, p.Normalize().Tracing.SamplePercent)

	p = TelemetryPolicy{Tracing: TracingPolicy{SamplePercent: -10}}
	assert.Equal(t, 0.0, p.Normalize().Tracing.SamplePercent)
}
