// Package policy centralizes runtime-tunable telemetry knobs so they can be
// swapped atomically (callers hold an immutable snapshot pointer) without
// locking the tick-loop hot path.
package policy

import "time"

// TelemetryPolicy bundles every subsystem's telemetry tuning. All durations
// are expected to be positive; zero values fall back to Default()'s values
// via Normalize().
type TelemetryPolicy struct {
	Health  HealthPolicy
	Tracing TracingPolicy
	Audio   AudioPolicy
}

// HealthPolicy tunes the health.Evaluator's probe cache (ProbeTTL) and the
// resource probe's degraded/unhealthy bands (Resource*TickCount). No probe
// reads the Scheduler* fields.
type HealthPolicy struct {
	ProbeTTL                   time.Duration
	SchedulerMinSamples        int
	SchedulerDegradedRatio     float64
	SchedulerUnhealthyRatio    float64
	ResourceDegradedTickCount  int
	ResourceUnhealthyTickCount int
}

type TracingPolicy struct {
	SamplePercent           float64
	ErrorBoostPercent       float64
	LatencyBoostThresholdMs int64
	LatencyBoostPercent     float64
}

// AudioPolicy carries a pending-cue bound; the audio trigger binder keeps no
// pending-cue queue and does not read MaxPendingCues.
type AudioPolicy struct {
	MaxPendingCues int
}

// Default returns the TelemetryPolicy used when an Engine is constructed
// without an explicit override.
func Default() TelemetryPolicy {
	return TelemetryPolicy{
		Health: HealthPolicy{
			ProbeTTL:                   2 * time.Second,
			SchedulerMinSamples:        10,
			SchedulerDegradedRatio:     0.50,
			SchedulerUnhealthyRatio:    0.80,
			ResourceDegradedTickCount:  256,
			ResourceUnhealthyTickCount: 512,
		},
		Tracing: TracingPolicy{SamplePercent: 20},
		Audio:   AudioPolicy{MaxPendingCues: 64},
	}
}

// Normalize returns a cleaned copy of p with out-of-range fields replaced by
// Default()'s values.
func (p TelemetryPolicy) Normalize() TelemetryPolicy {
	c := p
	if c.Health.ProbeTTL <= 0 {
		c.Health.ProbeTTL = 2 * time.Second
	}
	if c.Health.SchedulerMinSamples <= 0 {
		c.Health.SchedulerMinSamples = 10
	}
	if c.Health.SchedulerDegradedRatio <= 0 {
		c.Health.SchedulerDegradedRatio = 0.50
	}
	if c.Health.SchedulerUnhealthyRatio <= 0 {
		c.Health.SchedulerUnhealthyRatio = 0.80
	}
	if c.Health.ResourceDegradedTickCount <= 0 {
		c.Health.ResourceDegradedTickCount = 256
	}
	if c.Health.ResourceUnhealthyTickCount <= 0 {
		c.Health.ResourceUnhealthyTickCount = 512
	}
	if c.Tracing.SamplePercent < 0 {
		c.Tracing.SamplePercent = 0
	}
	if c.Tracing.SamplePercent > 100 {
		c.Tracing.SamplePercent = 100
	}
	if c.Audio.MaxPendingCues <= 0 {
		c.Audio.MaxPendingCues = 64
	}
	return c
}
