package health_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"groundtrack/engine/telemetry/health"
)

func TestEvaluateRollsUpWorstStatus(t *testing.T) {
	eval := health.NewEvaluator(time.Millisecond,
		health.ProbeFunc(func(context.Context) health.ProbeResult { return health.Healthy("scheduler") }),
		health.ProbeFunc(func(context.Context) health.ProbeResult { return health.Degraded("resources", "power margin caution") }),
	)
	snap := eval.Evaluate(context.Background())
	assert.Equal(t, health.StatusDegraded, snap.Overall)
	assert.Len(t, snap.Probes, 2)
}

func TestEvaluateUnhealthyWins(t *testing.T) {
	eval := health.NewEvaluator(time.Millisecond,
		health.ProbeFunc(func(context.Context) health.ProbeResult { return health.Degraded("resources", "caution") }),
		health.ProbeFunc(func(context.Context) health.ProbeResult { return health.Unhealthy("autopilot", "abort rate exceeded") }),
	)
	snap := eval.Evaluate(context.Background())
	assert.Equal(t, health.StatusUnhealthy, snap.Overall)
}

func TestEvaluateCachesWithinTTL(t *testing.T) {
	calls := 0
	eval := health.NewEvaluator(time.Hour, health.ProbeFunc(func(context.Context) health.ProbeResult {
		calls++
		return health.Healthy("scheduler")
	}))
	eval.Evaluate(context.Background())
	eval.Evaluate(context.Background())
	assert.Equal(t, 1, calls)
}

func TestForceInvalidateRecomputes(t *testing.T) {
	calls := 0
	eval := health.NewEvaluator(time.Hour, health.ProbeFunc(func(context.Context) health.ProbeResult {
		calls++
		return health.Healthy("scheduler")
	}))
	eval.Evaluate(context.Background())
	eval.ForceInvalidate()
	eval.Evaluate(context.Background())
	assert.Equal(t, 2, calls)
}

func TestEvaluateNoProbesIsUnknown(t *testing.T) {
	eval := health.NewEvaluator(time.Millisecond)
	snap := eval.Evaluate(context.Background())
	assert.Equal(t, health.StatusUnknown, snap.Overall)
}
