package resources_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundtrack/engine/internal/resources"
	"groundtrack/engine/models"
)

func budget() models.ConsumablesBudget {
	return models.ConsumablesBudget{
		Tanks: map[string]models.TankBudget{
			"csm_sps_kg": {InitialKg: 1000, ReserveKg: 50},
		},
		Power: models.PowerProfile{
			OutputKw:      2.0,
			LoadByPhaseKw: map[string]float64{"coast": 1.0, "burn": 1.9},
		},
		LifeSupport: models.LifeSupportBudget{
			O2InitialKg: 100, O2ConsumptionKgHr: 0.5,
			H2OInitialKg: 50, H2OConsumptionKgHr: 0.2,
		},
	}
}

func TestDrawPropellantSucceedsAndFails(t *testing.T) {
	m := resources.New(resources.DefaultConfig(), budget(), nil, nil)
	require.True(t, m.DrawPropellant("csm_sps_kg", 200))
	assert.False(t, m.DrawPropellant("csm_sps_kg", 10000))
}

func TestApplyDeltaStagesUntilTick(t *testing.T) {
	m := resources.New(resources.DefaultConfig(), budget(), nil, nil)
	m.ApplyDelta(models.ResourceDelta{Channel: "csm_sps_kg", Value: -50, Source: "test"})
	before := m.Snapshot().Channels["csm_sps_kg"].Value
	assert.Equal(t, 1000.0, before)

	m.Tick(0, 1)
	after := m.Snapshot().Channels["csm_sps_kg"].Value
	assert.Equal(t, 950.0, after)
}

func TestTankNeverExceedsInitialOrGoesNegative(t *testing.T) {
	m := resources.New(resources.DefaultConfig(), budget(), nil, nil)
	m.ApplyDelta(models.ResourceDelta{Channel: "csm_sps_kg", Value: 500})
	m.Tick(0, 1)
	assert.Equal(t, 1000.0, m.Snapshot().Channels["csm_sps_kg"].Value)

	m.ApplyDelta(models.ResourceDelta{Channel: "csm_sps_kg", Value: -5000})
	m.Tick(1, 1)
	assert.Equal(t, 0.0, m.Snapshot().Channels["csm_sps_kg"].Value)
}

func TestPowerMarginDerivation(t *testing.T) {
	m := resources.New(resources.DefaultConfig(), budget(), nil, nil)
	m.SetPhase("coast")
	m.Tick(0, 1)
	snap := m.Snapshot()
	assert.InDelta(t, 50.0, snap.Channels["power_margin_pct"].Value, 1e-9)
}

func TestRegisterFailureIsIdempotent(t *testing.T) {
	failures := []models.FailureDef{{
		ID:              "propellant_low",
		ImmediateEffect: []models.ResourceDelta{{Channel: "csm_sps_kg", Value: -10}},
	}}
	m := resources.New(resources.DefaultConfig(), budget(), failures, nil)
	require.NoError(t, m.RegisterFailure("propellant_low"))
	require.NoError(t, m.RegisterFailure("propellant_low"))
	m.Tick(0, 1)
	assert.Equal(t, 990.0, m.Snapshot().Channels["csm_sps_kg"].Value)
}

func TestThresholdBindingTriggersAndClears(t *testing.T) {
	cfg := resources.DefaultConfig()
	cfg.ThresholdFailureBinding = map[string]string{"csm_sps_kg": "propellant_critical"}
	cfg.Hysteresis = map[string]models.HysteresisBand{"csm_sps_kg": {TriggerThreshold: 100, ResetThreshold: 200}}
	failures := []models.FailureDef{{ID: "propellant_critical"}}
	m := resources.New(cfg, budget(), failures, nil)

	m.ApplyDelta(models.ResourceDelta{Channel: "csm_sps_kg", Value: -950})
	res := m.Tick(0, 1)
	assert.Contains(t, res.FailuresTriggered, "propellant_critical")

	m.ApplyDelta(models.ResourceDelta{Channel: "csm_sps_kg", Value: 150})
	res = m.Tick(1, 1)
	assert.Contains(t, res.FailuresCleared, "propellant_critical")
}

func TestHistorySnapshotIdempotentWithoutTick(t *testing.T) {
	cfg := resources.DefaultConfig()
	cfg.HistorySampleIntervalS = 1
	m := resources.New(cfg, budget(), nil, nil)
	m.Tick(0, 1)
	a := m.HistorySnapshot()
	b := m.HistorySnapshot()
	assert.Equal(t, a, b)
}

func TestCommsTransitionsAcquiringThenIdle(t *testing.T) {
	m := resources.New(resources.DefaultConfig(), budget(), nil, nil)
	m.SetComms([]models.CommsPassDef{{
		ID: "pass_1", OpensAt: 100, ClosesAt: 160, HandoverMinutes: 0.5,
	}})
	res := m.Tick(100, 1)
	require.Len(t, res.CommsTransitions, 1)
	assert.Equal(t, "acquiring", res.CommsTransitions[0].To)

	res = m.Tick(160, 1)
	assert.Equal(t, "idle", res.CommsTransitions[len(res.CommsTransitions)-1].To)
}
