package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundtrack/engine"
	"groundtrack/engine/models"
)

// nominalMission builds a small two-event mission: an always-armable event
// completed by its checklist alone, and a burn event bound to an autopilot
// program. Shared by the seed-scenario tests below.
func nominalMission(massFlow, budgetKg float64) models.MissionData {
	return models.MissionData{
		ID:    "test-mission",
		Title: "Seed Scenario Mission",
		Events: []models.EventDef{
			{
				ID:          "EVT_CHECKLIST",
				Phase:       "test",
				OpensAt:     0,
				ClosesAt:    600,
				Mandatory:   true,
				ChecklistID: "CL_1",
			},
			{
				ID:          "EVT_BURN",
				Phase:       "test",
				OpensAt:     10,
				ClosesAt:    600,
				Mandatory:   true,
				AutopilotID: "AP_BURN",
			},
		},
		Checklists: []models.ChecklistDef{
			{
				ID:    "CL_1",
				Title: "Quick checklist",
				Steps: []models.ChecklistStepDef{
					{ID: "S1", Order: 1, Callout: "verify"},
				},
				AutoAdvance:         boolPtr(true),
				StepDurationSeconds: 5,
			},
		},
		AutopilotPrograms: []models.AutopilotProgramDef{
			{
				ID:               "AP_BURN",
				Stage:            "csm_sps_kg",
				MassFlowKgPerSec: massFlow,
				Commands: []models.AutopilotCommand{
					{Kind: models.CmdThrottle, Setpoint: 1.0, RampSeconds: 1, DurationSeconds: 30},
					{Kind: models.CmdComplete},
				},
			},
		},
		FailureTaxonomy: []models.FailureDef{
			{ID: "power_margin_pct", Classification: models.ClassRecoverable},
		},
		Consumables: models.ConsumablesBudget{
			Tanks: map[string]models.TankBudget{
				"csm_sps_kg": {InitialKg: budgetKg},
			},
			Power: models.PowerProfile{
				OutputKw:      100,
				LoadByPhaseKw: map[string]float64{"test": 70},
			},
			Alerts: models.DefaultAlertThresholds(),
		},
	}
}

func boolPtr(b bool) *bool { return &b }

// S1-style nominal run: a short slice produces frames carrying
// events.counts with non-negative values and a non-empty missionLog.entries,
// per §8 S1's literal testable-property paths.
func TestRunNominalSliceProducesFramesAndLog(t *testing.T) {
	mission := nominalMission(1.0, 1000)
	cfg := engine.Defaults()
	cfg.HUDIntervalSeconds = 10
	cfg.LogIntervalSeconds = 0

	e, err := engine.New(mission, nil, cfg, nil)
	require.NoError(t, err)

	summary := e.Run(context.Background(), 120)

	assert.Nil(t, summary.StoppedByFault)
	frame := e.LastFrame()
	counts := frame.Events.Counts
	assert.GreaterOrEqual(t, counts.Completed, 0)
	assert.GreaterOrEqual(t, counts.Failed, 0)
	assert.GreaterOrEqual(t, counts.Active, 0)
	assert.GreaterOrEqual(t, counts.Pending, 0)
	assert.NotEmpty(t, frame.MissionLog.Entries)
	assert.NotEmpty(t, summary.Report)
}

// S4-style propellant exhaustion: an autopilot burn requiring more
// propellant than budgeted aborts, fails its bound event, and is reflected
// in the frame's failed-event count.
func TestPropellantExhaustionAbortsAutopilotAndFailsEvent(t *testing.T) {
	// mass flow 50 kg/s over the 1s ramp to full throttle alone needs ~26kg;
	// budget only 10kg, guaranteeing exhaustion mid-burn.
	mission := nominalMission(50.0, 10)
	cfg := engine.Defaults()
	cfg.HUDIntervalSeconds = 5

	e, err := engine.New(mission, nil, cfg, nil)
	require.NoError(t, err)

	summary := e.Run(context.Background(), 60)

	// Autopilot aborts are recoverable, not fatal: the run completes.
	assert.Nil(t, summary.StoppedByFault)
	frame := e.LastFrame()
	assert.GreaterOrEqual(t, frame.Events.Counts.Failed, 1)
}

// S6-style deterministic replay: two runs of the same mission and config
// produce byte-identical terminal scores and frame event counts.
func TestDeterministicReplayProducesIdenticalResults(t *testing.T) {
	mission := nominalMission(1.0, 1000)
	cfg := engine.Defaults()
	cfg.HUDIntervalSeconds = 10

	run := func() engine.RunSummary {
		e, err := engine.New(mission, nil, cfg, nil)
		require.NoError(t, err)
		return e.Run(context.Background(), 100)
	}

	first := run()
	second := run()

	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.EndedAt, second.EndedAt)
}

// S5-style periapsis alert grading: a caller-supplied orbit provider
// reporting a low periapsis surfaces a standalone caution/warning alert
// with no mission-defined docking or entry config involved.
func TestOrbitProviderLowPeriapsisSurfacesAlert(t *testing.T) {
	mission := nominalMission(1.0, 1000)
	cfg := engine.Defaults()
	cfg.HUDIntervalSeconds = 1

	e, err := engine.New(mission, nil, cfg, nil)
	require.NoError(t, err)

	e.WithOrbitProvider(func(now models.GET) (models.TrajectorySummary, bool) {
		return models.TrajectorySummary{AltitudeKm: 120, VelocityMps: 7600, PeriapsisKm: 50, ApoapsisKm: 300}, true
	})

	summary := e.Run(context.Background(), 5)
	assert.Nil(t, summary.StoppedByFault)

	frame := e.LastFrame()
	require.NotNil(t, frame.Trajectory)
	assert.Equal(t, 50.0, frame.Trajectory.PeriapsisKm)

	found := false
	for _, a := range frame.Alerts {
		if a.Source == "orbit_periapsis_low" {
			found = true
		}
	}
	assert.True(t, found, "expected a low-periapsis alert in the frame")
}

func TestConfigValidationRejectedBeforeRun(t *testing.T) {
	mission := nominalMission(1.0, 1000)
	cfg := engine.Defaults()
	cfg.TickRate = 0

	_, err := engine.New(mission, nil, cfg, nil)
	require.Error(t, err)
	var cfgErr *models.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
