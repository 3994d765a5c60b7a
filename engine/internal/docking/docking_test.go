package docking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundtrack/engine/internal/docking"
	"groundtrack/engine/models"
)

type stubScheduler struct {
	def         models.EventDef
	status      models.EventStatus
	activatedAt models.GET
	activated   bool
}

func (s *stubScheduler) GetEventByID(id string) (models.EventDef, models.EventStatus, bool) {
	return s.def, s.status, true
}

func (s *stubScheduler) ActivatedAt(id string) (models.GET, bool) {
	return s.activatedAt, s.activated
}

func cfg() models.DockingConfig {
	return models.DockingConfig{
		ActivationEventID: "evt_dock",
		Gates: []models.DockingGateDef{
			{ID: "gate_1", RangeStartMeters: 1000, RangeEndMeters: 500, TargetClosingRate: 1.0, ToleranceMps: 0.2, ActivationProgress: 0, CompletionProgress: 0.5},
			{ID: "gate_2", RangeStartMeters: 500, RangeEndMeters: 0, TargetClosingRate: 0.3, ToleranceMps: 0.1, ActivationProgress: 0.5, CompletionProgress: 1.0},
		},
	}
}

func TestProgressZeroWhenEventNotActive(t *testing.T) {
	sched := &stubScheduler{def: models.EventDef{ID: "evt_dock", ExpectedDurationSecs: 100}, status: models.EventPending}
	m := docking.New(cfg(), 60, sched)
	m.Tick(50, 1)
	snap := m.Snapshot()
	assert.Equal(t, "gate_1", snap.CurrentGateID)
}

func TestGateTransitionsAsProgressAdvances(t *testing.T) {
	sched := &stubScheduler{
		def:         models.EventDef{ID: "evt_dock", ExpectedDurationSecs: 100},
		status:      models.EventActive,
		activatedAt: 0,
		activated:   true,
	}
	m := docking.New(cfg(), 60, sched)

	m.Tick(25, 1) // progress 0.25 -> gate_1 active
	assert.Equal(t, "gate_1", m.Snapshot().CurrentGateID)

	m.Tick(75, 1) // progress 0.75 -> gate_2 active
	assert.Equal(t, "gate_2", m.Snapshot().CurrentGateID)
}

// TestGateDeadlineAndPerGateStatusAreIndependentlyQueryable reproduces
// spec.md scenario S2: gate GATE_500M has already completed by the time
// gate GATE_150M is active, but its status/deadline must still be
// queryable rather than overwritten by the current gate's scalars.
func TestGateDeadlineAndPerGateStatusAreIndependentlyQueryable(t *testing.T) {
	open := models.MustParseGET("125:40:00")
	closeGET := models.MustParseGET("128:30:00")
	activatedAt := models.MustParseGET("125:50:00")
	now := models.MustParseGET("126:45:00")

	dockingCfg := models.DockingConfig{
		ActivationEventID: "LM_ASCENT_030",
		Gates: []models.DockingGateDef{
			{ID: "GATE_500M", RangeStartMeters: 1000, RangeEndMeters: 500, TargetClosingRate: -1.5, ToleranceMps: 0.3, ActivationProgress: 0.0, CompletionProgress: 0.3},
			{ID: "GATE_150M", RangeStartMeters: 500, RangeEndMeters: 150, TargetClosingRate: -0.9, ToleranceMps: 0.2, ActivationProgress: 0.3, CompletionProgress: 0.7},
			{ID: "GATE_CONTACT", RangeStartMeters: 150, RangeEndMeters: 0, TargetClosingRate: -0.1, ToleranceMps: 0.05, ActivationProgress: 0.9, CompletionProgress: 1.0},
		},
	}
	sched := &stubScheduler{
		def: models.EventDef{
			ID: "LM_ASCENT_030", OpensAt: open, ClosesAt: closeGET, ExpectedDurationSecs: 7200,
		},
		status:      models.EventActive,
		activatedAt: activatedAt,
		activated:   true,
	}
	m := docking.New(dockingCfg, 60, sched)
	m.Tick(now, 1)

	snap := m.Snapshot()
	assert.Equal(t, "GATE_150M", snap.CurrentGateID)
	assert.Less(t, snap.RangeMeters, 500.0)
	assert.Equal(t, -0.9, snap.ClosingRateMps)

	gate500, ok := m.GateStatus("GATE_500M")
	require.True(t, ok)
	assert.Equal(t, "complete", gate500.Status)
	wantDeadline := float64(open) + float64(closeGET.Sub(open))*0.3
	assert.InDelta(t, wantDeadline, gate500.DeadlineSeconds, 0.001)
	require.NotNil(t, gate500.CompletedAt)
	assert.Equal(t, now, *gate500.CompletedAt)
}

func TestRCSDutyCycleDecaysOverTime(t *testing.T) {
	sched := &stubScheduler{def: models.EventDef{ID: "evt_dock", ExpectedDurationSecs: 100}, status: models.EventPending}
	m := docking.New(cfg(), 10, sched)

	m.RecordRCSUsage(0.5)
	m.Tick(0, 1)
	first := m.Snapshot().DutyCyclePct
	require.Greater(t, first, 0.0)

	m.Tick(1, 1) // no new usage, should decay
	second := m.Snapshot().DutyCyclePct
	assert.Less(t, second, first)
}
