package autopilot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundtrack/engine/internal/autopilot"
	"groundtrack/engine/models"
)

type stubSource struct {
	allow bool
	drawn float64
}

func (s *stubSource) DrawPropellant(tank string, kg float64) bool {
	s.drawn += kg
	return s.allow
}

func simpleProgram() models.AutopilotProgramDef {
	return models.AutopilotProgramDef{
		Stage:            "csm_sps_kg",
		MassFlowKgPerSec: 10,
		Commands: []models.AutopilotCommand{
			{Kind: models.CmdUllage, DurationSeconds: 2},
			{Kind: models.CmdThrottle, Setpoint: 1.0, RampSeconds: 2},
			{Kind: models.CmdDSKYMacro, MacroID: "V16N68"},
			{Kind: models.CmdComplete},
		},
	}
}

func TestUllagePhaseConsumesNoPropellant(t *testing.T) {
	src := &stubSource{allow: true}
	r := autopilot.New(src)
	require.NoError(t, r.Start("evt_1", "prog_1", simpleProgram()))

	r.Tick(0, 1)
	assert.Equal(t, 0.0, src.drawn)
	view, ok := r.Snapshot()
	require.True(t, ok)
	assert.Equal(t, models.CmdUllage, view.CurrentCommand)
}

func TestThrottleRampDrawsPropellantProportionally(t *testing.T) {
	src := &stubSource{allow: true}
	r := autopilot.New(src)
	require.NoError(t, r.Start("evt_1", "prog_1", simpleProgram()))

	r.Tick(0, 1) // ullage half
	r.Tick(0, 1) // ullage complete, enters throttle
	r.Tick(0, 1) // throttle ramp tick 1, 50% ramp
	assert.Greater(t, src.drawn, 0.0)
}

func TestAbortsWhenPropellantExhausted(t *testing.T) {
	src := &stubSource{allow: false}
	r := autopilot.New(src)
	require.NoError(t, r.Start("evt_1", "prog_1", simpleProgram()))

	r.Tick(0, 2) // finish ullage
	faults := r.Tick(0, 1)
	require.Len(t, faults, 1)
	assert.Equal(t, models.KindAutopilot, faults[0].Kind)
	assert.True(t, r.IsComplete("evt_1"))
	reason, aborted := r.Aborted("evt_1")
	assert.True(t, aborted)
	assert.Equal(t, "propellant exhausted", reason)
}

func TestDSKYMacroRecordedAndDecomposed(t *testing.T) {
	src := &stubSource{allow: true}
	r := autopilot.New(src)
	require.NoError(t, r.Start("evt_1", "prog_1", simpleProgram()))

	for i := 0; i < 10; i++ {
		r.Tick(0, 1)
	}
	macros := r.RecentMacros()
	require.Len(t, macros, 1)
	assert.Equal(t, 16, macros[0].Verb)
	assert.Equal(t, 68, macros[0].Noun)
}

func TestProgramCompletesAndIsRemovedFromSnapshot(t *testing.T) {
	src := &stubSource{allow: true}
	r := autopilot.New(src)
	require.NoError(t, r.Start("evt_1", "prog_1", simpleProgram()))

	for i := 0; i < 10; i++ {
		r.Tick(0, 1)
	}
	assert.True(t, r.IsComplete("evt_1"))
	_, ok := r.Snapshot()
	assert.False(t, ok)
}

func TestPrimarySelectionPicksSmallestRemaining(t *testing.T) {
	src := &stubSource{allow: true}
	r := autopilot.New(src)
	long := simpleProgram()
	long.Commands[0].DurationSeconds = 100
	short := simpleProgram()
	short.Commands[0].DurationSeconds = 1

	require.NoError(t, r.Start("evt_long", "prog_1", long))
	require.NoError(t, r.Start("evt_short", "prog_2", short))

	view, ok := r.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "evt_short", view.ID)
}

func TestStartTwiceOnSameEventFails(t *testing.T) {
	r := autopilot.New(&stubSource{allow: true})
	require.NoError(t, r.Start("evt_1", "prog_1", simpleProgram()))
	err := r.Start("evt_1", "prog_2", simpleProgram())
	assert.Error(t, err)
}

func TestAbortMarksInstanceDoneWithReason(t *testing.T) {
	r := autopilot.New(&stubSource{allow: true})
	require.NoError(t, r.Start("evt_1", "prog_1", simpleProgram()))
	r.Abort("evt_1", "checklist prerequisite failed")

	assert.True(t, r.IsComplete("evt_1"))
	reason, aborted := r.Aborted("evt_1")
	assert.True(t, aborted)
	assert.Equal(t, "checklist prerequisite failed", reason)
}
