package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"groundtrack/engine/internal/scoring"
	"groundtrack/engine/models"
)

func weights() models.ScoreWeights {
	return models.DefaultScoreWeights()
}

func TestPerfectRunGradesA(t *testing.T) {
	a := scoring.New(weights(), 0, 0)
	a.Update(0, 1, scoring.TickInputs{
		PowerMarginPct:    80,
		DeltaVMarginByTag: map[string]float64{"csm": 100},
		EventsCompleted:   10,
		ManualStepCount:   5,
		AutoStepCount:     5,
	})
	view := a.Grade()
	assert.Equal(t, "A", view.Grade)
	assert.InDelta(t, 1.0, view.Breakdown.Events, 1e-9)
}

func TestFailedEventsLowerEventsScore(t *testing.T) {
	a := scoring.New(weights(), 0, 0)
	a.Update(0, 1, scoring.TickInputs{
		PowerMarginPct:  80,
		EventsCompleted: 1,
		EventsFailed:    1,
	})
	assert.InDelta(t, 0.5, a.Grade().Breakdown.Events, 1e-9)
}

func TestResourceMarginMinIsTracked(t *testing.T) {
	a := scoring.New(weights(), 0, 0)
	a.Update(0, 1, scoring.TickInputs{PowerMarginPct: 90})
	a.Update(1, 1, scoring.TickInputs{PowerMarginPct: 20})
	a.Update(2, 1, scoring.TickInputs{PowerMarginPct: 95})
	// resourcesScore should reflect the minimum seen (20%), not the latest.
	assert.InDelta(t, 0.2, a.Grade().Breakdown.Resources, 1e-9)
}

func TestThermalViolationSecondsAccumulate(t *testing.T) {
	a := scoring.New(weights(), 0, 0)
	a.Update(0, 1, scoring.TickInputs{ThermalViolation: true})
	a.Update(1, 1, scoring.TickInputs{ThermalViolation: true})
	a.Update(2, 1, scoring.TickInputs{ThermalViolation: false})
	assert.Equal(t, 2.0, a.ThermalViolationSeconds())
}

func TestManualFractionComputed(t *testing.T) {
	a := scoring.New(weights(), 0, 0)
	a.Update(0, 1, scoring.TickInputs{ManualStepCount: 3, AutoStepCount: 1})
	assert.InDelta(t, 0.75, a.Grade().Breakdown.Manual, 1e-9)
}

func TestTrendRecordsDeltasAtInterval(t *testing.T) {
	a := scoring.New(weights(), 10, 5)
	for i := 0; i < 25; i++ {
		a.Update(models.GET(i), 1, scoring.TickInputs{PowerMarginPct: 80, EventsCompleted: i})
	}
	view := a.Grade()
	assert.NotEmpty(t, view.Trend)
	assert.LessOrEqual(t, len(view.Trend), 5)
}

func TestPropellantUsedKgReportsConsumption(t *testing.T) {
	a := scoring.New(weights(), 0, 0)
	a.Update(0, 1, scoring.TickInputs{PropellantUsedKg: map[string]float64{"csm_sps": 1000}})
	a.Update(1, 1, scoring.TickInputs{PropellantUsedKg: map[string]float64{"csm_sps": 850}})
	used := a.PropellantUsedKg()
	assert.InDelta(t, 150, used["csm_sps"], 1e-9)
}
