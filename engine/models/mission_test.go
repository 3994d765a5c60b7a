package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundtrack/engine/models"
)

func TestPredicateIsEventPredicate(t *testing.T) {
	event := models.Predicate{EventID: "tli_burn", RequiredState: models.EventComplete}
	resource := models.Predicate{Channel: "sps_propellant_kg", Comparator: models.CmpGE, Threshold: 100}

	assert.True(t, event.IsEventPredicate())
	assert.False(t, resource.IsEventPredicate())
}

func TestDefaultAlertThresholds(t *testing.T) {
	th := models.DefaultAlertThresholds()
	assert.Less(t, th.PowerMarginWarningPct, th.PowerMarginCautionPct)
	assert.Less(t, th.PropellantWarningPct, th.PropellantCautionPct)
}

func TestDefaultScoreWeightsSumToOne(t *testing.T) {
	w := models.DefaultScoreWeights()
	total := w.Events + w.Resources + w.Faults + w.Manual
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestEventDefJSONRoundTrip(t *testing.T) {
	ev := models.EventDef{
		ID:       "tli_burn",
		Phase:    "translunar_injection",
		OpensAt:  models.MustParseGET("002:30:00"),
		ClosesAt: models.MustParseGET("002:35:00"),
		Precondition: models.Precondition{
			All: []models.Predicate{{EventID: "tli_pad", RequiredState: models.EventComplete}},
		},
		Mandatory: true,
	}

	b, err := json.Marshal(ev)
	require.NoError(t, err)

	var round models.EventDef
	require.NoError(t, json.Unmarshal(b, &round))
	assert.Equal(t, ev, round)
}
