package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"groundtrack/engine"
	"groundtrack/engine/models"
)

func TestDefaultsValidate(t *testing.T) {
	assert.NoError(t, engine.Defaults().Validate())
}

func TestValidateRejectsBadTickRate(t *testing.T) {
	cfg := engine.Defaults()
	cfg.TickRate = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownMetricsBackend(t *testing.T) {
	cfg := engine.Defaults()
	cfg.MetricsBackend = "graphite"
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsInvertedHysteresis(t *testing.T) {
	cfg := engine.Defaults()
	cfg.Hysteresis = map[string]models.HysteresisBand{
		"sps_propellant_kg": {TriggerThreshold: 10, ResetThreshold: 20},
	}
	assert.Error(t, cfg.Validate())
}
