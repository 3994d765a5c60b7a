package models_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"groundtrack/engine/models"
)

func TestErrorKindFatal(t *testing.T) {
	assert.True(t, models.KindConfig.Fatal())
	assert.True(t, models.KindInvariant.Fatal())
	assert.False(t, models.KindPrecondition.Fatal())
	assert.False(t, models.KindResource.Fatal())
	assert.False(t, models.KindAutopilot.Fatal())
}

func TestFaultErrorUnwrap(t *testing.T) {
	fault := models.NewFault(models.KindResource, "resources", "tank exhausted", models.ErrTankEmpty)
	assert.True(t, errors.Is(fault, models.ErrTankEmpty))
	assert.Equal(t, "resources: tank exhausted: models: propellant tank exhausted", fault.Error())
}

func TestConfigErrorMessage(t *testing.T) {
	err := &models.ConfigError{Field: "tickRate", Reason: "must be positive"}
	assert.Contains(t, err.Error(), "tickRate")
	assert.Contains(t, err.Error(), "must be positive")
}
