package engine

import (
	"fmt"

	"groundtrack/engine/models"
)

// Config is the public configuration surface for the Engine facade. It
// narrows and normalizes every subsystem's tunables into one typed struct,
// the way the teacher's facade Config narrowed pipeline/resource/asset
// configuration into one value consumed by New().
type Config struct {
	// TickRate is the number of simulated ticks per GET second; Δt = 1/TickRate.
	TickRate float64 `json:"tickRate" yaml:"tickRate"`

	// HUDIntervalSeconds is the GET interval between emitted UI frames.
	// DisableHUD suppresses frame emission entirely (still computed for
	// snapshotting, just never pushed to an observer).
	HUDIntervalSeconds float64 `json:"hudIntervalSeconds" yaml:"hudIntervalSeconds"`
	DisableHUD         bool    `json:"disableHud" yaml:"disableHud"`
	Quiet              bool    `json:"quiet" yaml:"quiet"`

	// ManualChecklists forces every checklist step to require an explicit
	// ActionChecklistAck regardless of the per-checklist AutoAdvance flag.
	ManualChecklists bool `json:"manualChecklists" yaml:"manualChecklists"`

	// ChecklistStepSeconds is the default auto-advance duration applied to
	// a checklist step when its ChecklistDef.StepDurationSeconds is zero.
	ChecklistStepSeconds int64 `json:"checklistStepSeconds" yaml:"checklistStepSeconds"`

	// LogIntervalSeconds is the GET interval between periodic mission-log
	// snapshot entries (independent of fault/event-driven log entries).
	LogIntervalSeconds float64 `json:"logIntervalSeconds" yaml:"logIntervalSeconds"`
	LogFile            string  `json:"logFile,omitempty" yaml:"logFile,omitempty"`
	LogPretty          bool    `json:"logPretty" yaml:"logPretty"`

	// ManualScriptPath/RecordManualScriptPath back the --manual-script and
	// --record-manual-script CLI flags; the Engine itself only consumes an
	// already-decoded models.ManualScript (decoding is a CLI concern).
	ManualScriptPath       string `json:"-" yaml:"-"`
	RecordManualScriptPath string `json:"-" yaml:"-"`

	// MetricsEnabled/MetricsBackend/PrometheusListenAddr select and
	// configure the telemetry metrics.Provider.
	MetricsEnabled       bool   `json:"metricsEnabled" yaml:"metricsEnabled"`
	MetricsBackend       string `json:"metricsBackend" yaml:"metricsBackend"`
	PrometheusListenAddr string `json:"prometheusListenAddr,omitempty" yaml:"prometheusListenAddr,omitempty"`

	// ManualActionMaxRetries is the default retry budget applied to a
	// ManualAction with no MaxRetries of its own.
	ManualActionMaxRetries int `json:"manualActionMaxRetries" yaml:"manualActionMaxRetries"`

	// DockingDutyCycleWindowSeconds is the default RCS duty-cycle decay
	// window applied when a mission's DockingConfig leaves it at zero.
	DockingDutyCycleWindowSeconds float64 `json:"dockingDutyCycleWindowSeconds" yaml:"dockingDutyCycleWindowSeconds"`

	// ScoreWeights configures the §4.9 weighted grade breakdown when a
	// mission's WorkspacePreset does not override it.
	ScoreWeights models.ScoreWeights `json:"scoreWeights" yaml:"scoreWeights"`

	// AlertThresholds is the engine-level default, overridden per-mission
	// by MissionData.Consumables.Alerts when non-zero.
	AlertThresholds models.AlertThresholds `json:"alertThresholds" yaml:"alertThresholds"`

	// Hysteresis keys a resource channel to its reset/trigger band; see
	// the Open Question resolution in DESIGN.md.
	Hysteresis map[string]models.HysteresisBand `json:"hysteresis,omitempty" yaml:"hysteresis,omitempty"`

	// RoundDigits is the decimal precision the UI frame builder applies to
	// every numeric Frame field (§4.10 "all number rounding").
	RoundDigits int `json:"roundDigits" yaml:"roundDigits"`

	// TankLabels/StageLabels override the channel/stage id shown by the UI
	// frame builder; an id absent from the map falls back to itself.
	TankLabels  map[string]string `json:"tankLabels,omitempty" yaml:"tankLabels,omitempty"`
	StageLabels map[string]string `json:"stageLabels,omitempty" yaml:"stageLabels,omitempty"`

	// OrbitAlertThresholds grades the periapsis reading from an optional
	// OrbitProvider; the zero value falls back to
	// models.DefaultOrbitAlertThresholds().
	OrbitAlertThresholds models.OrbitAlertThresholds `json:"orbitAlertThresholds" yaml:"orbitAlertThresholds"`
}

// Defaults returns a Config with the §4/§6-documented defaults: 20 Hz tick
// rate, 600 second HUD cadence, 15 second checklist step fallback, 3600
// second mission-log snapshot interval, 3 manual-action retries, 60 second
// RCS duty-cycle window.
func Defaults() Config {
	return Config{
		TickRate:                      20,
		HUDIntervalSeconds:            600,
		ChecklistStepSeconds:          15,
		LogIntervalSeconds:            3600,
		MetricsEnabled:                false,
		MetricsBackend:                "prom",
		ManualActionMaxRetries:        3,
		DockingDutyCycleWindowSeconds: 60,
		ScoreWeights:                  models.DefaultScoreWeights(),
		AlertThresholds:               models.DefaultAlertThresholds(),
		RoundDigits:                   2,
		OrbitAlertThresholds:          models.DefaultOrbitAlertThresholds(),
	}
}

// Validate reports the first invalid field it finds as a *models.ConfigError.
// Unknown MetricsBackend values are rejected rather than silently falling
// back, per the ambient-stack configuration policy.
func (c Config) Validate() error {
	if c.TickRate <= 0 {
		return &models.ConfigError{Field: "tickRate", Reason: "must be greater than zero"}
	}
	if c.HUDIntervalSeconds < 0 {
		return &models.ConfigError{Field: "hudIntervalSeconds", Reason: "must not be negative"}
	}
	if c.ChecklistStepSeconds < 0 {
		return &models.ConfigError{Field: "checklistStepSeconds", Reason: "must not be negative"}
	}
	if c.LogIntervalSeconds < 0 {
		return &models.ConfigError{Field: "logIntervalSeconds", Reason: "must not be negative"}
	}
	if c.ManualActionMaxRetries < 0 {
		return &models.ConfigError{Field: "manualActionMaxRetries", Reason: "must not be negative"}
	}
	if c.DockingDutyCycleWindowSeconds < 0 {
		return &models.ConfigError{Field: "dockingDutyCycleWindowSeconds", Reason: "must not be negative"}
	}
	switch c.MetricsBackend {
	case "prom", "otel", "noop", "":
	default:
		return &models.ConfigError{Field: "metricsBackend", Reason: fmt.Sprintf("unknown backend %q, want prom|otel|noop", c.MetricsBackend)}
	}
	for channel, band := range c.Hysteresis {
		if band.ResetThreshold > band.TriggerThreshold {
			return &models.ConfigError{Field: "hysteresis." + channel, Reason: "resetThreshold must not exceed triggerThreshold"}
		}
	}
	return nil
}
