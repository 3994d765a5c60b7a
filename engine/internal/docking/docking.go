// Package docking implements the §4.7 docking context: progress derivation
// against the bound activation event, per-gate runtime status, and the
// exponentially decaying RCS duty cycle.
package docking

import (
	"math"

	"groundtrack/engine/models"
)

// EventSource resolves the activation event's definition, status, and the
// GET it was activated at; satisfied by *scheduler.Scheduler.
type EventSource interface {
	GetEventByID(eventID string) (models.EventDef, models.EventStatus, bool)
	ActivatedAt(eventID string) (models.GET, bool)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// gateRuntime is the per-gate runtime state §3 "Docking gate" requires:
// status latched across ticks plus the GET each gate first entered active
// and complete, independent of whatever gate is presently being approached.
type gateRuntime struct {
	status         string
	activatedAt    models.GET
	hasActivatedAt bool
	completedAt    models.GET
	hasCompletedAt bool
	rangeMeters    float64
	closingRateMps float64
	withinTol      bool
}

// Manager derives docking progress, per-gate status, and RCS duty cycle from
// the bound activation event's lifecycle each tick.
type Manager struct {
	cfg       models.DockingConfig
	scheduler EventSource
	tau       float64

	duty         float64
	pendingPulse float64

	currentGateID string
	gates         []gateRuntime
}

func New(cfg models.DockingConfig, defaultDutyCycleWindow float64, scheduler EventSource) *Manager {
	tau := cfg.DutyCycleWindowSeconds
	if tau <= 0 {
		tau = defaultDutyCycleWindow
	}
	gates := make([]gateRuntime, len(cfg.Gates))
	for i := range gates {
		gates[i].status = "pending"
	}
	return &Manager{cfg: cfg, scheduler: scheduler, tau: tau, gates: gates}
}

// RecordRCSUsage accumulates a pulse contribution to be folded into the
// duty-cycle decay on the next Tick.
func (m *Manager) RecordRCSUsage(usage float64) {
	m.pendingPulse += usage
}

// eventDef fetches the bound activation event's definition, if any.
func (m *Manager) eventDef() (def models.EventDef, haveDef bool) {
	def, _, ok := m.scheduler.GetEventByID(m.cfg.ActivationEventID)
	return def, ok
}

// progress derives the overall 0..1 docking progress against def.
func (m *Manager) progress(now models.GET, def models.EventDef) float64 {
	_, status, ok := m.scheduler.GetEventByID(m.cfg.ActivationEventID)
	if !ok || status != models.EventActive {
		return 0
	}
	if def.ExpectedDurationSecs > 0 {
		activatedAt, ok := m.scheduler.ActivatedAt(m.cfg.ActivationEventID)
		if !ok {
			return 0
		}
		return clamp01(float64(now.Sub(activatedAt)) / float64(def.ExpectedDurationSecs))
	}
	denom := float64(def.ClosesAt.Sub(def.OpensAt))
	if denom <= 0 {
		return 0
	}
	return clamp01(float64(now.Sub(def.OpensAt)) / denom)
}

// Tick re-derives per-gate status, range, and duty cycle from the activation
// event's present progress, latching each gate's activated_at/completed_at
// the first tick it crosses into that state.
func (m *Manager) Tick(now models.GET, dt float64) {
	def, haveDef := m.eventDef()
	var progress float64
	if haveDef {
		progress = m.progress(now, def)
	}

	m.currentGateID = ""
	for i, gate := range m.cfg.Gates {
		span := gate.CompletionProgress - gate.ActivationProgress
		var gateProgress float64
		if span > 0 {
			gateProgress = clamp01((progress - gate.ActivationProgress) / span)
		}
		var status string
		switch {
		case progress < gate.ActivationProgress:
			status = "pending"
		case progress >= gate.CompletionProgress:
			status = "complete"
		default:
			status = "active"
		}

		rt := &m.gates[i]
		rt.status = status
		if status != "pending" {
			rt.rangeMeters = gate.RangeStartMeters + (gate.RangeEndMeters-gate.RangeStartMeters)*gateProgress
			rt.closingRateMps = gate.TargetClosingRate
			rt.withinTol = math.Abs(rt.closingRateMps-gate.TargetClosingRate) <= gate.ToleranceMps
			if !rt.hasActivatedAt {
				rt.hasActivatedAt = true
				rt.activatedAt = now
			}
		}
		if status == "complete" && !rt.hasCompletedAt {
			rt.hasCompletedAt = true
			rt.completedAt = now
		}
		if status != "pending" {
			m.currentGateID = gate.ID
		}
		if status == "active" {
			break
		}
	}
	if m.currentGateID == "" && len(m.cfg.Gates) > 0 {
		m.currentGateID = m.cfg.Gates[0].ID
	}

	decay := 1.0
	if m.tau > 0 {
		decay = math.Exp(-dt / m.tau)
	}
	m.duty = m.duty*decay + m.pendingPulse
	m.pendingPulse = 0
}

// deadlineSeconds computes the GET by which a gate is expected to complete
// per the bound event's mission-design window, independent of the gate's
// live progress basis: open + (close-open) x completion_progress.
func deadlineSeconds(def models.EventDef, haveDef bool, gate models.DockingGateDef) float64 {
	if !haveDef {
		return 0
	}
	window := float64(def.ClosesAt.Sub(def.OpensAt))
	return float64(def.OpensAt) + window*gate.CompletionProgress
}

// Snapshot projects the present docking state for the Frame, including
// every gate's individually queryable runtime status.
func (m *Manager) Snapshot() models.DockingSummary {
	dutyPct := m.duty * 100
	if dutyPct < 0 {
		dutyPct = 0
	}
	if dutyPct > 100 {
		dutyPct = 100
	}

	def, haveDef := m.eventDef()

	var current models.DockingGateStatus
	gateViews := make([]models.DockingGateStatus, len(m.cfg.Gates))
	for i, gate := range m.cfg.Gates {
		rt := m.gates[i]
		view := models.DockingGateStatus{
			ID:              gate.ID,
			Status:          rt.status,
			DeadlineSeconds: deadlineSeconds(def, haveDef, gate),
			RangeMeters:     rt.rangeMeters,
			ClosingRateMps:  rt.closingRateMps,
			WithinTolerance: rt.withinTol,
		}
		if rt.hasActivatedAt {
			at := rt.activatedAt
			view.ActivatedAt = &at
		}
		if rt.hasCompletedAt {
			at := rt.completedAt
			view.CompletedAt = &at
		}
		gateViews[i] = view
		if gate.ID == m.currentGateID {
			current = view
		}
	}

	return models.DockingSummary{
		CurrentGateID:   m.currentGateID,
		RangeMeters:     current.RangeMeters,
		ClosingRateMps:  current.ClosingRateMps,
		WithinTolerance: current.WithinTolerance,
		DutyCyclePct:    dutyPct,
		Gates:           gateViews,
	}
}

// GateStatus looks up one gate's runtime status by id, for callers (tests,
// scoring) that need a single gate rather than the whole snapshot.
func (m *Manager) GateStatus(gateID string) (models.DockingGateStatus, bool) {
	for _, view := range m.Snapshot().Gates {
		if view.ID == gateID {
			return view, true
		}
	}
	return models.DockingGateStatus{}, false
}
