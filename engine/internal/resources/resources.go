// Package resources implements the §4.3 resource system: propellant tanks,
// Δv margins, power margin, cryogenic boil-off, thermal state, life support,
// and the communications-pass state machine. All mutation happens through
// ApplyDelta (staged) and Tick (committed); Snapshot/HistorySnapshot are the
// only read surfaces, returned by value per the ownership discipline of §5.
package resources

import (
	"context"
	"fmt"

	"groundtrack/engine/models"
	"groundtrack/engine/telemetry/health"
	"groundtrack/engine/telemetry/logging"
)

// Config tunes alerting and history sampling; thresholds are configuration,
// never hard-coded (§4.3 "Alert derivation").
type Config struct {
	Alerts                  models.AlertThresholds
	Hysteresis              map[string]models.HysteresisBand
	ThresholdFailureBinding map[string]string // resource channel -> failure id
	HistoryEnabled          bool
	HistorySampleIntervalS  float64
	HistoryMaxSamples       int
}

// DefaultConfig mirrors engine.Defaults()'s resource-facing fields.
func DefaultConfig() Config {
	return Config{
		Alerts:                 models.DefaultAlertThresholds(),
		HistoryEnabled:         true,
		HistorySampleIntervalS: 60,
		HistoryMaxSamples:      1440,
	}
}

type tankState struct {
	budget  models.TankBudget
	current float64
}

type deltaVState struct {
	base       float64
	adjustment float64
}

type commsState struct {
	def          models.CommsPassDef
	status       string // idle | acquiring | active | losing
	acquireFired bool
	lossFired    bool
}

// CommsTransition records a state-machine edge the audio trigger binder
// consumes to fire cue_on_acquire/cue_on_loss exactly once per pass.
type CommsTransition struct {
	PassID string
	From   string
	To     string
	At     models.GET
}

// TickResult reports what changed during one Tick call, consumed by the
// scheduler (failure triage) and the audio trigger binder (comms cues).
type TickResult struct {
	FailuresTriggered []string
	FailuresCleared   []string
	CommsTransitions  []CommsTransition
}

// Manager owns every resource channel. It is not safe for concurrent use;
// the tick loop is its sole caller (§5 "single-threaded and cooperative").
type Manager struct {
	cfg      Config
	budget   models.ConsumablesBudget
	failures map[string]models.FailureDef
	logger   logging.Logger

	tanks        map[string]tankState
	deltaV       map[string]deltaVState
	powerOutput  float64
	powerLoad    float64
	powerMargin  float64
	thermalTag   string
	ptcActive    bool
	o2Kg         float64
	h2oKg        float64
	liOHKg       float64
	co2ScrubKg   float64
	comms        []commsState
	phase        string
	pending      []models.ResourceDelta
	activeFaults map[string]bool

	history map[string]*ringBuffer
	elapsed float64 // seconds since last history sample, per channel-agnostic cadence
}

// New constructs a Manager from a mission's consumables budget and failure
// taxonomy. Initial channel values come from the budget's InitialKg /
// life-support fields.
func New(cfg Config, budget models.ConsumablesBudget, failures []models.FailureDef, logger logging.Logger) *Manager {
	m := &Manager{
		cfg:          cfg,
		budget:       budget,
		failures:     make(map[string]models.FailureDef, len(failures)),
		logger:       logger,
		tanks:        make(map[string]tankState, len(budget.Tanks)),
		deltaV:       make(map[string]deltaVState, len(budget.DeltaVBaseByStage)),
		activeFaults: make(map[string]bool),
		thermalTag:   budget.Thermal.NominalTag,
		o2Kg:         budget.LifeSupport.O2InitialKg,
		h2oKg:        budget.LifeSupport.H2OInitialKg,
		liOHKg:       budget.LifeSupport.LiOHInitialKg,
		co2ScrubKg:   0,
	}
	for id, fd := range indexFailures(failures) {
		m.failures[id] = fd
	}
	for name, b := range budget.Tanks {
		m.tanks[name] = tankState{budget: b, current: b.InitialKg}
	}
	for stage, base := range budget.DeltaVBaseByStage {
		m.deltaV[stage] = deltaVState{base: base}
	}
	if cfg.HistoryEnabled {
		m.history = make(map[string]*ringBuffer)
	}
	return m
}

func indexFailures(defs []models.FailureDef) map[string]models.FailureDef {
	out := make(map[string]models.FailureDef, len(defs))
	for _, d := range defs {
		out[d.ID] = d
	}
	return out
}

// SetPhase updates the mission phase used to index the fuel-cell load
// profile (§4.3 "fuel-cell load drawn from configured profile indexed by
// mission phase").
func (m *Manager) SetPhase(phase string) { m.phase = phase }

// SetComms installs the communications schedule; called once at startup.
func (m *Manager) SetComms(passes []models.CommsPassDef) {
	m.comms = make([]commsState, len(passes))
	for i, p := range passes {
		m.comms[i] = commsState{def: p, status: "idle"}
	}
}

// ApplyDelta stages a discrete resource adjustment; it is committed on the
// next Tick call, never applied immediately (§5 "deltas accumulate in a
// staging buffer and are committed once per tick").
func (m *Manager) ApplyDelta(d models.ResourceDelta) {
	m.pending = append(m.pending, d)
}

// DrawPropellant attempts to debit kg from tank, returning false without
// mutating state when the tank holds less than requested (§4.4 "if the
// resource system rejects a propellant draw").
func (m *Manager) DrawPropellant(tank string, kg float64) bool {
	ts, ok := m.tanks[tank]
	if !ok || ts.current < kg {
		return false
	}
	ts.current -= kg
	m.tanks[tank] = ts
	return true
}

// RegisterFailure applies a taxonomy entry's immediate effect once; it is a
// no-op if the failure is already active (§4.2 "raise the associated
// failure id once").
func (m *Manager) RegisterFailure(id string) error {
	fd, ok := m.failures[id]
	if !ok {
		return fmt.Errorf("resources: %w: %s", models.ErrUnknownFailure, id)
	}
	if m.activeFaults[id] {
		return nil
	}
	m.activeFaults[id] = true
	for _, d := range fd.ImmediateEffect {
		m.applyToChannel(d)
	}
	return nil
}

// ClearFailure ends an active failure's ongoing penalty; called when a
// checklist step or manual action tagged with clears_failure acknowledges.
func (m *Manager) ClearFailure(id string) { delete(m.activeFaults, id) }

// Tick integrates continuous consumers, commits staged deltas, advances the
// communications state machine, and raises/clears threshold failures, in
// the order specified by §4.3.
func (m *Manager) Tick(now models.GET, dt float64) TickResult {
	m.integrateContinuous(dt)
	m.commitPending()
	m.applyOngoingPenalties(dt)
	m.rederiveMargins()
	transitions := m.tickComms(now)
	triggered, cleared := m.checkThresholds()
	if m.cfg.HistoryEnabled {
		m.sampleHistory(now, dt)
	}
	return TickResult{FailuresTriggered: triggered, FailuresCleared: cleared, CommsTransitions: transitions}
}

func (m *Manager) integrateContinuous(dt float64) {
	load := m.budget.Power.LoadByPhaseKw[m.phase]
	m.powerLoad = load
	m.powerOutput = m.budget.Power.OutputKw

	for tank, rate := range m.budget.CryoBoilOffPctPerHr {
		ts, ok := m.tanks[tank]
		if !ok {
			continue
		}
		boiled := ts.budget.InitialKg * (rate / 100) * (dt / 3600)
		ts.current -= boiled
		if ts.current < 0 {
			ts.current = 0
		}
		m.tanks[tank] = ts
	}

	ls := m.budget.LifeSupport
	m.o2Kg -= ls.O2ConsumptionKgHr * (dt / 3600)
	m.h2oKg -= ls.H2OConsumptionKgHr * (dt / 3600)
	if m.o2Kg < 0 {
		m.o2Kg = 0
	}
	if m.h2oKg < 0 {
		m.h2oKg = 0
	}
}

func (m *Manager) commitPending() {
	for _, d := range m.pending {
		m.applyToChannel(d)
	}
	m.pending = m.pending[:0]
}

func (m *Manager) applyOngoingPenalties(dt float64) {
	for id := range m.activeFaults {
		fd := m.failures[id]
		for _, d := range fd.OngoingPenalty {
			m.applyToChannel(models.ResourceDelta{Channel: d.Channel, Value: d.Value * dt, Source: id})
		}
	}
}

func (m *Manager) rederiveMargins() {
	if m.powerOutput > 0 {
		m.powerMargin = (m.powerOutput - m.powerLoad) / m.powerOutput * 100
	} else {
		m.powerMargin = 0
	}
	for stage, dv := range m.deltaV {
		_ = stage
		_ = dv // margin is derived on demand in Snapshot (base + adjustment)
	}
}

// applyToChannel routes a delta to the matching tank, Δv adjustment, power
// output/load override, or life-support channel by name. Unknown channels
// are logged and dropped rather than panicking.
func (m *Manager) applyToChannel(d models.ResourceDelta) {
	if ts, ok := m.tanks[d.Channel]; ok {
		ts.current += d.Value
		if ts.current < 0 {
			ts.current = 0
		}
		if ts.current > ts.budget.InitialKg {
			ts.current = ts.budget.InitialKg
		}
		m.tanks[d.Channel] = ts
		return
	}
	if dv, ok := m.deltaV[d.Channel]; ok {
		dv.adjustment += d.Value
		m.deltaV[d.Channel] = dv
		return
	}
	switch d.Channel {
	case "power_output_kw":
		m.powerOutput += d.Value
	case "power_load_kw":
		m.powerLoad += d.Value
	case "o2_kg":
		m.o2Kg += d.Value
	case "h2o_kg":
		m.h2oKg += d.Value
	case "lioh_kg":
		m.liOHKg += d.Value
	case "co2_scrub_kg":
		m.co2ScrubKg += d.Value
	default:
		if m.logger != nil {
			m.logger.WarnCtx(context.Background(), "resources: delta for unknown channel dropped", "channel", d.Channel, "source", d.Source)
		}
	}
}

func (m *Manager) tickComms(now models.GET) []CommsTransition {
	var transitions []CommsTransition
	for i := range m.comms {
		cs := &m.comms[i]
		prev := cs.status
		handoverSecs := int64(cs.def.HandoverMinutes * 60)
		switch {
		case now < cs.def.OpensAt || now >= cs.def.ClosesAt:
			cs.status = "idle"
		case now < cs.def.OpensAt.Add(handoverSecs):
			cs.status = "acquiring"
		case now < cs.def.ClosesAt.Add(-handoverSecs):
			cs.status = "active"
		default:
			cs.status = "losing"
		}
		if cs.status != prev {
			transitions = append(transitions, CommsTransition{PassID: cs.def.ID, From: prev, To: cs.status, At: now})
			if cs.status == "active" {
				cs.acquireFired = true
			}
			if cs.status == "idle" && prev == "losing" {
				cs.lossFired = true
			}
		}
	}
	return transitions
}

func (m *Manager) checkThresholds() (triggered, cleared []string) {
	for channel, failureID := range m.cfg.ThresholdFailureBinding {
		band, hasBand := m.cfg.Hysteresis[channel]
		value, ok := m.channelValue(channel)
		if !ok {
			continue
		}
		active := m.activeFaults[failureID]
		if !active && hasBand && value <= band.TriggerThreshold {
			if err := m.RegisterFailure(failureID); err == nil {
				triggered = append(triggered, failureID)
			}
		} else if active && hasBand && value >= band.ResetThreshold {
			m.ClearFailure(failureID)
			cleared = append(cleared, failureID)
		}
	}
	return triggered, cleared
}

func (m *Manager) channelValue(channel string) (float64, bool) {
	if ts, ok := m.tanks[channel]; ok {
		return ts.current, true
	}
	switch channel {
	case "power_margin_pct":
		return m.powerMargin, true
	case "o2_kg":
		return m.o2Kg, true
	case "h2o_kg":
		return m.h2oKg, true
	}
	return 0, false
}

// Snapshot returns the present resources view consumed by the UI frame
// builder; every channel carries its derived percent and alert level.
func (m *Manager) Snapshot() models.ResourcesView {
	channels := make(map[string]models.ResourceChannelView, len(m.tanks)+4)
	for name, ts := range m.tanks {
		pct := 0.0
		if ts.budget.InitialKg > 0 {
			pct = ts.current / ts.budget.InitialKg * 100
		}
		channels[name] = models.ResourceChannelView{Value: ts.current, Percent: pct, Alert: m.propellantAlert(pct)}
	}
	channels["power_margin_pct"] = models.ResourceChannelView{Value: m.powerMargin, Percent: m.powerMargin, Alert: m.powerAlert(m.powerMargin)}
	channels["o2_kg"] = models.ResourceChannelView{Value: m.o2Kg, Percent: pctOf(m.o2Kg, m.budget.LifeSupport.O2InitialKg), Alert: models.AlertNominal}
	channels["h2o_kg"] = models.ResourceChannelView{Value: m.h2oKg, Percent: pctOf(m.h2oKg, m.budget.LifeSupport.H2OInitialKg), Alert: models.AlertNominal}
	for stage, dv := range m.deltaV {
		channels["deltav_"+stage] = models.ResourceChannelView{Value: dv.base + dv.adjustment, Percent: 0, Alert: models.AlertNominal}
	}
	return models.ResourcesView{Channels: channels}
}

func pctOf(value, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return value / total * 100
}

func (m *Manager) powerAlert(marginPct float64) models.AlertLevel {
	switch {
	case marginPct <= m.cfg.Alerts.PowerMarginWarningPct:
		return models.AlertWarning
	case marginPct <= m.cfg.Alerts.PowerMarginCautionPct:
		return models.AlertCaution
	default:
		return models.AlertNominal
	}
}

func (m *Manager) propellantAlert(pct float64) models.AlertLevel {
	switch {
	case pct <= m.cfg.Alerts.PropellantWarningPct:
		return models.AlertWarning
	case pct <= m.cfg.Alerts.PropellantCautionPct:
		return models.AlertCaution
	default:
		return models.AlertNominal
	}
}

// CommsView projects the current comms-pass status for the UI frame.
func (m *Manager) CommsView(now models.GET) models.CommsView {
	for _, cs := range m.comms {
		if cs.status == "active" || cs.status == "acquiring" || cs.status == "losing" {
			return models.CommsView{Acquired: cs.status == "active", CurrentPassID: cs.def.ID}
		}
	}
	var next models.CommsView
	bestOpen := models.GET(1<<62)
	for _, cs := range m.comms {
		if cs.def.OpensAt > now && cs.def.OpensAt < bestOpen {
			bestOpen = cs.def.OpensAt
			next = models.CommsView{NextPassID: cs.def.ID, NextPassOpens: cs.def.OpensAt}
		}
	}
	return next
}

// ChannelValue resolves a single channel's present value, the read surface
// consumed by the scheduler and checklist manager to evaluate resource
// predicates. Backed by Snapshot so it sees every projected channel,
// including the deltav_<stage> entries.
func (m *Manager) ChannelValue(channel string) (float64, bool) {
	v, ok := m.Snapshot().Channels[channel]
	if !ok {
		return 0, false
	}
	return v.Value, true
}

// DeltaVMargins reports each stage's present Δv margin as a percentage of
// its configured base budget, for the scoring aggregator's resourcesScore.
func (m *Manager) DeltaVMargins() map[string]float64 {
	out := make(map[string]float64, len(m.deltaV))
	for stage, dv := range m.deltaV {
		if dv.base <= 0 {
			continue
		}
		out[stage] = (dv.base + dv.adjustment) / dv.base * 100
	}
	return out
}

// TankLevelsKg reports every propellant tank's present kg, keyed by tank
// name, for the scoring aggregator's cumulative-usage accounting.
func (m *Manager) TankLevelsKg() map[string]float64 {
	out := make(map[string]float64, len(m.tanks))
	for name, ts := range m.tanks {
		out[name] = ts.current
	}
	return out
}

// ActiveFailures reports every failure taxonomy id currently raised, for the
// scoring aggregator's fault tally.
func (m *Manager) ActiveFailures() []string {
	out := make([]string, 0, len(m.activeFaults))
	for id := range m.activeFaults {
		out = append(out, id)
	}
	return out
}

// ThermalViolation reports whether the thermal state tag presently matches
// the mission's configured violation tag (§4.9 "thermal violation
// seconds"). Nothing in the current model transitions the tag away from
// nominal yet; it is a hook for a future thermal-failure taxonomy entry.
func (m *Manager) ThermalViolation() bool {
	return m.budget.Thermal.ViolationTag != "" && m.thermalTag == m.budget.Thermal.ViolationTag
}

// HealthProbe reports degraded/unhealthy status once the number of currently
// active failures reaches degradedAt/unhealthyAt (the engine passes the
// policy's ResourceDegradedTickCount/ResourceUnhealthyTickCount); it does not
// track how many ticks a failure has been raised.
func (m *Manager) HealthProbe(degradedAt, unhealthyAt int) health.Probe {
	return health.ProbeFunc(func(context.Context) health.ProbeResult {
		n := len(m.activeFaults)
		switch {
		case n >= unhealthyAt && unhealthyAt > 0:
			return health.Unhealthy("resources", fmt.Sprintf("%d active failures", n))
		case n >= degradedAt && degradedAt > 0:
			return health.Degraded("resources", fmt.Sprintf("%d active failures", n))
		default:
			return health.Healthy("resources")
		}
	})
}
