// Package engine is the public facade over the mission-simulation tick loop:
// a deterministic, fixed-step driver composing the event scheduler, resource
// system, autopilot runner, checklist manager, manual action queue, docking
// context, entry/recovery monitor, scoring aggregator, mission log, audio
// trigger binder, and UI frame builder behind one entry point.
package engine

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"groundtrack/engine/internal/autopilot"
	"groundtrack/engine/internal/checklist"
	"groundtrack/engine/internal/docking"
	"groundtrack/engine/internal/entry"
	"groundtrack/engine/internal/manualqueue"
	intmetrics "groundtrack/engine/internal/telemetry/metrics"
	inttelempolicy "groundtrack/engine/internal/telemetry/policy"
	telemetrytracing "groundtrack/engine/internal/telemetry/tracing"
	"groundtrack/engine/internal/missionlog"
	"groundtrack/engine/internal/resources"
	"groundtrack/engine/internal/scheduler"
	"groundtrack/engine/internal/scoring"
	"groundtrack/engine/internal/uiframe"
	"groundtrack/engine/internal/audio"
	"groundtrack/engine/models"
	telemetryhealth "groundtrack/engine/telemetry/health"
	"groundtrack/engine/telemetry/logging"
)

// OrbitProvider is an optional, caller-supplied pluggable orbit-summary
// source (physics-accurate orbital propagation is explicitly out of scope;
// see SPEC_FULL's domain-stack notes). A nil provider leaves Frame.Trajectory
// unset and the periapsis alert never fires.
type OrbitProvider func(now models.GET) (models.TrajectorySummary, bool)

// RunSummary is the terminal report handed back by Run: the final score,
// the fault that stopped the loop (if any), and the rendered end-of-run
// mission-log report.
type RunSummary struct {
	EndedAt       models.GET
	Score         models.ScoreView
	StoppedByFault *models.FaultError
	Report        string
	RecordedScript models.ManualScript
}

// Engine composes every subsystem behind one facade. Not safe for
// concurrent use: the tick loop is its sole caller (§5 "single-threaded and
// cooperative").
type Engine struct {
	cfg     Config
	mission models.MissionData
	logger  logging.Logger

	scheduler   *scheduler.Scheduler
	resources   *resources.Manager
	autopilot   *autopilot.Runner
	checklist   *checklist.Manager
	manualQueue *manualqueue.Manager
	docking     *docking.Manager
	entry       *entry.Monitor
	scoring     *scoring.Aggregator
	missionLog  *missionlog.Log
	audio       *audio.Binder
	frames      *uiframe.Builder

	orbit OrbitProvider

	autopilotDefs map[string]models.AutopilotProgramDef

	now            models.GET
	elapsedSeconds float64
	tickNumber     int64
	framesEmitted  int64
	hudElapsed     float64
	logElapsed     float64

	metricsProvider intmetrics.Provider
	metrics         engineMetrics
	tracer          telemetrytracing.Tracer
	healthEval      *telemetryhealth.Evaluator
	telemetryPolicy atomic.Pointer[inttelempolicy.TelemetryPolicy]

	lastFrame models.Frame
}

// engineMetrics is the fixed set of gauges/counters/timers every metrics
// backend (prometheus, otel, noop) instruments identically — grounded on the
// teacher's per-stage instrumentation in its pipeline runner.
type engineMetrics struct {
	powerMargin    intmetrics.Gauge
	propellant     intmetrics.Gauge
	eventFaults    intmetrics.Counter
	resourceFaults intmetrics.Counter
	autopilotAborts intmetrics.Counter
	tickDuration   intmetrics.Histogram
}

func newEngineMetrics(p intmetrics.Provider) engineMetrics {
	return engineMetrics{
		powerMargin: p.NewGauge(intmetrics.GaugeOpts{CommonOpts: intmetrics.CommonOpts{
			Namespace: "groundtrack", Subsystem: "resources", Name: "power_margin_pct", Help: "fuel-cell power margin percentage"}}),
		propellant: p.NewGauge(intmetrics.GaugeOpts{CommonOpts: intmetrics.CommonOpts{
			Namespace: "groundtrack", Subsystem: "resources", Name: "propellant_kg", Help: "remaining propellant by tank", Labels: []string{"tank"}}}),
		eventFaults: p.NewCounter(intmetrics.CounterOpts{CommonOpts: intmetrics.CommonOpts{
			Namespace: "groundtrack", Subsystem: "scheduler", Name: "event_faults_total", Help: "event failures and missed events"}}),
		resourceFaults: p.NewCounter(intmetrics.CounterOpts{CommonOpts: intmetrics.CommonOpts{
			Namespace: "groundtrack", Subsystem: "resources", Name: "faults_total", Help: "resource failures raised"}}),
		autopilotAborts: p.NewCounter(intmetrics.CounterOpts{CommonOpts: intmetrics.CommonOpts{
			Namespace: "groundtrack", Subsystem: "autopilot", Name: "aborts_total", Help: "autopilot program aborts"}}),
		tickDuration: p.NewHistogram(intmetrics.HistogramOpts{CommonOpts: intmetrics.CommonOpts{
			Namespace: "groundtrack", Subsystem: "engine", Name: "tick_duration_seconds", Help: "simulated Δt of one tick() call"}}),
	}
}

// New constructs an Engine bound to one mission and configuration. script
// may be nil (no scripted manual actions are pre-loaded).
func New(mission models.MissionData, script *models.ManualScript, cfg Config, logger logging.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.New(nil)
	}

	e := &Engine{cfg: cfg, mission: mission, logger: logger}
	e.autopilotDefs = make(map[string]models.AutopilotProgramDef, len(mission.AutopilotPrograms))
	for _, a := range mission.AutopilotPrograms {
		e.autopilotDefs[a.ID] = a
	}

	rcfg := resources.Config{
		Alerts:                  effectiveAlerts(cfg, mission),
		Hysteresis:              effectiveHysteresis(cfg, mission),
		ThresholdFailureBinding: thresholdFailureBindings(mission),
		HistoryEnabled:          true,
		HistorySampleIntervalS:  60,
		HistoryMaxSamples:       1440,
	}
	e.resources = resources.New(rcfg, mission.Consumables, mission.FailureTaxonomy, logger)
	e.resources.SetComms(mission.CommsSchedule)

	e.autopilot = autopilot.New(e.resources)
	e.checklist = checklist.New(checklist.Config{
		ManualOnly:                 cfg.ManualChecklists,
		DefaultStepDurationSeconds: cfg.ChecklistStepSeconds,
	}, nil, e.resources, e.resources)

	e.scheduler = scheduler.New(mission.Events, mission.Checklists, mission.AutopilotPrograms, e.resources, e.checklist, e.autopilot, e.resources)
	e.checklist.SetStatusSource(e.scheduler)
	pads := make(map[string]models.PADParameters, len(mission.PADs))
	for _, p := range mission.PADs {
		pads[p.ID] = p.Parameters
	}
	e.scheduler.SetPADIndex(pads)

	if mission.Docking != nil {
		e.docking = docking.New(*mission.Docking, cfg.DockingDutyCycleWindowSeconds, e.scheduler)
	}
	if mission.EntryTimeline != nil {
		e.entry = entry.New(*mission.EntryTimeline, e.scheduler)
	}

	weights := cfg.ScoreWeights
	if mission.Workspace != nil && (mission.Workspace.ScoringWeights != models.ScoreWeights{}) {
		weights = mission.Workspace.ScoringWeights
	}
	e.scoring = scoring.New(weights, 60, 500)
	e.missionLog = missionlog.New(5000)
	e.audio = audio.New(mission.Audio)
	e.frames = uiframe.New(uiframe.Config{RoundDigits: cfg.RoundDigits, TankLabels: cfg.TankLabels, StageLabels: cfg.StageLabels})
	e.manualQueue = manualqueue.New(cfg.ManualActionMaxRetries, float64(cfg.ChecklistStepSeconds))

	if script != nil {
		for _, sa := range script.Actions {
			e.manualQueue.Enqueue(sa.Action)
		}
	}

	e.metricsProvider = selectMetricsProvider(cfg)
	metricsBackend := e.metricsProvider
	if metricsBackend == nil {
		metricsBackend = intmetrics.NewNoopProvider()
	}
	e.metrics = newEngineMetrics(metricsBackend)
	e.tracer = telemetrytracing.NewAdaptiveTracer(func() float64 { return e.Policy().Tracing.SamplePercent })
	initialPolicy := inttelempolicy.Default()
	e.telemetryPolicy.Store(&initialPolicy)
	e.healthEval = telemetryhealth.NewEvaluator(initialPolicy.Health.ProbeTTL, e.resources.HealthProbe(
		initialPolicy.Health.ResourceDegradedTickCount, initialPolicy.Health.ResourceUnhealthyTickCount))

	return e, nil
}

// WithOrbitProvider installs an optional orbit-summary source used to
// populate Frame.Trajectory and grade the periapsis alert each tick.
func (e *Engine) WithOrbitProvider(p OrbitProvider) *Engine {
	e.orbit = p
	return e
}

func effectiveAlerts(cfg Config, mission models.MissionData) models.AlertThresholds {
	if mission.Consumables.Alerts != (models.AlertThresholds{}) {
		return mission.Consumables.Alerts
	}
	return cfg.AlertThresholds
}

func effectiveHysteresis(cfg Config, mission models.MissionData) map[string]models.HysteresisBand {
	if len(mission.Consumables.Hysteresis) > 0 {
		return mission.Consumables.Hysteresis
	}
	return cfg.Hysteresis
}

// thresholdFailureBindings derives a channel -> failure-id binding from
// every failure taxonomy entry whose id names a resource channel directly
// (mission data ties hysteresis bands to channels by matching id naming, the
// convention recorded in DESIGN.md's hysteresis open-question resolution).
func thresholdFailureBindings(mission models.MissionData) map[string]string {
	out := make(map[string]string, len(mission.FailureTaxonomy))
	for _, fd := range mission.FailureTaxonomy {
		out[fd.ID] = fd.ID
	}
	return out
}

// RecordMacro implements manualqueue.MacroRecorder; manually entered DSKY
// verb/noun pairs are logged the same way an autopilot-emitted macro would
// be, since the autopilot runner's own ledger only tracks program-bound
// macros.
func (e *Engine) RecordMacro(ev models.MacroEvent) {
	e.missionLog.Append(ev.At, "dsky", "manual_queue", models.AlertNominal,
		"manual DSKY entry "+ev.ID, map[string]string{"verb": strconv.Itoa(ev.Verb), "noun": strconv.Itoa(ev.Noun)})
}

// LogWorkspaceEvent implements manualqueue.WorkspaceLogger.
func (e *Engine) LogWorkspaceEvent(now models.GET, tag string) {
	e.missionLog.Append(now, "workspace", "manual_queue", models.AlertNominal, tag, nil)
}

// RecordedActions forwards every manual action that left the queue
// (applied or permanently rejected), in resolution order.
func (e *Engine) RecordedActions() []models.ManualActionRecord {
	return e.manualQueue.Resolved()
}

// Enqueue submits a live manual action for dispatch on a future tick.
func (e *Engine) Enqueue(action models.ManualAction) {
	e.manualQueue.Enqueue(action)
}

// Run advances the tick loop from GET 0 until untilGET or a fatal fault,
// whichever comes first, and returns the terminal RunSummary. Deterministic:
// every input is either mission data fixed at New or a manual action queued
// before the tick it fires on; no wall-clock or unseeded-random read occurs
// on the hot path.
func (e *Engine) Run(ctx context.Context, untilGET models.GET) RunSummary {
	dt := 1.0 / e.cfg.TickRate
	var stopFault *models.FaultError

tickLoop:
	for e.now <= untilGET {
		select {
		case <-ctx.Done():
			break tickLoop
		default:
		}

		fault := e.tick(dt)
		e.elapsedSeconds += dt
		e.now = models.GET(int64(e.elapsedSeconds))
		e.tickNumber++

		if fault != nil {
			e.missionLog.Append(e.now, categoryFor(fault.Kind), fault.Source, severityFor(fault.Kind), fault.Error(), nil)
			if fault.Kind.Fatal() {
				stopFault = fault
				break tickLoop
			}
		}
	}

	e.buildFrame(true)
	var markdownConvert func(string) (string, error)
	if e.cfg.LogPretty {
		markdownConvert = missionlog.ConvertHTML
	} else {
		markdownConvert = func(s string) (string, error) { return s, nil }
	}
	report, _ := e.missionLog.Report(e.mission.Title, markdownConvert)
	return RunSummary{
		EndedAt:        e.now,
		Score:          e.scoring.Grade(),
		StoppedByFault: stopFault,
		Report:         report,
		RecordedScript: models.ManualScript{MissionID: e.mission.ID, Actions: e.recordedScript()},
	}
}

func (e *Engine) recordedScript() []models.ScriptedAction {
	resolved := e.manualQueue.Resolved()
	out := make([]models.ScriptedAction, 0, len(resolved))
	for _, r := range resolved {
		out = append(out, models.ScriptedAction{At: r.Action.TriggerAt, Action: r.Action})
	}
	return out
}

func categoryFor(kind models.ErrorKind) string {
	switch kind {
	case models.KindResource:
		return "resource"
	case models.KindAutopilot:
		return "autopilot"
	case models.KindPrecondition:
		return "event"
	default:
		return "fault"
	}
}

func severityFor(kind models.ErrorKind) models.AlertLevel {
	if kind.Fatal() {
		return models.AlertWarning
	}
	return models.AlertCaution
}

// tick advances every subsystem exactly once, in the §2 data-flow order:
// manual dispatch feeds resource/autopilot/checklist state before the
// scheduler re-evaluates event lifecycles against it, and docking/entry/
// scoring/audio/mission-log derive from the now-settled subsystem state.
func (e *Engine) tick(dt float64) *models.FaultError {
	_, span := e.tracer.StartSpan(context.Background(), "tick")
	defer span.End()
	defer e.metrics.tickDuration.Observe(dt)

	dispatch := manualqueue.Dispatch{
		Checklists:   e.checklist,
		Resources:    e.resources,
		Autopilots:   e.autopilot,
		AutopilotDef: e.lookupAutopilotDef,
		Macros:       e,
		Workspace:    e,
	}
	if e.entry != nil {
		dispatch.Recovery = e.entry
	}
	e.manualQueue.Tick(e.now, dispatch)

	schedResult := e.scheduler.Tick(e.now)
	for _, id := range schedResult.Failed {
		e.missionLog.Append(e.now, "event", "scheduler", models.AlertWarning, "event failed: "+id, nil)
		e.metrics.eventFaults.Inc(1)
	}
	for _, id := range schedResult.Missed {
		e.missionLog.Append(e.now, "event", "scheduler", models.AlertCaution, "optional event missed: "+id, nil)
		e.metrics.eventFaults.Inc(1)
	}
	for _, id := range schedResult.Completed {
		if !e.scheduler.Missed(id) {
			e.missionLog.Append(e.now, "event", "scheduler", models.AlertNominal, "event complete: "+id, nil)
		}
	}
	e.resources.SetPhase(currentPhase(e.scheduler.Snapshot()))

	autopilotFaults := e.autopilot.Tick(e.now, dt)
	e.checklist.Tick(e.now)

	rcsUsage := e.autopilot.DrainRCS()
	if e.docking != nil {
		e.docking.RecordRCSUsage(rcsUsage)
		e.docking.Tick(e.now, dt)
	}
	if e.entry != nil {
		e.entry.Tick(e.now)
	}

	resResult := e.resources.Tick(e.now, dt)
	for _, id := range resResult.FailuresTriggered {
		e.missionLog.Append(e.now, "resource", "resources", models.AlertWarning, "failure triggered: "+id, nil)
		e.metrics.resourceFaults.Inc(1)
	}
	for _, id := range resResult.FailuresCleared {
		e.missionLog.Append(e.now, "resource", "resources", models.AlertNominal, "failure cleared: "+id, nil)
	}
	for _, t := range resResult.CommsTransitions {
		e.emitCommsAudio(t)
	}
	resSnapshot := e.resources.Snapshot()
	e.metrics.powerMargin.Set(resSnapshot.Channels["power_margin_pct"].Value)
	for tank, kg := range e.resources.TankLevelsKg() {
		e.metrics.propellant.Set(kg, tank)
	}

	e.scoring.Update(e.now, dt, e.scoringInputs())
	e.audio.Tick(e.now)

	e.logElapsed += dt
	if e.cfg.LogIntervalSeconds > 0 && e.logElapsed >= e.cfg.LogIntervalSeconds {
		e.logElapsed = 0
		e.missionLog.Append(e.now, "status", "engine", models.AlertNominal, "periodic status", nil)
	}

	e.hudElapsed += dt
	if !e.cfg.DisableHUD && e.cfg.HUDIntervalSeconds > 0 && e.hudElapsed >= e.cfg.HUDIntervalSeconds {
		e.hudElapsed = 0
		e.buildFrame(false)
	}

	for _, f := range autopilotFaults {
		e.metrics.autopilotAborts.Inc(1)
		if f.Kind.Fatal() {
			return f
		}
		e.missionLog.Append(e.now, "autopilot", f.Source, models.AlertWarning, f.Error(), nil)
	}
	return nil
}

func (e *Engine) lookupAutopilotDef(programID string) (models.AutopilotProgramDef, bool) {
	def, ok := e.autopilotDefs[programID]
	return def, ok
}

func (e *Engine) emitCommsAudio(t resources.CommsTransition) {
	var def models.CommsPassDef
	for _, p := range e.mission.CommsSchedule {
		if p.ID == t.PassID {
			def = p
			break
		}
	}
	switch {
	case t.To == "active" && def.CueOnAcquire != "":
		e.audio.Emit(models.AudioTrigger{CueID: def.CueOnAcquire, Severity: models.AlertNominal, Category: "comms", SourceType: "comms", SourceID: t.PassID, TriggeredAt: t.At}, 3)
	case t.To == "idle" && t.From == "losing" && def.CueOnLoss != "":
		e.audio.Emit(models.AudioTrigger{CueID: def.CueOnLoss, Severity: models.AlertCaution, Category: "comms", SourceType: "comms", SourceID: t.PassID, TriggeredAt: t.At}, 3)
	}
}

func (e *Engine) scoringInputs() scoring.TickInputs {
	snapshot := e.resources.Snapshot()
	schedStats := e.scheduler.Stats()
	checklistStats := e.checklist.Stats()
	queueStats := e.manualQueue.Stats()

	return scoring.TickInputs{
		PowerMarginPct:    snapshot.Channels["power_margin_pct"].Value,
		DeltaVMarginByTag: e.resources.DeltaVMargins(),
		ThermalViolation:  e.resources.ThermalViolation(),
		PropellantUsedKg:  e.resources.TankLevelsKg(),
		EventsCompleted:   schedStats.Completed,
		EventsFailed:      schedStats.Failed,
		EventsMissed:      schedStats.Missed,
		ResourceFailures:  e.resources.ActiveFailures(),
		ManualStepCount:   checklistStats.ManualAcks + queueStats.Applied,
		AutoStepCount:     checklistStats.AutoAcks,
	}
}

func (e *Engine) buildFrame(final bool) {
	var checklistView *models.ChecklistView
	if v, ok := e.checklist.Snapshot(); ok {
		checklistView = &v
	}
	var autopilotView *models.AutopilotView
	if v, ok := e.autopilot.Snapshot(); ok {
		autopilotView = &v
	}
	var dockingView *models.DockingSummary
	if e.docking != nil {
		v := e.docking.Snapshot()
		dockingView = &v
	}
	var entryView *models.EntrySummary
	if e.entry != nil {
		v := e.entry.Snapshot()
		entryView = &v
	}

	var trajectory *models.TrajectorySummary
	var trajectoryAlerts []models.Alert
	if e.orbit != nil {
		if t, ok := e.orbit(e.now); ok {
			trajectory = &t
			trajectoryAlerts = orbitAlerts(t, effectiveOrbitThresholds(e.cfg))
		}
	}

	queueStats := e.manualQueue.Stats()
	audioStats := e.audio.Stats()
	records, byCategory, bySeverity := e.missionLog.Snapshot(20)
	logEntries := make([]models.LogEntryView, 0, len(records))
	for _, r := range records {
		logEntries = append(logEntries, models.LogEntryView{Sequence: r.Sequence, At: r.At, Category: r.Category, Source: r.Source, Severity: r.Severity, Message: r.Message})
	}

	frame := e.frames.Build(e.now, uiframe.Context{
		Phase:       currentPhase(e.scheduler.Snapshot()),
		Events:      e.scheduler.Snapshot(),
		Resources:   e.resources.Snapshot(),
		Checklist:   checklistView,
		Autopilot:   autopilotView,
		ManualQueue: models.ManualQueueView{Pending: queueStats.Pending, Applied: queueStats.Applied, Rejected: queueStats.Rejected},
		Trajectory:  trajectory,
		Docking:     dockingView,
		Entry:       entryView,
		Comms:       e.resources.CommsView(e.now),
		Score:       e.scoring.Grade(),
		AGC:         models.AGCView{RecentMacros: tail(e.autopilot.RecentMacros(), 10)},
		Audio:       models.AudioView{Suppressed: audioStats.Suppressed, LedgerSize: audioStats.Ledger},
		Performance: models.PerformanceView{TicksRun: e.tickNumber, FramesEmitted: e.framesEmitted, TickDurationMs: 1000.0 / e.cfg.TickRate},
		MissionLog:  models.MissionLogSummary{Entries: logEntries, ByCategory: byCategory, BySeverity: bySeverity},
		TrajectoryAlerts: trajectoryAlerts,
	})
	e.lastFrame = frame
	e.framesEmitted++
	_ = final
}

func currentPhase(events models.EventsSummary) string {
	for _, ev := range events.Active {
		return ev.Phase
	}
	for _, ev := range events.Upcoming {
		return ev.Phase
	}
	return ""
}

func tail(in []models.MacroEvent, n int) []models.MacroEvent {
	if len(in) <= n {
		return in
	}
	return in[len(in)-n:]
}

func effectiveOrbitThresholds(cfg Config) models.OrbitAlertThresholds {
	if cfg.OrbitAlertThresholds != (models.OrbitAlertThresholds{}) {
		return cfg.OrbitAlertThresholds
	}
	return models.DefaultOrbitAlertThresholds()
}

// orbitAlerts grades a TrajectorySummary's periapsis into at most one
// standalone alert; the below-surface band is reported at warning level,
// the highest AlertLevel there is.
func orbitAlerts(t models.TrajectorySummary, bands models.OrbitAlertThresholds) []models.Alert {
	switch {
	case t.PeriapsisKm < bands.BelowSurfaceKm:
		return []models.Alert{{Source: "orbit_periapsis_below_surface", Level: models.AlertWarning, Message: "periapsis below surface"}}
	case t.PeriapsisKm < bands.WarningBelowKm:
		return []models.Alert{{Source: "orbit_periapsis_low", Level: models.AlertWarning, Message: "periapsis critically low"}}
	case t.PeriapsisKm < bands.CautionBelowKm:
		return []models.Alert{{Source: "orbit_periapsis_low", Level: models.AlertCaution, Message: "periapsis trending low"}}
	default:
		return nil
	}
}

// LastFrame returns the most recently built Frame, or the zero Frame if no
// frame has been built yet.
func (e *Engine) LastFrame() models.Frame { return e.lastFrame }

// Policy returns the current telemetry policy snapshot. Never returns a
// zero value; defaults to inttelempolicy.Default() until UpdateTelemetryPolicy
// is called.
func (e *Engine) Policy() inttelempolicy.TelemetryPolicy {
	if p := e.telemetryPolicy.Load(); p != nil {
		return *p
	}
	return inttelempolicy.Default()
}

// TelemetryPolicy re-exports the internal policy shape so embedders can
// construct an override without importing an internal package.
type TelemetryPolicy = inttelempolicy.TelemetryPolicy

// UpdateTelemetryPolicy atomically swaps the active policy; nil resets to
// defaults. Safe for concurrent use: probes pick up new thresholds on their
// next evaluation cycle.
func (e *Engine) UpdateTelemetryPolicy(p *TelemetryPolicy) {
	var snap inttelempolicy.TelemetryPolicy
	if p == nil {
		snap = inttelempolicy.Default()
	} else {
		snap = p.Normalize()
	}
	old := e.Policy()
	e.telemetryPolicy.Store(&snap)
	if old.Health.ProbeTTL != snap.Health.ProbeTTL {
		e.healthEval = telemetryhealth.NewEvaluator(snap.Health.ProbeTTL,
			e.resources.HealthProbe(snap.Health.ResourceDegradedTickCount, snap.Health.ResourceUnhealthyTickCount))
	}
}

// MetricsHandler returns the HTTP handler for metrics exposition (Prometheus
// backend only); nil if metrics are disabled or the backend exposes none.
func (e *Engine) MetricsHandler() http.Handler {
	if e.metricsProvider == nil {
		return nil
	}
	if hp, ok := e.metricsProvider.(interface{ MetricsHandler() http.Handler }); ok {
		return hp.MetricsHandler()
	}
	return nil
}

// HealthSnapshot evaluates (or returns the cached) subsystem health.
func (e *Engine) HealthSnapshot(ctx context.Context) telemetryhealth.Snapshot {
	if e.healthEval == nil {
		return telemetryhealth.Snapshot{}
	}
	return e.healthEval.Evaluate(ctx)
}

// selectMetricsProvider returns a metrics.Provider for Config.MetricsBackend;
// nil when metrics are disabled.
func selectMetricsProvider(cfg Config) intmetrics.Provider {
	if !cfg.MetricsEnabled {
		return nil
	}
	switch strings.ToLower(cfg.MetricsBackend) {
	case "", "prom", "prometheus":
		return intmetrics.NewPrometheusProvider(intmetrics.PrometheusProviderOptions{})
	case "otel", "opentelemetry":
		return intmetrics.NewOTelProvider(intmetrics.OTelProviderOptions{})
	case "noop":
		return intmetrics.NewNoopProvider()
	default:
		return intmetrics.NewPrometheusProvider(intmetrics.PrometheusProviderOptions{})
	}
}
