// Package checklist implements the §4.5 checklist manager: ordered-step
// acknowledgement, auto-advance scheduling with manual preemption,
// prerequisite evaluation, and "next attention" chip selection.
package checklist

import (
	"sort"

	"groundtrack/engine/models"
)

// EventStatusSource resolves a prior event's lifecycle status, the
// event-predicate half of a ChecklistStepDef prerequisite.
type EventStatusSource interface {
	EventStatus(eventID string) (models.EventStatus, bool)
}

// ResourceSource resolves a resource channel's present value, the
// resource-predicate half of a prerequisite.
type ResourceSource interface {
	ChannelValue(channel string) (float64, bool)
}

// ResourceSink applies a step's side-effect deltas and failure clears;
// satisfied by *resources.Manager.
type ResourceSink interface {
	ApplyDelta(d models.ResourceDelta)
	ClearFailure(id string)
}

type active struct {
	eventID     string
	def         models.ChecklistDef
	acked       map[string]bool
	order       int // index into def.Steps of the next pending step
	autoAckAt   models.GET
	autoPending bool
	manualOnly  bool
}

func (a *active) stepsCompleted() int { return a.order }
func (a *active) stepsTotal() int     { return len(a.def.Steps) }

func (a *active) nextStep() (models.ChecklistStepDef, bool) {
	if a.order >= len(a.def.Steps) {
		return models.ChecklistStepDef{}, false
	}
	return a.def.Steps[a.order], true
}

func (a *active) autoAdvanceEnabled(globalManual bool) bool {
	if globalManual || a.manualOnly {
		return false
	}
	if a.def.AutoAdvance == nil {
		return true
	}
	return *a.def.AutoAdvance
}

func (a *active) stepDuration(defaultSeconds int64) int64 {
	if a.def.StepDurationSeconds > 0 {
		return a.def.StepDurationSeconds
	}
	return defaultSeconds
}

// Config tunes the manager's default scheduling behavior.
type Config struct {
	// ManualOnly forces every step on every checklist to require an
	// explicit acknowledgement, overriding per-checklist AutoAdvance.
	ManualOnly bool
	// DefaultStepDurationSeconds backs a checklist whose
	// StepDurationSeconds is left at zero (§4.5 "default 15 s").
	DefaultStepDurationSeconds int64
}

// Manager tracks every currently-active checklist, one per bound event.
type Manager struct {
	cfg      Config
	status   EventStatusSource
	resource ResourceSource
	sink     ResourceSink

	byEvent map[string]*active

	manualAcks int
	autoAcks   int
	completed  int
	deferred   int
}

func New(cfg Config, status EventStatusSource, resource ResourceSource, sink ResourceSink) *Manager {
	return &Manager{
		cfg:      cfg,
		status:   status,
		resource: resource,
		sink:     sink,
		byEvent:  make(map[string]*active),
	}
}

// SetStatusSource attaches the event-status lookup after construction, for
// callers whose status source (the scheduler) is itself constructed with a
// reference back to this manager.
func (m *Manager) SetStatusSource(status EventStatusSource) {
	m.status = status
}

// Activate binds def to eventID and schedules the first step's auto-ack if
// auto-advance applies. Steps are sorted by Order on entry so step_number in
// Acknowledge can be matched positionally.
func (m *Manager) Activate(eventID string, def models.ChecklistDef) {
	sorted := make([]models.ChecklistStepDef, len(def.Steps))
	copy(sorted, def.Steps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	def.Steps = sorted

	a := &active{eventID: eventID, def: def, acked: make(map[string]bool)}
	m.byEvent[eventID] = a
	m.scheduleNext(a, 0)
}

func (m *Manager) scheduleNext(a *active, now models.GET) {
	step, ok := a.nextStep()
	if !ok || !a.autoAdvanceEnabled(m.cfg.ManualOnly) || step.ManualOnly {
		a.autoPending = false
		return
	}
	a.autoAckAt = now.Add(a.stepDuration(m.cfg.DefaultStepDurationSeconds))
	a.autoPending = true
}

func (m *Manager) evaluatePrereqs(pre []models.Predicate) bool {
	for _, p := range pre {
		if p.IsEventPredicate() {
			if m.status == nil {
				return false
			}
			st, ok := m.status.EventStatus(p.EventID)
			if !ok || st != p.RequiredState {
				return false
			}
			continue
		}
		if m.resource == nil {
			return false
		}
		val, ok := m.resource.ChannelValue(p.Channel)
		if !ok || !compare(val, p.Comparator, p.Threshold) {
			return false
		}
	}
	return true
}

func compare(val float64, cmp models.Comparator, threshold float64) bool {
	switch cmp {
	case models.CmpLT:
		return val < threshold
	case models.CmpLE:
		return val <= threshold
	case models.CmpGT:
		return val > threshold
	case models.CmpGE:
		return val >= threshold
	case models.CmpEQ:
		return val == threshold
	default:
		return true
	}
}

// Acknowledge applies a step acknowledgement. stepNumber is matched against
// the step's Order field, not a positional index, so callers can reference
// mission-data step numbers directly. now is used to rebase the next step's
// auto-ack schedule, so a manual ack consumed mid-window correctly preempts
// the stale schedule rather than leaving the following step racing to catch
// up (§4.5 "a manual ack consumed this tick preempts the pending auto ack").
func (m *Manager) Acknowledge(now models.GET, eventID string, stepNumber int, actor models.ActionActor) error {
	a, ok := m.byEvent[eventID]
	if !ok {
		return models.ErrUnknownChecklist
	}
	step, ok := a.nextStep()
	if !ok {
		return models.ErrStepOutOfOrder
	}
	if step.Order != stepNumber {
		return models.ErrStepOutOfOrder
	}
	if !m.evaluatePrereqs(step.Prerequisites) {
		m.deferred++
		return models.ErrStepPrereqUnmet
	}

	a.acked[step.ID] = true
	a.order++
	if actor == models.ActorManualCrew {
		m.manualAcks++
	} else {
		m.autoAcks++
	}
	if m.sink != nil {
		for _, d := range step.SideEffects {
			m.sink.ApplyDelta(d)
		}
		if step.ClearsFailure != "" {
			m.sink.ClearFailure(step.ClearsFailure)
		}
	}
	if a.order >= len(a.def.Steps) {
		m.completed++
		a.autoPending = false
	} else {
		m.scheduleNext(a, now)
	}
	return nil
}

// Tick advances auto-ack scheduling: any checklist whose scheduled auto-ack
// time has arrived attempts an automatic acknowledgement of its next
// pending step. Unmet prerequisites defer the attempt to the next tick
// without rescheduling further forward.
func (m *Manager) Tick(now models.GET) {
	var ids []string
	for id := range m.byEvent {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		a := m.byEvent[id]
		if !a.autoPending || now < a.autoAckAt {
			continue
		}
		step, ok := a.nextStep()
		if !ok {
			a.autoPending = false
			continue
		}
		_ = m.Acknowledge(now, id, step.Order, models.ActorAutoCrew)
	}
}

// Active reports whether a checklist is bound to eventID.
func (m *Manager) Active(eventID string) bool {
	_, ok := m.byEvent[eventID]
	return ok
}

// Complete reports whether the checklist bound to eventID has every step
// acknowledged. Returns false if no checklist is bound.
func (m *Manager) Complete(eventID string) bool {
	a, ok := m.byEvent[eventID]
	return ok && a.order >= len(a.def.Steps)
}

// Stats summarizes manual-vs-auto acknowledgement counts for the scoring
// aggregator's manual_fraction computation.
type Stats struct {
	ManualAcks int
	AutoAcks   int
	Completed  int
	Deferred   int
}

func (m *Manager) Stats() Stats {
	return Stats{ManualAcks: m.manualAcks, AutoAcks: m.autoAcks, Completed: m.completed, Deferred: m.deferred}
}

// Snapshot selects the "next attention" chip: the active, incomplete
// checklist with fewest remaining steps, ties broken by smaller next-step
// number then lexicographic event id (§4.5 "Chip selection").
func (m *Manager) Snapshot() (models.ChecklistView, bool) {
	var bestID string
	var best *active
	var ids []string
	for id := range m.byEvent {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		a := m.byEvent[id]
		if a.order >= len(a.def.Steps) {
			continue
		}
		if best == nil || remaining(a) < remaining(best) ||
			(remaining(a) == remaining(best) && nextOrder(a) < nextOrder(best)) {
			best = a
			bestID = id
		}
	}
	if best == nil {
		return models.ChecklistView{}, false
	}
	activeStepID := ""
	if step, ok := best.nextStep(); ok {
		activeStepID = step.ID
	}
	return models.ChecklistView{
		ID:             bestID,
		Title:          best.def.Title,
		ActiveStepID:   activeStepID,
		StepsCompleted: best.stepsCompleted(),
		StepsTotal:     best.stepsTotal(),
		AutoAdvance:    best.autoAdvanceEnabled(m.cfg.ManualOnly),
	}, true
}

func remaining(a *active) int { return a.stepsTotal() - a.stepsCompleted() }

func nextOrder(a *active) int {
	if step, ok := a.nextStep(); ok {
		return step.Order
	}
	return 1 << 30
}
