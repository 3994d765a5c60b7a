// Package manualqueue implements the §4.6 manual action queue: trigger-GET
// ordering, drain-and-dispatch to the bound subsystem, and bounded retry of
// actions that fail against current state.
package manualqueue

import (
	"sort"

	"groundtrack/engine/models"
)

// ChecklistDispatcher is the checklist.Manager surface a manual
// checklist_ack action dispatches to.
type ChecklistDispatcher interface {
	Acknowledge(now models.GET, eventID string, stepNumber int, actor models.ActionActor) error
}

// ResourceDispatcher is the resources.Manager surface a manual resource
// delta or panel-control action dispatches to.
type ResourceDispatcher interface {
	ApplyDelta(d models.ResourceDelta)
}

// AutopilotDispatcher is the autopilot.Runner surface a manual propellant
// burn action dispatches to.
type AutopilotDispatcher interface {
	Start(eventID, programID string, def models.AutopilotProgramDef) error
	Abort(eventID, reason string)
}

// MacroRecorder receives manually entered DSKY verb/noun pairs so they join
// the same macro ledger as autopilot-emitted macros.
type MacroRecorder interface {
	RecordMacro(ev models.MacroEvent)
}

// WorkspaceLogger receives opaque workspace-event tags for the mission log;
// the queue never interprets them.
type WorkspaceLogger interface {
	LogWorkspaceEvent(now models.GET, tag string)
}

// RecoveryDispatcher is the entry.Monitor surface a manual recovery_ack
// action dispatches to.
type RecoveryDispatcher interface {
	Acknowledge(recoveryID string) bool
}

// Dispatch bundles every subsystem surface the queue routes actions to. A
// nil Macros or Workspace field makes those actions apply as no-ops; any
// other nil field makes the dispatch fail, so the action is retried and then
// rejected like any other failed action.
type Dispatch struct {
	Checklists   ChecklistDispatcher
	Resources    ResourceDispatcher
	Autopilots   AutopilotDispatcher
	AutopilotDef func(programID string) (models.AutopilotProgramDef, bool)
	Macros       MacroRecorder
	Workspace    WorkspaceLogger
	Recovery     RecoveryDispatcher
}

type queued struct {
	action   models.ManualAction
	attempts int
	record   models.ManualActionRecord
}

// Manager is the engine's FIFO-by-trigger-GET manual action queue.
type Manager struct {
	defaultMaxRetries     int
	defaultRetryIntervalS float64

	pending  []*queued
	resolved []models.ManualActionRecord

	nextRetryAt map[string]models.GET
}

func New(defaultMaxRetries int, defaultRetryIntervalSeconds float64) *Manager {
	return &Manager{
		defaultMaxRetries:     defaultMaxRetries,
		defaultRetryIntervalS: defaultRetryIntervalSeconds,
		nextRetryAt:           make(map[string]models.GET),
	}
}

// Enqueue adds action to the pending set; the invariant that actions are
// consumed in non-decreasing trigger-GET order is enforced by Tick's sort,
// not by insertion order.
func (m *Manager) Enqueue(action models.ManualAction) {
	m.pending = append(m.pending, &queued{action: action, record: models.ManualActionRecord{Action: action, Status: models.ActionQueued}})
}

// Tick drains and dispatches every action whose TriggerAt has arrived (or
// whose retry backoff has elapsed), in non-decreasing trigger-GET order.
func (m *Manager) Tick(now models.GET, d Dispatch) {
	sort.SliceStable(m.pending, func(i, j int) bool {
		return m.pending[i].action.TriggerAt < m.pending[j].action.TriggerAt
	})

	var still []*queued
	for _, q := range m.pending {
		if q.action.TriggerAt > now {
			still = append(still, q)
			continue
		}
		if retryAt, waiting := m.nextRetryAt[q.action.ID]; waiting && now < retryAt {
			still = append(still, q)
			continue
		}
		if m.attempt(now, q, d) {
			continue
		}
		still = append(still, q)
	}
	m.pending = still
}

// attempt dispatches q once; returns true if q is resolved (applied or
// permanently failed) and should leave the pending set.
func (m *Manager) attempt(now models.GET, q *queued, d Dispatch) bool {
	q.attempts++
	err := dispatch(now, q.action, d)
	if err == nil {
		q.record.Status = models.ActionApplied
		q.record.Attempts = q.attempts
		q.record.ResolvedAt = now
		m.resolved = append(m.resolved, q.record)
		delete(m.nextRetryAt, q.action.ID)
		return true
	}

	maxRetries := q.action.MaxRetries
	if maxRetries == 0 {
		maxRetries = m.defaultMaxRetries
	}
	if q.attempts > maxRetries {
		q.record.Status = models.ActionRejected
		q.record.Attempts = q.attempts
		q.record.ResolvedAt = now
		q.record.RejectReason = err.Error()
		m.resolved = append(m.resolved, q.record)
		delete(m.nextRetryAt, q.action.ID)
		return true
	}
	q.record.Status = models.ActionRetrying
	m.nextRetryAt[q.action.ID] = now.Add(int64(m.defaultRetryIntervalS))
	return false
}

func dispatch(now models.GET, action models.ManualAction, d Dispatch) error {
	switch action.Kind {
	case models.ActionChecklistAck:
		if d.Checklists == nil {
			return models.ErrUnknownChecklist
		}
		return d.Checklists.Acknowledge(now, action.EventID, action.StepNumber, action.Actor)

	case models.ActionResourceDelta:
		if d.Resources == nil {
			return models.ErrUnknownEvent
		}
		d.Resources.ApplyDelta(action.Delta)
		return nil

	case models.ActionPanelControl:
		if d.Resources == nil {
			return models.ErrUnknownEvent
		}
		d.Resources.ApplyDelta(models.ResourceDelta{Channel: action.PanelControl, Value: action.Value, Source: "manual:panel_control"})
		return nil

	case models.ActionDSKYEntry:
		if d.Macros != nil {
			d.Macros.RecordMacro(models.MacroEvent{ID: action.DSKYInput, Verb: action.DSKYVerb, Noun: action.DSKYNoun, At: now})
		}
		return nil

	case models.ActionPropellantBurn:
		if d.Autopilots == nil {
			return models.ErrUnknownAutopilot
		}
		if action.Abort {
			d.Autopilots.Abort(action.EventID, "manual abort")
			return nil
		}
		if d.AutopilotDef == nil {
			return models.ErrUnknownAutopilot
		}
		def, ok := d.AutopilotDef(action.AutopilotID)
		if !ok {
			return models.ErrUnknownAutopilot
		}
		return d.Autopilots.Start(action.EventID, action.AutopilotID, def)

	case models.ActionWorkspaceEvent:
		if d.Workspace != nil {
			d.Workspace.LogWorkspaceEvent(now, action.WorkspaceTag)
		}
		return nil

	case models.ActionRecoveryAck:
		if d.Recovery == nil || !d.Recovery.Acknowledge(action.RecoveryID) {
			return models.ErrUnknownRecoveryEntry
		}
		return nil

	default:
		return models.ErrUnknownEvent
	}
}

// Stats summarizes queue outcomes for the scoring aggregator's manual vs
// auto accounting and the mission log.
type Stats struct {
	Pending  int
	Applied  int
	Rejected int
}

func (m *Manager) Stats() Stats {
	s := Stats{Pending: len(m.pending)}
	for _, r := range m.resolved {
		switch r.Status {
		case models.ActionApplied:
			s.Applied++
		case models.ActionRejected:
			s.Rejected++
		}
	}
	return s
}

// Resolved returns every action record that left the pending queue
// (applied or permanently rejected), in resolution order.
func (m *Manager) Resolved() []models.ManualActionRecord {
	return m.resolved
}
