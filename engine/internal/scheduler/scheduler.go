// Package scheduler implements the §4.2 event scheduler: precondition
// evaluation, the pending -> armed -> active -> {complete, failed} lifecycle,
// and failure-taxonomy consultation on event failure.
package scheduler

import (
	"sort"

	"groundtrack/engine/models"
)

// ResourceSource resolves a resource channel's present value, used to
// evaluate an event's resource-predicate preconditions.
type ResourceSource interface {
	ChannelValue(channel string) (float64, bool)
}

// ChecklistBinder is the subset of checklist.Manager the scheduler drives.
type ChecklistBinder interface {
	Activate(eventID string, def models.ChecklistDef)
	Complete(eventID string) bool
}

// AutopilotBinder is the subset of autopilot.Runner the scheduler drives.
type AutopilotBinder interface {
	Start(eventID, programID string, def models.AutopilotProgramDef) error
	IsComplete(eventID string) bool
	Aborted(eventID string) (reason string, aborted bool)
}

// FailureRegistrar applies a failure taxonomy entry's immediate effect and
// begins its ongoing penalty; satisfied by *resources.Manager.
type FailureRegistrar interface {
	RegisterFailure(id string) error
}

type eventState struct {
	def         models.EventDef
	status      models.EventStatus
	activatedAt models.GET
	missed      bool
}

// TickResult reports the ids that changed lifecycle bucket this tick, in
// event-id lexicographic order per the tie-break rule.
type TickResult struct {
	Armed     []string
	Activated []string
	Completed []string
	Missed    []string
	Failed    []string
}

// Scheduler owns every mission event's lifecycle state.
type Scheduler struct {
	resources    ResourceSource
	checklists   ChecklistBinder
	autopilots   AutopilotBinder
	failures     FailureRegistrar
	checklistDef map[string]models.ChecklistDef
	autopilotDef map[string]models.AutopilotProgramDef

	events map[string]*eventState
	order  []string

	pads map[string]models.PADParameters
}

// SetPADIndex attaches the mission's PAD-id -> parameters lookup so Snapshot
// can enrich an EventView carrying a PADID. Optional; a Scheduler with no
// index attached simply never populates EventView.PAD.
func (s *Scheduler) SetPADIndex(pads map[string]models.PADParameters) {
	s.pads = pads
}

func New(
	defs []models.EventDef,
	checklistDefs []models.ChecklistDef,
	autopilotDefs []models.AutopilotProgramDef,
	resources ResourceSource,
	checklists ChecklistBinder,
	autopilots AutopilotBinder,
	failures FailureRegistrar,
) *Scheduler {
	s := &Scheduler{
		resources:    resources,
		checklists:   checklists,
		autopilots:   autopilots,
		failures:     failures,
		checklistDef: make(map[string]models.ChecklistDef, len(checklistDefs)),
		autopilotDef: make(map[string]models.AutopilotProgramDef, len(autopilotDefs)),
		events:       make(map[string]*eventState, len(defs)),
	}
	for _, c := range checklistDefs {
		s.checklistDef[c.ID] = c
	}
	for _, a := range autopilotDefs {
		s.autopilotDef[a.ID] = a
	}
	for _, d := range defs {
		s.events[d.ID] = &eventState{def: d, status: models.EventPending}
		s.order = append(s.order, d.ID)
	}
	sort.Slice(s.order, func(i, j int) bool {
		a, b := s.events[s.order[i]], s.events[s.order[j]]
		if a.def.OpensAt != b.def.OpensAt {
			return a.def.OpensAt < b.def.OpensAt
		}
		return s.order[i] < s.order[j]
	})
	return s
}

// EventStatus implements checklist.EventStatusSource so checklist step
// prerequisites can reference prior-event completion.
func (s *Scheduler) EventStatus(eventID string) (models.EventStatus, bool) {
	st, ok := s.events[eventID]
	if !ok {
		return "", false
	}
	return st.status, true
}

func (s *Scheduler) evaluatePrecondition(pre models.Precondition) bool {
	for _, p := range pre.All {
		if p.IsEventPredicate() {
			st, ok := s.EventStatus(p.EventID)
			if !ok || st != p.RequiredState {
				return false
			}
			continue
		}
		if s.resources == nil {
			return false
		}
		val, ok := s.resources.ChannelValue(p.Channel)
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

// Tick advances every event's lifecycle exactly once.
func (s *Scheduler) Tick(now models.GET) TickResult {
	var res TickResult
	for _, id := range s.order {
		st := s.events[id]
		switch st.status {
		case models.EventPending:
			if st.def.OpensAt > now {
				continue
			}
			if !s.evaluatePrecondition(st.def.Precondition) {
				continue
			}
			st.status = models.EventArmed
			res.Armed = append(res.Armed, id)
			s.activate(now, st)
			res.Activated = append(res.Activated, id)

		case models.EventActive:
			s.evaluateExit(now, st, &res)
		}
	}
	sort.Strings(res.Armed)
	sort.Strings(res.Activated)
	sort.Strings(res.Completed)
	sort.Strings(res.Missed)
	sort.Strings(res.Failed)
	return res
}

func (s *Scheduler) activate(now models.GET, st *eventState) {
	st.status = models.EventActive
	st.activatedAt = now
	if st.def.ChecklistID != "" && s.checklists != nil {
		if def, ok := s.checklistDef[st.def.ChecklistID]; ok {
			s.checklists.Activate(st.def.ID, def)
		}
	}
	if st.def.AutopilotID != "" && s.autopilots != nil {
		if def, ok := s.autopilotDef[st.def.AutopilotID]; ok {
			_ = s.autopilots.Start(st.def.ID, st.def.AutopilotID, def)
		}
	}
}

func (s *Scheduler) checklistComplete(st *eventState) bool {
	if st.def.ChecklistID == "" || s.checklists == nil {
		return true
	}
	return s.checklists.Complete(st.def.ID)
}

func (s *Scheduler) autopilotComplete(st *eventState) bool {
	if st.def.AutopilotID == "" || s.autopilots == nil {
		return true
	}
	if !s.autopilots.IsComplete(st.def.ID) {
		return false
	}
	_, aborted := s.autopilots.Aborted(st.def.ID)
	return !aborted
}

func (s *Scheduler) evaluateExit(now models.GET, st *eventState, res *TickResult) {
	if s.checklistComplete(st) && s.autopilotComplete(st) {
		st.status = models.EventComplete
		res.Completed = append(res.Completed, st.def.ID)
		return
	}
	if now.Seconds() > st.def.ClosesAt.Seconds() {
		if st.def.Mandatory {
			s.fail(st, res)
		} else {
			st.status = models.EventComplete
			st.missed = true
			res.Completed = append(res.Completed, st.def.ID)
			res.Missed = append(res.Missed, st.def.ID)
		}
		return
	}
	if s.autopilots != nil && st.def.AutopilotID != "" {
		if _, aborted := s.autopilots.Aborted(st.def.ID); aborted {
			s.fail(st, res)
		}
	}
}

func (s *Scheduler) fail(st *eventState, res *TickResult) {
	st.status = models.EventFailed
	res.Failed = append(res.Failed, st.def.ID)
	if s.failures == nil {
		return
	}
	for _, id := range st.def.FailureBindings {
		_ = s.failures.RegisterFailure(id)
	}
}

// ActivatedAt returns the GET at which eventID transitioned to active. The
// second return is false if the event never left pending/armed.
func (s *Scheduler) ActivatedAt(eventID string) (models.GET, bool) {
	st, ok := s.events[eventID]
	if !ok {
		return 0, false
	}
	switch st.status {
	case models.EventActive, models.EventComplete, models.EventFailed:
		return st.activatedAt, true
	default:
		return 0, false
	}
}

// GetEventByID returns the event definition and present status.
func (s *Scheduler) GetEventByID(id string) (models.EventDef, models.EventStatus, bool) {
	st, ok := s.events[id]
	if !ok {
		return models.EventDef{}, "", false
	}
	return st.def, st.status, true
}

// Missed reports whether a completed event finished past its close window
// as an optional (non-mandatory) event.
func (s *Scheduler) Missed(id string) bool {
	st, ok := s.events[id]
	return ok && st.missed
}

// Stats summarizes event counts by status for the scoring aggregator.
type Stats struct {
	Pending   int
	Armed     int
	Active    int
	Completed int
	Missed    int
	Failed    int
}

func (s *Scheduler) Stats() Stats {
	var st Stats
	for _, e := range s.events {
		switch e.status {
		case models.EventPending:
			st.Pending++
		case models.EventArmed:
			st.Armed++
		case models.EventActive:
			st.Active++
		case models.EventComplete:
			st.Completed++
			if e.missed {
				st.Missed++
			}
		case models.EventFailed:
			st.Failed++
		}
	}
	return st
}

// Snapshot projects upcoming/active events for the Frame's EventsSummary.
func (s *Scheduler) Snapshot() models.EventsSummary {
	var out models.EventsSummary
	for _, id := range s.order {
		e := s.events[id]
		v := models.EventView{ID: id, Phase: e.def.Phase, Status: e.status, OpensAt: e.def.OpensAt, ClosesAt: e.def.ClosesAt, PADID: e.def.PADID}
		if e.def.PADID != "" && s.pads != nil {
			if params, ok := s.pads[e.def.PADID]; ok {
				p := params
				v.PAD = &p
			}
		}
		switch e.status {
		case models.EventPending:
			out.Upcoming = append(out.Upcoming, v)
			out.Counts.Pending++
		case models.EventArmed:
			out.Upcoming = append(out.Upcoming, v)
			out.Counts.Armed++
		case models.EventActive:
			out.Active = append(out.Active, v)
			out.Counts.Active++
		case models.EventComplete:
			out.Counts.Completed++
			if e.missed {
				out.Counts.Missed++
			}
		case models.EventFailed:
			out.Counts.Failed++
		}
	}
	if len(out.Active) > 0 {
		v := out.Active[0]
		out.Next = &v
	} else if len(out.Upcoming) > 0 {
		v := out.Upcoming[0]
		out.Next = &v
	}
	return out
}
