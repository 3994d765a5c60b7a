// Package entry implements the §4.8 entry/recovery monitor: corridor angle,
// blackout window status, g-load, and the post-splashdown recovery
// timeline.
package entry

import "groundtrack/engine/models"

// EventSource resolves event status and activation GET; satisfied by
// *scheduler.Scheduler.
type EventSource interface {
	EventStatus(eventID string) (models.EventStatus, bool)
	ActivatedAt(eventID string) (models.GET, bool)
}

// Recovery timeline lifecycle status values (§4.8 "pending -> acknowledged
// -> complete"): an entry starts pending, moves to acknowledged once its
// trigger GET is reached, and only reaches complete once the crew confirms
// it via an ActionRecoveryAck manual action.
const (
	RecoveryPending      = "pending"
	RecoveryAcknowledged = "acknowledged"
	RecoveryComplete     = "complete"
)

type recoveryState struct {
	def       models.RecoveryTimelineEntryDef
	atGET     models.GET
	timeKnown bool
	status    string
}

// Monitor derives corridor/blackout/g-load/recovery state from the
// configured entry timeline each tick.
type Monitor struct {
	cfg       models.EntryTimelineDef
	scheduler EventSource

	blackoutStatus string
	corridorOffset float64
	currentG       float64
	recovery       []recoveryState
}

func New(cfg models.EntryTimelineDef, scheduler EventSource) *Monitor {
	m := &Monitor{cfg: cfg, scheduler: scheduler}
	for _, r := range cfg.RecoveryTimeline {
		m.recovery = append(m.recovery, recoveryState{def: r, status: RecoveryPending})
	}
	return m
}

// Tick re-derives every entry-phase projection from present event status.
func (m *Monitor) Tick(now models.GET) {
	switch {
	case now < m.cfg.BlackoutStart:
		m.blackoutStatus = "pending"
	case now < m.cfg.BlackoutEnd:
		m.blackoutStatus = "active"
	default:
		m.blackoutStatus = "complete"
	}

	m.corridorOffset = 0
	for _, o := range m.cfg.CorridorOffsets {
		st, ok := m.scheduler.EventStatus(o.EventID)
		if ok && st == o.Status {
			m.corridorOffset = o.OffsetDeg
			break
		}
	}

	m.currentG = 0
	for _, g := range m.cfg.GLoadProfile {
		st, ok := m.scheduler.EventStatus(g.EventID)
		if ok && st == models.EventActive {
			m.currentG = g.PeakG
			break
		}
	}

	for i := range m.recovery {
		r := &m.recovery[i]
		if r.status != RecoveryPending {
			continue
		}
		if !r.timeKnown {
			if r.def.TriggerEventID == "" {
				r.atGET = models.GET(r.def.OffsetSeconds)
				r.timeKnown = true
			} else if at, ok := m.scheduler.ActivatedAt(r.def.TriggerEventID); ok {
				r.atGET = at.Add(r.def.OffsetSeconds)
				r.timeKnown = true
			}
		}
		if r.timeKnown && now >= r.atGET {
			r.status = RecoveryAcknowledged
		}
	}
}

// Acknowledge confirms the named recovery timeline entry, moving it from
// acknowledged to complete (§4.8 "pending -> acknowledged -> complete"); it
// is a no-op if the entry is still pending or already complete. Reports
// whether the entry id is known at all.
func (m *Monitor) Acknowledge(recoveryID string) bool {
	for i := range m.recovery {
		r := &m.recovery[i]
		if r.def.ID != recoveryID {
			continue
		}
		if r.status == RecoveryAcknowledged {
			r.status = RecoveryComplete
		}
		return true
	}
	return false
}

// CorridorTargetDeg exposes the configured target for UI frame rounding.
func (m *Monitor) CorridorTargetDeg() float64 { return m.cfg.CorridorTargetDeg }

// Snapshot projects the present entry/recovery state for the Frame.
func (m *Monitor) Snapshot() models.EntrySummary {
	summary := models.EntrySummary{
		CorridorTargetDeg: m.cfg.CorridorTargetDeg,
		CorridorOffsetDeg: m.corridorOffset,
		BlackoutActive:    m.blackoutStatus == "active",
		CurrentG:          m.currentG,
	}
	nextSet := false
	for i := range m.recovery {
		r := &m.recovery[i]
		view := models.RecoveryTimelineEntryView{ID: r.def.ID, Label: r.def.Label, AtGET: r.atGET, Status: r.status}
		summary.RecoveryTimeline = append(summary.RecoveryTimeline, view)
		if !nextSet && r.timeKnown && r.status != RecoveryComplete {
			v := view
			summary.RecoveryNext = &v
			nextSet = true
		}
	}
	return summary
}
