package entry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundtrack/engine/internal/entry"
	"groundtrack/engine/models"
)

type stubScheduler struct {
	statuses    map[string]models.EventStatus
	activations map[string]models.GET
}

func (s *stubScheduler) EventStatus(id string) (models.EventStatus, bool) {
	st, ok := s.statuses[id]
	return st, ok
}

func (s *stubScheduler) ActivatedAt(id string) (models.GET, bool) {
	at, ok := s.activations[id]
	return at, ok
}

func cfg() models.EntryTimelineDef {
	return models.EntryTimelineDef{
		CorridorTargetDeg: 6.5,
		CorridorOffsets: []models.CorridorOffsetDef{
			{EventID: "evt_ei", Status: models.EventActive, OffsetDeg: -0.2},
		},
		BlackoutStart: 100,
		BlackoutEnd:   200,
		GLoadProfile:  []models.GLoadPointDef{{EventID: "evt_ei", PeakG: 6.3}},
		RecoveryTimeline: []models.RecoveryTimelineEntryDef{
			{ID: "r1", Label: "Swimmer deployment", TriggerEventID: "evt_splashdown", OffsetSeconds: 600},
		},
	}
}

func TestBlackoutWindowTransitions(t *testing.T) {
	sched := &stubScheduler{statuses: map[string]models.EventStatus{}}
	m := entry.New(cfg(), sched)

	m.Tick(50)
	assert.False(t, m.Snapshot().BlackoutActive)

	m.Tick(150)
	assert.True(t, m.Snapshot().BlackoutActive)

	m.Tick(250)
	assert.False(t, m.Snapshot().BlackoutActive)
}

func TestCorridorOffsetSelectedByEventStatus(t *testing.T) {
	sched := &stubScheduler{statuses: map[string]models.EventStatus{"evt_ei": models.EventActive}}
	m := entry.New(cfg(), sched)
	m.Tick(0)
	assert.Equal(t, -0.2, m.Snapshot().CorridorOffsetDeg)
}

func TestGLoadReflectsActiveEvent(t *testing.T) {
	sched := &stubScheduler{statuses: map[string]models.EventStatus{"evt_ei": models.EventActive}}
	m := entry.New(cfg(), sched)
	m.Tick(0)
	assert.Equal(t, 6.3, m.Snapshot().CurrentG)
}

func TestRecoveryNextBecomesKnownAfterTrigger(t *testing.T) {
	sched := &stubScheduler{statuses: map[string]models.EventStatus{}, activations: map[string]models.GET{}}
	m := entry.New(cfg(), sched)

	m.Tick(0)
	_, ok := func() (*models.RecoveryTimelineEntryView, bool) { s := m.Snapshot(); return s.RecoveryNext, s.RecoveryNext != nil }()
	assert.False(t, ok)

	sched.activations["evt_splashdown"] = 1000
	m.Tick(1000)
	snap := m.Snapshot()
	require.NotNil(t, snap.RecoveryNext)
	assert.Equal(t, models.GET(1600), snap.RecoveryNext.AtGET)
}

func TestRecoveryTimelineProgressesThroughThreeStates(t *testing.T) {
	sched := &stubScheduler{statuses: map[string]models.EventStatus{}, activations: map[string]models.GET{}}
	m := entry.New(cfg(), sched)

	m.Tick(0)
	require.Len(t, m.Snapshot().RecoveryTimeline, 1)
	assert.Equal(t, entry.RecoveryPending, m.Snapshot().RecoveryTimeline[0].Status)

	sched.activations["evt_splashdown"] = 1000
	m.Tick(1600)
	snap := m.Snapshot()
	require.Len(t, snap.RecoveryTimeline, 1)
	assert.Equal(t, entry.RecoveryAcknowledged, snap.RecoveryTimeline[0].Status)
	require.NotNil(t, snap.RecoveryNext)
	assert.Equal(t, "r1", snap.RecoveryNext.ID)

	assert.False(t, m.Acknowledge("unknown-id"))
	assert.True(t, m.Acknowledge("r1"))

	snap = m.Snapshot()
	assert.Equal(t, entry.RecoveryComplete, snap.RecoveryTimeline[0].Status)
	assert.Nil(t, snap.RecoveryNext)
}
