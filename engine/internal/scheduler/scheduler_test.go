package scheduler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundtrack/engine/internal/scheduler"
	"groundtrack/engine/models"
)

type stubResources struct{ values map[string]float64 }

func (s *stubResources) ChannelValue(ch string) (float64, bool) {
	v, ok := s.values[ch]
	return v, ok
}

type stubChecklists struct{ complete map[string]bool }

func (s *stubChecklists) Activate(eventID string, def models.ChecklistDef) {}
func (s *stubChecklists) Complete(eventID string) bool                    { return s.complete[eventID] }

type stubAutopilots struct {
	complete map[string]bool
	aborted  map[string]string
	started  []string
}

func (s *stubAutopilots) Start(eventID, programID string, def models.AutopilotProgramDef) error {
	s.started = append(s.started, eventID)
	return nil
}
func (s *stubAutopilots) IsComplete(eventID string) bool { return s.complete[eventID] }
func (s *stubAutopilots) Aborted(eventID string) (string, bool) {
	r, ok := s.aborted[eventID]
	return r, ok
}

type stubFailures struct{ registered []string }

func (s *stubFailures) RegisterFailure(id string) error {
	s.registered = append(s.registered, id)
	return nil
}

func simpleEvent() models.EventDef {
	return models.EventDef{ID: "evt_1", OpensAt: 10, ClosesAt: 100, Mandatory: true}
}

func TestPendingTransitionsToActiveWhenPreconditionHolds(t *testing.T) {
	s := scheduler.New([]models.EventDef{simpleEvent()}, nil, nil, &stubResources{}, nil, nil, nil)
	res := s.Tick(10)
	assert.Contains(t, res.Activated, "evt_1")
	_, status, _ := s.GetEventByID("evt_1")
	assert.Equal(t, models.EventActive, status)
}

func TestPendingStaysWhenPreconditionUnmet(t *testing.T) {
	ev := simpleEvent()
	ev.Precondition = models.Precondition{All: []models.Predicate{{Channel: "csm_sps_kg", Comparator: models.CmpGE, Threshold: 500}}}
	s := scheduler.New([]models.EventDef{ev}, nil, nil, &stubResources{values: map[string]float64{"csm_sps_kg": 100}}, nil, nil, nil)
	res := s.Tick(10)
	assert.Empty(t, res.Activated)
	_, status, _ := s.GetEventByID("evt_1")
	assert.Equal(t, models.EventPending, status)
}

func TestActiveCompletesWhenChecklistAndAutopilotDone(t *testing.T) {
	ev := simpleEvent()
	ev.ChecklistID = "cl_1"
	ev.AutopilotID = "ap_1"
	cl := &stubChecklists{complete: map[string]bool{}}
	ap := &stubAutopilots{complete: map[string]bool{}}
	s := scheduler.New([]models.EventDef{ev},
		[]models.ChecklistDef{{ID: "cl_1"}},
		[]models.AutopilotProgramDef{{ID: "ap_1"}},
		&stubResources{}, cl, ap, nil)

	s.Tick(10)
	assert.ElementsMatch(t, []string{"evt_1"}, ap.started)

	cl.complete["evt_1"] = true
	ap.complete["evt_1"] = true
	res := s.Tick(11)
	assert.Contains(t, res.Completed, "evt_1")
}

func TestMandatoryEventFailsAfterCloseWindow(t *testing.T) {
	ev := simpleEvent()
	s := scheduler.New([]models.EventDef{ev}, nil, nil, &stubResources{}, nil, nil, nil)
	s.Tick(10)
	res := s.Tick(150)
	require.Contains(t, res.Failed, "evt_1")
}

func TestOptionalEventMissedAfterCloseWindow(t *testing.T) {
	ev := simpleEvent()
	ev.Mandatory = false
	s := scheduler.New([]models.EventDef{ev}, nil, nil, &stubResources{}, nil, nil, nil)
	s.Tick(10)
	res := s.Tick(150)
	assert.Contains(t, res.Completed, "evt_1")
	assert.Contains(t, res.Missed, "evt_1")
	assert.True(t, s.Missed("evt_1"))
}

func TestAutopilotAbortFailsEventAndRegistersFailure(t *testing.T) {
	ev := simpleEvent()
	ev.AutopilotID = "ap_1"
	ev.FailureBindings = []string{"failure_x"}
	ap := &stubAutopilots{complete: map[string]bool{"evt_1": true}, aborted: map[string]string{}}
	failures := &stubFailures{}
	s := scheduler.New([]models.EventDef{ev}, nil, []models.AutopilotProgramDef{{ID: "ap_1"}}, &stubResources{}, nil, ap, failures)

	s.Tick(10)
	ap.aborted["evt_1"] = "propellant exhausted"
	res := s.Tick(11)
	assert.Contains(t, res.Failed, "evt_1")
	assert.Contains(t, failures.registered, "failure_x")
}
