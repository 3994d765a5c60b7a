package manualqueue_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundtrack/engine/internal/manualqueue"
	"groundtrack/engine/models"
)

type stubChecklists struct {
	err   error
	calls int
}

func (s *stubChecklists) Acknowledge(now models.GET, eventID string, stepNumber int, actor models.ActionActor) error {
	s.calls++
	return s.err
}

type stubResources struct{ applied []models.ResourceDelta }

func (s *stubResources) ApplyDelta(d models.ResourceDelta) { s.applied = append(s.applied, d) }

func TestActionsDrainInTriggerOrder(t *testing.T) {
	cl := &stubChecklists{}
	m := manualqueue.New(3, 5)
	m.Enqueue(models.ManualAction{ID: "a2", Kind: models.ActionChecklistAck, TriggerAt: 20, EventID: "evt_1", StepNumber: 1})
	m.Enqueue(models.ManualAction{ID: "a1", Kind: models.ActionChecklistAck, TriggerAt: 10, EventID: "evt_1", StepNumber: 1})

	m.Tick(5, manualqueue.Dispatch{Checklists: cl})
	assert.Equal(t, 0, cl.calls)

	m.Tick(25, manualqueue.Dispatch{Checklists: cl})
	require.Equal(t, 2, cl.calls)
	resolved := m.Resolved()
	require.Len(t, resolved, 2)
	assert.Equal(t, "a1", resolved[0].Action.ID)
	assert.Equal(t, "a2", resolved[1].Action.ID)
}

func TestResourceDeltaDispatchesToResourceSink(t *testing.T) {
	res := &stubResources{}
	m := manualqueue.New(3, 5)
	m.Enqueue(models.ManualAction{ID: "a1", Kind: models.ActionResourceDelta, TriggerAt: 0, Delta: models.ResourceDelta{Channel: "csm_sps_kg", Value: -5}})

	m.Tick(0, manualqueue.Dispatch{Resources: res})
	require.Len(t, res.applied, 1)
	assert.Equal(t, "csm_sps_kg", res.applied[0].Channel)
}

func TestFailedActionRetriesThenRejects(t *testing.T) {
	cl := &stubChecklists{err: errors.New("prereq unmet")}
	m := manualqueue.New(1, 0)
	m.Enqueue(models.ManualAction{ID: "a1", Kind: models.ActionChecklistAck, TriggerAt: 0, EventID: "evt_1", StepNumber: 1})

	m.Tick(0, manualqueue.Dispatch{Checklists: cl}) // attempt 1: retry
	assert.Equal(t, 1, m.Stats().Pending)

	m.Tick(1, manualqueue.Dispatch{Checklists: cl}) // attempt 2: exceeds max_retries=1, rejected
	assert.Equal(t, 0, m.Stats().Pending)
	assert.Equal(t, 1, m.Stats().Rejected)
	require.Len(t, m.Resolved(), 1)
	assert.Equal(t, models.ActionRejected, m.Resolved()[0].Status)
}

func TestUnwiredWorkspaceLoggerAppliesAsNoOp(t *testing.T) {
	m := manualqueue.New(0, 0)
	m.Enqueue(models.ManualAction{ID: "a1", Kind: models.ActionWorkspaceEvent, TriggerAt: 0, WorkspaceTag: "panel-reflow"})

	m.Tick(0, manualqueue.Dispatch{})
	assert.Equal(t, 0, m.Stats().Pending)
	assert.Equal(t, 1, m.Stats().Applied)
}
