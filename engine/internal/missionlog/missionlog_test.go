package missionlog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundtrack/engine/internal/missionlog"
	"groundtrack/engine/models"
)

func TestAppendAssignsMonotonicSequence(t *testing.T) {
	l := missionlog.New(10)
	r1 := l.Append(0, "event", "scheduler", models.AlertNominal, "armed", nil)
	r2 := l.Append(1, "event", "scheduler", models.AlertNominal, "active", nil)
	assert.Equal(t, int64(0), r1.Sequence)
	assert.Equal(t, int64(1), r2.Sequence)
}

func TestRingBufferEvictsOldestPastCapacity(t *testing.T) {
	l := missionlog.New(3)
	for i := 0; i < 5; i++ {
		l.Append(models.GET(i), "cat", "src", models.AlertNominal, "m", nil)
	}
	records, _, _ := l.Snapshot(0)
	require.Len(t, records, 3)
	assert.Equal(t, int64(2), records[0].Sequence)
	assert.Equal(t, int64(4), records[2].Sequence)
}

func TestSnapshotLimitReturnsMostRecent(t *testing.T) {
	l := missionlog.New(100)
	for i := 0; i < 10; i++ {
		l.Append(models.GET(i), "cat", "src", models.AlertNominal, "m", nil)
	}
	records, _, _ := l.Snapshot(2)
	require.Len(t, records, 2)
	assert.Equal(t, int64(8), records[0].Sequence)
}

func TestHistogramsCountByCategoryAndSeverity(t *testing.T) {
	l := missionlog.New(100)
	l.Append(0, "event", "scheduler", models.AlertWarning, "m1", nil)
	l.Append(1, "event", "scheduler", models.AlertWarning, "m2", nil)
	l.Append(2, "resource", "resources", models.AlertCaution, "m3", nil)
	_, byCategory, bySeverity := l.Snapshot(0)
	assert.Equal(t, 2, byCategory["event"])
	assert.Equal(t, 1, byCategory["resource"])
	assert.Equal(t, 2, bySeverity[string(models.AlertWarning)])
}

func TestReportRendersMarkdownTable(t *testing.T) {
	l := missionlog.New(10)
	l.Append(0, "event", "scheduler", models.AlertNominal, "plain message", nil)
	report, err := l.Report("Test Mission", nil)
	require.NoError(t, err)
	assert.Contains(t, report, "# Test Mission")
	assert.Contains(t, report, "plain message")
}
