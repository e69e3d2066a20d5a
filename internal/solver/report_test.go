package solver

import (
	"testing"

	"github.com/planexam/surveillance-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReportRostersAndLoads(t *testing.T) {
	input, err := NewInput(
		[]*domain.Session{
			testSession(1, 9, 11, 1, "A101", "B202"),
			testSession(2, 14, 16, 1, "A101"),
		},
		[]*domain.Supervisor{testSupervisor(1), testSupervisor(2)},
		nil,
		map[int64]domain.FairnessCounter{
			1: {SupervisorID: 1, Sessions: 2, Hours: 4},
		},
	)
	require.NoError(t, err)

	solution := &domain.Solution{
		ExamPeriodID: 5,
		Assignments: []domain.SlotAssignment{
			{SessionID: 1, Room: "A101", SupervisorIDs: []int64{1}},
			{SessionID: 1, Room: "B202", SupervisorIDs: []int64{2}},
			{SessionID: 2, Room: "A101", SupervisorIDs: []int64{2}},
		},
		Score:         -0.5,
		ProvenOptimal: true,
	}

	report, err := BuildReport(solution, input)
	require.NoError(t, err)

	assert.Equal(t, int64(5), report.ExamPeriodID)
	assert.Equal(t, -0.5, report.Score)
	assert.True(t, report.ProvenOptimal)

	require.Len(t, report.Sessions, 2)
	first := report.Sessions[0]
	assert.Equal(t, int64(1), first.SessionID)
	require.Len(t, first.Rooms, 2)
	assert.Equal(t, "A101", first.Rooms[0].Room)
	assert.Equal(t, []string{"Surveillant N°1"}, first.Rooms[0].Supervisors)
	assert.Equal(t, []string{"Surveillant N°2"}, first.Rooms[1].Supervisors)

	require.Len(t, report.Loads, 2)
	assert.Equal(t, int64(1), report.Loads[0].SupervisorID)
	assert.Equal(t, 1, report.Loads[0].Sessions)
	assert.InDelta(t, 2.0, report.Loads[0].Hours, 1e-9)
	assert.Equal(t, 2, report.Loads[0].PriorSessions)
	assert.InDelta(t, 4.0, report.Loads[0].PriorHours, 1e-9)
	assert.Equal(t, 2, report.Loads[1].Sessions)
	assert.InDelta(t, 4.0, report.Loads[1].Hours, 1e-9)
}

func TestBuildReportCountsMultiRoomSessionOnce(t *testing.T) {
	input, err := NewInput(
		[]*domain.Session{testSession(1, 9, 11, 1, "A101", "B202")},
		[]*domain.Supervisor{testSupervisor(1)},
		nil, nil,
	)
	require.NoError(t, err)

	solution := &domain.Solution{
		Assignments: []domain.SlotAssignment{
			{SessionID: 1, Room: "A101", SupervisorIDs: []int64{1}},
			{SessionID: 1, Room: "B202", SupervisorIDs: []int64{1}},
		},
	}

	report, err := BuildReport(solution, input)
	require.NoError(t, err)

	require.Len(t, report.Loads, 1)
	assert.Equal(t, 1, report.Loads[0].Sessions)
	assert.InDelta(t, 2.0, report.Loads[0].Hours, 1e-9)
}

func TestBuildReportCarriesDiagnostics(t *testing.T) {
	input, err := NewInput(
		[]*domain.Session{testSession(1, 9, 11, 2, "A101")},
		[]*domain.Supervisor{testSupervisor(1)},
		nil, nil,
	)
	require.NoError(t, err)

	solution := &domain.Solution{
		Assignments: []domain.SlotAssignment{
			{SessionID: 1, Room: "A101", SupervisorIDs: []int64{1}},
		},
		Diagnostics: []domain.Diagnostic{
			{SessionID: 1, Room: "A101", Required: 2, Assigned: 1, Reason: domain.ReasonInfeasible},
		},
	}

	report, err := BuildReport(solution, input)
	require.NoError(t, err)

	require.Len(t, report.Understaffed, 1)
	assert.Equal(t, domain.ReasonInfeasible, report.Understaffed[0].Reason)
}

func TestBuildReportRejectsUnknownReferences(t *testing.T) {
	input, err := NewInput(
		[]*domain.Session{testSession(1, 9, 11, 1, "A101")},
		[]*domain.Supervisor{testSupervisor(1)},
		nil, nil,
	)
	require.NoError(t, err)

	_, err = BuildReport(&domain.Solution{
		Assignments: []domain.SlotAssignment{
			{SessionID: 99, Room: "A101", SupervisorIDs: []int64{1}},
		},
	}, input)
	assert.Error(t, err)

	_, err = BuildReport(&domain.Solution{
		Assignments: []domain.SlotAssignment{
			{SessionID: 1, Room: "A101", SupervisorIDs: []int64{99}},
		},
	}, input)
	assert.Error(t, err)
}
