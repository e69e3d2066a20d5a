package solver

import (
	"testing"

	"github.com/planexam/surveillance-manager/backend/internal/domain"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateDetectsDoubleBookingAcrossOverlappingSessions(t *testing.T) {
	input, err := NewInput(
		[]*domain.Session{
			testSession(1, 9, 11, 1, "A101"),
			testSession(2, 10, 12, 1, "B202"),
		},
		[]*domain.Supervisor{testSupervisor(1)},
		nil, nil,
	)
	require.NoError(t, err)

	violations, _ := Evaluate([]domain.SlotAssignment{
		{SessionID: 1, Room: "A101", SupervisorIDs: []int64{1}},
		{SessionID: 2, Room: "B202", SupervisorIDs: []int64{1}},
	}, input, Config{})

	doubleBookings := lo.Filter(violations, func(v Violation, _ int) bool {
		return v.Kind == ViolationDoubleBooking
	})
	require.Len(t, doubleBookings, 1)
	assert.Equal(t, int64(1), doubleBookings[0].SupervisorID)
	assert.Equal(t, int64(2), doubleBookings[0].SessionID)
}

func TestEvaluateAllowsBackToBackSessions(t *testing.T) {
	// Half-open windows: a session ending at 11:00 does not overlap one
	// starting at 11:00.
	input, err := NewInput(
		[]*domain.Session{
			testSession(1, 9, 11, 1, "A101"),
			testSession(2, 11, 13, 1, "A101"),
		},
		[]*domain.Supervisor{testSupervisor(1)},
		nil, nil,
	)
	require.NoError(t, err)

	violations, _ := Evaluate([]domain.SlotAssignment{
		{SessionID: 1, Room: "A101", SupervisorIDs: []int64{1}},
		{SessionID: 2, Room: "A101", SupervisorIDs: []int64{1}},
	}, input, Config{})

	assert.Empty(t, violations)
}

func TestEvaluateDetectsUnavailability(t *testing.T) {
	busy := testSupervisor(1)
	busy.Unavailable = []domain.TimeWindow{{Start: at(8, 0), End: at(18, 0)}}

	input, err := NewInput(
		[]*domain.Session{testSession(1, 9, 11, 1, "A101")},
		[]*domain.Supervisor{busy},
		nil, nil,
	)
	require.NoError(t, err)

	violations, _ := Evaluate([]domain.SlotAssignment{
		{SessionID: 1, Room: "A101", SupervisorIDs: []int64{1}},
	}, input, Config{})

	require.Len(t, violations, 1)
	assert.Equal(t, ViolationUnavailability, violations[0].Kind)
}

func TestEvaluateDetectsUnderStaffing(t *testing.T) {
	input, err := NewInput(
		[]*domain.Session{testSession(1, 9, 11, 2, "A101")},
		[]*domain.Supervisor{testSupervisor(1), testSupervisor(2)},
		nil, nil,
	)
	require.NoError(t, err)

	violations, _ := Evaluate([]domain.SlotAssignment{
		{SessionID: 1, Room: "A101", SupervisorIDs: []int64{1}},
	}, input, Config{})

	require.Len(t, violations, 1)
	assert.Equal(t, ViolationUnderStaffing, violations[0].Kind)
	assert.Equal(t, 2, violations[0].Required)
	assert.Equal(t, 1, violations[0].Assigned)
}

func TestEvaluateReportsSlotsMissingFromAssignment(t *testing.T) {
	input, err := NewInput(
		[]*domain.Session{testSession(1, 9, 11, 1, "A101", "B202")},
		[]*domain.Supervisor{testSupervisor(1), testSupervisor(2)},
		nil, nil,
	)
	require.NoError(t, err)

	// One room of the session is staffed, the other never appears in the
	// list at all.
	violations, _ := Evaluate([]domain.SlotAssignment{
		{SessionID: 1, Room: "A101", SupervisorIDs: []int64{1}},
	}, input, Config{})

	require.Len(t, violations, 1)
	assert.Equal(t, ViolationUnderStaffing, violations[0].Kind)
	assert.Equal(t, int64(1), violations[0].SessionID)
	assert.Equal(t, "B202", violations[0].Room)
	assert.Equal(t, 1, violations[0].Required)
	assert.Equal(t, 0, violations[0].Assigned)

	// An empty assignment list leaves every declared slot unstaffed.
	violations, _ = Evaluate(nil, input, Config{})
	require.Len(t, violations, 2)
	for _, v := range violations {
		assert.Equal(t, ViolationUnderStaffing, v.Kind)
	}
}

func TestEvaluateScoreCombinesFairnessAndPreferences(t *testing.T) {
	input, err := NewInput(
		[]*domain.Session{
			testSession(1, 9, 11, 1, "A101"),
			testSession(2, 14, 16, 1, "A101"),
		},
		[]*domain.Supervisor{testSupervisor(1), testSupervisor(2)},
		[]*domain.Preference{
			{ID: 1, SupervisorID: 1, SessionID: 1, Polarity: domain.PolarityPrefers, Weight: 3},
			{ID: 2, SupervisorID: 2, SessionID: 2, Polarity: domain.PolarityAvoids, Weight: 2},
		},
		nil,
	)
	require.NoError(t, err)

	// Supervisor 1 takes both sessions: honored prefers (+3), no avoids
	// violated, loads (2, 0) give variance 1.
	violations, score := Evaluate([]domain.SlotAssignment{
		{SessionID: 1, Room: "A101", SupervisorIDs: []int64{1}},
		{SessionID: 2, Room: "A101", SupervisorIDs: []int64{1}},
	}, input, Config{FairnessWeight: lo.ToPtr(1.0), PreferenceWeight: lo.ToPtr(1.0)})
	assert.Empty(t, violations)
	assert.InDelta(t, 2.0, score, 1e-9)

	// Balanced but avoids violated: loads (1, 1) give variance 0,
	// preferences +3 - 2.
	_, score = Evaluate([]domain.SlotAssignment{
		{SessionID: 1, Room: "A101", SupervisorIDs: []int64{1}},
		{SessionID: 2, Room: "A101", SupervisorIDs: []int64{2}},
	}, input, Config{FairnessWeight: lo.ToPtr(1.0), PreferenceWeight: lo.ToPtr(1.0)})
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestEvaluateZeroFairnessWeightDisablesPenalty(t *testing.T) {
	input, err := NewInput(
		[]*domain.Session{
			testSession(1, 9, 11, 1, "A101"),
			testSession(2, 14, 16, 1, "A101"),
		},
		[]*domain.Supervisor{testSupervisor(1), testSupervisor(2)},
		[]*domain.Preference{
			{ID: 1, SupervisorID: 1, SessionID: 1, Polarity: domain.PolarityPrefers, Weight: 3},
		},
		nil,
	)
	require.NoError(t, err)

	// Loads (2, 0) carry a nonzero variance, but an explicit weight of 0
	// must really disable the term rather than fall back to the default.
	_, score := Evaluate([]domain.SlotAssignment{
		{SessionID: 1, Room: "A101", SupervisorIDs: []int64{1}},
		{SessionID: 2, Room: "A101", SupervisorIDs: []int64{1}},
	}, input, Config{FairnessWeight: lo.ToPtr(0.0), PreferenceWeight: lo.ToPtr(1.0)})

	assert.InDelta(t, 3.0, score, 1e-9)
}

func TestEvaluateFairnessIncludesPriorCounters(t *testing.T) {
	input, err := NewInput(
		[]*domain.Session{testSession(1, 9, 11, 1, "A101")},
		[]*domain.Supervisor{testSupervisor(1), testSupervisor(2)},
		nil,
		map[int64]domain.FairnessCounter{
			1: {SupervisorID: 1, Sessions: 3},
		},
	)
	require.NoError(t, err)

	// Giving the slot to the already-loaded supervisor widens the gap.
	_, loaded := Evaluate([]domain.SlotAssignment{
		{SessionID: 1, Room: "A101", SupervisorIDs: []int64{1}},
	}, input, Config{FairnessWeight: lo.ToPtr(1.0)})
	_, balanced := Evaluate([]domain.SlotAssignment{
		{SessionID: 1, Room: "A101", SupervisorIDs: []int64{2}},
	}, input, Config{FairnessWeight: lo.ToPtr(1.0)})

	assert.Greater(t, balanced, loaded)
}

func TestEvaluateIgnoresNonParticipatingSupervisorsInFairness(t *testing.T) {
	bystander := testSupervisor(2)
	bystander.Participates = false

	input, err := NewInput(
		[]*domain.Session{testSession(1, 9, 11, 1, "A101")},
		[]*domain.Supervisor{testSupervisor(1), bystander},
		nil, nil,
	)
	require.NoError(t, err)

	// With a single counted supervisor the variance is zero whatever
	// they carry.
	_, score := Evaluate([]domain.SlotAssignment{
		{SessionID: 1, Room: "A101", SupervisorIDs: []int64{1}},
	}, input, Config{FairnessWeight: lo.ToPtr(1.0)})

	assert.InDelta(t, 0.0, score, 1e-9)
}

func TestEvaluateWindowPreferenceAppliesToCoveredSessions(t *testing.T) {
	input, err := NewInput(
		[]*domain.Session{
			testSession(1, 9, 11, 1, "A101"),
			testSession(2, 14, 16, 1, "A101"),
		},
		[]*domain.Supervisor{testSupervisor(1)},
		[]*domain.Preference{
			{
				ID:           1,
				SupervisorID: 1,
				Window:       &domain.TimeWindow{Start: at(8, 0), End: at(12, 0)},
				Polarity:     domain.PolarityAvoids,
				Weight:       5,
			},
		},
		nil,
	)
	require.NoError(t, err)

	_, morning := Evaluate([]domain.SlotAssignment{
		{SessionID: 1, Room: "A101", SupervisorIDs: []int64{1}},
	}, input, Config{FairnessWeight: lo.ToPtr(0.0), PreferenceWeight: lo.ToPtr(1.0)})
	_, afternoon := Evaluate([]domain.SlotAssignment{
		{SessionID: 2, Room: "A101", SupervisorIDs: []int64{1}},
	}, input, Config{FairnessWeight: lo.ToPtr(0.0), PreferenceWeight: lo.ToPtr(1.0)})

	assert.InDelta(t, -5.0, morning, 1e-9)
	assert.InDelta(t, 0.0, afternoon, 1e-9)
}
