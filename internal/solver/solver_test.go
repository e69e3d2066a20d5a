package solver

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/planexam/surveillance-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDay = time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return testDay.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func testSession(id int64, startHour, endHour, minSupervisors int, rooms ...string) *domain.Session {
	return &domain.Session{
		ID:             id,
		Name:           fmt.Sprintf("S%d", id),
		Start:          at(startHour, 0),
		End:            at(endHour, 0),
		Rooms:          rooms,
		MinSupervisors: minSupervisors,
	}
}

func testSupervisor(id int64, unavailable ...domain.TimeWindow) *domain.Supervisor {
	return &domain.Supervisor{
		ID:           id,
		FirstName:    "Surveillant",
		LastName:     fmt.Sprintf("N°%d", id),
		Email:        fmt.Sprintf("surveillant%d@univ.example", id),
		Grade:        domain.GradeAssistant,
		Participates: true,
		Unavailable:  unavailable,
	}
}

func solve(t *testing.T, input *NormalizedInput, cfg Config) *domain.Solution {
	t.Helper()
	solution, err := Solve(context.Background(), input, cfg)
	require.NoError(t, err)
	return solution
}

func assertNoHardViolations(t *testing.T, solution *domain.Solution, input *NormalizedInput, cfg Config) {
	t.Helper()
	violations, _ := Evaluate(solution.Assignments, input, cfg)
	for _, v := range violations {
		if v.Kind == ViolationUnderStaffing {
			// Under-staffing must be accounted for in the diagnostics.
			matched := false
			for _, d := range solution.Diagnostics {
				if d.SessionID == v.SessionID && d.Room == v.Room {
					matched = true
				}
			}
			assert.True(t, matched, "under-staffed slot (%d, %s) missing from diagnostics", v.SessionID, v.Room)
			continue
		}
		t.Errorf("unexpected hard violation: %+v", v)
	}
}

func TestSolveSingleSessionPicksExactlyTwoOfThree(t *testing.T) {
	// Scenario A: one session, one room, minimum 2, three available supervisors.
	input, err := NewInput(
		[]*domain.Session{testSession(1, 9, 11, 2, "A101")},
		[]*domain.Supervisor{testSupervisor(1), testSupervisor(2), testSupervisor(3)},
		nil, nil,
	)
	require.NoError(t, err)

	solution := solve(t, input, Config{})

	require.Len(t, solution.Assignments, 1)
	assert.Len(t, solution.Assignments[0].SupervisorIDs, 2)
	assert.Empty(t, solution.Diagnostics)
	assert.True(t, solution.ProvenOptimal)
	assertNoHardViolations(t, solution, input, Config{})
}

func TestSolveOverlappingSessionsSingleSupervisor(t *testing.T) {
	// Scenario B: two overlapping sessions, one supervisor. One session is
	// staffed, the other reported structurally infeasible.
	input, err := NewInput(
		[]*domain.Session{
			testSession(1, 9, 11, 1, "A101"),
			testSession(2, 10, 12, 1, "B202"),
		},
		[]*domain.Supervisor{testSupervisor(1)},
		nil, nil,
	)
	require.NoError(t, err)

	solution := solve(t, input, Config{})

	staffed := 0
	for _, slot := range solution.Assignments {
		staffed += len(slot.SupervisorIDs)
	}
	assert.Equal(t, 1, staffed)

	require.Len(t, solution.Diagnostics, 1)
	assert.Equal(t, domain.ReasonInfeasible, solution.Diagnostics[0].Reason)
	assertNoHardViolations(t, solution, input, Config{})
}

func TestSolveUnavailableSupervisorNeverAssigned(t *testing.T) {
	// Scenario C: X is unavailable for the only session's window.
	unavailable := domain.TimeWindow{Start: at(8, 0), End: at(12, 0)}

	t.Run("other supervisors take the slot", func(t *testing.T) {
		input, err := NewInput(
			[]*domain.Session{testSession(1, 9, 11, 1, "A101")},
			[]*domain.Supervisor{testSupervisor(1, unavailable), testSupervisor(2)},
			nil, nil,
		)
		require.NoError(t, err)

		solution := solve(t, input, Config{})

		require.Len(t, solution.Assignments, 1)
		assert.Equal(t, []int64{2}, solution.Assignments[0].SupervisorIDs)
		assert.Empty(t, solution.Diagnostics)
	})

	t.Run("slot infeasible when X is the only supervisor", func(t *testing.T) {
		input, err := NewInput(
			[]*domain.Session{testSession(1, 9, 11, 1, "A101")},
			[]*domain.Supervisor{testSupervisor(1, unavailable)},
			nil, nil,
		)
		require.NoError(t, err)

		solution := solve(t, input, Config{})

		require.Len(t, solution.Assignments, 1)
		assert.Empty(t, solution.Assignments[0].SupervisorIDs)
		require.Len(t, solution.Diagnostics, 1)
		assert.Equal(t, domain.ReasonInfeasible, solution.Diagnostics[0].Reason)
	})
}

func TestSolveFairnessConvergesToUniformLoads(t *testing.T) {
	// Scenario D: 10 disjoint sessions, 10 supervisors, no preferences.
	// Loads must differ by at most one.
	sessions := make([]*domain.Session, 0, 10)
	for i := 0; i < 10; i++ {
		sessions = append(sessions, &domain.Session{
			ID:             int64(i + 1),
			Start:          testDay.Add(time.Duration(i*3) * time.Hour),
			End:            testDay.Add(time.Duration(i*3+2) * time.Hour),
			Rooms:          []string{"A101"},
			MinSupervisors: 1,
		})
	}
	supervisors := make([]*domain.Supervisor, 0, 10)
	for i := 0; i < 10; i++ {
		supervisors = append(supervisors, testSupervisor(int64(i+1)))
	}

	input, err := NewInput(sessions, supervisors, nil, nil)
	require.NoError(t, err)

	solution := solve(t, input, Config{TimeBudgetMS: 1000})
	assert.Empty(t, solution.Diagnostics)

	loads := make(map[int64]int)
	for _, slot := range solution.Assignments {
		for _, supID := range slot.SupervisorIDs {
			loads[supID]++
		}
	}
	min, max := 10, 0
	for _, sup := range supervisors {
		load := loads[sup.ID]
		if load < min {
			min = load
		}
		if load > max {
			max = load
		}
	}
	assert.LessOrEqual(t, max-min, 1, "loads: %v", loads)
}

func TestSolveHonorsPreferences(t *testing.T) {
	input, err := NewInput(
		[]*domain.Session{
			testSession(1, 9, 11, 1, "A101"),
			testSession(2, 14, 16, 1, "A101"),
		},
		[]*domain.Supervisor{testSupervisor(1), testSupervisor(2)},
		[]*domain.Preference{
			{ID: 1, SupervisorID: 2, SessionID: 1, Polarity: domain.PolarityPrefers, Weight: 3},
			{ID: 2, SupervisorID: 1, SessionID: 2, Polarity: domain.PolarityAvoids, Weight: 2},
		},
		nil,
	)
	require.NoError(t, err)

	solution := solve(t, input, Config{})
	require.True(t, solution.ProvenOptimal)

	bySlot := make(map[int64][]int64)
	for _, slot := range solution.Assignments {
		bySlot[slot.SessionID] = slot.SupervisorIDs
	}
	assert.Equal(t, []int64{2}, bySlot[1], "supervisor 2 prefers session 1")
	assert.Equal(t, []int64{2}, bySlot[2], "supervisor 1 avoids session 2")
}

func TestSolveRespectsQuota(t *testing.T) {
	// Supervisor 1 has a quota of one session; the second session must go
	// to supervisor 2 even though 1 is below the average load.
	sup1 := testSupervisor(1)
	sup1.MaxSessions = 1

	input, err := NewInput(
		[]*domain.Session{
			testSession(1, 8, 10, 1, "A101"),
			testSession(2, 11, 13, 1, "A101"),
			testSession(3, 14, 16, 1, "A101"),
		},
		[]*domain.Supervisor{sup1, testSupervisor(2)},
		nil, nil,
	)
	require.NoError(t, err)

	solution := solve(t, input, Config{})
	assert.Empty(t, solution.Diagnostics)

	count := 0
	for _, slot := range solution.Assignments {
		for _, supID := range slot.SupervisorIDs {
			if supID == 1 {
				count++
			}
		}
	}
	assert.LessOrEqual(t, count, 1)
}

func TestSolvePriorCountersSteerAssignment(t *testing.T) {
	// Supervisor 1 already worked three sessions in a previous run, so the
	// single new session goes to supervisor 2.
	input, err := NewInput(
		[]*domain.Session{testSession(1, 9, 11, 1, "A101")},
		[]*domain.Supervisor{testSupervisor(1), testSupervisor(2)},
		nil,
		map[int64]domain.FairnessCounter{
			1: {SupervisorID: 1, Sessions: 3, Hours: 6},
		},
	)
	require.NoError(t, err)

	solution := solve(t, input, Config{})
	require.Len(t, solution.Assignments, 1)
	assert.Equal(t, []int64{2}, solution.Assignments[0].SupervisorIDs)
}

func TestSolveDeterministic(t *testing.T) {
	sessions := []*domain.Session{
		testSession(1, 8, 10, 2, "A101"),
		testSession(2, 9, 11, 1, "C303"),
		testSession(3, 13, 15, 2, "A101"),
	}
	supervisors := make([]*domain.Supervisor, 0, 4)
	for i := 0; i < 4; i++ {
		supervisors = append(supervisors, testSupervisor(int64(i+1)))
	}
	preferences := []*domain.Preference{
		{ID: 1, SupervisorID: 3, SessionID: 3, Polarity: domain.PolarityPrefers, Weight: 1.5},
		{ID: 2, SupervisorID: 2, SessionID: 1, Polarity: domain.PolarityAvoids, Weight: 1},
	}

	input, err := NewInput(sessions, supervisors, preferences, nil)
	require.NoError(t, err)

	first := solve(t, input, Config{})
	require.True(t, first.ProvenOptimal)
	for i := 0; i < 5; i++ {
		again := solve(t, input, Config{})
		assert.Equal(t, first.Assignments, again.Assignments)
		assert.Equal(t, first.Score, again.Score)
	}
}

func TestSolveParallelMatchesSequential(t *testing.T) {
	sessions := []*domain.Session{
		testSession(1, 8, 10, 2, "A101"),
		testSession(2, 9, 11, 1, "C303"),
		testSession(3, 13, 15, 2, "A101"),
	}
	supervisors := make([]*domain.Supervisor, 0, 5)
	for i := 0; i < 5; i++ {
		supervisors = append(supervisors, testSupervisor(int64(i+1)))
	}

	input, err := NewInput(sessions, supervisors, nil, nil)
	require.NoError(t, err)

	sequential := solve(t, input, Config{Parallelism: 1})
	require.True(t, sequential.ProvenOptimal)
	parallel := solve(t, input, Config{Parallelism: 4})
	require.True(t, parallel.ProvenOptimal)

	// With the search space exhausted, the lexicographic incumbent merge
	// makes the result independent of worker count and scheduling.
	assert.Equal(t, sequential.Assignments, parallel.Assignments)
	assert.Equal(t, sequential.Score, parallel.Score)
}

func TestSolveScoreMonotonicInTimeBudget(t *testing.T) {
	sessions := []*domain.Session{
		testSession(1, 8, 10, 2, "A101"),
		testSession(2, 9, 11, 2, "C303"),
		testSession(3, 13, 15, 1, "A101"),
	}
	supervisors := make([]*domain.Supervisor, 0, 5)
	for i := 0; i < 5; i++ {
		supervisors = append(supervisors, testSupervisor(int64(i+1)))
	}

	input, err := NewInput(sessions, supervisors, nil, nil)
	require.NoError(t, err)

	small := solve(t, input, Config{TimeBudgetMS: 50})
	large := solve(t, input, Config{TimeBudgetMS: 5000})

	assert.LessOrEqual(t, small.Score, large.Score)
}

func TestSolveNoDoubleBookingAcrossOverlappingSessions(t *testing.T) {
	// Dense overlap pattern: every solution must keep each supervisor out
	// of concurrent slots.
	sessions := []*domain.Session{
		testSession(1, 8, 12, 1, "A101", "B202"),
		testSession(2, 9, 10, 1, "C303"),
		testSession(3, 11, 13, 1, "D404"),
		testSession(4, 12, 14, 1, "A101"),
	}
	supervisors := make([]*domain.Supervisor, 0, 5)
	for i := 0; i < 5; i++ {
		supervisors = append(supervisors, testSupervisor(int64(i+1)))
	}

	input, err := NewInput(sessions, supervisors, nil, nil)
	require.NoError(t, err)

	solution := solve(t, input, Config{})
	assertNoHardViolations(t, solution, input, Config{})
	assert.Empty(t, solution.Diagnostics)
}

func TestSolveRespectsContextDeadline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input, err := NewInput(
		[]*domain.Session{testSession(1, 9, 11, 1, "A101")},
		[]*domain.Supervisor{testSupervisor(1)},
		nil, nil,
	)
	require.NoError(t, err)

	// A cancelled context still yields a best-effort solution.
	solution, err := Solve(ctx, input, Config{})
	require.NoError(t, err)
	require.NotNil(t, solution)
}

func TestUpdatedCounters(t *testing.T) {
	input, err := NewInput(
		[]*domain.Session{testSession(1, 9, 11, 2, "A101")},
		[]*domain.Supervisor{testSupervisor(1), testSupervisor(2), testSupervisor(3)},
		nil,
		map[int64]domain.FairnessCounter{
			1: {SupervisorID: 1, Sessions: 2, Hours: 4},
		},
	)
	require.NoError(t, err)

	solution := solve(t, input, Config{})
	counters := UpdatedCounters(solution, input)

	total := 0
	for _, c := range counters {
		total += c.Sessions
	}
	assert.Equal(t, 2+2, total, "two prior sessions plus two new assignments")

	for _, slot := range solution.Assignments {
		for _, supID := range slot.SupervisorIDs {
			assert.Greater(t, counters[supID].Hours, 0.0)
		}
	}
}
