package solver

import (
	"context"
	"time"

	"github.com/planexam/surveillance-manager/backend/internal/domain"
)

// Solve runs one optimization pass: constraint propagation, then a
// bounded branch-and-bound over the remaining slots. It always returns
// a best-effort Solution; structural infeasibility and deadline expiry
// are reported through the Solution's diagnostics, never as errors.
// All state is passed explicitly, so independent problems may be solved
// concurrently.
func Solve(ctx context.Context, input *NormalizedInput, cfg Config) (*domain.Solution, error) {
	cfg = cfg.withDefaults()
	p := newProblem(input, cfg)

	deadline := time.Now().Add(time.Duration(cfg.TimeBudgetMS) * time.Millisecond)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	st := newSearchState(p)
	structural := st.propagateRoot()

	inc := &incumbent{}
	seed := st.clone()
	seed.greedy()
	inc.offer(seed)

	exhausted := p.search(ctx, st, deadline, inc)

	solution := &domain.Solution{
		Assignments:   make([]domain.SlotAssignment, 0, len(p.slots)),
		Diagnostics:   structural,
		Score:         inc.score,
		ProvenOptimal: exhausted,
	}

	structuralSlot := make(map[int]bool, len(structural))
	for i := range p.slots {
		if st.short[i] > 0 {
			// Resolved during root propagation; already diagnosed above.
			structuralSlot[i] = true
		}
	}

	for i, sl := range p.slots {
		ids := make([]int64, 0, len(inc.assigned[i]))
		for _, sup := range inc.assigned[i] {
			ids = append(ids, p.sups[sup].ID)
		}
		solution.Assignments = append(solution.Assignments, domain.SlotAssignment{
			SessionID:     p.sessions[sl.session].ID,
			Room:          sl.room,
			SupervisorIDs: ids,
		})

		if inc.short[i] > 0 && !structuralSlot[i] {
			reason := domain.ReasonInfeasible
			if !exhausted {
				reason = domain.ReasonDeadlineExceeded
			}
			solution.Diagnostics = append(solution.Diagnostics, domain.Diagnostic{
				SessionID: p.sessions[sl.session].ID,
				Room:      sl.room,
				Required:  sl.need,
				Assigned:  len(inc.assigned[i]),
				Reason:    reason,
			})
		}
	}

	return solution, nil
}

// UpdatedCounters folds a solution back into the fairness counters, to
// be persisted by the caller and passed into the next run.
func UpdatedCounters(solution *domain.Solution, input *NormalizedInput) map[int64]domain.FairnessCounter {
	counters := make(map[int64]domain.FairnessCounter, len(input.Supervisors))
	for _, sup := range input.Supervisors {
		counter := input.PriorLoads[sup.ID]
		counter.SupervisorID = sup.ID
		counters[sup.ID] = counter
	}

	hours := make(map[int64]float64, len(input.Sessions))
	for _, s := range input.Sessions {
		hours[s.ID] = s.Hours()
	}

	counted := make(map[int64]map[int64]bool)
	for _, slot := range solution.Assignments {
		for _, supID := range slot.SupervisorIDs {
			if counted[supID] == nil {
				counted[supID] = make(map[int64]bool)
			}
			if counted[supID][slot.SessionID] {
				continue
			}
			counted[supID][slot.SessionID] = true

			counter := counters[supID]
			counter.Sessions++
			counter.Hours += hours[slot.SessionID]
			counters[supID] = counter
		}
	}

	return counters
}
