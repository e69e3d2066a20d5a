package solver

import (
	"math"

	"github.com/planexam/surveillance-manager/backend/internal/domain"
	"github.com/samber/lo"
)

type ViolationKind string

const (
	ViolationDoubleBooking  ViolationKind = "double-booking"
	ViolationUnavailability ViolationKind = "unavailability"
	ViolationUnderStaffing  ViolationKind = "under-staffing"
)

// Violation is one enumerable hard-constraint breach of a candidate
// assignment.
type Violation struct {
	Kind         ViolationKind `json:"kind"`
	SessionID    int64         `json:"sessionID"`
	Room         string        `json:"room"`
	SupervisorID int64         `json:"supervisorID,omitempty"`
	Required     int           `json:"required,omitempty"`
	Assigned     int           `json:"assigned,omitempty"`
}

// Evaluate checks a partial or complete assignment against the hard
// constraints and computes the soft score to be maximized:
//
//	score = -fairnessWeight*variance(load) + preferenceWeight*(honored - violated)
//
// The fairness variance is taken over assigned-session counts (prior
// counters included) of participating supervisors available for at
// least one session. Under-staffing is judged against the sessions'
// declared room slots, so a slot the assignment omits entirely is
// still reported. Evaluate is stateless and safe to call from
// concurrent search workers.
func Evaluate(assignments []domain.SlotAssignment, input *NormalizedInput, cfg Config) ([]Violation, float64) {
	cfg = cfg.withDefaults()

	sessions := lo.KeyBy(input.Sessions, func(s *domain.Session) int64 { return s.ID })
	supervisors := lo.KeyBy(input.Supervisors, func(s *domain.Supervisor) int64 { return s.ID })

	var violations []Violation

	// covered tracks which declared (session, room) slots the assignment
	// mentions at all; a slot absent from the list is as under-staffed
	// as one listed with too few supervisors.
	covered := make(map[int64]map[string]bool, len(assignments))

	// sessionsOf collects, per supervisor, every session they appear in.
	sessionsOf := make(map[int64][]*domain.Session)
	for _, slot := range assignments {
		session, ok := sessions[slot.SessionID]
		if !ok {
			continue
		}
		if covered[slot.SessionID] == nil {
			covered[slot.SessionID] = make(map[string]bool)
		}
		covered[slot.SessionID][slot.Room] = true

		seen := make(map[int64]bool, len(slot.SupervisorIDs))
		for _, supID := range slot.SupervisorIDs {
			if seen[supID] {
				violations = append(violations, Violation{
					Kind:         ViolationDoubleBooking,
					SessionID:    slot.SessionID,
					Room:         slot.Room,
					SupervisorID: supID,
				})
				continue
			}
			seen[supID] = true

			sup, ok := supervisors[supID]
			if ok && !sup.IsAvailable(session.Window()) {
				violations = append(violations, Violation{
					Kind:         ViolationUnavailability,
					SessionID:    slot.SessionID,
					Room:         slot.Room,
					SupervisorID: supID,
				})
			}

			for _, other := range sessionsOf[supID] {
				if other.Window().Overlaps(session.Window()) {
					violations = append(violations, Violation{
						Kind:         ViolationDoubleBooking,
						SessionID:    slot.SessionID,
						Room:         slot.Room,
						SupervisorID: supID,
					})
					break
				}
			}
			sessionsOf[supID] = append(sessionsOf[supID], session)
		}

		required := session.MinSupervisors
		if required == 0 {
			required = cfg.MinSupervisorsDefault
		}
		if len(slot.SupervisorIDs) < required {
			violations = append(violations, Violation{
				Kind:      ViolationUnderStaffing,
				SessionID: slot.SessionID,
				Room:      slot.Room,
				Required:  required,
				Assigned:  len(slot.SupervisorIDs),
			})
		}
	}

	for _, session := range input.Sessions {
		required := session.MinSupervisors
		if required == 0 {
			required = cfg.MinSupervisorsDefault
		}
		for _, room := range session.Rooms {
			if covered[session.ID][room] {
				continue
			}
			violations = append(violations, Violation{
				Kind:      ViolationUnderStaffing,
				SessionID: session.ID,
				Room:      room,
				Required:  required,
				Assigned:  0,
			})
		}
	}

	score := -cfg.fairnessWeight()*fairnessVariance(assignments, input) +
		cfg.preferenceWeight()*preferenceSum(assignments, input)

	return violations, score
}

// fairnessVariance is the variance of total assigned-session counts
// (prior counters plus this assignment) across participating
// supervisors available for at least one session.
func fairnessVariance(assignments []domain.SlotAssignment, input *NormalizedInput) float64 {
	counted := make(map[int64]float64)
	for _, sup := range input.Supervisors {
		if !sup.Participates {
			continue
		}
		available := lo.SomeBy(input.Sessions, func(s *domain.Session) bool {
			return sup.IsAvailable(s.Window())
		})
		if !available {
			continue
		}
		counted[sup.ID] = float64(input.PriorLoads[sup.ID].Sessions)
	}
	if len(counted) == 0 {
		return 0
	}

	// A supervisor on several rooms of the same session still counts one
	// session, matching the load summaries.
	perSession := make(map[int64]map[int64]bool)
	for _, slot := range assignments {
		for _, supID := range slot.SupervisorIDs {
			if _, tracked := counted[supID]; !tracked {
				continue
			}
			if perSession[supID] == nil {
				perSession[supID] = make(map[int64]bool)
			}
			perSession[supID][slot.SessionID] = true
		}
	}
	for supID, sessions := range perSession {
		counted[supID] += float64(len(sessions))
	}

	mean := lo.Sum(lo.Values(counted)) / float64(len(counted))
	variance := 0.0
	for _, load := range counted {
		variance += math.Pow(load-mean, 2)
	}
	return variance / float64(len(counted))
}

// preferenceSum adds the signed weight of every preference whose target
// session the supervisor ends up assigned to: honored "prefers" count
// positively, violated "avoids" negatively.
func preferenceSum(assignments []domain.SlotAssignment, input *NormalizedInput) float64 {
	sessions := lo.KeyBy(input.Sessions, func(s *domain.Session) int64 { return s.ID })

	onSession := make(map[int64]map[int64]bool)
	for _, slot := range assignments {
		for _, supID := range slot.SupervisorIDs {
			if onSession[supID] == nil {
				onSession[supID] = make(map[int64]bool)
			}
			onSession[supID][slot.SessionID] = true
		}
	}

	sum := 0.0
	for _, pref := range input.Preferences {
		for sessionID := range onSession[pref.SupervisorID] {
			if session, ok := sessions[sessionID]; ok && pref.AppliesTo(session) {
				sum += pref.SignedWeight()
			}
		}
	}
	return sum
}
