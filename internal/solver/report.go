package solver

import (
	"fmt"
	"sort"

	"github.com/planexam/surveillance-manager/backend/internal/domain"
	"github.com/samber/lo"
)

// BuildReport converts a Solution into the external report consumed by
// the UI and PDF collaborators: per-session room rosters, a global load
// table and the under-staffed slots. The Solution is never mutated; an
// error here means the internal state is malformed, which the engine
// does not produce.
func BuildReport(solution *domain.Solution, input *NormalizedInput) (*domain.Report, error) {
	supByID := lo.KeyBy(input.Supervisors, func(s *domain.Supervisor) int64 { return s.ID })
	sessByID := lo.KeyBy(input.Sessions, func(s *domain.Session) int64 { return s.ID })

	rosters := make(map[int64]map[string][]string, len(input.Sessions))
	loads := make(map[int64]*domain.SupervisorLoad, len(input.Supervisors))
	counted := make(map[int64]map[int64]bool)

	for _, sup := range input.Supervisors {
		if !sup.Participates {
			continue
		}
		counter := input.PriorLoads[sup.ID]
		loads[sup.ID] = &domain.SupervisorLoad{
			SupervisorID:  sup.ID,
			FullName:      sup.FullName(),
			PriorSessions: counter.Sessions,
			PriorHours:    counter.Hours,
		}
	}

	for _, slot := range solution.Assignments {
		session, ok := sessByID[slot.SessionID]
		if !ok {
			return nil, fmt.Errorf("affectation vers une session inconnue %d", slot.SessionID)
		}

		names := make([]string, 0, len(slot.SupervisorIDs))
		for _, supID := range slot.SupervisorIDs {
			sup, ok := supByID[supID]
			if !ok {
				return nil, fmt.Errorf("affectation vers un surveillant inconnu %d", supID)
			}
			names = append(names, sup.FullName())

			if counted[supID] == nil {
				counted[supID] = make(map[int64]bool)
			}
			if !counted[supID][slot.SessionID] {
				counted[supID][slot.SessionID] = true
				if load, ok := loads[supID]; ok {
					load.Sessions++
					load.Hours += session.Hours()
				}
			}
		}

		if rosters[slot.SessionID] == nil {
			rosters[slot.SessionID] = make(map[string][]string)
		}
		rosters[slot.SessionID][slot.Room] = names
	}

	report := &domain.Report{
		ExamPeriodID:  solution.ExamPeriodID,
		Sessions:      make([]domain.SessionRoster, 0, len(input.Sessions)),
		Understaffed:  append([]domain.Diagnostic(nil), solution.Diagnostics...),
		Score:         solution.Score,
		ProvenOptimal: solution.ProvenOptimal,
	}

	for _, session := range input.Sessions {
		roster := domain.SessionRoster{
			SessionID: session.ID,
			Name:      session.Name,
			Start:     session.Start,
			End:       session.End,
			Rooms:     make([]domain.RoomRoster, 0, len(session.Rooms)),
		}
		for _, room := range session.Rooms {
			roster.Rooms = append(roster.Rooms, domain.RoomRoster{
				Room:        room,
				Supervisors: rosters[session.ID][room],
			})
		}
		report.Sessions = append(report.Sessions, roster)
	}

	report.Loads = lo.Map(lo.Values(loads), func(l *domain.SupervisorLoad, _ int) domain.SupervisorLoad { return *l })
	sort.Slice(report.Loads, func(i, j int) bool {
		return report.Loads[i].SupervisorID < report.Loads[j].SupervisorID
	})

	return report, nil
}
