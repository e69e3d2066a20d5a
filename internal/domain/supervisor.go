package domain

import (
	"time"
)

type Grade string

const (
	GradeProfesseur        Grade = "Professeur"
	GradeMaitreConferences Grade = "Maître de conférences"
	GradeMaitreAssistant   Grade = "Maître assistant"
	GradeAssistant         Grade = "Assistant"
	GradeVacataire         Grade = "Vacataire"
)

// TimeWindow is a half-open interval [Start, End).
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

func (w TimeWindow) IsValid() bool {
	return w.Start.Before(w.End)
}

func (w TimeWindow) Hours() float64 {
	return w.End.Sub(w.Start).Hours()
}

type Supervisor struct {
	ID           int64        `json:"id"`
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	Email        string       `json:"email"`
	Grade        Grade        `json:"grade"`
	Participates bool         `json:"participates"`
	MaxSessions  int          `json:"maxSessions"` // 0 means no quota
	Unavailable  []TimeWindow `json:"unavailable"`
	CreatedAt    time.Time    `json:"createdAt"`
	Version      int32        `json:"-"`
}

func (s *Supervisor) FullName() string {
	return s.FirstName + " " + s.LastName
}

// IsAvailable reports whether the supervisor has no declared
// unavailability overlapping the given window.
func (s *Supervisor) IsAvailable(w TimeWindow) bool {
	for _, u := range s.Unavailable {
		if u.Overlaps(w) {
			return false
		}
	}
	return true
}

// FairnessCounter carries a supervisor's accumulated workload from
// previous optimization runs. It is explicit engine input, never
// engine-owned state.
type FairnessCounter struct {
	SupervisorID int64   `json:"supervisorID"`
	Sessions     int     `json:"sessions"`
	Hours        float64 `json:"hours"`
}
