package domain

import "time"

// Session is a single exam time slot. Each room listed is supervised
// independently and needs MinSupervisors people.
type Session struct {
	ID             int64     `json:"id"`
	ExamPeriodID   int64     `json:"examPeriodID"`
	Name           string    `json:"name"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Rooms          []string  `json:"rooms"`
	MinSupervisors int       `json:"minSupervisors"` // per room, 0 falls back to the configured default
	CreatedAt      time.Time `json:"createdAt"`
	Version        int32     `json:"-"`
}

func (s *Session) Window() TimeWindow {
	return TimeWindow{Start: s.Start, End: s.End}
}

func (s *Session) Hours() float64 {
	return s.End.Sub(s.Start).Hours()
}
