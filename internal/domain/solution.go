package domain

import "time"

type UnderstaffedReason string

const (
	ReasonInfeasible       UnderstaffedReason = "infeasible"
	ReasonDeadlineExceeded UnderstaffedReason = "deadline-exceeded"
)

// SlotAssignment is the ordered supervisor roster of one (session, room) pair.
type SlotAssignment struct {
	SessionID     int64   `json:"sessionID"`
	Room          string  `json:"room"`
	SupervisorIDs []int64 `json:"supervisorIDs"`
}

// Diagnostic flags a (session, room) pair left under its required minimum.
type Diagnostic struct {
	SessionID int64              `json:"sessionID"`
	Room      string             `json:"room"`
	Required  int                `json:"required"`
	Assigned  int                `json:"assigned"`
	Reason    UnderstaffedReason `json:"reason"`
}

// Solution is the engine's output for one optimization run.
type Solution struct {
	ID            int64            `json:"id"`
	ExamPeriodID  int64            `json:"examPeriodID"`
	Assignments   []SlotAssignment `json:"assignments"`
	Diagnostics   []Diagnostic     `json:"diagnostics"`
	Score         float64          `json:"score"`
	ProvenOptimal bool             `json:"provenOptimal"`
	Published     bool             `json:"published"`
	CreatedAt     time.Time        `json:"createdAt"`
	Version       int32            `json:"-"`
}

// SupervisorLoad summarizes one supervisor's workload: what this run
// assigned plus what previous runs already counted.
type SupervisorLoad struct {
	SupervisorID  int64   `json:"supervisorID"`
	FullName      string  `json:"fullName"`
	Sessions      int     `json:"sessions"`
	Hours         float64 `json:"hours"`
	PriorSessions int     `json:"priorSessions"`
	PriorHours    float64 `json:"priorHours"`
}

// RoomRoster and SessionRoster form the per-session view of the report.
type RoomRoster struct {
	Room        string   `json:"room"`
	Supervisors []string `json:"supervisors"`
}

type SessionRoster struct {
	SessionID int64        `json:"sessionID"`
	Name      string       `json:"name"`
	Start     time.Time    `json:"start"`
	End       time.Time    `json:"end"`
	Rooms     []RoomRoster `json:"rooms"`
}

// Report is the external shape handed to the UI and PDF collaborators.
type Report struct {
	ExamPeriodID  int64            `json:"examPeriodID"`
	Sessions      []SessionRoster  `json:"sessions"`
	Loads         []SupervisorLoad `json:"loads"`
	Understaffed  []Diagnostic     `json:"understaffed"`
	Score         float64          `json:"score"`
	ProvenOptimal bool             `json:"provenOptimal"`
}
