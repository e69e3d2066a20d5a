package domain

import "time"

type ExamType string

const (
	ExamTypeExamen          ExamType = "Examen"
	ExamTypeDevoirSurveille ExamType = "Devoir surveillé"
)

type ExamSession string

const (
	SessionPrincipal ExamSession = "Principal"
	SessionControle  ExamSession = "Contrôle"
)

// ExamPeriod groups the sessions of one exam campaign (e.g. semester 1
// main session). Each period is an independent optimization problem.
type ExamPeriod struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Semester    string      `json:"semester"`
	ExamType    ExamType    `json:"examType"`
	Session     ExamSession `json:"session"`
	CreatedAt   time.Time   `json:"createdAt"`
	Version     int32       `json:"-"`
}
