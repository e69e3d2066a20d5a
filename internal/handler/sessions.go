package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/planexam/surveillance-manager/backend/internal/domain"
)

type sessionRequest struct {
	Name           string    `json:"name" validate:"required"`
	Start          time.Time `json:"start" validate:"required"`
	End            time.Time `json:"end" validate:"required"`
	Rooms          []string  `json:"rooms" validate:"required,min=1,unique,dive,required"`
	MinSupervisors int       `json:"minSupervisors" validate:"min=0"`
}

func (req *sessionRequest) toSession(examPeriodID int64) *domain.Session {
	return &domain.Session{
		ExamPeriodID:   examPeriodID,
		Name:           req.Name,
		Start:          req.Start,
		End:            req.End,
		Rooms:          req.Rooms,
		MinSupervisors: req.MinSupervisors,
	}
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	period := r.Context().Value(ExamPeriodCtx).(*domain.ExamPeriod)

	var req sessionRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if !req.End.After(req.Start) {
		h.errorResponse(w, r, "l'heure de fin doit être après l'heure de début")
		return
	}

	session := req.toSession(period.ID)

	if err := h.repository.CreateSession(session); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "sessions_exam_period_id_fkey":
				h.errorResponse(w, r, "période d'examens introuvable")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "séance créée", session)
}

// ImportSessions crée en une requête tout le calendrier d'une période,
// tel qu'exporté par l'outil de gestion des emplois du temps.
func (h *Handler) ImportSessions(w http.ResponseWriter, r *http.Request) {
	period := r.Context().Value(ExamPeriodCtx).(*domain.ExamPeriod)

	var req struct {
		Sessions []sessionRequest `json:"sessions" validate:"required,min=1,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	for _, item := range req.Sessions {
		if !item.End.After(item.Start) {
			h.errorResponse(w, r, "l'heure de fin doit être après l'heure de début")
			return
		}
	}

	sessions := make([]*domain.Session, 0, len(req.Sessions))
	for i := range req.Sessions {
		sessions = append(sessions, req.Sessions[i].toSession(period.ID))
	}

	if err := h.repository.CreateSessions(sessions); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "séances importées", sessions)
}

func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	period := r.Context().Value(ExamPeriodCtx).(*domain.ExamPeriod)

	sessions, err := h.repository.GetSessionsByExamPeriodID(period.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "séances récupérées", sessions)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*domain.Session)

	h.successResponse(w, r, "séance récupérée", session)
}

func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*domain.Session)

	var req struct {
		Name           *string    `json:"name"`
		Start          *time.Time `json:"start"`
		End            *time.Time `json:"end"`
		Rooms          *[]string  `json:"rooms" validate:"omitempty,min=1,unique,dive,required"`
		MinSupervisors *int       `json:"minSupervisors" validate:"omitempty,min=0"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		session.Name = *req.Name
	}
	if req.Start != nil {
		session.Start = *req.Start
	}
	if req.End != nil {
		session.End = *req.End
	}
	if req.Rooms != nil {
		session.Rooms = *req.Rooms
	}
	if req.MinSupervisors != nil {
		session.MinSupervisors = *req.MinSupervisors
	}

	if !session.End.After(session.Start) {
		h.errorResponse(w, r, "l'heure de fin doit être après l'heure de début")
		return
	}

	if err := h.repository.UpdateSession(session); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "séance mise à jour", session)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	session := r.Context().Value(SessionCtx).(*domain.Session)

	if err := h.repository.DeleteSession(session.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "séance supprimée", nil)
}
