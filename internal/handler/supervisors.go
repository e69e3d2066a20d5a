package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/planexam/surveillance-manager/backend/internal/domain"
	"github.com/planexam/surveillance-manager/backend/internal/utils"
)

type timeWindowRequest struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required"`
}

func toTimeWindows(reqs []timeWindowRequest) ([]domain.TimeWindow, error) {
	windows := make([]domain.TimeWindow, 0, len(reqs))
	for _, req := range reqs {
		w := domain.TimeWindow{Start: req.Start, End: req.End}
		if !w.IsValid() {
			return nil, errors.New("fenêtre d'indisponibilité mal formée")
		}
		windows = append(windows, w)
	}
	return utils.NormalizeWindows(windows), nil
}

func (h *Handler) CreateSupervisor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName    string              `json:"firstName" validate:"required"`
		LastName     string              `json:"lastName" validate:"required"`
		Email        string              `json:"email" validate:"required,email"`
		Grade        string              `json:"grade" validate:"required"`
		Participates *bool               `json:"participates"`
		MaxSessions  int                 `json:"maxSessions" validate:"min=0"`
		Unavailable  []timeWindowRequest `json:"unavailable" validate:"dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	windows, err := toTimeWindows(req.Unavailable)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	participates := true
	if req.Participates != nil {
		participates = *req.Participates
	}

	sup := &domain.Supervisor{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Grade:        domain.Grade(req.Grade),
		Participates: participates,
		MaxSessions:  req.MaxSessions,
		Unavailable:  windows,
	}

	if err := h.repository.CreateSupervisor(sup); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "supervisors_email_key":
				h.errorResponse(w, r, "un surveillant avec cette adresse existe déjà")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "surveillant créé", sup)
}

func (h *Handler) GetAllSupervisors(w http.ResponseWriter, r *http.Request) {
	supervisors, err := h.repository.GetAllSupervisors()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "surveillants récupérés", supervisors)
}

func (h *Handler) GetSupervisor(w http.ResponseWriter, r *http.Request) {
	sup := r.Context().Value(SupervisorCtx).(*domain.Supervisor)

	h.successResponse(w, r, "surveillant récupéré", sup)
}

func (h *Handler) UpdateSupervisor(w http.ResponseWriter, r *http.Request) {
	sup := r.Context().Value(SupervisorCtx).(*domain.Supervisor)

	var req struct {
		FirstName    *string              `json:"firstName"`
		LastName     *string              `json:"lastName"`
		Email        *string              `json:"email" validate:"omitempty,email"`
		Grade        *string              `json:"grade"`
		Participates *bool                `json:"participates"`
		MaxSessions  *int                 `json:"maxSessions" validate:"omitempty,min=0"`
		Unavailable  *[]timeWindowRequest `json:"unavailable" validate:"omitempty,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.FirstName != nil {
		sup.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		sup.LastName = *req.LastName
	}
	if req.Email != nil {
		sup.Email = *req.Email
	}
	if req.Grade != nil {
		sup.Grade = domain.Grade(*req.Grade)
	}
	if req.Participates != nil {
		sup.Participates = *req.Participates
	}
	if req.MaxSessions != nil {
		sup.MaxSessions = *req.MaxSessions
	}
	if req.Unavailable != nil {
		windows, err := toTimeWindows(*req.Unavailable)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		sup.Unavailable = windows
	}

	if err := h.repository.UpdateSupervisor(sup); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "supervisors_email_key":
				h.errorResponse(w, r, "un surveillant avec cette adresse existe déjà")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "surveillant mis à jour", sup)
}

// ReplaceUnavailabilities remplace d'un bloc les indisponibilités d'un
// surveillant, sans toucher au reste de sa fiche.
func (h *Handler) ReplaceUnavailabilities(w http.ResponseWriter, r *http.Request) {
	sup := r.Context().Value(SupervisorCtx).(*domain.Supervisor)

	var req struct {
		Unavailable []timeWindowRequest `json:"unavailable" validate:"dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	windows, err := toTimeWindows(req.Unavailable)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	sup.Unavailable = windows

	if err := h.repository.UpdateSupervisor(sup); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "indisponibilités mises à jour", sup)
}

func (h *Handler) DeleteSupervisor(w http.ResponseWriter, r *http.Request) {
	sup := r.Context().Value(SupervisorCtx).(*domain.Supervisor)

	if err := h.repository.DeleteSupervisor(sup.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "surveillant supprimé", nil)
}
