package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/planexam/surveillance-manager/backend/internal/domain"
)

func (h *Handler) CreateExamPeriod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
		Semester    string `json:"semester" validate:"required"`
		ExamType    string `json:"examType" validate:"required,oneof=Examen 'Devoir surveillé'"`
		Session     string `json:"session" validate:"required,oneof=Principal Contrôle"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	period := &domain.ExamPeriod{
		Name:        req.Name,
		Description: req.Description,
		Semester:    req.Semester,
		ExamType:    domain.ExamType(req.ExamType),
		Session:     domain.ExamSession(req.Session),
	}

	if err := h.repository.CreateExamPeriod(period); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "exam_periods_name_key":
				h.errorResponse(w, r, "une période portant ce nom existe déjà")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "période d'examens créée", period)
}

func (h *Handler) GetAllExamPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.repository.GetAllExamPeriods()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "périodes d'examens récupérées", periods)
}

func (h *Handler) GetExamPeriod(w http.ResponseWriter, r *http.Request) {
	period := r.Context().Value(ExamPeriodCtx).(*domain.ExamPeriod)

	h.successResponse(w, r, "période d'examens récupérée", period)
}

func (h *Handler) UpdateExamPeriod(w http.ResponseWriter, r *http.Request) {
	period := r.Context().Value(ExamPeriodCtx).(*domain.ExamPeriod)

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Semester    *string `json:"semester"`
		ExamType    *string `json:"examType" validate:"omitempty,oneof=Examen 'Devoir surveillé'"`
		Session     *string `json:"session" validate:"omitempty,oneof=Principal Contrôle"`
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
		period.Name = *req.Name
	}
	if req.Description != nil {
		period.Description = *req.Description
	}
	if req.Semester != nil {
		period.Semester = *req.Semester
	}
	if req.ExamType != nil {
		period.ExamType = domain.ExamType(*req.ExamType)
	}
	if req.Session != nil {
		period.Session = domain.ExamSession(*req.Session)
	}

	if err := h.repository.UpdateExamPeriod(period); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "exam_periods_name_key":
				h.errorResponse(w, r, "une période portant ce nom existe déjà")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "période d'examens mise à jour", period)
}

func (h *Handler) DeleteExamPeriod(w http.ResponseWriter, r *http.Request) {
	period := r.Context().Value(ExamPeriodCtx).(*domain.ExamPeriod)

	if err := h.repository.DeleteExamPeriod(period.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "période d'examens supprimée", nil)
}
