package handler

import (
	"net/http"

	"github.com/planexam/surveillance-manager/backend/internal/domain"
)

func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	period := r.Context().Value(ExamPeriodCtx).(*domain.ExamPeriod)

	preferences, err := h.repository.GetPreferencesByExamPeriodID(period.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "souhaits récupérés", preferences)
}

func (h *Handler) ReplacePreferences(w http.ResponseWriter, r *http.Request) {
	period := r.Context().Value(ExamPeriodCtx).(*domain.ExamPeriod)
	sup := r.Context().Value(SupervisorCtx).(*domain.Supervisor)

	var req struct {
		Preferences []struct {
			SessionID int64              `json:"sessionID"`
			Window    *timeWindowRequest `json:"window"`
			Polarity  string             `json:"polarity" validate:"required,oneof=prefers avoids"`
			Weight    float64            `json:"weight" validate:"min=0"`
		} `json:"preferences" validate:"dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	preferences := make([]*domain.Preference, 0, len(req.Preferences))
	for _, p := range req.Preferences {
		if p.SessionID == 0 && p.Window == nil {
			h.errorResponse(w, r, "chaque souhait doit viser une séance ou une fenêtre horaire")
			return
		}

		pref := &domain.Preference{
			SupervisorID: sup.ID,
			SessionID:    p.SessionID,
			Polarity:     domain.PreferencePolarity(p.Polarity),
			Weight:       p.Weight,
		}
		if p.Window != nil {
			window := domain.TimeWindow{Start: p.Window.Start, End: p.Window.End}
			if !window.IsValid() {
				h.errorResponse(w, r, "fenêtre horaire mal formée")
				return
			}
			pref.Window = &window
		}
		preferences = append(preferences, pref)
	}

	if err := h.repository.ReplaceSupervisorPreferences(period.ID, sup.ID, preferences); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "souhaits enregistrés", preferences)
}
