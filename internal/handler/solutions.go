package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/planexam/surveillance-manager/backend/internal/domain"
	"github.com/planexam/surveillance-manager/backend/internal/solver"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
)

func (h *Handler) solverInput(examPeriodID int64) (*solver.NormalizedInput, error) {
	sessions, err := h.repository.GetSessionsByExamPeriodID(examPeriodID)
	if err != nil {
		return nil, err
	}
	supervisors, err := h.repository.GetAllSupervisors()
	if err != nil {
		return nil, err
	}
	preferences, err := h.repository.GetPreferencesByExamPeriodID(examPeriodID)
	if err != nil {
		return nil, err
	}
	counters, err := h.repository.GetFairnessCounters()
	if err != nil {
		return nil, err
	}

	return solver.NewInput(sessions, supervisors, preferences, counters)
}

func (h *Handler) SolveExamPeriod(w http.ResponseWriter, r *http.Request) {
	period := r.Context().Value(ExamPeriodCtx).(*domain.ExamPeriod)

	var req struct {
		TimeBudgetMS          *int     `json:"timeBudgetMS" validate:"omitempty,min=1"`
		FairnessWeight        *float64 `json:"fairnessWeight" validate:"omitempty,min=0"`
		PreferenceWeight      *float64 `json:"preferenceWeight" validate:"omitempty,min=0"`
		MinSupervisorsDefault *int     `json:"minSupervisorsDefault" validate:"omitempty,min=1"`
		Parallelism           *int     `json:"parallelism" validate:"omitempty,min=1"`
	}

	// Tous les paramètres sont optionnels, un corps vide est accepté.
	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	cfg := solver.Config{
		TimeBudgetMS:          h.config.Solver.TimeBudgetMS,
		FairnessWeight:        lo.ToPtr(h.config.Solver.FairnessWeight),
		PreferenceWeight:      lo.ToPtr(h.config.Solver.PreferenceWeight),
		MinSupervisorsDefault: h.config.Solver.MinSupervisorsDefault,
		Parallelism:           h.config.Solver.Parallelism,
	}
	if req.TimeBudgetMS != nil {
		cfg.TimeBudgetMS = *req.TimeBudgetMS
	}
	if req.FairnessWeight != nil {
		cfg.FairnessWeight = req.FairnessWeight
	}
	if req.PreferenceWeight != nil {
		cfg.PreferenceWeight = req.PreferenceWeight
	}
	if req.MinSupervisorsDefault != nil {
		cfg.MinSupervisorsDefault = *req.MinSupervisorsDefault
	}
	if req.Parallelism != nil {
		cfg.Parallelism = *req.Parallelism
	}

	// Un seul calcul à la fois par période.
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
	defer cancel()

	lockKey := fmt.Sprintf("solve_lock_%d", period.ID)
	locked, err := h.redisClient.SetNX(ctx, lockKey, "1", time.Duration(h.config.Redis.OperationExpiration)*time.Minute).Result()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !locked {
		h.errorResponse(w, r, "un calcul est déjà en cours pour cette période")
		return
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
		defer cancel()
		if err := h.redisClient.Del(ctx, lockKey).Err(); err != nil {
			h.logInternalServerError(r, err)
		}
	}()

	input, err := h.solverInput(period.ID)
	if err != nil {
		var validationErr *solver.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.errorResponse(w, r, validationErr.Msg)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	if len(input.Sessions) == 0 {
		h.errorResponse(w, r, "la période ne contient aucune séance")
		return
	}

	solution, err := solver.Solve(r.Context(), input, cfg)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	solution.ExamPeriodID = period.ID

	if err := h.repository.InsertSolution(solution); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// Le rapport en cache décrit l'ancienne solution.
	if err := h.redisClient.Del(ctx, fmt.Sprintf("report_%d", period.ID)).Err(); err != nil {
		h.logInternalServerError(r, err)
	}

	h.successResponse(w, r, "affectation calculée", solution)
}

func (h *Handler) GetSolution(w http.ResponseWriter, r *http.Request) {
	period := r.Context().Value(ExamPeriodCtx).(*domain.ExamPeriod)

	solution, err := h.repository.GetSolutionByExamPeriodID(period.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "aucune solution pour cette période")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "solution récupérée", solution)
}

func (h *Handler) GetSolutionReport(w http.ResponseWriter, r *http.Request) {
	period := r.Context().Value(ExamPeriodCtx).(*domain.ExamPeriod)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.ConnectTimeout)*time.Second)
	defer cancel()

	cacheKey := fmt.Sprintf("report_%d", period.ID)
	cached, err := h.redisClient.Get(ctx, cacheKey).Result()
	switch {
	case err == nil:
		var report domain.Report
		if err := json.Unmarshal([]byte(cached), &report); err == nil {
			h.successResponse(w, r, "rapport récupéré", &report)
			return
		}
		// Cache corrompu, on le reconstruit.
	case !errors.Is(err, redis.Nil):
		h.logInternalServerError(r, err)
	}

	solution, err := h.repository.GetSolutionByExamPeriodID(period.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "aucune solution pour cette période")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	input, err := h.solverInput(period.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	report, err := solver.BuildReport(solution, input)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if encoded, err := json.Marshal(report); err == nil {
		if err := h.redisClient.Set(ctx, cacheKey, encoded, time.Duration(h.config.Redis.ReportExpiration)*time.Second).Err(); err != nil {
			h.logInternalServerError(r, err)
		}
	}

	h.successResponse(w, r, "rapport récupéré", report)
}

func (h *Handler) PublishSolution(w http.ResponseWriter, r *http.Request) {
	period := r.Context().Value(ExamPeriodCtx).(*domain.ExamPeriod)

	solution, err := h.repository.GetSolutionByExamPeriodID(period.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "aucune solution pour cette période")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	if solution.Published {
		h.errorResponse(w, r, "la solution est déjà publiée")
		return
	}

	input, err := h.solverInput(period.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.repository.PublishSolution(solution); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// Les compteurs d'équité n'incluent que les affectations publiées.
	if err := h.repository.UpsertFairnessCounters(solver.UpdatedCounters(solution, input)); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := h.sendRosterEmails(period, solution, input); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "solution publiée", solution)
}

func (h *Handler) sendRosterEmails(period *domain.ExamPeriod, solution *domain.Solution, input *solver.NormalizedInput) error {
	sessions := lo.KeyBy(input.Sessions, func(s *domain.Session) int64 { return s.ID })
	supervisors := lo.KeyBy(input.Supervisors, func(s *domain.Supervisor) int64 { return s.ID })

	slotsOf := make(map[int64][]domain.RosterMailSlot)
	for _, slot := range solution.Assignments {
		session, ok := sessions[slot.SessionID]
		if !ok {
			continue
		}
		for _, supID := range slot.SupervisorIDs {
			slotsOf[supID] = append(slotsOf[supID], domain.RosterMailSlot{
				SessionName: session.Name,
				Date:        session.Start.Format("02/01/2006"),
				Start:       session.Start.Format("15:04"),
				End:         session.End.Format("15:04"),
				Room:        slot.Room,
			})
		}
	}

	for supID, slots := range slotsOf {
		sup, ok := supervisors[supID]
		if !ok {
			continue
		}

		mailMessage := domain.MailMessage{
			Type: "roster",
			To:   sup.Email,
			Data: domain.RosterMailData{
				FullName:   sup.FullName(),
				PeriodName: period.Name,
				Slots:      slots,
			},
		}

		emailData, err := json.Marshal(mailMessage)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)

		err = h.mailChannel.PublishWithContext(
			ctx,
			"",
			"roster_queue",
			true,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        emailData,
			},
		)
		cancel()
		if err != nil {
			return err
		}
	}

	return nil
}
