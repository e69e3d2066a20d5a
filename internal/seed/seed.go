package seed

import (
	"log/slog"
	"time"

	"github.com/planexam/surveillance-manager/backend/internal/config"
	"github.com/planexam/surveillance-manager/backend/internal/domain"
	"github.com/planexam/surveillance-manager/backend/internal/repository"
	"github.com/planexam/surveillance-manager/backend/internal/utils"
)

// SeedDemoPeriod creates one exam period with sessions, supervisors and
// preferences, enough to exercise the whole solve/report/publish flow.
func SeedDemoPeriod(r *repository.Repository, cfg *config.Config) {
	spanStart := time.Now().AddDate(0, 0, 14).Truncate(24 * time.Hour)
	const spanDays = 10

	period := &domain.ExamPeriod{
		Name:        "Session de janvier " + time.Now().AddDate(0, 0, 14).Format("2006"),
		Description: "Période de démonstration générée automatiquement",
		Semester:    "S1",
		ExamType:    domain.ExamTypeExamen,
		Session:     domain.SessionPrincipal,
	}
	if err := r.CreateExamPeriod(period); err != nil {
		slog.Error("impossible de créer la période", "error", err)
		return
	}

	sessions := make([]*domain.Session, 0, cfg.Seed.Sessions)
	for i := 0; i < cfg.Seed.Sessions; i++ {
		session := utils.GenerateRandomSession(period.ID, spanStart, spanDays)
		if err := r.CreateSession(session); err != nil {
			slog.Error("impossible de créer la séance", "error", err)
			continue
		}
		sessions = append(sessions, session)
	}

	supervisors := make([]*domain.Supervisor, 0, cfg.Seed.Supervisors)
	for i := 0; i < cfg.Seed.Supervisors; i++ {
		sup := utils.GenerateRandomSupervisor()
		// Le vivier de noms est petit, les doublons d'adresse sont probables.
		if existing, err := r.GetSupervisorByEmail(sup.Email); err == nil && existing != nil {
			continue
		}
		sup.Unavailable = utils.GenerateRandomUnavailability(spanStart, spanDays, 2)
		if err := r.CreateSupervisor(sup); err != nil {
			slog.Error("impossible de créer le surveillant", "error", err)
			continue
		}
		supervisors = append(supervisors, sup)
	}

	for _, sup := range supervisors {
		preferences := utils.GenerateRandomPreferences(sup, sessions)
		if len(preferences) == 0 {
			continue
		}
		if err := r.ReplaceSupervisorPreferences(period.ID, sup.ID, preferences); err != nil {
			slog.Error("impossible d'enregistrer les souhaits", "error", err)
		}
	}

	slog.Info("données de démonstration insérées",
		"periodID", period.ID,
		"sessions", len(sessions),
		"supervisors", len(supervisors),
	)
}
