package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/planexam/surveillance-manager/backend/internal/config"
	"github.com/planexam/surveillance-manager/backend/internal/repository"
	"github.com/planexam/surveillance-manager/backend/internal/seed"
	"github.com/planexam/surveillance-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var examPeriodID int64

	flag.IntVar(&op, "op", 0, "opération à exécuter (1: insérer des surveillants aléatoires, 2: insérer des séances aléatoires, 3: insérer des souhaits aléatoires, 4: insérer une période de démonstration complète)")
	flag.IntVar(&n, "n", 5, "nombre d'enregistrements à insérer")
	flag.Int64Var(&examPeriodID, "exam-period-id", 0, "période visée par les séances ou souhaits aléatoires")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("impossible de charger la configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("impossible de créer le pool de connexions", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open ne fait que créer le pool, le ping force la connexion.
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("impossible de se connecter à la base", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("aucune opération spécifiée")
	case 1:
		if n <= 0 {
			slog.Error("nombre de surveillants invalide")
			return
		}

		spanStart := time.Now().AddDate(0, 0, 14).Truncate(24 * time.Hour)
		cnt := n
		for i := 0; i < n; i++ {
			sup := utils.GenerateRandomSupervisor()
			sup.Unavailable = utils.GenerateRandomUnavailability(spanStart, 10, 2)
			if err := repo.CreateSupervisor(sup); err != nil {
				slog.Error("impossible d'insérer le surveillant", slog.String("error", err.Error()))
				continue
			}
			cnt--
		}

		slog.Info("surveillants insérés", slog.Int("count", n-cnt))
	case 2:
		if n <= 0 {
			slog.Error("nombre de séances invalide")
			return
		}
		if examPeriodID <= 0 {
			slog.Error("identifiant de période invalide")
			return
		}

		period, err := repo.GetExamPeriodByID(examPeriodID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("la période spécifiée n'existe pas", slog.Int64("exam_period_id", examPeriodID))
			default:
				slog.Error("impossible de récupérer la période", slog.String("error", err.Error()))
			}
			return
		}

		spanStart := time.Now().AddDate(0, 0, 14).Truncate(24 * time.Hour)
		cnt := n
		for i := 0; i < n; i++ {
			session := utils.GenerateRandomSession(period.ID, spanStart, 10)
			if err := repo.CreateSession(session); err != nil {
				slog.Error("impossible d'insérer la séance", slog.String("error", err.Error()))
				continue
			}
			cnt--
		}

		slog.Info("séances insérées", slog.Int("count", n-cnt))
	case 3:
		if examPeriodID <= 0 {
			slog.Error("identifiant de période invalide")
			return
		}

		sessions, err := repo.GetSessionsByExamPeriodID(examPeriodID)
		if err != nil {
			slog.Error("impossible de récupérer les séances", slog.String("error", err.Error()))
			return
		}

		supervisors, err := repo.GetAllSupervisors()
		if err != nil {
			slog.Error("impossible de récupérer les surveillants", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for _, sup := range supervisors {
			preferences := utils.GenerateRandomPreferences(sup, sessions)
			if len(preferences) == 0 {
				continue
			}
			if err := repo.ReplaceSupervisorPreferences(examPeriodID, sup.ID, preferences); err != nil {
				slog.Error("impossible d'insérer les souhaits", slog.String("error", err.Error()))
				continue
			}
			cnt++
		}

		slog.Info("souhaits insérés", slog.Int("count", cnt))
	case 4:
		seed.SeedDemoPeriod(repo, cfg)
	default:
		slog.Error("opération inconnue")
	}
}
