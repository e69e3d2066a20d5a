package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
	"github.com/planexam/surveillance-manager/backend/internal/config"
	"github.com/planexam/surveillance-manager/backend/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	validate    *validator.Validate
	config      *config.Config
	repository  *repository.Repository
	translator  ut.Translator
	mailChannel *amqp.Channel
	redisClient *redis.Client

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, repo *repository.Repository, mailCh *amqp.Channel, rdb *redis.Client) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	fr := fr.New()
	uni := ut.New(fr, fr)
	trans, _ := uni.GetTranslator("fr")
	if err := fr_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:    validate,
		config:      cfg,
		repository:  repo,
		translator:  trans,
		mailChannel: mailCh,
		redisClient: rdb,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	h.Mux.Route("/supervisors", func(r chi.Router) {
		r.Post("/", h.CreateSupervisor)
		r.Get("/", h.GetAllSupervisors)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.supervisor)
			r.Get("/", h.GetSupervisor)
			r.Patch("/", h.UpdateSupervisor)
			r.Delete("/", h.DeleteSupervisor)
			r.Put("/unavailabilities", h.ReplaceUnavailabilities)
		})
	})

	h.Mux.Route("/exam-periods", func(r chi.Router) {
		r.Post("/", h.CreateExamPeriod)
		r.Get("/", h.GetAllExamPeriods)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.examPeriod)
			r.Get("/", h.GetExamPeriod)
			r.Patch("/", h.UpdateExamPeriod)
			r.Delete("/", h.DeleteExamPeriod)

			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", h.CreateSession)
				r.Post("/import", h.ImportSessions)
				r.Get("/", h.GetSessions)
			})

			r.Get("/preferences", h.GetPreferences)
			r.Route("/supervisors/{supervisorID}/preferences", func(r chi.Router) {
				r.Use(h.supervisorByID("supervisorID"))
				r.Put("/", h.ReplacePreferences)
			})

			r.Route("/solution", func(r chi.Router) {
				r.Post("/solve", h.SolveExamPeriod)
				r.Get("/", h.GetSolution)
				r.Get("/report", h.GetSolutionReport)
				r.Post("/publish", h.PublishSolution)
			})
		})
	})

	h.Mux.Route("/sessions/{id}", func(r chi.Router) {
		r.Use(h.session)
		r.Get("/", h.GetSession)
		r.Patch("/", h.UpdateSession)
		r.Delete("/", h.DeleteSession)
	})
}
