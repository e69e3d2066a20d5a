package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("requête traitée", "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // slog rendrait la trace illisible
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) examPeriod(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		periodIDParam := chi.URLParam(r, "id")
		periodID, err := strconv.ParseInt(periodIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "identifiant de période invalide")
			return
		}

		period, err := h.repository.GetExamPeriodByID(periodID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "période d'examens introuvable")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), ExamPeriodCtx, period)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) supervisor(next http.Handler) http.Handler {
	return h.supervisorByID("id")(next)
}

func (h *Handler) supervisorByID(param string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			supervisorIDParam := chi.URLParam(r, param)
			supervisorID, err := strconv.ParseInt(supervisorIDParam, 10, 64)
			if err != nil {
				h.errorResponse(w, r, "identifiant de surveillant invalide")
				return
			}

			sup, err := h.repository.GetSupervisorByID(supervisorID)
			if err != nil {
				switch {
				case errors.Is(err, sql.ErrNoRows):
					h.errorResponse(w, r, "surveillant introuvable")
				default:
					h.internalServerError(w, r, err)
				}
				return
			}

			ctx := context.WithValue(r.Context(), SupervisorCtx, sup)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (h *Handler) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionIDParam := chi.URLParam(r, "id")
		sessionID, err := strconv.ParseInt(sessionIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "identifiant de séance invalide")
			return
		}

		session, err := h.repository.GetSessionByID(sessionID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "séance introuvable")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), SessionCtx, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
