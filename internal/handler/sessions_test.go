package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/planexam/surveillance-manager/backend/internal/config"
	"github.com/planexam/surveillance-manager/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestHandler builds a handler with no backing services. Any access
// to the repository, the mail channel or Redis panics, which the tests
// below rely on to prove a request was rejected before persistence.
func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	h, err := NewHandler(&config.Config{}, nil, nil, nil)
	require.NoError(t, err)
	return h
}

func importRequest(t *testing.T, period *domain.ExamPeriod, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/exam-periods/1/sessions/import", bytes.NewReader(body))
	return req.WithContext(context.WithValue(req.Context(), ExamPeriodCtx, period))
}

func TestImportSessionsRejectsInvalidBatchBeforeInsert(t *testing.T) {
	h := newTestHandler(t)
	period := &domain.ExamPeriod{ID: 1}
	day := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	valid := map[string]any{
		"name":           "Analyse 1",
		"start":          day.Add(9 * time.Hour),
		"end":            day.Add(11 * time.Hour),
		"rooms":          []string{"A101"},
		"minSupervisors": 1,
	}

	t.Run("end before start blocks the whole batch", func(t *testing.T) {
		backwards := map[string]any{
			"name":           "Algèbre 1",
			"start":          day.Add(16 * time.Hour),
			"end":            day.Add(14 * time.Hour),
			"rooms":          []string{"B202"},
			"minSupervisors": 1,
		}

		rec := httptest.NewRecorder()
		h.ImportSessions(rec, importRequest(t, period, map[string]any{
			"sessions": []map[string]any{valid, backwards},
		}))

		var resp Response
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.False(t, resp.Success)
		assert.Equal(t, "l'heure de fin doit être après l'heure de début", resp.Message)
	})

	t.Run("session without rooms blocks the whole batch", func(t *testing.T) {
		roomless := map[string]any{
			"name":           "Algèbre 1",
			"start":          day.Add(14 * time.Hour),
			"end":            day.Add(16 * time.Hour),
			"rooms":          []string{},
			"minSupervisors": 1,
		}

		rec := httptest.NewRecorder()
		h.ImportSessions(rec, importRequest(t, period, map[string]any{
			"sessions": []map[string]any{valid, roomless},
		}))

		var resp Response
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.False(t, resp.Success)
	})

	t.Run("empty batch is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ImportSessions(rec, importRequest(t, period, map[string]any{
			"sessions": []map[string]any{},
		}))

		var resp Response
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.False(t, resp.Success)
	})
}
