package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/planexam/surveillance-manager/backend/internal/domain"
)

func (r *Repository) GetPreferencesByExamPeriodID(examPeriodID int64) ([]*domain.Preference, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	// Les souhaits ciblant une fenêtre horaire ne référencent aucune
	// session; ils valent pour toute la période.
	query := `
		SELECT
			p.id,
			p.supervisor_id,
			p.session_id,
			p.window_start,
			p.window_end,
			p.polarity,
			p.weight,
			p.created_at,
			p.version
		FROM preferences p
		WHERE p.exam_period_id = $1
		ORDER BY p.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, examPeriodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	preferences := []*domain.Preference{}
	for rows.Next() {
		var row struct {
			ID           int64
			SupervisorID int64
			SessionID    sql.NullInt64
			WindowStart  sql.NullTime
			WindowEnd    sql.NullTime
			Polarity     domain.PreferencePolarity
			Weight       float64
			CreatedAt    time.Time
			Version      int32
		}

		dst := []any{
			&row.ID,
			&row.SupervisorID,
			&row.SessionID,
			&row.WindowStart,
			&row.WindowEnd,
			&row.Polarity,
			&row.Weight,
			&row.CreatedAt,
			&row.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		pref := &domain.Preference{
			ID:           row.ID,
			SupervisorID: row.SupervisorID,
			SessionID:    row.SessionID.Int64,
			Polarity:     row.Polarity,
			Weight:       row.Weight,
			CreatedAt:    row.CreatedAt,
			Version:      row.Version,
		}
		if row.WindowStart.Valid {
			pref.Window = &domain.TimeWindow{Start: row.WindowStart.Time, End: row.WindowEnd.Time}
		}
		preferences = append(preferences, pref)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return preferences, nil
}

func (r *Repository) ReplaceSupervisorPreferences(examPeriodID, supervisorID int64, preferences []*domain.Preference) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Les souhaits d'un surveillant sont remplacés en bloc à chaque
	// nouvelle soumission.
	query := `DELETE FROM preferences WHERE exam_period_id = $1 AND supervisor_id = $2`
	if _, err := tx.ExecContext(ctx, query, examPeriodID, supervisorID); err != nil {
		return err
	}

	for _, pref := range preferences {
		query = `
			INSERT INTO preferences (exam_period_id, supervisor_id, session_id, window_start, window_end, polarity, weight)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at, version
		`

		var sessionID any
		if pref.SessionID != 0 {
			sessionID = pref.SessionID
		}
		var windowStart, windowEnd any
		if pref.Window != nil {
			windowStart = pref.Window.Start
			windowEnd = pref.Window.End
		}

		params := []any{examPeriodID, supervisorID, sessionID, windowStart, windowEnd, pref.Polarity, pref.Weight}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&pref.ID, &pref.CreatedAt, &pref.Version); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
