package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/planexam/surveillance-manager/backend/internal/domain"
)

func (r *Repository) GetSessionsByExamPeriodID(examPeriodID int64) ([]*domain.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			s.id,
			s.name,
			s.start_time,
			s.end_time,
			s.min_supervisors,
			s.created_at,
			s.version,
			sr.room
		FROM sessions s
		LEFT JOIN session_rooms sr ON s.id = sr.session_id
		WHERE s.exam_period_id = $1
		ORDER BY s.start_time, s.id, sr.room
	`

	rows, err := r.dbpool.QueryContext(ctx, query, examPeriodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessionsMap := make(map[int64]*domain.Session)
	order := []int64{}

	for rows.Next() {
		var row struct {
			ID             int64
			Name           string
			Start          time.Time
			End            time.Time
			MinSupervisors int
			CreatedAt      time.Time
			Version        int32

			Room sql.NullString
		}

		dst := []any{
			&row.ID,
			&row.Name,
			&row.Start,
			&row.End,
			&row.MinSupervisors,
			&row.CreatedAt,
			&row.Version,
			&row.Room,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		session, exists := sessionsMap[row.ID]
		if !exists {
			session = &domain.Session{
				ID:             row.ID,
				ExamPeriodID:   examPeriodID,
				Name:           row.Name,
				Start:          row.Start,
				End:            row.End,
				Rooms:          make([]string, 0),
				MinSupervisors: row.MinSupervisors,
				CreatedAt:      row.CreatedAt,
				Version:        row.Version,
			}
			sessionsMap[row.ID] = session
			order = append(order, row.ID)
		}

		if !row.Room.Valid {
			continue
		}
		session.Rooms = append(session.Rooms, row.Room.String)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	sessions := make([]*domain.Session, 0, len(order))
	for _, id := range order {
		sessions = append(sessions, sessionsMap[id])
	}

	return sessions, nil
}

func (r *Repository) GetSessionByID(id int64) (*domain.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			s.exam_period_id,
			s.name,
			s.start_time,
			s.end_time,
			s.min_supervisors,
			s.created_at,
			s.version,
			sr.room
		FROM sessions s
		LEFT JOIN session_rooms sr ON s.id = sr.session_id
		WHERE s.id = $1
		ORDER BY sr.room
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	session := &domain.Session{
		ID:    id,
		Rooms: make([]string, 0),
	}
	found := false

	for rows.Next() {
		var room sql.NullString

		dst := []any{
			&session.ExamPeriodID,
			&session.Name,
			&session.Start,
			&session.End,
			&session.MinSupervisors,
			&session.CreatedAt,
			&session.Version,
			&room,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		found = true

		if room.Valid {
			session.Rooms = append(session.Rooms, room.String)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, sql.ErrNoRows
	}

	return session, nil
}

func (r *Repository) CreateSession(session *domain.Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO sessions (exam_period_id, name, start_time, end_time, min_supervisors)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`
	params := []any{session.ExamPeriodID, session.Name, session.Start, session.End, session.MinSupervisors}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&session.ID, &session.CreatedAt, &session.Version); err != nil {
		return err
	}

	for _, room := range session.Rooms {
		query = `
			INSERT INTO session_rooms (session_id, room)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, session.ID, room); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// CreateSessions insère un lot de séances dans une seule transaction:
// un import interrompu ne laisse pas de calendrier partiel.
func (r *Repository) CreateSessions(sessions []*domain.Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, session := range sessions {
		query := `
			INSERT INTO sessions (exam_period_id, name, start_time, end_time, min_supervisors)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, version
		`
		params := []any{session.ExamPeriodID, session.Name, session.Start, session.End, session.MinSupervisors}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&session.ID, &session.CreatedAt, &session.Version); err != nil {
			return err
		}

		for _, room := range session.Rooms {
			query = `
				INSERT INTO session_rooms (session_id, room)
				VALUES ($1, $2)
			`
			if _, err := tx.ExecContext(ctx, query, session.ID, room); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateSession(session *domain.Session) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE sessions
		SET
			name = $1,
			start_time = $2,
			end_time = $3,
			min_supervisors = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version
	`
	params := []any{session.Name, session.Start, session.End, session.MinSupervisors, session.ID, session.Version}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&session.Version); err != nil {
		return err
	}

	query = `DELETE FROM session_rooms WHERE session_id = $1`
	if _, err := tx.ExecContext(ctx, query, session.ID); err != nil {
		return err
	}

	for _, room := range session.Rooms {
		query = `
			INSERT INTO session_rooms (session_id, room)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, session.ID, room); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteSession(id int64) error {
	query := `
		DELETE FROM sessions WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
