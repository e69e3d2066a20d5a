package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/planexam/surveillance-manager/backend/internal/domain"
)

func (r *Repository) GetAllSupervisors() ([]*domain.Supervisor, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			s.id,
			s.first_name,
			s.last_name,
			s.email,
			s.grade,
			s.participates,
			s.max_sessions,
			s.created_at,
			s.version,
			su.start_time,
			su.end_time
		FROM supervisors s
		LEFT JOIN supervisor_unavailabilities su ON s.id = su.supervisor_id
		ORDER BY s.id, su.start_time
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	supervisorsMap := make(map[int64]*domain.Supervisor)
	order := []int64{}

	for rows.Next() {
		var row struct {
			ID           int64
			FirstName    string
			LastName     string
			Email        string
			Grade        domain.Grade
			Participates bool
			MaxSessions  int
			CreatedAt    time.Time
			Version      int32

			WindowStart sql.NullTime
			WindowEnd   sql.NullTime
		}

		dst := []any{
			&row.ID,
			&row.FirstName,
			&row.LastName,
			&row.Email,
			&row.Grade,
			&row.Participates,
			&row.MaxSessions,
			&row.CreatedAt,
			&row.Version,
			&row.WindowStart,
			&row.WindowEnd,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		sup, exists := supervisorsMap[row.ID]
		if !exists {
			sup = &domain.Supervisor{
				ID:           row.ID,
				FirstName:    row.FirstName,
				LastName:     row.LastName,
				Email:        row.Email,
				Grade:        row.Grade,
				Participates: row.Participates,
				MaxSessions:  row.MaxSessions,
				Unavailable:  make([]domain.TimeWindow, 0),
				CreatedAt:    row.CreatedAt,
				Version:      row.Version,
			}
			supervisorsMap[row.ID] = sup
			order = append(order, row.ID)
		}

		// Une ligne sans fenêtre signifie que le surveillant n'a déclaré
		// aucune indisponibilité.
		if !row.WindowStart.Valid {
			continue
		}

		sup.Unavailable = append(sup.Unavailable, domain.TimeWindow{
			Start: row.WindowStart.Time,
			End:   row.WindowEnd.Time,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	supervisors := make([]*domain.Supervisor, 0, len(order))
	for _, id := range order {
		supervisors = append(supervisors, supervisorsMap[id])
	}

	return supervisors, nil
}

func (r *Repository) GetSupervisorByID(id int64) (*domain.Supervisor, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			s.first_name,
			s.last_name,
			s.email,
			s.grade,
			s.participates,
			s.max_sessions,
			s.created_at,
			s.version,
			su.start_time,
			su.end_time
		FROM supervisors s
		LEFT JOIN supervisor_unavailabilities su ON s.id = su.supervisor_id
		WHERE s.id = $1
		ORDER BY su.start_time
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sup := &domain.Supervisor{
		ID:          id,
		Unavailable: make([]domain.TimeWindow, 0),
	}
	found := false

	for rows.Next() {
		var windowStart, windowEnd sql.NullTime

		dst := []any{
			&sup.FirstName,
			&sup.LastName,
			&sup.Email,
			&sup.Grade,
			&sup.Participates,
			&sup.MaxSessions,
			&sup.CreatedAt,
			&sup.Version,
			&windowStart,
			&windowEnd,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		found = true

		if windowStart.Valid {
			sup.Unavailable = append(sup.Unavailable, domain.TimeWindow{
				Start: windowStart.Time,
				End:   windowEnd.Time,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, sql.ErrNoRows
	}

	return sup, nil
}

func (r *Repository) GetSupervisorByEmail(email string) (*domain.Supervisor, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id FROM supervisors WHERE email = $1
	`

	var id int64
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(&id); err != nil {
		return nil, err
	}

	return r.GetSupervisorByID(id)
}

func (r *Repository) CreateSupervisor(sup *domain.Supervisor) error {
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
		INSERT INTO supervisors (first_name, last_name, email, grade, participates, max_sessions)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`
	params := []any{sup.FirstName, sup.LastName, sup.Email, sup.Grade, sup.Participates, sup.MaxSessions}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&sup.ID, &sup.CreatedAt, &sup.Version); err != nil {
		return err
	}

	for _, w := range sup.Unavailable {
		query = `
			INSERT INTO supervisor_unavailabilities (supervisor_id, start_time, end_time)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, sup.ID, w.Start, w.End); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateSupervisor(sup *domain.Supervisor) error {
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
		UPDATE supervisors
		SET
			first_name = $1,
			last_name = $2,
			email = $3,
			grade = $4,
			participates = $5,
			max_sessions = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`
	params := []any{
		sup.FirstName,
		sup.LastName,
		sup.Email,
		sup.Grade,
		sup.Participates,
		sup.MaxSessions,
		sup.ID,
		sup.Version,
	}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&sup.Version); err != nil {
		return err
	}

	// Les fenêtres sont remplacées en bloc, pas de mise à jour fine.
	query = `DELETE FROM supervisor_unavailabilities WHERE supervisor_id = $1`
	if _, err := tx.ExecContext(ctx, query, sup.ID); err != nil {
		return err
	}

	for _, w := range sup.Unavailable {
		query = `
			INSERT INTO supervisor_unavailabilities (supervisor_id, start_time, end_time)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, sup.ID, w.Start, w.End); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteSupervisor(id int64) error {
	query := `
		DELETE FROM supervisors WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
