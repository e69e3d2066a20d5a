package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/planexam/surveillance-manager/backend/internal/domain"
)

func (r *Repository) InsertSolution(solution *domain.Solution) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Une seule solution par période: la précédente est écrasée.
	query := `DELETE FROM solutions WHERE exam_period_id = $1`
	if _, err := tx.ExecContext(ctx, query, solution.ExamPeriodID); err != nil {
		return err
	}

	query = `
		INSERT INTO solutions (exam_period_id, score, proven_optimal, published)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`
	params := []any{solution.ExamPeriodID, solution.Score, solution.ProvenOptimal, solution.Published}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&solution.ID, &solution.CreatedAt, &solution.Version); err != nil {
		return err
	}

	for _, slot := range solution.Assignments {
		query := `
			INSERT INTO solution_assignments (solution_id, session_id, room)
			VALUES ($1, $2, $3)
			RETURNING id
		`

		var assignmentID int64
		if err := tx.QueryRowContext(ctx, query, solution.ID, slot.SessionID, slot.Room).Scan(&assignmentID); err != nil {
			return err
		}

		for rank, supervisorID := range slot.SupervisorIDs {
			query := `
				INSERT INTO solution_assignment_supervisors (assignment_id, supervisor_id, rank)
				VALUES ($1, $2, $3)
			`
			if _, err := tx.ExecContext(ctx, query, assignmentID, supervisorID, rank); err != nil {
				return err
			}
		}
	}

	for _, diag := range solution.Diagnostics {
		query := `
			INSERT INTO solution_diagnostics (solution_id, session_id, room, required, assigned, reason)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		params := []any{solution.ID, diag.SessionID, diag.Room, diag.Required, diag.Assigned, diag.Reason}
		if _, err := tx.ExecContext(ctx, query, params...); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetSolutionByExamPeriodID(examPeriodID int64) (*domain.Solution, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			s.id,
			s.score,
			s.proven_optimal,
			s.published,
			s.created_at,
			s.version,
			sa.id,
			sa.session_id,
			sa.room,
			sas.supervisor_id
		FROM solutions s
		LEFT JOIN solution_assignments sa ON s.id = sa.solution_id
		LEFT JOIN solution_assignment_supervisors sas ON sa.id = sas.assignment_id
		WHERE s.exam_period_id = $1
		ORDER BY sa.session_id, sa.room, sas.rank
	`

	rows, err := r.dbpool.QueryContext(ctx, query, examPeriodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	solution := &domain.Solution{
		ExamPeriodID: examPeriodID,
		Assignments:  make([]domain.SlotAssignment, 0),
		Diagnostics:  make([]domain.Diagnostic, 0),
	}

	slotsMap := make(map[int64]*domain.SlotAssignment) // assignmentID -> slot
	order := []int64{}
	found := false

	for rows.Next() {
		var row struct {
			ID            int64
			Score         float64
			ProvenOptimal bool
			Published     bool
			CreatedAt     time.Time
			Version       int32

			AssignmentID sql.NullInt64
			SessionID    sql.NullInt64
			Room         sql.NullString
			SupervisorID sql.NullInt64
		}

		dst := []any{
			&row.ID,
			&row.Score,
			&row.ProvenOptimal,
			&row.Published,
			&row.CreatedAt,
			&row.Version,
			&row.AssignmentID,
			&row.SessionID,
			&row.Room,
			&row.SupervisorID,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		found = true

		solution.ID = row.ID
		solution.Score = row.Score
		solution.ProvenOptimal = row.ProvenOptimal
		solution.Published = row.Published
		solution.CreatedAt = row.CreatedAt
		solution.Version = row.Version

		if !row.AssignmentID.Valid {
			continue
		}

		slot, exists := slotsMap[row.AssignmentID.Int64]
		if !exists {
			slot = &domain.SlotAssignment{
				SessionID:     row.SessionID.Int64,
				Room:          row.Room.String,
				SupervisorIDs: make([]int64, 0),
			}
			slotsMap[row.AssignmentID.Int64] = slot
			order = append(order, row.AssignmentID.Int64)
		}

		if row.SupervisorID.Valid {
			slot.SupervisorIDs = append(slot.SupervisorIDs, row.SupervisorID.Int64)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, sql.ErrNoRows
	}

	for _, id := range order {
		solution.Assignments = append(solution.Assignments, *slotsMap[id])
	}

	query = `
		SELECT session_id, room, required, assigned, reason
		FROM solution_diagnostics
		WHERE solution_id = $1
		ORDER BY session_id, room
	`

	diagRows, err := r.dbpool.QueryContext(ctx, query, solution.ID)
	if err != nil {
		return nil, err
	}
	defer diagRows.Close()

	for diagRows.Next() {
		var diag domain.Diagnostic
		dst := []any{&diag.SessionID, &diag.Room, &diag.Required, &diag.Assigned, &diag.Reason}
		if err := diagRows.Scan(dst...); err != nil {
			return nil, err
		}
		solution.Diagnostics = append(solution.Diagnostics, diag)
	}

	if err := diagRows.Err(); err != nil {
		return nil, err
	}

	return solution, nil
}

func (r *Repository) PublishSolution(solution *domain.Solution) error {
	query := `
		UPDATE solutions
		SET published = TRUE, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, solution.ID, solution.Version).Scan(&solution.Version); err != nil {
		return err
	}
	solution.Published = true

	return nil
}
