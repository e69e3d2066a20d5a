package repository

import (
	"context"
	"time"

	"github.com/planexam/surveillance-manager/backend/internal/domain"
)

func (r *Repository) GetAllExamPeriods() ([]*domain.ExamPeriod, error) {
	query := `
		SELECT id, name, description, semester, exam_type, exam_session, created_at, version
		FROM exam_periods
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	periods := []*domain.ExamPeriod{}
	for rows.Next() {
		var period domain.ExamPeriod
		dst := []any{
			&period.ID,
			&period.Name,
			&period.Description,
			&period.Semester,
			&period.ExamType,
			&period.Session,
			&period.CreatedAt,
			&period.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		periods = append(periods, &period)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return periods, nil
}

func (r *Repository) GetExamPeriodByID(id int64) (*domain.ExamPeriod, error) {
	query := `
		SELECT name, description, semester, exam_type, exam_session, created_at, version
		FROM exam_periods
		WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	period := &domain.ExamPeriod{
		ID: id,
	}

	dst := []any{
		&period.Name,
		&period.Description,
		&period.Semester,
		&period.ExamType,
		&period.Session,
		&period.CreatedAt,
		&period.Version,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return period, nil
}

func (r *Repository) CreateExamPeriod(period *domain.ExamPeriod) error {
	query := `
		INSERT INTO exam_periods (name, description, semester, exam_type, exam_session)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{period.Name, period.Description, period.Semester, period.ExamType, period.Session}
	dst := []any{&period.ID, &period.CreatedAt, &period.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(dst...); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateExamPeriod(period *domain.ExamPeriod) error {
	query := `
		UPDATE exam_periods
		SET
			name = $1,
			description = $2,
			semester = $3,
			exam_type = $4,
			exam_session = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	params := []any{
		period.Name,
		period.Description,
		period.Semester,
		period.ExamType,
		period.Session,
		period.ID,
		period.Version,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&period.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteExamPeriod(id int64) error {
	query := `
		DELETE FROM exam_periods WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
