package repository

import (
	"context"
	"time"

	"github.com/planexam/surveillance-manager/backend/internal/domain"
)

func (r *Repository) GetFairnessCounters() (map[int64]domain.FairnessCounter, error) {
	query := `
		SELECT supervisor_id, sessions, hours
		FROM fairness_counters
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counters := make(map[int64]domain.FairnessCounter)
	for rows.Next() {
		var counter domain.FairnessCounter
		if err := rows.Scan(&counter.SupervisorID, &counter.Sessions, &counter.Hours); err != nil {
			return nil, err
		}
		counters[counter.SupervisorID] = counter
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counters, nil
}

func (r *Repository) UpsertFairnessCounters(counters map[int64]domain.FairnessCounter) error {
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
		INSERT INTO fairness_counters (supervisor_id, sessions, hours)
		VALUES ($1, $2, $3)
		ON CONFLICT (supervisor_id) DO UPDATE
		SET sessions = EXCLUDED.sessions, hours = EXCLUDED.hours
	`

	for _, counter := range counters {
		if _, err := tx.ExecContext(ctx, query, counter.SupervisorID, counter.Sessions, counter.Hours); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
