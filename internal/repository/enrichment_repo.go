package repository

import (
	"context"
	"encoding/json"
	"errors"

	"task_tracker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnrichmentRepository stores one row per enrichment attempt.
type EnrichmentRepository struct {
	db *pgxpool.Pool
}

func NewEnrichmentRepository(db *pgxpool.Pool) *EnrichmentRepository {
	return &EnrichmentRepository{db: db}
}

// Create inserts run and fills its id and timestamp.
func (r *EnrichmentRepository) Create(ctx context.Context, run *domain.EnrichmentRun) error {
	stepsJSON, err := json.Marshal(run.Steps)
	if err != nil {
		stepsJSON = []byte("{}")
	}

	return r.db.QueryRow(ctx, `
		INSERT INTO enrichment_runs (task_id, user_id, outcome, steps, raw_output, error, error_kind, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING run_id, created_at`,
		run.TaskID, run.UserID, string(run.Outcome), stepsJSON, run.RawOutput, run.Error, run.ErrorKind, run.DurationMs,
	).Scan(&run.ID, &run.CreatedAt)
}

// LatestForTask returns the newest run of one of the user's tasks.
func (r *EnrichmentRepository) LatestForTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.EnrichmentRun, error) {
	var run domain.EnrichmentRun
	var outcome string
	var stepsJSON []byte
	err := r.db.QueryRow(ctx, `
		SELECT run_id, task_id, user_id, outcome, steps, raw_output, error, error_kind, duration_ms, created_at
		FROM enrichment_runs
		WHERE task_id = $1 AND user_id = $2
		ORDER BY created_at DESC
		LIMIT 1`, taskID, userID,
	).Scan(&run.ID, &run.TaskID, &run.UserID, &outcome, &stepsJSON, &run.RawOutput, &run.Error, &run.ErrorKind, &run.DurationMs, &run.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	run.Outcome = domain.OutcomeKind(outcome)
	if err := json.Unmarshal(stepsJSON, &run.Steps); err != nil {
		run.Steps = map[domain.Step]domain.StepStatus{}
	}
	return &run, nil
}
