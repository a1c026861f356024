package repository

import (
	"context"
	"errors"

	"task_tracker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubtaskRepository struct {
	db *pgxpool.Pool
}

func NewSubtaskRepository(db *pgxpool.Pool) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

// InsertBatch creates one subtask per title under the user's task in a single
// statement, so either every row is written or none is.
func (r *SubtaskRepository) InsertBatch(ctx context.Context, userID, taskID uuid.UUID, titles []string) ([]domain.Subtask, error) {
	if len(titles) == 0 {
		return []domain.Subtask{}, nil
	}

	rows, err := r.db.Query(ctx, `
		INSERT INTO subtasks (task_id, title, is_completed)
		SELECT t.task_id, s.title, false
		FROM tasks t, unnest($3::text[]) WITH ORDINALITY AS s(title, n)
		WHERE t.task_id = $1 AND t.user_id = $2
		ORDER BY s.n
		RETURNING subtask_id, task_id, title, is_completed, created_at`,
		taskID, userID, titles,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := make([]domain.Subtask, 0, len(titles))
	for rows.Next() {
		var s domain.Subtask
		if err := rows.Scan(&s.ID, &s.TaskID, &s.Title, &s.IsCompleted, &s.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, domain.ErrNotFound
	}
	return res, nil
}

// ListByTasks groups the subtasks of the given tasks by task id.
func (r *SubtaskRepository) ListByTasks(ctx context.Context, taskIDs []uuid.UUID) (map[uuid.UUID][]domain.Subtask, error) {
	res := make(map[uuid.UUID][]domain.Subtask, len(taskIDs))
	if len(taskIDs) == 0 {
		return res, nil
	}

	ids := make([]string, len(taskIDs))
	for i, id := range taskIDs {
		ids[i] = id.String()
	}

	rows, err := r.db.Query(ctx, `
		SELECT subtask_id, task_id, title, is_completed, created_at
		FROM subtasks
		WHERE task_id = ANY($1::uuid[])
		ORDER BY created_at, subtask_id`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s domain.Subtask
		if err := rows.Scan(&s.ID, &s.TaskID, &s.Title, &s.IsCompleted, &s.CreatedAt); err != nil {
			return nil, err
		}
		res[s.TaskID] = append(res[s.TaskID], s)
	}
	return res, rows.Err()
}

// SetCompleted toggles a subtask reachable through one of the user's tasks.
func (r *SubtaskRepository) SetCompleted(ctx context.Context, userID, subtaskID uuid.UUID, completed bool) (*domain.Subtask, error) {
	var s domain.Subtask
	err := r.db.QueryRow(ctx, `
		UPDATE subtasks s SET is_completed = $1
		FROM tasks t
		WHERE s.subtask_id = $2 AND s.task_id = t.task_id AND t.user_id = $3
		RETURNING s.subtask_id, s.task_id, s.title, s.is_completed, s.created_at`,
		completed, subtaskID, userID,
	).Scan(&s.ID, &s.TaskID, &s.Title, &s.IsCompleted, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
