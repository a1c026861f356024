package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"task_tracker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `task_id, user_id, title, description, completed, label, due_date, created_at, updated_at`

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts t and fills its generated columns.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO tasks (user_id, title, description, completed, label, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING task_id, created_at, updated_at`,
		t.UserID, t.Title, t.Description, t.Completed, labelArg(t.Label), dateArg(t.DueDate),
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// SetLabel stores label and returns the row as persisted.
func (r *TaskRepository) SetLabel(ctx context.Context, userID, taskID uuid.UUID, label domain.Label) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE tasks SET label = $1, updated_at = now()
		WHERE task_id = $2 AND user_id = $3
		RETURNING `+taskColumns,
		string(label), taskID, userID,
	)
	return scanOne(row)
}

// SetCompleted flips the completion flag of one of the user's tasks.
func (r *TaskRepository) SetCompleted(ctx context.Context, userID, taskID uuid.UUID, completed bool) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE tasks SET completed = $1, updated_at = now()
		WHERE task_id = $2 AND user_id = $3
		RETURNING `+taskColumns,
		completed, taskID, userID,
	)
	return scanOne(row)
}

// Update applies the non-nil fields of p.
func (r *TaskRepository) Update(ctx context.Context, userID, taskID uuid.UUID, p domain.TaskPatch) (*domain.Task, error) {
	var sets []string
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Title != nil {
		add("title", *p.Title)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.Completed != nil {
		add("completed", *p.Completed)
	}
	switch {
	case p.ClearLabel:
		sets = append(sets, "label = NULL")
	case p.Label != nil:
		add("label", string(*p.Label))
	}
	switch {
	case p.ClearDueDate:
		sets = append(sets, "due_date = NULL")
	case p.DueDate != nil:
		add("due_date", p.DueDate.Time)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, taskID, userID)
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE task_id = $%d AND user_id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), taskColumns)

	return scanOne(r.db.QueryRow(ctx, query, args...))
}

// GetByID returns one of the user's tasks without subtasks.
func (r *TaskRepository) GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE task_id = $1 AND user_id = $2`, taskID, userID)
	return scanOne(row)
}

// ListByUser returns the user's tasks, newest first.
func (r *TaskRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// Delete removes one of the user's tasks; subtasks cascade.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE task_id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanOne(row pgx.Row) (*domain.Task, error) {
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return t, err
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	var label *string
	var due *time.Time
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &label, &due, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if label != nil {
		l := domain.Label(*label)
		t.Label = &l
	}
	if due != nil {
		d := domain.NewDate(*due)
		t.DueDate = &d
	}
	t.Subtasks = []domain.Subtask{}
	return &t, nil
}

func labelArg(l *domain.Label) *string {
	if l == nil {
		return nil
	}
	s := string(*l)
	return &s
}

func dateArg(d *domain.Date) *time.Time {
	if d == nil {
		return nil
	}
	return &d.Time
}
