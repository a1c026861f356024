package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a user's to-do item. Label is nil until assigned.
type Task struct {
	ID          uuid.UUID `db:"task_id" json:"task_id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Completed   bool      `db:"completed" json:"completed"`
	Label       *Label    `db:"label" json:"label"`
	DueDate     *Date     `db:"due_date" json:"due_date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
	Subtasks    []Subtask `db:"-" json:"subtasks"`
}

// Subtask is an actionable step owned by a task.
type Subtask struct {
	ID          uuid.UUID `db:"subtask_id" json:"subtask_id"`
	TaskID      uuid.UUID `db:"task_id" json:"task_id"`
	Title       string    `db:"title" json:"title"`
	IsCompleted bool      `db:"is_completed" json:"is_completed"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// TaskPatch carries a partial update. Nil fields are left untouched.
// ClearLabel and ClearDueDate set the column to NULL.
type TaskPatch struct {
	Title        *string
	Description  *string
	Completed    *bool
	Label        *Label
	ClearLabel   bool
	DueDate      *Date
	ClearDueDate bool
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil &&
		p.Label == nil && !p.ClearLabel && p.DueDate == nil && !p.ClearDueDate
}

// NormalizeTitle trims surrounding whitespace; an empty result is invalid.
func NormalizeTitle(title string) (string, bool) {
	t := strings.TrimSpace(title)
	return t, t != ""
}

// LabelOrEmpty returns the label value or "" when unset.
func (t *Task) LabelOrEmpty() string {
	if t.Label == nil {
		return ""
	}
	return string(*t.Label)
}
