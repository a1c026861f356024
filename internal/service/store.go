package service

import (
	"context"

	"task_tracker/internal/domain"

	"github.com/google/uuid"
)

// TaskStore persists tasks. Every lookup is scoped to the owning user and
// reports domain.ErrNotFound for rows the user cannot see.
type TaskStore interface {
	Create(ctx context.Context, t *domain.Task) error
	SetLabel(ctx context.Context, userID, taskID uuid.UUID, label domain.Label) (*domain.Task, error)
	SetCompleted(ctx context.Context, userID, taskID uuid.UUID, completed bool) (*domain.Task, error)
	Update(ctx context.Context, userID, taskID uuid.UUID, p domain.TaskPatch) (*domain.Task, error)
	GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Task, error)
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
}

type SubtaskStore interface {
	InsertBatch(ctx context.Context, userID, taskID uuid.UUID, titles []string) ([]domain.Subtask, error)
	ListByTasks(ctx context.Context, taskIDs []uuid.UUID) (map[uuid.UUID][]domain.Subtask, error)
	SetCompleted(ctx context.Context, userID, subtaskID uuid.UUID, completed bool) (*domain.Subtask, error)
}

type RunStore interface {
	Create(ctx context.Context, run *domain.EnrichmentRun) error
	LatestForTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.EnrichmentRun, error)
}

// Publisher delivers change notifications. Delivery is best-effort.
type Publisher interface {
	Publish(ctx context.Context, e domain.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, domain.Event) {}
