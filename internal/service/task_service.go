package service

import (
	"context"
	"fmt"

	"task_tracker/internal/domain"

	"github.com/google/uuid"
)

const defaultListLimit = 200

// TaskService implements user-scoped reads and edits of existing tasks.
type TaskService struct {
	tasks    TaskStore
	subtasks SubtaskStore
	runs     RunStore
	events   Publisher
}

func NewTaskService(tasks TaskStore, subtasks SubtaskStore, runs RunStore, events Publisher) *TaskService {
	if events == nil {
		events = nopPublisher{}
	}
	return &TaskService{tasks: tasks, subtasks: subtasks, runs: runs, events: events}
}

// ListTasks returns the user's tasks with their subtasks, newest first.
func (s *TaskService) ListTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID, defaultListLimit)
	if err != nil {
		return nil, err
	}
	if err := s.attachSubtasks(ctx, tasks...); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

func (s *TaskService) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	t, err := s.tasks.GetByID(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.attachSubtasks(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTask applies a partial edit. The title may not become empty.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID uuid.UUID, p domain.TaskPatch) (*domain.Task, error) {
	if p.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	if p.Title != nil {
		title, ok := domain.NormalizeTitle(*p.Title)
		if !ok {
			return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
		}
		p.Title = &title
	}
	if p.Label != nil && !p.Label.Valid() {
		return nil, fmt.Errorf("%w: unknown label %q", domain.ErrInvalidInput, *p.Label)
	}

	t, err := s.tasks.Update(ctx, userID, taskID, p)
	if err != nil {
		return nil, err
	}
	if err := s.attachSubtasks(ctx, t); err != nil {
		return nil, err
	}
	s.events.Publish(ctx, domain.NewEvent(domain.EventTaskUpdated, userID, t.ID, t))
	return t, nil
}

func (s *TaskService) SetTaskCompleted(ctx context.Context, userID, taskID uuid.UUID, completed bool) (*domain.Task, error) {
	t, err := s.tasks.SetCompleted(ctx, userID, taskID, completed)
	if err != nil {
		return nil, err
	}
	if err := s.attachSubtasks(ctx, t); err != nil {
		return nil, err
	}
	s.events.Publish(ctx, domain.NewEvent(domain.EventTaskUpdated, userID, t.ID, t))
	return t, nil
}

// DeleteTask removes the task; its subtasks go with it.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := s.tasks.Delete(ctx, userID, taskID); err != nil {
		return err
	}
	s.events.Publish(ctx, domain.NewEvent(domain.EventTaskDeleted, userID, taskID, nil))
	return nil
}

func (s *TaskService) SetSubtaskCompleted(ctx context.Context, userID, subtaskID uuid.UUID, completed bool) (*domain.Subtask, error) {
	st, err := s.subtasks.SetCompleted(ctx, userID, subtaskID, completed)
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, domain.NewEvent(domain.EventSubtaskUpdated, userID, st.TaskID, st))
	return st, nil
}

// LatestEnrichment returns the most recent enrichment run of the task.
func (s *TaskService) LatestEnrichment(ctx context.Context, userID, taskID uuid.UUID) (*domain.EnrichmentRun, error) {
	if s.runs == nil {
		return nil, domain.ErrNotFound
	}
	return s.runs.LatestForTask(ctx, userID, taskID)
}

func (s *TaskService) attachSubtasks(ctx context.Context, tasks ...*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}

	byTask, err := s.subtasks.ListByTasks(ctx, ids)
	if err != nil {
		return fmt.Errorf("list subtasks: %w", err)
	}
	for _, t := range tasks {
		if st, ok := byTask[t.ID]; ok {
			t.Subtasks = st
		} else {
			t.Subtasks = []domain.Subtask{}
		}
	}
	return nil
}
