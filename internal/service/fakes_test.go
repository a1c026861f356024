package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"task_tracker/internal/domain"

	"github.com/google/uuid"
)

var errBoom = errors.New("boom")

// memStore is an in-memory TaskStore, SubtaskStore and RunStore with
// per-operation failure switches.
type memStore struct {
	mu       sync.Mutex
	tasks    map[uuid.UUID]*domain.Task
	subtasks map[uuid.UUID]*domain.Subtask
	runs     []*domain.EnrichmentRun

	failCreate   bool
	failSetLabel bool
	failInsert   bool
	failRun      bool
}

func newMemStore() *memStore {
	return &memStore{
		tasks:    map[uuid.UUID]*domain.Task{},
		subtasks: map[uuid.UUID]*domain.Subtask{},
	}
}

func (m *memStore) Create(_ context.Context, t *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return errBoom
	}
	t.ID = uuid.New()
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *memStore) own(userID, taskID uuid.UUID) (*domain.Task, error) {
	t, ok := m.tasks[taskID]
	if !ok || t.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (m *memStore) SetLabel(_ context.Context, userID, taskID uuid.UUID, label domain.Label) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSetLabel {
		return nil, errBoom
	}
	t, err := m.own(userID, taskID)
	if err != nil {
		return nil, err
	}
	t.Label = domain.LabelPtr(label)
	cp := *t
	return &cp, nil
}

func (m *memStore) SetCompleted(_ context.Context, userID, taskID uuid.UUID, completed bool) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.own(userID, taskID)
	if err != nil {
		return nil, err
	}
	t.Completed = completed
	cp := *t
	return &cp, nil
}

func (m *memStore) Update(_ context.Context, userID, taskID uuid.UUID, p domain.TaskPatch) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.own(userID, taskID)
	if err != nil {
		return nil, err
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.ClearLabel {
		t.Label = nil
	} else if p.Label != nil {
		t.Label = domain.LabelPtr(*p.Label)
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) GetByID(_ context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, err := m.own(userID, taskID)
	if err != nil {
		return nil, err
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []*domain.Task
	for _, t := range m.tasks {
		if t.UserID == userID {
			cp := *t
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (m *memStore) Delete(_ context.Context, userID, taskID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.own(userID, taskID); err != nil {
		return err
	}
	delete(m.tasks, taskID)
	for id, s := range m.subtasks {
		if s.TaskID == taskID {
			delete(m.subtasks, id)
		}
	}
	return nil
}

func (m *memStore) InsertBatch(_ context.Context, userID, taskID uuid.UUID, titles []string) ([]domain.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsert {
		return nil, errBoom
	}
	if _, err := m.own(userID, taskID); err != nil {
		return nil, err
	}
	res := make([]domain.Subtask, 0, len(titles))
	for _, title := range titles {
		s := domain.Subtask{ID: uuid.New(), TaskID: taskID, Title: title, CreatedAt: time.Now().UTC()}
		m.subtasks[s.ID] = &s
		res = append(res, s)
	}
	return res, nil
}

func (m *memStore) ListByTasks(_ context.Context, taskIDs []uuid.UUID) (map[uuid.UUID][]domain.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := map[uuid.UUID][]domain.Subtask{}
	for _, id := range taskIDs {
		for _, s := range m.subtasks {
			if s.TaskID == id {
				res[id] = append(res[id], *s)
			}
		}
	}
	return res, nil
}

func (m *memStore) SetSubtaskCompleted(userID, subtaskID uuid.UUID, completed bool) (*domain.Subtask, error) {
	s, ok := m.subtasks[subtaskID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if _, err := m.own(userID, s.TaskID); err != nil {
		return nil, err
	}
	s.IsCompleted = completed
	cp := *s
	return &cp, nil
}

func (m *memStore) subtaskCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subtasks)
}

func (m *memStore) task(id uuid.UUID) *domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil
	}
	cp := *t
	return &cp
}

// subtaskStore adapts memStore to SubtaskStore, whose SetCompleted clashes
// with the task method of the same name.
type subtaskStore struct{ *memStore }

func (s subtaskStore) SetCompleted(_ context.Context, userID, subtaskID uuid.UUID, completed bool) (*domain.Subtask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.SetSubtaskCompleted(userID, subtaskID, completed)
}

// runStore adapts memStore to RunStore, whose Create clashes with the task
// method of the same name.
type runStore struct{ *memStore }

func (r runStore) Create(_ context.Context, run *domain.EnrichmentRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRun {
		return errBoom
	}
	run.ID = uuid.New()
	run.CreatedAt = time.Now().UTC()
	r.runs = append(r.runs, run)
	return nil
}

func (r runStore) LatestForTask(_ context.Context, userID, taskID uuid.UUID) (*domain.EnrichmentRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.runs) - 1; i >= 0; i-- {
		if run := r.runs[i]; run.TaskID == taskID && run.UserID == userID {
			return run, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeGenerator struct {
	mu      sync.Mutex
	out     string
	err     error
	calls   int
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	return g.out, g.err
}

func (g *fakeGenerator) Name() string { return "fake" }

func (g *fakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	res := make([]domain.EventType, len(p.events))
	for i, e := range p.events {
		res[i] = e.Type
	}
	return res
}
