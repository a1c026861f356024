package service

import (
	"context"
	"testing"

	"task_tracker/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskFixture struct {
	store  *memStore
	events *recordingPublisher
	create *EnrichmentService
	svc    *TaskService
}

func newTaskFixture() *taskFixture {
	store := newMemStore()
	events := &recordingPublisher{}
	gen := &fakeGenerator{out: partyOutput}
	return &taskFixture{
		store:  store,
		events: events,
		create: NewEnrichmentService(store, subtaskStore{store}, runStore{store}, gen, events, 0),
		svc:    NewTaskService(store, subtaskStore{store}, runStore{store}, events),
	}
}

func (f *taskFixture) seed(t *testing.T, user uuid.UUID, useAI bool) *domain.EnrichedTask {
	t.Helper()
	res, err := f.create.CreateEnrichedTask(context.Background(), user, "Plan birthday party", "Need venue", useAI)
	require.NoError(t, err)
	return res
}

func TestTaskService_ListAndGet(t *testing.T) {
	f := newTaskFixture()
	ctx := context.Background()
	user := uuid.New()

	empty, err := f.svc.ListTasks(ctx, user)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	enriched := f.seed(t, user, true)
	f.seed(t, user, false)
	f.seed(t, uuid.New(), false)

	list, err := f.svc.ListTasks(ctx, user)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	got, err := f.svc.GetTask(ctx, user, enriched.ID)
	require.NoError(t, err)
	assert.Len(t, got.Subtasks, 3)
}

func TestTaskService_ForeignTaskIsNotFound(t *testing.T) {
	f := newTaskFixture()
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()
	task := f.seed(t, owner, true)

	_, err := f.svc.GetTask(ctx, other, task.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	title := "hijacked"
	_, err = f.svc.UpdateTask(ctx, other, task.ID, domain.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.SetTaskCompleted(ctx, other, task.ID, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, f.svc.DeleteTask(ctx, other, task.ID), domain.ErrNotFound)

	_, err = f.svc.SetSubtaskCompleted(ctx, other, task.Subtasks[0].ID, true)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.LatestEnrichment(ctx, other, task.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTaskService_UpdateValidation(t *testing.T) {
	f := newTaskFixture()
	ctx := context.Background()
	user := uuid.New()
	task := f.seed(t, user, false)

	_, err := f.svc.UpdateTask(ctx, user, task.ID, domain.TaskPatch{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	blank := "   "
	_, err = f.svc.UpdateTask(ctx, user, task.ID, domain.TaskPatch{Title: &blank})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	bad := domain.Label("urgent")
	_, err = f.svc.UpdateTask(ctx, user, task.ID, domain.TaskPatch{Label: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	title := "  Plan surprise party "
	updated, err := f.svc.UpdateTask(ctx, user, task.ID, domain.TaskPatch{Title: &title, Label: domain.LabelPtr(domain.LabelHome)})
	require.NoError(t, err)
	assert.Equal(t, "Plan surprise party", updated.Title)
	assert.Equal(t, domain.LabelHome, *updated.Label)

	cleared, err := f.svc.UpdateTask(ctx, user, task.ID, domain.TaskPatch{ClearLabel: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.Label)
}

func TestTaskService_UpdateKeepsDescriptionVerbatim(t *testing.T) {
	f := newTaskFixture()
	ctx := context.Background()
	user := uuid.New()
	task := f.seed(t, user, false)

	desc := "  venue, cake\n  "
	updated, err := f.svc.UpdateTask(ctx, user, task.ID, domain.TaskPatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	assert.Equal(t, desc, f.store.task(task.ID).Description)
}

func TestTaskService_CompleteAndDelete(t *testing.T) {
	f := newTaskFixture()
	ctx := context.Background()
	user := uuid.New()
	task := f.seed(t, user, true)

	done, err := f.svc.SetTaskCompleted(ctx, user, task.ID, true)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.Len(t, done.Subtasks, 3)

	st, err := f.svc.SetSubtaskCompleted(ctx, user, task.Subtasks[1].ID, true)
	require.NoError(t, err)
	assert.True(t, st.IsCompleted)

	require.NoError(t, f.svc.DeleteTask(ctx, user, task.ID))
	assert.Equal(t, 0, f.store.subtaskCount())

	_, err = f.svc.GetTask(ctx, user, task.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Contains(t, f.events.types(), domain.EventTaskDeleted)
	assert.Contains(t, f.events.types(), domain.EventSubtaskUpdated)
}

func TestTaskService_LatestEnrichment(t *testing.T) {
	f := newTaskFixture()
	ctx := context.Background()
	user := uuid.New()

	plain := f.seed(t, user, false)
	_, err := f.svc.LatestEnrichment(ctx, user, plain.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	enriched := f.seed(t, user, true)
	run, err := f.svc.LatestEnrichment(ctx, user, enriched.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, run.Outcome)
	assert.Equal(t, domain.StepOK, run.Steps[domain.StepSubtasks])
}
