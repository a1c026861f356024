package handlers

import (
	"context"
	"errors"
	"net/http"

	"task_tracker/internal/domain"
	"task_tracker/internal/http/middleware"
	"task_tracker/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Enricher creates tasks with optional classification.
type Enricher interface {
	CreateEnrichedTask(ctx context.Context, userID uuid.UUID, title, description string, useAI bool) (*domain.EnrichedTask, error)
}

// TaskManager reads and edits existing tasks.
type TaskManager interface {
	ListTasks(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)
	GetTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)
	UpdateTask(ctx context.Context, userID, taskID uuid.UUID, p domain.TaskPatch) (*domain.Task, error)
	SetTaskCompleted(ctx context.Context, userID, taskID uuid.UUID, completed bool) (*domain.Task, error)
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error
	SetSubtaskCompleted(ctx context.Context, userID, subtaskID uuid.UUID, completed bool) (*domain.Subtask, error)
	LatestEnrichment(ctx context.Context, userID, taskID uuid.UUID) (*domain.EnrichmentRun, error)
}

type Handler struct {
	Enricher Enricher
	Tasks    TaskManager
}

func NewHandler(enricher Enricher, tasks TaskManager) *Handler {
	return &Handler{Enricher: enricher, Tasks: tasks}
}

// getUserID reads the caller set by middleware.JWT.
func getUserID(c *gin.Context) (uuid.UUID, bool) {
	return middleware.UserID(c)
}

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps domain errors to status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrStoreWrite):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save task"})
	default:
		logger.WithContext(c.Request.Context()).Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
