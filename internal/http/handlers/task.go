package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"task_tracker/internal/domain"

	"github.com/gin-gonic/gin"
)

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	UseAI       *bool  `json:"useAI"`
}

// WantsAI reports whether enrichment was requested. Only an explicit false
// opts out; older clients omit the field.
func (r CreateTaskRequest) WantsAI() bool {
	return r.UseAI == nil || *r.UseAI
}

// CreateTaskWithAI creates a task and, when asked, enriches it. Enrichment
// problems never fail the request; they are reported in the "enrichment"
// field of the response.
func (h *Handler) CreateTaskWithAI(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.Enricher.CreateEnrichedTask(c.Request.Context(), userID, req.Title, req.Description, req.WantsAI())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListTasks(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tasks, err := h.Tasks.ListTasks(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *Handler) GetTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	taskID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	t, err := h.Tasks.GetTask(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// UpdateTaskRequest is a partial edit. An explicit null label or due_date
// clears the field.
type UpdateTaskRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Completed   *bool           `json:"completed"`
	Label       json.RawMessage `json:"label"`
	DueDate     json.RawMessage `json:"due_date"`
}

func (r UpdateTaskRequest) patch() (domain.TaskPatch, error) {
	p := domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
	}

	switch {
	case len(r.Label) == 0:
	case isJSONNull(r.Label):
		p.ClearLabel = true
	default:
		var s string
		if err := json.Unmarshal(r.Label, &s); err != nil {
			return p, fmt.Errorf("%w: label must be a string", domain.ErrInvalidInput)
		}
		l, err := domain.ParseLabel(s)
		if err != nil {
			return p, err
		}
		p.Label = &l
	}

	switch {
	case len(r.DueDate) == 0:
	case isJSONNull(r.DueDate):
		p.ClearDueDate = true
	default:
		var d domain.Date
		if err := json.Unmarshal(r.DueDate, &d); err != nil {
			return p, fmt.Errorf("%w: due_date must be YYYY-MM-DD", domain.ErrInvalidInput)
		}
		p.DueDate = &d
	}
	return p, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (h *Handler) UpdateTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	taskID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p, err := req.patch()
	if err != nil {
		respondError(c, err)
		return
	}

	t, err := h.Tasks.UpdateTask(c.Request.Context(), userID, taskID, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

type CompleteRequest struct {
	Completed *bool `json:"completed"`
}

// CompleteTask marks a task done; {"completed": false} reopens it.
func (h *Handler) CompleteTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	taskID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	completed := true
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		var req CompleteRequest
		if err := json.Unmarshal(body, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if req.Completed != nil {
			completed = *req.Completed
		}
	}

	t, err := h.Tasks.SetTaskCompleted(c.Request.Context(), userID, taskID, completed)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	taskID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.Tasks.DeleteTask(c.Request.Context(), userID, taskID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) TaskEnrichment(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	taskID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	run, err := h.Tasks.LatestEnrichment(c.Request.Context(), userID, taskID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}
