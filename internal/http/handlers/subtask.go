package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SubtaskUpdateRequest struct {
	IsCompleted *bool `json:"is_completed"`
}

func (h *Handler) UpdateSubtask(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	subtaskID, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var req SubtaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsCompleted == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_completed is required"})
		return
	}

	st, err := h.Tasks.SetSubtaskCompleted(c.Request.Context(), userID, subtaskID, *req.IsCompleted)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
