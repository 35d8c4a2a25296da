package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"xogs-backend/internal/auth"
	"xogs-backend/internal/services"
)

// TaskHandler handles task and reward endpoints
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// GetTasks lists the task catalog with the user's claim state
// GET /api/tasks
func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	tasks, err := h.taskService.ListTasks(userID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tasks,
	})
}

// ClaimTask claims a task reward
// POST /api/tasks/claim
func (h *TaskHandler) ClaimTask(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		TaskKey string `json:"task_key" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	completion, err := h.taskService.ClaimTask(userID, req.TaskKey, time.Now())
	if err != nil {
		h.respondClaimError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    completion,
	})
}

// DailyCheckin claims the daily check-in reward
// POST /api/tasks/checkin
func (h *TaskHandler) DailyCheckin(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	completion, err := h.taskService.DailyCheckin(userID, time.Now())
	if err != nil {
		h.respondClaimError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    completion,
	})
}

func (h *TaskHandler) respondClaimError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, services.ErrTaskInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task is not active"})
	case errors.Is(err, services.ErrTaskAlreadyClaimed):
		c.JSON(http.StatusConflict, gin.H{"error": "Task already claimed"})
	case errors.Is(err, services.ErrTaskOnCooldown):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Task is on cooldown"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim task"})
	}
}
