package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"taskboard/internal/task/domain"
	"taskboard/internal/task/dto"
	"taskboard/internal/task/usecase"
	"taskboard/pkg/validation"

	"github.com/gin-gonic/gin"
)

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskUsecase usecase.TaskUsecase
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskUsecase usecase.TaskUsecase) *TaskHandler {
	return &TaskHandler{
		taskUsecase: taskUsecase,
	}
}

func respondError(c *gin.Context, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, domain.ErrTaskNotFound), errors.Is(err, domain.ErrSubtaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// decode validates the body against schema before binding it
func decode(c *gin.Context, schema *validation.Schema, dst any) bool {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read request body"})
		return false
	}
	if err := schema.Decode(raw, dst); err != nil {
		respondError(c, err)
		return false
	}
	return true
}

// GetTasks returns one page of the caller's tasks
// GET /tasks?search=&startDate=&endDate=&status=&limit=50&offset=0
func (h *TaskHandler) GetTasks(c *gin.Context) {
	userID := c.GetString("userID")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a number"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a number"})
		return
	}

	tasks, total, err := h.taskUsecase.ListTasks(c.Request.Context(), userID, dto.ListQuery{
		Search:    c.Query("search"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Status:    c.Query("status"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{Tasks: tasks, Total: total})
}

// GetTaskByID returns a specific task
// GET /tasks/:id
func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	task, err := h.taskUsecase.GetTask(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateTask creates a new task
// POST /tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if !decode(c, createTaskSchema, &req) {
		return
	}

	task, err := h.taskUsecase.CreateTask(c.Request.Context(), c.GetString("userID"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// ReplaceTask overwrites every editable field
// PUT /tasks/:id
func (h *TaskHandler) ReplaceTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if !decode(c, createTaskSchema, &req) {
		return
	}

	task, err := h.taskUsecase.ReplaceTask(c.Request.Context(), c.GetString("userID"), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// PatchTask updates the fields present in the body
// PATCH /tasks/:id
func (h *TaskHandler) PatchTask(c *gin.Context) {
	var req dto.PatchTaskRequest
	if !decode(c, patchTaskSchema, &req) {
		return
	}

	task, err := h.taskUsecase.PatchTask(c.Request.Context(), c.GetString("userID"), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateStatus moves a task to another board column
// PATCH /tasks/:id/status
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	var req dto.StatusRequest
	if !decode(c, statusSchema, &req) {
		return
	}

	task, err := h.taskUsecase.UpdateStatus(c.Request.Context(), c.GetString("userID"), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask deletes a task
// DELETE /tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.taskUsecase.DeleteTask(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// AddSubtask appends a subtask
// POST /tasks/:id/subtasks
func (h *TaskHandler) AddSubtask(c *gin.Context) {
	var req dto.CreateSubtaskRequest
	if !decode(c, createSubtaskSchema, &req) {
		return
	}

	task, err := h.taskUsecase.AddSubtask(c.Request.Context(), c.GetString("userID"), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateSubtask renames or checks off a subtask
// PATCH /tasks/:id/subtasks/:subtaskId
func (h *TaskHandler) UpdateSubtask(c *gin.Context) {
	var req dto.PatchSubtaskRequest
	if !decode(c, patchSubtaskSchema, &req) {
		return
	}

	task, err := h.taskUsecase.UpdateSubtask(c.Request.Context(), c.GetString("userID"), c.Param("id"), c.Param("subtaskId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteSubtask removes a subtask
// DELETE /tasks/:id/subtasks/:subtaskId
func (h *TaskHandler) DeleteSubtask(c *gin.Context) {
	task, err := h.taskUsecase.RemoveSubtask(c.Request.Context(), c.GetString("userID"), c.Param("id"), c.Param("subtaskId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// GetActivity returns the task's audit trail, newest first
// GET /tasks/:id/activity
func (h *TaskHandler) GetActivity(c *gin.Context) {
	activities, err := h.taskUsecase.ListActivity(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

// GetStats returns task counts per status for the chart view
// GET /tasks/stats
func (h *TaskHandler) GetStats(c *gin.Context) {
	counts, err := h.taskUsecase.Stats(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// Search ranks the caller's tasks against q
// GET /search?q=
func (h *TaskHandler) Search(c *gin.Context) {
	tasks, err := h.taskUsecase.Search(c.Request.Context(), c.GetString("userID"), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "total": len(tasks)})
}
