package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"study-plan/internal/model"
	"study-plan/internal/service"
)

type TaskHandler struct{ users *service.UserService }

func NewTaskHandler(users *service.UserService) *TaskHandler { return &TaskHandler{users: users} }

// GET /users/:id/tasks
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.users.Tasks(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// POST /users/:id/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req model.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	task, err := h.users.AddTask(c.Request.Context(), c.Param("id"), req.Task())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task added successfully", "task": task})
}

// GET /users/:id/tasks/:task_id
func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.users.Task(c.Request.Context(), c.Param("id"), c.Param("task_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// PUT|PATCH /users/:id/tasks/:task_id
func (h *TaskHandler) Update(c *gin.Context) {
	var patch model.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c)
		return
	}
	task, err := h.users.UpdateTask(c.Request.Context(), c.Param("id"), c.Param("task_id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task updated successfully", "task": task})
}

// PATCH /users/:id/tasks/:task_id/status
func (h *TaskHandler) Status(c *gin.Context) {
	var req model.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	task, err := h.users.SetTaskStatus(c.Request.Context(), c.Param("id"), c.Param("task_id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task status updated", "task": task})
}

// DELETE /users/:id/tasks/:task_id
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.users.DeleteTask(c.Request.Context(), c.Param("id"), c.Param("task_id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
