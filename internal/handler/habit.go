package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"study-plan/internal/model"
	"study-plan/internal/service"
)

type HabitHandler struct{ users *service.UserService }

func NewHabitHandler(users *service.UserService) *HabitHandler { return &HabitHandler{users: users} }

// GET /users/:id/habits
func (h *HabitHandler) List(c *gin.Context) {
	habits, err := h.users.Habits(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if habits == nil {
		habits = []model.Habit{}
	}
	c.JSON(http.StatusOK, habits)
}

// POST /users/:id/habits
func (h *HabitHandler) Create(c *gin.Context) {
	var req model.HabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	habit, err := h.users.AddHabit(c.Request.Context(), c.Param("id"), req.Habit())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Habit added successfully", "habit": habit})
}

// GET /users/:id/habits/:habit_id
func (h *HabitHandler) Get(c *gin.Context) {
	habit, err := h.users.Habit(c.Request.Context(), c.Param("id"), c.Param("habit_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, habit)
}

// PUT|PATCH /users/:id/habits/:habit_id
func (h *HabitHandler) Update(c *gin.Context) {
	var patch model.HabitPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c)
		return
	}
	habit, err := h.users.UpdateHabit(c.Request.Context(), c.Param("id"), c.Param("habit_id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Habit updated successfully", "habit": habit})
}

// PATCH /users/:id/habits/:habit_id/progress
func (h *HabitHandler) Progress(c *gin.Context) {
	var req model.ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	habit, err := h.users.SetHabitProgress(c.Request.Context(), c.Param("id"), c.Param("habit_id"), *req.Progress)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Habit progress updated", "progress": habit.Progress})
}

// DELETE /users/:id/habits/:habit_id
func (h *HabitHandler) Delete(c *gin.Context) {
	if err := h.users.DeleteHabit(c.Request.Context(), c.Param("id"), c.Param("habit_id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Habit deleted successfully"})
}
