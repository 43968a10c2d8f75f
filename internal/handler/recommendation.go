package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"study-plan/internal/model"
	"study-plan/internal/service"
)

type RecommendationHandler struct{ planner *service.Planner }

func NewRecommendationHandler(planner *service.Planner) *RecommendationHandler {
	return &RecommendationHandler{planner: planner}
}

// GET /users/:id/recommendations
func (h *RecommendationHandler) Today(c *gin.Context) {
	resp, err := h.planner.Today(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PATCH /users/:id/daily_recommendations/tasks/:task_id/status
func (h *RecommendationHandler) TaskStatus(c *gin.Context) {
	var req model.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	if err := h.planner.UpdateTaskStatus(c.Request.Context(), c.Param("id"), c.Param("task_id"), req.Status); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task status updated successfully"})
}

// PATCH /users/:id/daily_recommendations/habits/:habit_id/complete
func (h *RecommendationHandler) CompleteHabit(c *gin.Context) {
	progress, err := h.planner.CompleteHabit(c.Request.Context(), c.Param("id"), c.Param("habit_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Habit marked as completed", "progress": progress})
}
