package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"study-plan/internal/model"
	"study-plan/internal/service"
)

type UserHandler struct{ users *service.UserService }

func NewUserHandler(users *service.UserService) *UserHandler { return &UserHandler{users: users} }

// GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// PUT /users/:id
func (h *UserHandler) Update(c *gin.Context) {
	var patch model.UserPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c)
		return
	}
	u, err := h.users.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// GET /users/:id/emotions
func (h *UserHandler) Emotions(c *gin.Context) {
	logs, err := h.users.Emotions(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if logs == nil {
		logs = []model.EmotionLog{}
	}
	c.JSON(http.StatusOK, logs)
}

// POST /users/:id/emotions
func (h *UserHandler) LogEmotion(c *gin.Context) {
	var req model.EmotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	l, err := h.users.LogEmotion(c.Request.Context(), c.Param("id"), req.Emotion, req.Source)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Emotion logged successfully", "emotion_log": l})
}
