package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"study-plan/internal/logger"
	"study-plan/internal/middleware"
	"study-plan/internal/model"
	"study-plan/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
	jwt  *middleware.JWT
}

func NewAuthHandler(auth *service.AuthService, jwt *middleware.JWT) *AuthHandler {
	return &AuthHandler{auth: auth, jwt: jwt}
}

// POST /users/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}
	u, err := h.auth.Register(c.Request.Context(), req)
	if errors.Is(err, model.ErrEmailTaken) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// POST /users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c)
		return
	}

	u, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			logger.Warn("login.failed")
		}
		writeError(c, err)
		return
	}

	token, err := h.jwt.Issue(u.ID, u.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	logger.Info("login.ok", "user_id", u.ID)
	c.JSON(http.StatusOK, model.LoginResponse{Message: "Login successful", UserID: u.ID, Token: token})
}

// PATCH /users/:id/password  body or query: old_password, new_password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req model.PasswordChangeRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c)
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), c.Param("id"), req.OldPassword, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
