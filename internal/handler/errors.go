package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"study-plan/internal/logger"
	"study-plan/internal/model"
)

func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrUserNotFound),
		errors.Is(err, model.ErrHabitNotFound),
		errors.Is(err, model.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrEmailTaken),
		errors.Is(err, model.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, model.ErrNoEmotionLogs):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNoEmotionDetected):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrClassifier):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status and writes {"error": msg}. Unclassified
// errors are logged and hidden behind a generic message.
func writeError(c *gin.Context, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError && !errors.Is(err, model.ErrGeneration) {
		logger.Error("http.internal_error", "path", c.FullPath(), "err", err)
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}
