package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"study-plan/internal/model"
	"study-plan/internal/service"
)

type PredictHandler struct {
	classifier *service.ClassifierService
	users      *service.UserService
}

func NewPredictHandler(classifier *service.ClassifierService, users *service.UserService) *PredictHandler {
	return &PredictHandler{classifier: classifier, users: users}
}

func (h *PredictHandler) classify(c *gin.Context) ([]model.Prediction, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c)
		return nil, false
	}
	defer f.Close()

	preds, err := h.classifier.Predict(c.Request.Context(), fh.Filename, f)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return preds, true
}

// POST /predict  multipart: file
func (h *PredictHandler) Predict(c *gin.Context) {
	preds, ok := h.classify(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, model.PredictResponse{Predictions: preds})
}

// POST /users/:id/emotions/detect  multipart: file
func (h *PredictHandler) Detect(c *gin.Context) {
	preds, ok := h.classify(c)
	if !ok {
		return
	}
	if len(preds) == 0 {
		writeError(c, model.ErrNoEmotionDetected)
		return
	}
	l, err := h.users.LogEmotion(c.Request.Context(), c.Param("id"), preds[0].Mood, model.SourceAPI)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"emotion_log": l, "predictions": preds})
}
