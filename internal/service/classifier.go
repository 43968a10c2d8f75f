package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"sort"

	"study-plan/internal/config"
	"study-plan/internal/logger"
	"study-plan/internal/model"
)

// ClassifierService forwards images to the facial emotion detector.
type ClassifierService struct {
	url    string
	client *http.Client
}

func NewClassifierService(cfg config.ClassifierConfig) *ClassifierService {
	return &ClassifierService{url: cfg.URL, client: &http.Client{Timeout: cfg.Timeout}}
}

type detection struct {
	Class      string          `json:"class"`
	Confidence float64         `json:"confidence"`
	BBox       json.RawMessage `json:"bbox"`
}

// Predict returns the detector's predictions ordered by confidence, best
// first, with accuracy in percent. An image without a detectable face yields
// an empty slice.
func (s *ClassifierService) Predict(ctx context.Context, filename string, image io.Reader) ([]model.Prediction, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("copy image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrClassifier, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", model.ErrClassifier, err)
	}
	if resp.StatusCode != http.StatusOK {
		logger.Warn("classifier.bad_status", "status", resp.StatusCode, "body", string(data))
		return nil, fmt.Errorf("%w: status %d", model.ErrClassifier, resp.StatusCode)
	}
	var result struct {
		Predictions []detection `json:"predictions"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", model.ErrClassifier, err)
	}
	if len(result.Predictions) == 0 {
		return []model.Prediction{}, nil
	}

	sort.SliceStable(result.Predictions, func(i, j int) bool {
		return result.Predictions[i].Confidence > result.Predictions[j].Confidence
	})
	out := make([]model.Prediction, 0, len(result.Predictions))
	for _, d := range result.Predictions {
		out = append(out, model.Prediction{Mood: d.Class, Accuracy: math.Round(d.Confidence*10000) / 100})
	}
	logger.Debug("classifier.predict", "mood", out[0].Mood, "accuracy", out[0].Accuracy)
	return out, nil
}
