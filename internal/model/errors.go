package model

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrHabitNotFound        = errors.New("habit not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrDuplicateID          = errors.New("id already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrNoEmotionLogs        = errors.New("no emotion logs found")
	ErrRecommendationExists = errors.New("recommendation already stored for today")
	ErrGeneration           = errors.New("recommendation generation failed")
	ErrClassifier           = errors.New("emotion classification failed")
	ErrNoEmotionDetected    = errors.New("no emotion detected")
)
