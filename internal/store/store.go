// Package store persists User records together with their embedded emotion
// logs, habits, tasks and daily recommendations.
package store

import (
	"context"
	"time"

	"study-plan/internal/model"
)

// Store is implemented by mongostore, sqlstore and memstore.
//
// Sub-resource lookups return model.ErrUserNotFound when the owner is missing
// and model.ErrHabitNotFound / model.ErrTaskNotFound when only the item is.
type Store interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, patch model.UserPatch) (*model.User, error)
	SetPassword(ctx context.Context, id, hash string) error
	DeleteUser(ctx context.Context, id string) error

	AppendEmotion(ctx context.Context, userID string, log model.EmotionLog) error

	AddHabit(ctx context.Context, userID string, h model.Habit) error
	UpdateHabit(ctx context.Context, userID, habitID string, patch model.HabitPatch) (*model.Habit, error)
	DeleteHabit(ctx context.Context, userID, habitID string) error
	IncrementHabitProgress(ctx context.Context, userID, habitID string, delta float64) (float64, error)

	AddTask(ctx context.Context, userID string, t model.Task) error
	UpdateTask(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error)
	DeleteTask(ctx context.Context, userID, taskID string) error

	// SaveRecommendation appends rec unless one already exists for the same
	// UTC day, in which case it returns model.ErrRecommendationExists.
	SaveRecommendation(ctx context.Context, userID string, rec model.DailyRecommendation) error
	// SetRecommendedTaskStatus and SetRecommendedHabitProgress update the
	// mirror entry inside the recommendation stored for day. A missing entry
	// is not an error.
	SetRecommendedTaskStatus(ctx context.Context, userID string, day time.Time, taskID, status string) error
	SetRecommendedHabitProgress(ctx context.Context, userID string, day time.Time, habitID string, progress float64) error

	Close(ctx context.Context) error
}
