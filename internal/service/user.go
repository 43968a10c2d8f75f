package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"study-plan/internal/logger"
	"study-plan/internal/model"
	"study-plan/internal/store"
)

// UserService owns the profile and its embedded emotion logs, habits and tasks.
type UserService struct {
	store store.Store
	auth  *AuthService
	now   func() time.Time
}

func NewUserService(s store.Store, auth *AuthService) *UserService {
	return &UserService{store: s, auth: auth, now: time.Now}
}

func (s *UserService) Get(ctx context.Context, id string) (*model.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *UserService) Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	if patch.Password != nil {
		hash, err := s.auth.HashPassword(*patch.Password)
		if err != nil {
			return nil, err
		}
		patch.PasswordHash = &hash
		patch.Password = nil
	}
	return s.store.UpdateUser(ctx, id, patch)
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	logger.Info("user.delete", "user_id", id)
	return nil
}

// LogEmotion appends an entry stamped with the server clock in UTC.
func (s *UserService) LogEmotion(ctx context.Context, userID, emotion, source string) (model.EmotionLog, error) {
	l := model.EmotionLog{Timestamp: s.now().UTC(), Emotion: emotion, Source: source}
	if err := s.store.AppendEmotion(ctx, userID, l); err != nil {
		return model.EmotionLog{}, err
	}
	return l, nil
}

func (s *UserService) Emotions(ctx context.Context, userID string) ([]model.EmotionLog, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.EmotionLogs, nil
}

func (s *UserService) Habits(ctx context.Context, userID string) ([]model.Habit, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Habits, nil
}

func (s *UserService) Habit(ctx context.Context, userID, habitID string) (*model.Habit, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	h := u.FindHabit(habitID)
	if h == nil {
		return nil, model.ErrHabitNotFound
	}
	return h, nil
}

// AddHabit stores h, generating a habit_id when the caller left it empty.
func (s *UserService) AddHabit(ctx context.Context, userID string, h model.Habit) (model.Habit, error) {
	if h.HabitID == "" {
		h.HabitID = uuid.NewString()
	}
	if h.AllowedEmotions == nil {
		h.AllowedEmotions = []string{}
	}
	if err := s.store.AddHabit(ctx, userID, h); err != nil {
		return model.Habit{}, err
	}
	return h, nil
}

func (s *UserService) UpdateHabit(ctx context.Context, userID, habitID string, patch model.HabitPatch) (*model.Habit, error) {
	return s.store.UpdateHabit(ctx, userID, habitID, patch)
}

func (s *UserService) SetHabitProgress(ctx context.Context, userID, habitID string, progress float64) (*model.Habit, error) {
	return s.store.UpdateHabit(ctx, userID, habitID, model.HabitPatch{Progress: &progress})
}

func (s *UserService) DeleteHabit(ctx context.Context, userID, habitID string) error {
	return s.store.DeleteHabit(ctx, userID, habitID)
}

func (s *UserService) Tasks(ctx context.Context, userID string) ([]model.Task, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Tasks, nil
}

func (s *UserService) Task(ctx context.Context, userID, taskID string) (*model.Task, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	t := u.FindTask(taskID)
	if t == nil {
		return nil, model.ErrTaskNotFound
	}
	return t, nil
}

func (s *UserService) AddTask(ctx context.Context, userID string, t model.Task) (model.Task, error) {
	if t.TaskID == "" {
		t.TaskID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = model.StatusPending
	}
	if err := s.store.AddTask(ctx, userID, t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (s *UserService) UpdateTask(ctx context.Context, userID, taskID string, patch model.TaskPatch) (*model.Task, error) {
	return s.store.UpdateTask(ctx, userID, taskID, patch)
}

func (s *UserService) SetTaskStatus(ctx context.Context, userID, taskID, status string) (*model.Task, error) {
	return s.store.UpdateTask(ctx, userID, taskID, model.TaskPatch{Status: &status})
}

func (s *UserService) DeleteTask(ctx context.Context, userID, taskID string) error {
	return s.store.DeleteTask(ctx, userID, taskID)
}
