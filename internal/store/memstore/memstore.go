// Package memstore keeps users in process memory. It backs the tests and the
// "memory" database driver.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"study-plan/internal/model"
	"study-plan/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	mu    sync.RWMutex
	users map[string]*model.User
	now   func() time.Time
}

func New() *Store {
	return &Store{users: map[string]*model.User{}, now: time.Now}
}

func (s *Store) Close(context.Context) error { return nil }

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return fmt.Errorf("create user %s: %w", u.ID, model.ErrDuplicateID)
	}
	if s.byEmail(u.Email) != nil {
		return fmt.Errorf("create user: %w", model.ErrEmailTaken)
	}
	s.users[u.ID] = clone(u)
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return clone(u), nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.byEmail(email)
	if u == nil {
		return nil, model.ErrUserNotFound
	}
	return clone(u), nil
}

func (s *Store) UpdateUser(_ context.Context, id string, p model.UserPatch) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	if p.Email != nil && *p.Email != u.Email {
		if other := s.byEmail(*p.Email); other != nil {
			return nil, fmt.Errorf("update user: %w", model.ErrEmailTaken)
		}
		u.Email = *p.Email
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.University != nil {
		u.University = *p.University
	}
	if p.CourseOfStudy != nil {
		u.CourseOfStudy = *p.CourseOfStudy
	}
	if p.YearOfStudy != nil {
		y := *p.YearOfStudy
		u.YearOfStudy = &y
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	u.UpdatedAt = s.now().UTC()
	return clone(u), nil
}

func (s *Store) SetPassword(_ context.Context, id, hash string) error {
	return s.mutate(id, func(u *model.User) error {
		u.PasswordHash = hash
		return nil
	})
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Store) AppendEmotion(_ context.Context, userID string, l model.EmotionLog) error {
	return s.mutate(userID, func(u *model.User) error {
		u.EmotionLogs = append(u.EmotionLogs, l)
		return nil
	})
}

func (s *Store) AddHabit(_ context.Context, userID string, h model.Habit) error {
	return s.mutate(userID, func(u *model.User) error {
		if u.FindHabit(h.HabitID) != nil {
			return fmt.Errorf("habit %s: %w", h.HabitID, model.ErrDuplicateID)
		}
		u.Habits = append(u.Habits, h)
		return nil
	})
}

func (s *Store) UpdateHabit(_ context.Context, userID, habitID string, p model.HabitPatch) (*model.Habit, error) {
	var out model.Habit
	err := s.mutate(userID, func(u *model.User) error {
		h := u.FindHabit(habitID)
		if h == nil {
			return model.ErrHabitNotFound
		}
		p.Apply(h)
		out = *h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) DeleteHabit(_ context.Context, userID, habitID string) error {
	return s.mutate(userID, func(u *model.User) error {
		for i := range u.Habits {
			if u.Habits[i].HabitID == habitID {
				u.Habits = append(u.Habits[:i], u.Habits[i+1:]...)
				return nil
			}
		}
		return model.ErrHabitNotFound
	})
}

func (s *Store) IncrementHabitProgress(_ context.Context, userID, habitID string, delta float64) (float64, error) {
	var progress float64
	err := s.mutate(userID, func(u *model.User) error {
		h := u.FindHabit(habitID)
		if h == nil {
			return model.ErrHabitNotFound
		}
		h.Progress += delta
		progress = h.Progress
		return nil
	})
	return progress, err
}

func (s *Store) AddTask(_ context.Context, userID string, t model.Task) error {
	return s.mutate(userID, func(u *model.User) error {
		if u.FindTask(t.TaskID) != nil {
			return fmt.Errorf("task %s: %w", t.TaskID, model.ErrDuplicateID)
		}
		u.Tasks = append(u.Tasks, t)
		return nil
	})
}

func (s *Store) UpdateTask(_ context.Context, userID, taskID string, p model.TaskPatch) (*model.Task, error) {
	var out model.Task
	err := s.mutate(userID, func(u *model.User) error {
		t := u.FindTask(taskID)
		if t == nil {
			return model.ErrTaskNotFound
		}
		p.Apply(t)
		out = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) DeleteTask(_ context.Context, userID, taskID string) error {
	return s.mutate(userID, func(u *model.User) error {
		for i := range u.Tasks {
			if u.Tasks[i].TaskID == taskID {
				u.Tasks = append(u.Tasks[:i], u.Tasks[i+1:]...)
				return nil
			}
		}
		return model.ErrTaskNotFound
	})
}

func (s *Store) SaveRecommendation(_ context.Context, userID string, rec model.DailyRecommendation) error {
	return s.mutate(userID, func(u *model.User) error {
		if u.RecommendationFor(rec.Date) != nil {
			return model.ErrRecommendationExists
		}
		u.DailyRecommendations = append(u.DailyRecommendations, cloneRecommendation(rec))
		return nil
	})
}

func (s *Store) SetRecommendedTaskStatus(_ context.Context, userID string, day time.Time, taskID, status string) error {
	return s.mutate(userID, func(u *model.User) error {
		for i := range u.DailyRecommendations {
			rec := &u.DailyRecommendations[i]
			if !model.InDay(rec.Date, day) {
				continue
			}
			for j := range rec.RecommendedTasks {
				if rec.RecommendedTasks[j].TaskID == taskID {
					rec.RecommendedTasks[j].Status = status
				}
			}
		}
		return nil
	})
}

func (s *Store) SetRecommendedHabitProgress(_ context.Context, userID string, day time.Time, habitID string, progress float64) error {
	return s.mutate(userID, func(u *model.User) error {
		for i := range u.DailyRecommendations {
			rec := &u.DailyRecommendations[i]
			if !model.InDay(rec.Date, day) {
				continue
			}
			for j := range rec.RecommendedHabits {
				if rec.RecommendedHabits[j].HabitID == habitID {
					rec.RecommendedHabits[j].Progress = progress
				}
			}
		}
		return nil
	})
}

// mutate runs fn on the stored user under the write lock and bumps updated_at
// when fn succeeds.
func (s *Store) mutate(id string, fn func(u *model.User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	if err := fn(u); err != nil {
		return err
	}
	u.UpdatedAt = s.now().UTC()
	return nil
}

// byEmail matches literally; emails are stored as given.
func (s *Store) byEmail(email string) *model.User {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func clone(u *model.User) *model.User {
	c := *u
	if u.YearOfStudy != nil {
		y := *u.YearOfStudy
		c.YearOfStudy = &y
	}
	c.EmotionLogs = append(make([]model.EmotionLog, 0, len(u.EmotionLogs)), u.EmotionLogs...)
	c.Habits = make([]model.Habit, len(u.Habits))
	for i, h := range u.Habits {
		h.AllowedEmotions = append([]string(nil), h.AllowedEmotions...)
		c.Habits[i] = h
	}
	c.Tasks = append(make([]model.Task, 0, len(u.Tasks)), u.Tasks...)
	c.DailyRecommendations = make([]model.DailyRecommendation, len(u.DailyRecommendations))
	for i, r := range u.DailyRecommendations {
		c.DailyRecommendations[i] = cloneRecommendation(r)
	}
	return &c
}

func cloneRecommendation(r model.DailyRecommendation) model.DailyRecommendation {
	r.RecommendedTasks = append(make([]model.RecommendedTask, 0, len(r.RecommendedTasks)), r.RecommendedTasks...)
	r.RecommendedHabits = append(make([]model.RecommendedHabit, 0, len(r.RecommendedHabits)), r.RecommendedHabits...)
	return r
}
