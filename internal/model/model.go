package model

import "time"

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	Token   string `json:"token"`
}

type PasswordChangeRequest struct {
	OldPassword string `json:"old_password" form:"old_password" binding:"required"`
	NewPassword string `json:"new_password" form:"new_password" binding:"required,min=6"`
}

// UserPatch carries the profile fields a PUT /users/{id} may change; nil means keep.
type UserPatch struct {
	Name          *string `json:"name,omitempty"`
	Email         *string `json:"email,omitempty" binding:"omitempty,email"`
	Password      *string `json:"password,omitempty" binding:"omitempty,min=6"`
	University    *string `json:"university,omitempty"`
	CourseOfStudy *string `json:"course_of_study,omitempty"`
	YearOfStudy   *int    `json:"year_of_study,omitempty"`

	PasswordHash *string `json:"-"`
}

type EmotionRequest struct {
	Emotion string `json:"emotion" binding:"required"`
	Source  string `json:"source" binding:"required,oneof=emoji text api"`
}

type HabitRequest struct {
	HabitID         string   `json:"habit_id"`
	Title           string   `json:"title" binding:"required"`
	Description     string   `json:"description"`
	Frequency       string   `json:"frequency" binding:"required,oneof=daily weekly custom"`
	Progress        float64  `json:"progress"`
	MustToday       bool     `json:"must_today"`
	AllowedEmotions []string `json:"allowed_emotions"`
	DurationMinutes int      `json:"duration_minutes" binding:"gte=0"`
	Priority        string   `json:"priority" binding:"omitempty,oneof=low medium high"`
}

func (r HabitRequest) Habit() Habit {
	return Habit{
		HabitID: r.HabitID, Title: r.Title, Description: r.Description,
		Frequency: r.Frequency, Progress: r.Progress, MustToday: r.MustToday,
		AllowedEmotions: r.AllowedEmotions, DurationMinutes: r.DurationMinutes, Priority: r.Priority,
	}
}

// HabitPatch is applied field by field; nil fields are left untouched.
type HabitPatch struct {
	Title           *string   `json:"title,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Frequency       *string   `json:"frequency,omitempty" binding:"omitempty,oneof=daily weekly custom"`
	Progress        *float64  `json:"progress,omitempty"`
	MustToday       *bool     `json:"must_today,omitempty"`
	AllowedEmotions *[]string `json:"allowed_emotions,omitempty"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	Priority        *string   `json:"priority,omitempty" binding:"omitempty,oneof=low medium high"`
}

func (p HabitPatch) Apply(h *Habit) {
	if p.Title != nil {
		h.Title = *p.Title
	}
	if p.Description != nil {
		h.Description = *p.Description
	}
	if p.Frequency != nil {
		h.Frequency = *p.Frequency
	}
	if p.Progress != nil {
		h.Progress = *p.Progress
	}
	if p.MustToday != nil {
		h.MustToday = *p.MustToday
	}
	if p.AllowedEmotions != nil {
		h.AllowedEmotions = *p.AllowedEmotions
	}
	if p.DurationMinutes != nil {
		h.DurationMinutes = *p.DurationMinutes
	}
	if p.Priority != nil {
		h.Priority = *p.Priority
	}
}

type TaskRequest struct {
	TaskID           string     `json:"task_id"`
	Title            string     `json:"title" binding:"required"`
	Description      string     `json:"description"`
	DueDate          *time.Time `json:"due_date"`
	Status           string     `json:"status" binding:"omitempty,oneof=pending ongoing completed skipped"`
	EstimatedMinutes int        `json:"estimated_minutes" binding:"gte=0"`
	Priority         string     `json:"priority" binding:"omitempty,oneof=low medium high"`
}

func (r TaskRequest) Task() Task {
	status := r.Status
	if status == "" {
		status = StatusPending
	}
	return Task{
		TaskID: r.TaskID, Title: r.Title, Description: r.Description, DueDate: r.DueDate,
		Status: status, EstimatedMinutes: r.EstimatedMinutes, Priority: r.Priority,
	}
}

type TaskPatch struct {
	Title            *string    `json:"title,omitempty"`
	Description      *string    `json:"description,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	Status           *string    `json:"status,omitempty" binding:"omitempty,oneof=pending ongoing completed skipped"`
	EstimatedMinutes *int       `json:"estimated_minutes,omitempty"`
	Priority         *string    `json:"priority,omitempty" binding:"omitempty,oneof=low medium high"`
}

func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.EstimatedMinutes != nil {
		t.EstimatedMinutes = *p.EstimatedMinutes
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
}

type StatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending ongoing completed skipped"`
}

type ProgressRequest struct {
	Progress *float64 `json:"progress" binding:"required"`
}

type RecommendationResponse struct {
	RecommendedTasks  []RecommendedTask  `json:"recommended_tasks"`
	RecommendedHabits []RecommendedHabit `json:"recommended_habits"`
	Source            string             `json:"source"`
}

type Prediction struct {
	Mood     string  `json:"mood"`
	Accuracy float64 `json:"accuracy"`
}

type PredictResponse struct {
	Predictions []Prediction `json:"predictions"`
}
