package model

import "time"

const (
	SourceEmoji = "emoji"
	SourceText  = "text"
	SourceAPI   = "api"

	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
	FrequencyCustom = "custom"

	StatusPending   = "pending"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusSkipped   = "skipped"

	RoleStudent = "student"
)

type User struct {
	ID                   string                `bson:"_id" json:"id"`
	Name                 string                `bson:"name" json:"name"`
	Email                string                `bson:"email" json:"email"`
	PasswordHash         string                `bson:"password_hash" json:"-"`
	Role                 string                `bson:"role" json:"role"`
	University           string                `bson:"university,omitempty" json:"university,omitempty"`
	CourseOfStudy        string                `bson:"course_of_study,omitempty" json:"course_of_study,omitempty"`
	YearOfStudy          *int                  `bson:"year_of_study,omitempty" json:"year_of_study,omitempty"`
	EmotionLogs          []EmotionLog          `bson:"emotion_logs" json:"emotion_logs"`
	Habits               []Habit               `bson:"habits" json:"habits"`
	Tasks                []Task                `bson:"tasks" json:"tasks"`
	DailyRecommendations []DailyRecommendation `bson:"daily_recommendations" json:"daily_recommendations"`
	CreatedAt            time.Time             `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time             `bson:"updated_at" json:"updated_at"`
}

type EmotionLog struct {
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Emotion   string    `bson:"emotion" json:"emotion"`
	Source    string    `bson:"source" json:"source"`
}

type Habit struct {
	HabitID         string   `bson:"habit_id" json:"habit_id"`
	Title           string   `bson:"title" json:"title"`
	Description     string   `bson:"description,omitempty" json:"description,omitempty"`
	Frequency       string   `bson:"frequency" json:"frequency"`
	Progress        float64  `bson:"progress" json:"progress"`
	MustToday       bool     `bson:"must_today,omitempty" json:"must_today,omitempty"`
	AllowedEmotions []string `bson:"allowed_emotions,omitempty" json:"allowed_emotions,omitempty"`
	DurationMinutes int      `bson:"duration_minutes,omitempty" json:"duration_minutes,omitempty"`
	Priority        string   `bson:"priority,omitempty" json:"priority,omitempty"`
}

type Task struct {
	TaskID           string     `bson:"task_id" json:"task_id"`
	Title            string     `bson:"title" json:"title"`
	Description      string     `bson:"description,omitempty" json:"description,omitempty"`
	DueDate          *time.Time `bson:"due_date,omitempty" json:"due_date,omitempty"`
	Status           string     `bson:"status" json:"status"`
	EstimatedMinutes int        `bson:"estimated_minutes,omitempty" json:"estimated_minutes,omitempty"`
	Priority         string     `bson:"priority,omitempty" json:"priority,omitempty"`
}

// RecommendedTask is a Task snapshot plus the model's verdict for today.
type RecommendedTask struct {
	Task   `bson:",inline"`
	Score  int    `bson:"score" json:"score"`
	Reason string `bson:"reason,omitempty" json:"reason,omitempty"`
}

type RecommendedHabit struct {
	Habit  `bson:",inline"`
	Score  int    `bson:"score" json:"score"`
	Reason string `bson:"reason,omitempty" json:"reason,omitempty"`
}

// DailyRecommendation.Date holds midnight UTC of the day it was generated for.
type DailyRecommendation struct {
	Date              time.Time          `bson:"date" json:"date"`
	RecommendedTasks  []RecommendedTask  `bson:"recommended_tasks" json:"recommended_tasks"`
	RecommendedHabits []RecommendedHabit `bson:"recommended_habits" json:"recommended_habits"`
}

// DayBounds returns [start of day, start of next day) in UTC for t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// InDay reports whether t falls on the same UTC calendar day as day.
func InDay(t, day time.Time) bool {
	start, end := DayBounds(day)
	return !t.Before(start) && t.Before(end)
}

// RecommendationFor returns the first recommendation stored for day, or nil.
func (u *User) RecommendationFor(day time.Time) *DailyRecommendation {
	for i := range u.DailyRecommendations {
		if InDay(u.DailyRecommendations[i].Date, day) {
			return &u.DailyRecommendations[i]
		}
	}
	return nil
}

// LatestEmotion returns the log with the newest timestamp; later entries win ties.
func (u *User) LatestEmotion() (EmotionLog, bool) {
	if len(u.EmotionLogs) == 0 {
		return EmotionLog{}, false
	}
	latest := u.EmotionLogs[0]
	for _, l := range u.EmotionLogs[1:] {
		if !l.Timestamp.Before(latest.Timestamp) {
			latest = l
		}
	}
	return latest, true
}

func (u *User) FindHabit(habitID string) *Habit {
	for i := range u.Habits {
		if u.Habits[i].HabitID == habitID {
			return &u.Habits[i]
		}
	}
	return nil
}

func (u *User) FindTask(taskID string) *Task {
	for i := range u.Tasks {
		if u.Tasks[i].TaskID == taskID {
			return &u.Tasks[i]
		}
	}
	return nil
}
