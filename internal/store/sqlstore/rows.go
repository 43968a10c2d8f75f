package sqlstore

import (
	"time"

	"gorm.io/datatypes"

	"study-plan/internal/model"
)

type userRow struct {
	ID            string    `gorm:"primaryKey;size:36"`
	Name          string    `gorm:"size:100"`
	Email         string    `gorm:"size:255;collate:utf8mb4_bin;uniqueIndex:uk_email"`
	PasswordHash  string    `gorm:"size:255"`
	Role          string    `gorm:"size:32;default:student"`
	University    string    `gorm:"size:255"`
	CourseOfStudy string    `gorm:"size:255"`
	YearOfStudy   *int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type emotionRow struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"size:36;index"`
	Timestamp time.Time
	Emotion   string    `gorm:"size:64"`
	Source    string    `gorm:"size:16"`
}

type habitRow struct {
	ID              uint                        `gorm:"primaryKey"`
	UserID          string                      `gorm:"size:36;uniqueIndex:uk_user_habit"`
	HabitID         string                      `gorm:"size:64;uniqueIndex:uk_user_habit"`
	Title           string                      `gorm:"size:255"`
	Description     string                      `gorm:"type:text"`
	Frequency       string                      `gorm:"size:16"`
	Progress        float64
	MustToday       bool
	AllowedEmotions datatypes.JSONSlice[string] `gorm:"type:json"`
	DurationMinutes int
	Priority        string                      `gorm:"size:16"`
}

type taskRow struct {
	ID               uint       `gorm:"primaryKey"`
	UserID           string     `gorm:"size:36;uniqueIndex:uk_user_task"`
	TaskID           string     `gorm:"size:64;uniqueIndex:uk_user_task"`
	Title            string     `gorm:"size:255"`
	Description      string     `gorm:"type:text"`
	DueDate          *time.Time
	Status           string     `gorm:"size:16;default:pending"`
	EstimatedMinutes int
	Priority         string     `gorm:"size:16"`
}

// recommendationRow is unique per (user, day), which keeps generation to one
// stored result per user per day.
type recommendationRow struct {
	ID        uint                                          `gorm:"primaryKey"`
	UserID    string                                        `gorm:"size:36;uniqueIndex:uk_user_day"`
	DailyDate string                                        `gorm:"type:date;uniqueIndex:uk_user_day"`
	Date      time.Time
	Tasks     datatypes.JSONType[[]model.RecommendedTask]  `gorm:"type:json"`
	Habits    datatypes.JSONType[[]model.RecommendedHabit] `gorm:"type:json"`
}

func (userRow) TableName() string           { return "users" }
func (emotionRow) TableName() string        { return "emotion_logs" }
func (habitRow) TableName() string          { return "habits" }
func (taskRow) TableName() string           { return "tasks" }
func (recommendationRow) TableName() string { return "daily_recommendations" }

const dateLayout = "2006-01-02"

func habitToRow(userID string, h model.Habit) habitRow {
	return habitRow{
		UserID: userID, HabitID: h.HabitID, Title: h.Title, Description: h.Description,
		Frequency: h.Frequency, Progress: h.Progress, MustToday: h.MustToday,
		AllowedEmotions: datatypes.NewJSONSlice(h.AllowedEmotions),
		DurationMinutes: h.DurationMinutes, Priority: h.Priority,
	}
}

func (r habitRow) model() model.Habit {
	return model.Habit{
		HabitID: r.HabitID, Title: r.Title, Description: r.Description,
		Frequency: r.Frequency, Progress: r.Progress, MustToday: r.MustToday,
		AllowedEmotions: []string(r.AllowedEmotions),
		DurationMinutes: r.DurationMinutes, Priority: r.Priority,
	}
}

func taskToRow(userID string, t model.Task) taskRow {
	return taskRow{
		UserID: userID, TaskID: t.TaskID, Title: t.Title, Description: t.Description,
		DueDate: t.DueDate, Status: t.Status, EstimatedMinutes: t.EstimatedMinutes, Priority: t.Priority,
	}
}

func (r taskRow) model() model.Task {
	return model.Task{
		TaskID: r.TaskID, Title: r.Title, Description: r.Description, DueDate: r.DueDate,
		Status: r.Status, EstimatedMinutes: r.EstimatedMinutes, Priority: r.Priority,
	}
}

func (r recommendationRow) model() model.DailyRecommendation {
	rec := model.DailyRecommendation{
		Date:              r.Date.UTC(),
		RecommendedTasks:  r.Tasks.Data(),
		RecommendedHabits: r.Habits.Data(),
	}
	if rec.RecommendedTasks == nil {
		rec.RecommendedTasks = []model.RecommendedTask{}
	}
	if rec.RecommendedHabits == nil {
		rec.RecommendedHabits = []model.RecommendedHabit{}
	}
	return rec
}
