// Package storetest holds the behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-plan/internal/model"
	"study-plan/internal/store"
)

var day = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func newUser(t *testing.T, s store.Store) *model.User {
	t.Helper()
	id := uuid.NewString()
	u := &model.User{
		ID:        id,
		Name:      "Ada",
		Email:     id + "@uni.test",
		Role:      model.RoleStudent,
		CreatedAt: day,
		UpdatedAt: day,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

// Run exercises s. Each subtest works on its own freshly created user, so s
// may be a shared database.
func Run(t *testing.T, s store.Store) {
	t.Run("Users", func(t *testing.T) { testUsers(t, s) })
	t.Run("Emotions", func(t *testing.T) { testEmotions(t, s) })
	t.Run("Habits", func(t *testing.T) { testHabits(t, s) })
	t.Run("Tasks", func(t *testing.T) { testTasks(t, s) })
	t.Run("Recommendations", func(t *testing.T) { testRecommendations(t, s) })
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s)
	other := newUser(t, s)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Empty(t, got.Habits)

	byEmail, err := s.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	dup := &model.User{ID: uuid.NewString(), Name: "Eve", Email: u.Email, Role: model.RoleStudent}
	assert.ErrorIs(t, s.CreateUser(ctx, dup), model.ErrEmailTaken)

	// emails match literally
	upper := &model.User{ID: uuid.NewString(), Name: "Ada", Email: strings.ToUpper(u.Email), Role: model.RoleStudent}
	require.NoError(t, s.CreateUser(ctx, upper))
	byUpper, err := s.GetUserByEmail(ctx, upper.Email)
	require.NoError(t, err)
	assert.Equal(t, upper.ID, byUpper.ID)

	_, err = s.GetUser(ctx, uuid.NewString())
	assert.ErrorIs(t, err, model.ErrUserNotFound)
	_, err = s.GetUserByEmail(ctx, "missing-"+uuid.NewString()+"@uni.test")
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	uni, year := "KTH", 3
	updated, err := s.UpdateUser(ctx, u.ID, model.UserPatch{University: &uni, YearOfStudy: &year})
	require.NoError(t, err)
	assert.Equal(t, "KTH", updated.University)
	require.NotNil(t, updated.YearOfStudy)
	assert.Equal(t, 3, *updated.YearOfStudy)
	assert.Equal(t, "Ada", updated.Name)

	_, err = s.UpdateUser(ctx, u.ID, model.UserPatch{Email: &other.Email})
	assert.ErrorIs(t, err, model.ErrEmailTaken)
	_, err = s.UpdateUser(ctx, uuid.NewString(), model.UserPatch{University: &uni})
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	require.NoError(t, s.SetPassword(ctx, u.ID, "hash-2"))
	got, err = s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash-2", got.PasswordHash)
	assert.ErrorIs(t, s.SetPassword(ctx, uuid.NewString(), "x"), model.ErrUserNotFound)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), model.ErrUserNotFound)
}

func testEmotions(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s)

	first := model.EmotionLog{Timestamp: day.Add(8 * time.Hour), Emotion: "😊", Source: model.SourceEmoji}
	second := model.EmotionLog{Timestamp: day.Add(9 * time.Hour), Emotion: "tired", Source: model.SourceText}
	require.NoError(t, s.AppendEmotion(ctx, u.ID, first))
	require.NoError(t, s.AppendEmotion(ctx, u.ID, second))
	assert.ErrorIs(t, s.AppendEmotion(ctx, uuid.NewString(), first), model.ErrUserNotFound)

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got.EmotionLogs, 2)
	latest, ok := got.LatestEmotion()
	require.True(t, ok)
	assert.Equal(t, "tired", latest.Emotion)
	assert.True(t, latest.Timestamp.Equal(second.Timestamp))
}

func testHabits(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s)

	h := model.Habit{HabitID: "h1", Title: "Run", Frequency: model.FrequencyDaily, AllowedEmotions: []string{"happy"}}
	require.NoError(t, s.AddHabit(ctx, u.ID, h))
	assert.ErrorIs(t, s.AddHabit(ctx, u.ID, h), model.ErrDuplicateID)
	assert.ErrorIs(t, s.AddHabit(ctx, uuid.NewString(), h), model.ErrUserNotFound)

	// ids are scoped per user
	other := newUser(t, s)
	require.NoError(t, s.AddHabit(ctx, other.ID, h))

	title := "Run 5k"
	updated, err := s.UpdateHabit(ctx, u.ID, "h1", model.HabitPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Run 5k", updated.Title)
	assert.Equal(t, []string{"happy"}, updated.AllowedEmotions)

	_, err = s.UpdateHabit(ctx, u.ID, "nope", model.HabitPatch{Title: &title})
	assert.ErrorIs(t, err, model.ErrHabitNotFound)
	_, err = s.UpdateHabit(ctx, uuid.NewString(), "h1", model.HabitPatch{Title: &title})
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	p, err := s.IncrementHabitProgress(ctx, u.ID, "h1", 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p)
	p, err = s.IncrementHabitProgress(ctx, u.ID, "h1", 1)
	require.NoError(t, err)
	assert.Equal(t, 2.0, p)
	_, err = s.IncrementHabitProgress(ctx, u.ID, "nope", 1)
	assert.ErrorIs(t, err, model.ErrHabitNotFound)

	require.NoError(t, s.DeleteHabit(ctx, u.ID, "h1"))
	assert.ErrorIs(t, s.DeleteHabit(ctx, u.ID, "h1"), model.ErrHabitNotFound)

	got, err := s.GetUser(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, got.Habits, 1)
	assert.Equal(t, "Run", got.Habits[0].Title)
}

func testTasks(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s)

	due := day.Add(48 * time.Hour)
	task := model.Task{TaskID: "t1", Title: "Essay", DueDate: &due, Status: model.StatusPending, Priority: "high"}
	require.NoError(t, s.AddTask(ctx, u.ID, task))
	assert.ErrorIs(t, s.AddTask(ctx, u.ID, task), model.ErrDuplicateID)

	status := model.StatusOngoing
	updated, err := s.UpdateTask(ctx, u.ID, "t1", model.TaskPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.StatusOngoing, updated.Status)
	assert.Equal(t, "Essay", updated.Title)
	require.NotNil(t, updated.DueDate)
	assert.True(t, updated.DueDate.Equal(due))

	_, err = s.UpdateTask(ctx, u.ID, "nope", model.TaskPatch{Status: &status})
	assert.ErrorIs(t, err, model.ErrTaskNotFound)

	require.NoError(t, s.DeleteTask(ctx, u.ID, "t1"))
	assert.ErrorIs(t, s.DeleteTask(ctx, u.ID, "t1"), model.ErrTaskNotFound)
	assert.ErrorIs(t, s.DeleteTask(ctx, uuid.NewString(), "t1"), model.ErrUserNotFound)
}

func testRecommendations(t *testing.T, s store.Store) {
	ctx := context.Background()
	u := newUser(t, s)

	rec := func(date time.Time) model.DailyRecommendation {
		return model.DailyRecommendation{
			Date: date,
			RecommendedTasks: []model.RecommendedTask{
				{Task: model.Task{TaskID: "t1", Title: "Essay", Status: model.StatusPending}, Score: 80, Reason: "short"},
			},
			RecommendedHabits: []model.RecommendedHabit{
				{Habit: model.Habit{HabitID: "h1", Title: "Journal", Frequency: model.FrequencyDaily}, Score: 60},
			},
		}
	}
	yesterday := day.AddDate(0, 0, -1)
	require.NoError(t, s.SaveRecommendation(ctx, u.ID, rec(yesterday)))
	require.NoError(t, s.SaveRecommendation(ctx, u.ID, rec(day)))
	assert.ErrorIs(t, s.SaveRecommendation(ctx, u.ID, rec(day.Add(20*time.Hour))), model.ErrRecommendationExists)
	assert.ErrorIs(t, s.SaveRecommendation(ctx, uuid.NewString(), rec(day)), model.ErrUserNotFound)

	noon := day.Add(12 * time.Hour)
	require.NoError(t, s.SetRecommendedTaskStatus(ctx, u.ID, noon, "t1", model.StatusCompleted))
	require.NoError(t, s.SetRecommendedHabitProgress(ctx, u.ID, noon, "h1", 4))
	require.NoError(t, s.SetRecommendedTaskStatus(ctx, u.ID, noon, "absent", model.StatusCompleted))
	require.NoError(t, s.SetRecommendedHabitProgress(ctx, u.ID, noon.AddDate(0, 0, 5), "h1", 9))

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got.DailyRecommendations, 2)

	today := got.RecommendationFor(noon)
	require.NotNil(t, today)
	require.Len(t, today.RecommendedTasks, 1)
	assert.Equal(t, model.StatusCompleted, today.RecommendedTasks[0].Status)
	assert.Equal(t, 80, today.RecommendedTasks[0].Score)
	assert.Equal(t, "short", today.RecommendedTasks[0].Reason)
	require.Len(t, today.RecommendedHabits, 1)
	assert.Equal(t, 4.0, today.RecommendedHabits[0].Progress)

	prev := got.RecommendationFor(yesterday)
	require.NotNil(t, prev)
	assert.Equal(t, model.StatusPending, prev.RecommendedTasks[0].Status)
	assert.Equal(t, 0.0, prev.RecommendedHabits[0].Progress)
}
