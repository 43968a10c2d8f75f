package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-plan/internal/model"
	"study-plan/internal/store/storetest"
)

func newUser(id, email string) *model.User {
	return &model.User{ID: id, Name: "Ada", Email: email, Role: model.RoleStudent}
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateUser(ctx, newUser("u1", "ada@example.com")))

	err := s.CreateUser(ctx, newUser("u2", "ada@example.com"))
	assert.ErrorIs(t, err, model.ErrEmailTaken)

	// literal match: a different case is a different email
	assert.NoError(t, s.CreateUser(ctx, newUser("u3", "Ada@example.com")))
}

func TestGetUserReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateUser(ctx, newUser("u1", "a@x.io")))
	require.NoError(t, s.AddHabit(ctx, "u1", model.Habit{HabitID: "h1", Title: "Read", Frequency: model.FrequencyDaily}))

	u, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	u.Habits[0].Title = "mutated"

	again, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Read", again.Habits[0].Title)
}

func TestSubResourceNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateUser(ctx, newUser("u1", "a@x.io")))

	_, err := s.UpdateHabit(ctx, "nobody", "h1", model.HabitPatch{})
	assert.ErrorIs(t, err, model.ErrUserNotFound)
	_, err = s.UpdateHabit(ctx, "u1", "h1", model.HabitPatch{})
	assert.ErrorIs(t, err, model.ErrHabitNotFound)
	assert.ErrorIs(t, s.DeleteTask(ctx, "u1", "t1"), model.ErrTaskNotFound)
	assert.ErrorIs(t, s.AppendEmotion(ctx, "nobody", model.EmotionLog{}), model.ErrUserNotFound)
}

func TestAddRejectsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateUser(ctx, newUser("u1", "a@x.io")))

	require.NoError(t, s.AddTask(ctx, "u1", model.Task{TaskID: "t1", Title: "Essay"}))
	assert.ErrorIs(t, s.AddTask(ctx, "u1", model.Task{TaskID: "t1", Title: "Other"}), model.ErrDuplicateID)

	require.NoError(t, s.AddHabit(ctx, "u1", model.Habit{HabitID: "h1"}))
	assert.ErrorIs(t, s.AddHabit(ctx, "u1", model.Habit{HabitID: "h1"}), model.ErrDuplicateID)
}

func TestIncrementHabitProgressAccumulates(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateUser(ctx, newUser("u1", "a@x.io")))
	require.NoError(t, s.AddHabit(ctx, "u1", model.Habit{HabitID: "h1", Progress: 2}))

	p, err := s.IncrementHabitProgress(ctx, "u1", "h1", 1)
	require.NoError(t, err)
	assert.Equal(t, 3.0, p)
	p, err = s.IncrementHabitProgress(ctx, "u1", "h1", 1)
	require.NoError(t, err)
	assert.Equal(t, 4.0, p)
}

func TestSaveRecommendationOncePerDay(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateUser(ctx, newUser("u1", "a@x.io")))

	morning := time.Date(2026, 3, 2, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC)
	next := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveRecommendation(ctx, "u1", model.DailyRecommendation{Date: morning}))
	assert.ErrorIs(t, s.SaveRecommendation(ctx, "u1", model.DailyRecommendation{Date: evening}), model.ErrRecommendationExists)
	assert.NoError(t, s.SaveRecommendation(ctx, "u1", model.DailyRecommendation{Date: next}))

	u, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, u.DailyRecommendations, 2)
}

func TestMirrorUpdatesOnlyTouchToday(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateUser(ctx, newUser("u1", "a@x.io")))

	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	rec := func(day time.Time) model.DailyRecommendation {
		return model.DailyRecommendation{
			Date:              day,
			RecommendedTasks:  []model.RecommendedTask{{Task: model.Task{TaskID: "t1", Status: model.StatusPending}}},
			RecommendedHabits: []model.RecommendedHabit{{Habit: model.Habit{HabitID: "h1", Progress: 1}}},
		}
	}
	require.NoError(t, s.SaveRecommendation(ctx, "u1", rec(yesterday)))
	require.NoError(t, s.SaveRecommendation(ctx, "u1", rec(today)))

	noon := today.Add(12 * time.Hour)
	require.NoError(t, s.SetRecommendedTaskStatus(ctx, "u1", noon, "t1", model.StatusCompleted))
	require.NoError(t, s.SetRecommendedHabitProgress(ctx, "u1", noon, "h1", 5))
	require.NoError(t, s.SetRecommendedTaskStatus(ctx, "u1", noon, "missing", model.StatusCompleted))

	u, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, u.DailyRecommendations[0].RecommendedTasks[0].Status)
	assert.Equal(t, 1.0, u.DailyRecommendations[0].RecommendedHabits[0].Progress)
	assert.Equal(t, model.StatusCompleted, u.DailyRecommendations[1].RecommendedTasks[0].Status)
	assert.Equal(t, 5.0, u.DailyRecommendations[1].RecommendedHabits[0].Progress)
}

func TestUpdateUserEmailConflict(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateUser(ctx, newUser("u1", "a@x.io")))
	require.NoError(t, s.CreateUser(ctx, newUser("u2", "b@x.io")))

	taken := "a@x.io"
	_, err := s.UpdateUser(ctx, "u2", model.UserPatch{Email: &taken})
	assert.ErrorIs(t, err, model.ErrEmailTaken)

	name := "Grace"
	u, err := s.UpdateUser(ctx, "u2", model.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Grace", u.Name)
	assert.Equal(t, "b@x.io", u.Email)
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateUser(ctx, newUser("u1", "a@x.io")))
	require.NoError(t, s.DeleteUser(ctx, "u1"))
	assert.ErrorIs(t, s.DeleteUser(ctx, "u1"), model.ErrUserNotFound)
	_, err := s.GetUser(ctx, "u1")
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestContract(t *testing.T) {
	storetest.Run(t, New())
}
