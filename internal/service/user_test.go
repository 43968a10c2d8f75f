package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-plan/internal/model"
)

func newUsers(t *testing.T) (*UserService, string) {
	t.Helper()
	a, st := newAuth()
	u, err := a.Register(context.Background(), model.RegisterRequest{Name: "Ada", Email: "ada@uni.edu", Password: "secret1"})
	require.NoError(t, err)
	s := NewUserService(st, a)
	s.now = func() time.Time { return testNow }
	return s, u.ID
}

func TestAddHabitGeneratesID(t *testing.T) {
	s, id := newUsers(t)
	ctx := context.Background()

	h, err := s.AddHabit(ctx, id, model.Habit{Title: "Meditate", Frequency: model.FrequencyDaily})
	require.NoError(t, err)
	assert.NotEmpty(t, h.HabitID)

	_, err = s.AddHabit(ctx, id, model.Habit{HabitID: h.HabitID, Title: "Again", Frequency: model.FrequencyDaily})
	assert.ErrorIs(t, err, model.ErrDuplicateID)

	got, err := s.Habit(ctx, id, h.HabitID)
	require.NoError(t, err)
	assert.Equal(t, "Meditate", got.Title)

	_, err = s.Habit(ctx, id, "missing")
	assert.ErrorIs(t, err, model.ErrHabitNotFound)
}

func TestTaskLifecycle(t *testing.T) {
	s, id := newUsers(t)
	ctx := context.Background()

	task, err := s.AddTask(ctx, id, model.Task{TaskID: "t1", Title: "Essay"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, task.Status)

	updated, err := s.SetTaskStatus(ctx, id, "t1", model.StatusOngoing)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOngoing, updated.Status)

	title := "Essay v2"
	updated, err = s.UpdateTask(ctx, id, "t1", model.TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Essay v2", updated.Title)
	assert.Equal(t, model.StatusOngoing, updated.Status)

	require.NoError(t, s.DeleteTask(ctx, id, "t1"))
	tasks, err := s.Tasks(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestLogEmotionUsesServerClock(t *testing.T) {
	s, id := newUsers(t)
	ctx := context.Background()

	l, err := s.LogEmotion(ctx, id, "😊", model.SourceEmoji)
	require.NoError(t, err)
	assert.Equal(t, testNow, l.Timestamp)

	logs, err := s.Emotions(ctx, id)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "😊", logs[0].Emotion)

	_, err = s.LogEmotion(ctx, "nobody", "😊", model.SourceEmoji)
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestUpdateHashesPassword(t *testing.T) {
	s, id := newUsers(t)
	ctx := context.Background()

	pw := "another1"
	_, err := s.Update(ctx, id, model.UserPatch{Password: &pw})
	require.NoError(t, err)

	_, err = s.auth.Login(ctx, "ada@uni.edu", "another1")
	assert.NoError(t, err)
}
