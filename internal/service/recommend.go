package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"study-plan/internal/logger"
	"study-plan/internal/model"
	"study-plan/internal/store"
)

const (
	SourceCache = "cache"
	SourceModel = "model"
)

// Generator returns a free-form completion for a system and user message.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Planner produces at most one recommendation per user per UTC day.
type Planner struct {
	store store.Store
	gen   Generator
	now   func() time.Time
}

func NewPlanner(s store.Store, gen Generator) *Planner {
	return &Planner{store: s, gen: gen, now: time.Now}
}

type generatedItem struct {
	TaskID  string  `json:"task_id"`
	HabitID string  `json:"habit_id"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
}

// generated is the expected model reply. Both arrays must be present.
type generated struct {
	RecommendedTasks  *[]generatedItem `json:"recommended_tasks"`
	RecommendedHabits *[]generatedItem `json:"recommended_habits"`
}

var errMissingArrays = errors.New("reply lacks recommended_tasks or recommended_habits")

func parseGenerated(raw string) (taskItems, habitItems []generatedItem, err error) {
	taskItems, habitItems, err := parseGenerated(raw)
	if err != nil {
		return nil, nil, err
	}
	if out.RecommendedTasks == nil || out.RecommendedHabits == nil {
		return nil, nil, errMissingArrays
	}
	return *out.RecommendedTasks, *out.RecommendedHabits, nil
}

// Today returns today's stored recommendation, or generates and stores one.
func (p *Planner) Today(ctx context.Context, userID string) (*model.RecommendationResponse, error) {
	now := p.now().UTC()
	u, err := p.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rec := u.RecommendationFor(now); rec != nil {
		logger.Debug("recommend.cache_hit", "user_id", userID)
		return response(rec, SourceCache), nil
	}

	latest, ok := u.LatestEmotion()
	if !ok {
		return nil, model.ErrNoEmotionLogs
	}
	tasks := PendingTasks(u.Tasks)
	habits := DueHabits(u.Habits, now)
	emotion := EmotionLabel(latest)

	raw, err := p.gen.Generate(ctx, systemPrompt, BuildPrompt(latest, tasks, habits))
	if err != nil {
		logger.Error("recommend.generate_failed", "user_id", userID, "err", err)
		return nil, fmt.Errorf("%w: generator request failed", model.ErrGeneration)
	}

	taskItems, habitItems, err := parseGenerated(raw)
	if err != nil {
		logger.Warn("recommend.parse_failed", "user_id", userID, "err", err)
		return nil, fmt.Errorf("%w: parse model output: %v", model.ErrGeneration, err)
	}

	day, _ := model.DayBounds(now)
	rec := model.DailyRecommendation{
		Date:              day,
		RecommendedTasks:  pickTasks(taskItems, tasks),
		RecommendedHabits: pickHabits(habitItems, habits, emotion),
	}
	if dropped := len(taskItems) + len(habitItems) - len(rec.RecommendedTasks) - len(rec.RecommendedHabits); dropped > 0 {
		logger.Info("recommend.dropped_items", "user_id", userID, "count", dropped)
	}

	err = p.store.SaveRecommendation(ctx, userID, rec)
	if errors.Is(err, model.ErrRecommendationExists) {
		// another request stored today's entry first
		u, err = p.store.GetUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if stored := u.RecommendationFor(now); stored != nil {
			return response(stored, SourceCache), nil
		}
		return nil, fmt.Errorf("reload recommendation: %w", model.ErrRecommendationExists)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("recommend.generated", "user_id", userID,
		"tasks", len(rec.RecommendedTasks), "habits", len(rec.RecommendedHabits))
	return response(&rec, SourceModel), nil
}

// UpdateTaskStatus sets the canonical task status, then mirrors it into
// today's recommendation when the task is listed there.
func (p *Planner) UpdateTaskStatus(ctx context.Context, userID, taskID, status string) error {
	if _, err := p.store.UpdateTask(ctx, userID, taskID, model.TaskPatch{Status: &status}); err != nil {
		return err
	}
	if err := p.store.SetRecommendedTaskStatus(ctx, userID, p.now(), taskID, status); err != nil {
		return fmt.Errorf("mirror task status: %w", err)
	}
	return nil
}

// CompleteHabit adds one to the habit's progress and mirrors the new value
// into today's recommendation. Repeated calls accumulate.
func (p *Planner) CompleteHabit(ctx context.Context, userID, habitID string) (float64, error) {
	progress, err := p.store.IncrementHabitProgress(ctx, userID, habitID, 1)
	if err != nil {
		return 0, err
	}
	if err := p.store.SetRecommendedHabitProgress(ctx, userID, p.now(), habitID, progress); err != nil {
		return progress, fmt.Errorf("mirror habit progress: %w", err)
	}
	return progress, nil
}

// pickTasks keeps items naming a candidate task, once each, rebuilt from the
// canonical record.
func pickTasks(items []generatedItem, candidates []model.Task) []model.RecommendedTask {
	byID := make(map[string]model.Task, len(candidates))
	for _, t := range candidates {
		byID[t.TaskID] = t
	}
	out := []model.RecommendedTask{}
	seen := map[string]bool{}
	for _, it := range items {
		t, ok := byID[it.TaskID]
		if !ok || seen[it.TaskID] {
			continue
		}
		seen[it.TaskID] = true
		out = append(out, model.RecommendedTask{Task: t, Score: clampScore(it.Score), Reason: it.Reason})
	}
	return out
}

func pickHabits(items []generatedItem, candidates []model.Habit, emotion string) []model.RecommendedHabit {
	byID := make(map[string]model.Habit, len(candidates))
	for _, h := range candidates {
		byID[h.HabitID] = h
	}
	out := []model.RecommendedHabit{}
	seen := map[string]bool{}
	for _, it := range items {
		h, ok := byID[it.HabitID]
		if !ok || seen[it.HabitID] || !habitEligible(h, emotion) {
			continue
		}
		seen[it.HabitID] = true
		out = append(out, model.RecommendedHabit{Habit: h, Score: clampScore(it.Score), Reason: it.Reason})
	}
	return out
}

func clampScore(f float64) int {
	return int(math.Round(math.Max(0, math.Min(100, f))))
}

func response(rec *model.DailyRecommendation, source string) *model.RecommendationResponse {
	resp := &model.RecommendationResponse{
		RecommendedTasks:  rec.RecommendedTasks,
		RecommendedHabits: rec.RecommendedHabits,
		Source:            source,
	}
	if resp.RecommendedTasks == nil {
		resp.RecommendedTasks = []model.RecommendedTask{}
	}
	if resp.RecommendedHabits == nil {
		resp.RecommendedHabits = []model.RecommendedHabit{}
	}
	return resp
}
