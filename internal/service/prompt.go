package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"study-plan/internal/model"
)

var emojiLabels = map[string]string{
	"😮": "Surprise",
	"😢": "Sad",
	"😐": "Neutral",
	"😊": "Happy",
	"😨": "Fear",
	"🤢": "Disgust",
	"😡": "Angry",
}

var negativeEmotions = map[string]bool{
	"sad":     true,
	"fear":    true,
	"disgust": true,
	"angry":   true,
}

// DisplayEmotion renders a log for the prompt. Emoji logs found in the table
// become "<emoji> <Label>"; everything else is returned raw.
func DisplayEmotion(l model.EmotionLog) string {
	if l.Source != model.SourceEmoji {
		return l.Emotion
	}
	label, ok := emojiLabels[strings.TrimSpace(l.Emotion)]
	if !ok {
		return l.Emotion
	}
	return strings.TrimSpace(l.Emotion) + " " + label
}

// EmotionLabel returns the lower-case label used for allow-list matching:
// the table label for known emoji, the trimmed raw value otherwise.
func EmotionLabel(l model.EmotionLog) string {
	if label, ok := emojiLabels[strings.TrimSpace(l.Emotion)]; ok {
		return strings.ToLower(label)
	}
	return strings.ToLower(strings.TrimSpace(l.Emotion))
}

func IsNegative(label string) bool {
	return negativeEmotions[label]
}

// PendingTasks returns tasks whose status is not completed, in stored order.
func PendingTasks(tasks []model.Task) []model.Task {
	out := []model.Task{}
	for _, t := range tasks {
		if t.Status != model.StatusCompleted {
			out = append(out, t)
		}
	}
	return out
}

// DueHabits returns daily habits, and weekly habits when today is Monday UTC.
// Custom habits are never due.
func DueHabits(habits []model.Habit, today time.Time) []model.Habit {
	monday := today.UTC().Weekday() == time.Monday
	out := []model.Habit{}
	for _, h := range habits {
		switch h.Frequency {
		case model.FrequencyDaily:
			out = append(out, h)
		case model.FrequencyWeekly:
			if monday {
				out = append(out, h)
			}
		}
	}
	return out
}

const shortHabitMinutes = 10

// habitEligible mirrors the daily-habit rule the model is told to follow.
// Weekly habits are always eligible once due.
func habitEligible(h model.Habit, emotion string) bool {
	if h.Frequency != model.FrequencyDaily {
		return true
	}
	if h.MustToday {
		return true
	}
	for _, e := range h.AllowedEmotions {
		if strings.EqualFold(strings.TrimSpace(e), emotion) {
			return true
		}
	}
	return h.DurationMinutes > 0 && h.DurationMinutes <= shortHabitMinutes && h.Priority == "high"
}

const systemPrompt = `You are a study planner for a university student. ` +
	`You pick which of the student's pending tasks and due habits to work on today. ` +
	`Reply with a single JSON object and nothing else.`

// BuildPrompt renders the instruction document sent to the generator for
// the latest emotion log and the candidate tasks and habits.
func BuildPrompt(latest model.EmotionLog, tasks []model.Task, habits []model.Habit) string {
	taskJSON, _ := json.MarshalIndent(tasks, "", "  ")
	habitJSON, _ := json.MarshalIndent(habits, "", "  ")

	label := EmotionLabel(latest)
	valence := "neutral or positive"
	if IsNegative(label) {
		valence = "negative"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Current emotion: %s\n", DisplayEmotion(latest))
	fmt.Fprintf(&b, "Emotion label: %s (%s)\n\n", label, valence)
	fmt.Fprintf(&b, "Pending tasks:\n%s\n\n", taskJSON)
	fmt.Fprintf(&b, "Habits due today:\n%s\n\n", habitJSON)
	b.WriteString(`Rules:
- If the emotion is negative (sad, fear, disgust, angry) prefer short, low-effort tasks. For neutral or positive emotions higher-effort tasks are fine.
- Never recommend a daily habit by default. Recommend it only if must_today is true, or allowed_emotions contains the current emotion, or it is both very short (duration_minutes <= 10) and priority "high".
- Only use task_id and habit_id values from the lists above.
- For every recommended item give a suitability "score" from 0 to 100 and a one-sentence "reason".

Return exactly this JSON shape with no prose outside it:
{"recommended_tasks":[{"task_id":"...","score":0,"reason":"..."}],"recommended_habits":[{"habit_id":"...","score":0,"reason":"..."}]}
`)
	return b.String()
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimLeft(s, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
