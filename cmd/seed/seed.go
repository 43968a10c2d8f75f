package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jaswdr/faker"

	"study-plan/internal/logger"
	"study-plan/internal/model"
	"study-plan/internal/service"
	"study-plan/internal/store"
)

var (
	universities = []string{"TU Delft", "ETH Zurich", "University of Porto", "KTH", "University of Toronto"}
	courses      = []string{"Computer Science", "Mechanical Engineering", "Psychology", "Biology", "Economics"}
	emojis       = []string{"😮", "😢", "😐", "😊", "😨", "🤢", "😡"}
	habitTitles  = []string{"Morning stretch", "Read 10 pages", "Drink water", "Journal", "Review flashcards", "Plan the week"}
	taskVerbs    = []string{"Finish", "Draft", "Review", "Submit", "Prepare"}
	taskObjects  = []string{"lab report", "essay outline", "problem set", "group slides", "reading notes"}
	priorities   = []string{"low", "medium", "high"}
	statuses     = []string{model.StatusPending, model.StatusPending, model.StatusOngoing, model.StatusCompleted}
)

// seed creates n demo students through the service layer, each with a few
// habits, tasks and emotion logs from the past week.
func seed(ctx context.Context, st store.Store, fake faker.Faker, n int, password string, now time.Time) ([]*model.User, error) {
	auth := service.NewAuthService(st)
	users := service.NewUserService(st, auth)

	out := make([]*model.User, 0, n)
	for i := 0; i < n; i++ {
		name := fake.Person().Name()
		email := fmt.Sprintf("%s.%s@demo.study-plan.dev", strings.ToLower(fake.Person().FirstName()), fake.Numerify("######"))
		u, err := auth.Register(ctx, model.RegisterRequest{Name: name, Email: email, Password: password})
		if err != nil {
			return out, fmt.Errorf("register %s: %w", email, err)
		}

		uni := fake.RandomStringElement(universities)
		course := fake.RandomStringElement(courses)
		year := fake.IntBetween(1, 5)
		if _, err := users.Update(ctx, u.ID, model.UserPatch{University: &uni, CourseOfStudy: &course, YearOfStudy: &year}); err != nil {
			return out, err
		}

		habits := fake.IntBetween(2, 4)
		for j := 0; j < habits; j++ {
			freq := model.FrequencyDaily
			if j%3 == 2 {
				freq = model.FrequencyWeekly
			}
			h := model.Habit{
				Title:           fake.RandomStringElement(habitTitles),
				Frequency:       freq,
				MustToday:       fake.IntBetween(0, 3) == 0,
				DurationMinutes: fake.IntBetween(5, 30),
				Priority:        fake.RandomStringElement(priorities),
			}
			if _, err := users.AddHabit(ctx, u.ID, h); err != nil {
				return out, err
			}
		}

		tasks := fake.IntBetween(3, 6)
		for j := 0; j < tasks; j++ {
			due := now.AddDate(0, 0, fake.IntBetween(1, 14)).UTC()
			t := model.Task{
				Title:            fake.RandomStringElement(taskVerbs) + " " + fake.RandomStringElement(taskObjects),
				Description:      fake.Lorem().Sentence(8),
				DueDate:          &due,
				Status:           fake.RandomStringElement(statuses),
				EstimatedMinutes: fake.IntBetween(15, 180),
				Priority:         fake.RandomStringElement(priorities),
			}
			if _, err := users.AddTask(ctx, u.ID, t); err != nil {
				return out, err
			}
		}

		for d := 6; d >= 0; d-- {
			l := model.EmotionLog{
				Timestamp: now.AddDate(0, 0, -d).UTC(),
				Emotion:   fake.RandomStringElement(emojis),
				Source:    model.SourceEmoji,
			}
			if err := st.AppendEmotion(ctx, u.ID, l); err != nil {
				return out, err
			}
		}

		full, err := st.GetUser(ctx, u.ID)
		if err != nil {
			return out, err
		}
		logger.Info("seed.user", "user_id", u.ID, "email", email,
			"habits", len(full.Habits), "tasks", len(full.Tasks))
		out = append(out, full)
	}
	return out, nil
}
