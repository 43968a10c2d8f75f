// Package mongostore keeps each user as one document in the "users"
// collection with emotion logs, habits, tasks and daily recommendations
// embedded as arrays.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"study-plan/internal/logger"
	"study-plan/internal/model"
	"study-plan/internal/store"
)

const usersCollection = "users"

var _ store.Store = (*Store)(nil)

type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	now    func() time.Time
}

// Open connects, pings and makes sure the email index exists.
func Open(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	s := &Store{client: client, users: client.Database(dbName).Collection(usersCollection), now: time.Now}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	logger.Info("mongo connected", "db", dbName)
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uk_email"),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	doc := *u
	if doc.EmotionLogs == nil {
		doc.EmotionLogs = []model.EmotionLog{}
	}
	if doc.Habits == nil {
		doc.Habits = []model.Habit{}
	}
	if doc.Tasks == nil {
		doc.Tasks = []model.Task{}
	}
	if doc.DailyRecommendations == nil {
		doc.DailyRecommendations = []model.DailyRecommendation{}
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("create user: %w", model.ErrEmailTaken)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var u model.User
	if err := s.users.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, p model.UserPatch) (*model.User, error) {
	set := bson.M{"updated_at": s.now().UTC()}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.University != nil {
		set["university"] = *p.University
	}
	if p.CourseOfStudy != nil {
		set["course_of_study"] = *p.CourseOfStudy
	}
	if p.YearOfStudy != nil {
		set["year_of_study"] = *p.YearOfStudy
	}
	if p.PasswordHash != nil {
		set["password_hash"] = *p.PasswordHash
	}

	var u model.User
	err := s.users.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, model.ErrUserNotFound
	case mongo.IsDuplicateKeyError(err):
		return nil, fmt.Errorf("update user: %w", model.ErrEmailTaken)
	case err != nil:
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &u, nil
}

func (s *Store) SetPassword(ctx context.Context, id, hash string) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"password_hash": hash, "updated_at": s.now().UTC()}})
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.users.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (s *Store) AppendEmotion(ctx context.Context, userID string, l model.EmotionLog) error {
	return s.push(ctx, bson.M{"_id": userID}, "emotion_logs", l, nil)
}

func (s *Store) AddHabit(ctx context.Context, userID string, h model.Habit) error {
	filter := bson.M{"_id": userID, "habits.habit_id": bson.M{"$ne": h.HabitID}}
	return s.push(ctx, filter, "habits", h, fmt.Errorf("habit %s: %w", h.HabitID, model.ErrDuplicateID))
}

func (s *Store) AddTask(ctx context.Context, userID string, t model.Task) error {
	filter := bson.M{"_id": userID, "tasks.task_id": bson.M{"$ne": t.TaskID}}
	return s.push(ctx, filter, "tasks", t, fmt.Errorf("task %s: %w", t.TaskID, model.ErrDuplicateID))
}

// push appends item to field on the document matched by filter. When nothing
// matches but the user exists, conflict is returned.
func (s *Store) push(ctx context.Context, filter bson.M, field string, item any, conflict error) error {
	res, err := s.users.UpdateOne(ctx, filter, bson.M{
		"$push": bson.M{field: item},
		"$set":  bson.M{"updated_at": s.now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("push %s: %w", field, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	if err := s.exists(ctx, filter["_id"].(string)); err != nil {
		return err
	}
	if conflict == nil {
		return fmt.Errorf("push %s: no document matched", field)
	}
	return conflict
}

func (s *Store) UpdateHabit(ctx context.Context, userID, habitID string, p model.HabitPatch) (*model.Habit, error) {
	set := bson.M{"updated_at": s.now().UTC()}
	put := func(k string, v any) { set["habits.$."+k] = v }
	if p.Title != nil {
		put("title", *p.Title)
	}
	if p.Description != nil {
		put("description", *p.Description)
	}
	if p.Frequency != nil {
		put("frequency", *p.Frequency)
	}
	if p.Progress != nil {
		put("progress", *p.Progress)
	}
	if p.MustToday != nil {
		put("must_today", *p.MustToday)
	}
	if p.AllowedEmotions != nil {
		put("allowed_emotions", *p.AllowedEmotions)
	}
	if p.DurationMinutes != nil {
		put("duration_minutes", *p.DurationMinutes)
	}
	if p.Priority != nil {
		put("priority", *p.Priority)
	}
	u, err := s.updateItem(ctx, bson.M{"_id": userID, "habits.habit_id": habitID}, bson.M{"$set": set}, model.ErrHabitNotFound)
	if err != nil {
		return nil, err
	}
	return u.FindHabit(habitID), nil
}

func (s *Store) IncrementHabitProgress(ctx context.Context, userID, habitID string, delta float64) (float64, error) {
	u, err := s.updateItem(ctx, bson.M{"_id": userID, "habits.habit_id": habitID}, bson.M{
		"$inc": bson.M{"habits.$.progress": delta},
		"$set": bson.M{"updated_at": s.now().UTC()},
	}, model.ErrHabitNotFound)
	if err != nil {
		return 0, err
	}
	return u.FindHabit(habitID).Progress, nil
}

func (s *Store) UpdateTask(ctx context.Context, userID, taskID string, p model.TaskPatch) (*model.Task, error) {
	set := bson.M{"updated_at": s.now().UTC()}
	put := func(k string, v any) { set["tasks.$."+k] = v }
	if p.Title != nil {
		put("title", *p.Title)
	}
	if p.Description != nil {
		put("description", *p.Description)
	}
	if p.DueDate != nil {
		put("due_date", *p.DueDate)
	}
	if p.Status != nil {
		put("status", *p.Status)
	}
	if p.EstimatedMinutes != nil {
		put("estimated_minutes", *p.EstimatedMinutes)
	}
	if p.Priority != nil {
		put("priority", *p.Priority)
	}
	u, err := s.updateItem(ctx, bson.M{"_id": userID, "tasks.task_id": taskID}, bson.M{"$set": set}, model.ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	return u.FindTask(taskID), nil
}

// updateItem applies update to the positional array element selected by
// filter and returns the updated document.
func (s *Store) updateItem(ctx context.Context, filter, update bson.M, notFound error) (*model.User, error) {
	var u model.User
	err := s.users.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if err := s.exists(ctx, filter["_id"].(string)); err != nil {
			return nil, err
		}
		return nil, notFound
	}
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return &u, nil
}

func (s *Store) DeleteHabit(ctx context.Context, userID, habitID string) error {
	return s.pull(ctx, userID, "habits", bson.M{"habit_id": habitID}, model.ErrHabitNotFound)
}

func (s *Store) DeleteTask(ctx context.Context, userID, taskID string) error {
	return s.pull(ctx, userID, "tasks", bson.M{"task_id": taskID}, model.ErrTaskNotFound)
}

func (s *Store) pull(ctx context.Context, userID, field string, match bson.M, notFound error) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$pull": bson.M{field: match}})
	if err != nil {
		return fmt.Errorf("pull %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return model.ErrUserNotFound
	}
	if res.ModifiedCount == 0 {
		return notFound
	}
	return nil
}

func (s *Store) SaveRecommendation(ctx context.Context, userID string, rec model.DailyRecommendation) error {
	start, end := model.DayBounds(rec.Date)
	filter := bson.M{
		"_id": userID,
		"daily_recommendations": bson.M{"$not": bson.M{"$elemMatch": bson.M{
			"date": bson.M{"$gte": start, "$lt": end},
		}}},
	}
	if rec.RecommendedTasks == nil {
		rec.RecommendedTasks = []model.RecommendedTask{}
	}
	if rec.RecommendedHabits == nil {
		rec.RecommendedHabits = []model.RecommendedHabit{}
	}
	return s.push(ctx, filter, "daily_recommendations", rec, model.ErrRecommendationExists)
}

func (s *Store) SetRecommendedTaskStatus(ctx context.Context, userID string, day time.Time, taskID, status string) error {
	return s.setMirror(ctx, userID, day, "recommended_tasks", bson.M{"item.task_id": taskID}, "status", status)
}

func (s *Store) SetRecommendedHabitProgress(ctx context.Context, userID string, day time.Time, habitID string, progress float64) error {
	return s.setMirror(ctx, userID, day, "recommended_habits", bson.M{"item.habit_id": habitID}, "progress", progress)
}

// setMirror updates one field of the matching item inside the
// recommendation stored for day, using array filters on both levels.
func (s *Store) setMirror(ctx context.Context, userID string, day time.Time, list string, itemFilter bson.M, field string, value any) error {
	start, end := model.DayBounds(day)
	path := fmt.Sprintf("daily_recommendations.$[rec].%s.$[item].%s", list, field)
	opts := options.Update().SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
		bson.M{"rec.date": bson.M{"$gte": start, "$lt": end}},
		itemFilter,
	}})
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{path: value}}, opts)
	if err != nil {
		return fmt.Errorf("update recommended %s: %w", list, err)
	}
	if res.MatchedCount == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (s *Store) exists(ctx context.Context, id string) error {
	n, err := s.users.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("count user: %w", err)
	}
	if n == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
