// Package sqlstore maps users and their sub-records onto MySQL tables through
// gorm. Recommendation items are stored as JSON columns.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"study-plan/internal/model"
	"study-plan/internal/store"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// New migrates the schema on db. db should be opened with TranslateError so
// unique violations surface as gorm.ErrDuplicatedKey.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&userRow{}, &emotionRow{}, &habitRow{}, &taskRow{}, &recommendationRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	row := userRow{
		ID: u.ID, Name: u.Name, Email: u.Email, PasswordHash: u.PasswordHash, Role: u.Role,
		University: u.University, CourseOfStudy: u.CourseOfStudy, YearOfStudy: u.YearOfStudy,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create user: %w", model.ErrEmailTaken)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.load(ctx, "id = ?", id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.load(ctx, "email = ?", email)
}

func (s *Store) load(ctx context.Context, where string, arg any) (*model.User, error) {
	db := s.db.WithContext(ctx)
	var row userRow
	if err := db.Where(where, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	u := &model.User{
		ID: row.ID, Name: row.Name, Email: row.Email, PasswordHash: row.PasswordHash, Role: row.Role,
		University: row.University, CourseOfStudy: row.CourseOfStudy, YearOfStudy: row.YearOfStudy,
		CreatedAt: row.CreatedAt.UTC(), UpdatedAt: row.UpdatedAt.UTC(),
		EmotionLogs: []model.EmotionLog{}, Habits: []model.Habit{}, Tasks: []model.Task{},
		DailyRecommendations: []model.DailyRecommendation{},
	}

	var emotions []emotionRow
	if err := db.Where("user_id = ?", row.ID).Order("id").Find(&emotions).Error; err != nil {
		return nil, fmt.Errorf("query emotion logs: %w", err)
	}
	for _, e := range emotions {
		u.EmotionLogs = append(u.EmotionLogs, model.EmotionLog{Timestamp: e.Timestamp.UTC(), Emotion: e.Emotion, Source: e.Source})
	}

	var habits []habitRow
	if err := db.Where("user_id = ?", row.ID).Order("id").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("query habits: %w", err)
	}
	for _, h := range habits {
		u.Habits = append(u.Habits, h.model())
	}

	var tasks []taskRow
	if err := db.Where("user_id = ?", row.ID).Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	for _, t := range tasks {
		u.Tasks = append(u.Tasks, t.model())
	}

	var recs []recommendationRow
	if err := db.Where("user_id = ?", row.ID).Order("daily_date").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	for _, r := range recs {
		u.DailyRecommendations = append(u.DailyRecommendations, r.model())
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, p model.UserPatch) (*model.User, error) {
	updates := map[string]interface{}{"updated_at": s.now().UTC()}
	if p.Name != nil {
		updates["name"] = *p.Name
	}
	if p.Email != nil {
		updates["email"] = *p.Email
	}
	if p.University != nil {
		updates["university"] = *p.University
	}
	if p.CourseOfStudy != nil {
		updates["course_of_study"] = *p.CourseOfStudy
	}
	if p.YearOfStudy != nil {
		updates["year_of_study"] = *p.YearOfStudy
	}
	if p.PasswordHash != nil {
		updates["password_hash"] = *p.PasswordHash
	}
	res := s.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("update user: %w", model.ErrEmailTaken)
		}
		return nil, fmt.Errorf("update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		if err := s.exists(ctx, id); err != nil {
			return nil, err
		}
	}
	return s.GetUser(ctx, id)
}

func (s *Store) SetPassword(ctx context.Context, id, hash string) error {
	res := s.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).
		Updates(map[string]interface{}{"password_hash": hash, "updated_at": s.now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("set password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return s.exists(ctx, id)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&userRow{})
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return model.ErrUserNotFound
		}
		for _, m := range []interface{}{&emotionRow{}, &habitRow{}, &taskRow{}, &recommendationRow{}} {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return fmt.Errorf("delete user records: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) AppendEmotion(ctx context.Context, userID string, l model.EmotionLog) error {
	if err := s.exists(ctx, userID); err != nil {
		return err
	}
	row := emotionRow{UserID: userID, Timestamp: l.Timestamp, Emotion: l.Emotion, Source: l.Source}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert emotion log: %w", err)
	}
	return s.touch(ctx, userID)
}

func (s *Store) AddHabit(ctx context.Context, userID string, h model.Habit) error {
	row := habitToRow(userID, h)
	return s.insertItem(ctx, userID, &row, fmt.Errorf("habit %s: %w", h.HabitID, model.ErrDuplicateID))
}

func (s *Store) AddTask(ctx context.Context, userID string, t model.Task) error {
	row := taskToRow(userID, t)
	return s.insertItem(ctx, userID, &row, fmt.Errorf("task %s: %w", t.TaskID, model.ErrDuplicateID))
}

func (s *Store) insertItem(ctx context.Context, userID string, row interface{}, conflict error) error {
	if err := s.exists(ctx, userID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return conflict
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return s.touch(ctx, userID)
}

func (s *Store) UpdateHabit(ctx context.Context, userID, habitID string, p model.HabitPatch) (*model.Habit, error) {
	var out model.Habit
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row habitRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND habit_id = ?", userID, habitID).First(&row).Error
		if err != nil {
			return s.itemMissing(tx, userID, err, model.ErrHabitNotFound)
		}
		h := row.model()
		p.Apply(&h)
		next := habitToRow(userID, h)
		next.ID = row.ID
		if err := tx.Save(&next).Error; err != nil {
			return fmt.Errorf("save habit: %w", err)
		}
		out = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.touch(ctx, userID); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) IncrementHabitProgress(ctx context.Context, userID, habitID string, delta float64) (float64, error) {
	var progress float64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&habitRow{}).Where("user_id = ? AND habit_id = ?", userID, habitID).
			UpdateColumn("progress", gorm.Expr("progress + ?", delta))
		if res.Error != nil {
			return fmt.Errorf("increment progress: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return s.itemMissing(tx, userID, gorm.ErrRecordNotFound, model.ErrHabitNotFound)
		}
		var row habitRow
		if err := tx.Where("user_id = ? AND habit_id = ?", userID, habitID).First(&row).Error; err != nil {
			return fmt.Errorf("reload habit: %w", err)
		}
		progress = row.Progress
		return nil
	})
	if err != nil {
		return 0, err
	}
	if err := s.touch(ctx, userID); err != nil {
		return 0, err
	}
	return progress, nil
}

func (s *Store) UpdateTask(ctx context.Context, userID, taskID string, p model.TaskPatch) (*model.Task, error) {
	var out model.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row taskRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND task_id = ?", userID, taskID).First(&row).Error
		if err != nil {
			return s.itemMissing(tx, userID, err, model.ErrTaskNotFound)
		}
		t := row.model()
		p.Apply(&t)
		next := taskToRow(userID, t)
		next.ID = row.ID
		if err := tx.Save(&next).Error; err != nil {
			return fmt.Errorf("save task: %w", err)
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.touch(ctx, userID); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) DeleteHabit(ctx context.Context, userID, habitID string) error {
	return s.deleteItem(ctx, userID, &habitRow{}, "habit_id", habitID, model.ErrHabitNotFound)
}

func (s *Store) DeleteTask(ctx context.Context, userID, taskID string) error {
	return s.deleteItem(ctx, userID, &taskRow{}, "task_id", taskID, model.ErrTaskNotFound)
}

func (s *Store) deleteItem(ctx context.Context, userID string, row interface{}, col, id string, notFound error) error {
	res := s.db.WithContext(ctx).Where("user_id = ? AND "+col+" = ?", userID, id).Delete(row)
	if res.Error != nil {
		return fmt.Errorf("delete %s: %w", col, res.Error)
	}
	if res.RowsAffected == 0 {
		return s.itemMissing(s.db.WithContext(ctx), userID, gorm.ErrRecordNotFound, notFound)
	}
	return s.touch(ctx, userID)
}

func (s *Store) SaveRecommendation(ctx context.Context, userID string, rec model.DailyRecommendation) error {
	if err := s.exists(ctx, userID); err != nil {
		return err
	}
	start, _ := model.DayBounds(rec.Date)
	row := recommendationRow{
		UserID:    userID,
		DailyDate: start.Format(dateLayout),
		Date:      rec.Date.UTC(),
		Tasks:     datatypes.NewJSONType(rec.RecommendedTasks),
		Habits:    datatypes.NewJSONType(rec.RecommendedHabits),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.ErrRecommendationExists
		}
		return fmt.Errorf("insert recommendation: %w", err)
	}
	return nil
}

func (s *Store) SetRecommendedTaskStatus(ctx context.Context, userID string, day time.Time, taskID, status string) error {
	return s.editRecommendation(ctx, userID, day, func(row *recommendationRow) {
		items := row.Tasks.Data()
		for i := range items {
			if items[i].TaskID == taskID {
				items[i].Status = status
			}
		}
		row.Tasks = datatypes.NewJSONType(items)
	})
}

func (s *Store) SetRecommendedHabitProgress(ctx context.Context, userID string, day time.Time, habitID string, progress float64) error {
	return s.editRecommendation(ctx, userID, day, func(row *recommendationRow) {
		items := row.Habits.Data()
		for i := range items {
			if items[i].HabitID == habitID {
				items[i].Progress = progress
			}
		}
		row.Habits = datatypes.NewJSONType(items)
	})
}

// editRecommendation locks the row stored for day and rewrites its JSON
// columns. A missing row is not an error.
func (s *Store) editRecommendation(ctx context.Context, userID string, day time.Time, edit func(*recommendationRow)) error {
	start, _ := model.DayBounds(day)
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row recommendationRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND daily_date = ?", userID, start.Format(dateLayout)).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("query recommendation: %w", err)
		}
		edit(&row)
		if err := tx.Model(&row).Select("tasks", "habits").Updates(&row).Error; err != nil {
			return fmt.Errorf("update recommendation: %w", err)
		}
		return nil
	})
}

func (s *Store) exists(ctx context.Context, id string) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("count user: %w", err)
	}
	if n == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// itemMissing turns a not-found on a child row into the right sentinel.
func (s *Store) itemMissing(tx *gorm.DB, userID string, err error, notFound error) error {
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("query item: %w", err)
	}
	var n int64
	if err := tx.Model(&userRow{}).Where("id = ?", userID).Count(&n).Error; err != nil {
		return fmt.Errorf("count user: %w", err)
	}
	if n == 0 {
		return model.ErrUserNotFound
	}
	return notFound
}

func (s *Store) touch(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", userID).
		UpdateColumn("updated_at", s.now().UTC()).Error
}
