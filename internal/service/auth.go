package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"study-plan/internal/logger"
	"study-plan/internal/model"
	"study-plan/internal/store"
)

type AuthService struct {
	store   store.Store
	cost    int
	now     func() time.Time
	compare func(hash, password []byte) error

	dummyOnce sync.Once
	dummy     []byte
}

func NewAuthService(s store.Store) *AuthService {
	return &AuthService{store: s, cost: bcrypt.DefaultCost, now: time.Now, compare: bcrypt.CompareHashAndPassword}
}

// dummyHash is compared against when the email is unknown, so both login
// failures cost one bcrypt comparison at the configured cost.
func (s *AuthService) dummyHash() []byte {
	s.dummyOnce.Do(func() {
		h, err := bcrypt.GenerateFromPassword([]byte("study-plan-unknown-user"), s.cost)
		if err != nil {
			logger.Error("auth.dummy_hash", "err", err)
		}
		s.dummy = h
	})
	return s.dummy
}

// Register creates a student account. The email check runs before the insert;
// the store's unique email constraint catches the race between the two.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	if _, err := s.store.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, model.ErrEmailTaken
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &model.User{
		ID:                   uuid.NewString(),
		Name:                 req.Name,
		Email:                req.Email,
		PasswordHash:         hash,
		Role:                 model.RoleStudent,
		EmotionLogs:          []model.EmotionLog{},
		Habits:               []model.Habit{},
		Tasks:                []model.Task{},
		DailyRecommendations: []model.DailyRecommendation{},
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	logger.Info("user.register", "user_id", u.ID)
	return u, nil
}

// Login returns ErrInvalidCredentials for an unknown email and for a wrong
// password alike.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		_ = s.compare(s.dummyHash(), []byte(password))
		return nil, model.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if s.compare([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, model.ErrInvalidCredentials
	}
	return u, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if s.compare([]byte(u.PasswordHash), []byte(oldPassword)) != nil {
		return model.ErrInvalidCredentials
	}
	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.SetPassword(ctx, userID, hash); err != nil {
		return err
	}
	logger.Info("user.password_changed", "user_id", userID)
	return nil
}

// HashPassword is used by profile updates that carry a new password.
func (s *AuthService) HashPassword(password string) (string, error) {
	return s.hash(password)
}

func (s *AuthService) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}
