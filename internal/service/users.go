package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/InQaaaaGit/shortenit/internal/models"
	"github.com/InQaaaaGit/shortenit/internal/storage"
	"github.com/InQaaaaGit/shortenit/internal/validate"
)

// UserService регистрация и аутентификация пользователей
type UserService struct {
	store    storage.UserStorage
	hashCost int
	logger   *zap.Logger
}

// NewUserService создает сервис пользователей. hashCost 0 означает bcrypt.DefaultCost.
func NewUserService(store storage.UserStorage, hashCost int, logger *zap.Logger) *UserService {
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &UserService{store: store, hashCost: hashCost, logger: logger}
}

// Register создает пользователя
func (s *UserService) Register(ctx context.Context, username, password1, password2 string) (*models.User, error) {
	name, err := validate.Username(username)
	if err != nil {
		return nil, err
	}
	if password1 != password2 {
		return nil, ErrPasswordMismatch
	}
	if err := validate.Password(password1); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password1), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     name,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Authenticate проверяет имя пользователя и пароль
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser возвращает пользователя по идентификатору
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}
