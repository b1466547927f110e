package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_bot/internal/model"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	teachers TeacherStore
	logger   *zap.Logger
}

func NewAuthService(teachers TeacherStore, logger *zap.Logger) *AuthService {
	return &AuthService{
		teachers: teachers,
		logger:   logger,
	}
}

// Login проверяет имя пользователя и пароль учителя.
// Неизвестное имя и неверный пароль дают одну и ту же ошибку.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.Teacher, error) {
	teacher, err := s.teachers.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("get teacher: %w", err)
	}

	if teacher == nil {
		return nil, ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(teacher.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}

	s.logger.Info("Teacher logged in",
		zap.Int64("teacher_id", teacher.ID),
		zap.String("username", teacher.Username))

	return teacher, nil
}

// CreateTeacher создаёт учётную запись учителя с bcrypt-хешем пароля
func (s *AuthService) CreateTeacher(ctx context.Context, username, password string) (*model.Teacher, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, ErrEmptyInput
	}

	existing, err := s.teachers.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check existing teacher: %w", err)
	}
	if existing != nil {
		return nil, ErrTeacherExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	teacher := &model.Teacher{
		Username:     username,
		PasswordHash: string(hash),
	}

	if err := s.teachers.Create(ctx, teacher); err != nil {
		return nil, fmt.Errorf("create teacher: %w", err)
	}

	s.logger.Info("New teacher created",
		zap.Int64("teacher_id", teacher.ID),
		zap.String("username", username))

	return teacher, nil
}

// GetByUsername получает учителя по имени пользователя
func (s *AuthService) GetByUsername(ctx context.Context, username string) (*model.Teacher, error) {
	return s.teachers.GetByUsername(ctx, strings.TrimSpace(username))
}

// GetTeacher получает учителя по ID
func (s *AuthService) GetTeacher(ctx context.Context, id int64) (*model.Teacher, error) {
	return s.teachers.GetByID(ctx, id)
}

// ListTeachers возвращает всех учителей
func (s *AuthService) ListTeachers(ctx context.Context) ([]*model.Teacher, error) {
	return s.teachers.List(ctx)
}
