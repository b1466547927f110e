package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_bot/internal/model"
	"go.uber.org/zap"
)

type SubjectService struct {
	subjects SubjectStore
	access   AccessStore
	logger   *zap.Logger
}

func NewSubjectService(subjects SubjectStore, access AccessStore, logger *zap.Logger) *SubjectService {
	return &SubjectService{
		subjects: subjects,
		access:   access,
		logger:   logger,
	}
}

// ParseSubjectInput разбирает ввод "Название%Описание"; описание необязательно
func ParseSubjectInput(text string) (name string, description *string) {
	name, desc, found := strings.Cut(text, "%")
	name = strings.TrimSpace(name)
	if !found {
		return name, nil
	}
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return name, nil
	}
	return name, &desc
}

// Create создаёт предмет. Названия уникальны без учёта регистра.
func (s *SubjectService) Create(ctx context.Context, name string, description *string) (*model.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyInput
	}

	existing, err := s.subjects.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check existing subject: %w", err)
	}
	if existing != nil {
		return nil, ErrSubjectExists
	}

	subject := &model.Subject{
		Name:        name,
		Description: description,
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, fmt.Errorf("create subject: %w", err)
	}

	s.logger.Info("Subject created",
		zap.Int64("subject_id", subject.ID),
		zap.String("name", subject.Name))

	return subject, nil
}

// Get получает предмет по ID; nil если предмета нет
func (s *SubjectService) Get(ctx context.Context, id int64) (*model.Subject, error) {
	return s.subjects.GetByID(ctx, id)
}

// GetByName получает предмет по названию; nil если предмета нет
func (s *SubjectService) GetByName(ctx context.Context, name string) (*model.Subject, error) {
	return s.subjects.GetByName(ctx, name)
}

// List возвращает все предметы
func (s *SubjectService) List(ctx context.Context) ([]*model.Subject, error) {
	return s.subjects.List(ctx)
}

// ListForTeacher возвращает предметы, к которым у учителя есть доступ
func (s *SubjectService) ListForTeacher(ctx context.Context, teacherID int64) ([]*model.Subject, error) {
	return s.access.SubjectsOfTeacher(ctx, teacherID)
}

// Delete удаляет предмет вместе с уроками и карточками
func (s *SubjectService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.subjects.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	if !deleted {
		return ErrSubjectNotFound
	}

	s.logger.Info("Subject deleted", zap.Int64("subject_id", id))
	return nil
}
