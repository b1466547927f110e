package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_bot/internal/model"
	"go.uber.org/zap"
)

type LessonService struct {
	lessons  LessonStore
	subjects SubjectStore
	access   AccessStore
	logger   *zap.Logger
}

func NewLessonService(lessons LessonStore, subjects SubjectStore, access AccessStore, logger *zap.Logger) *LessonService {
	return &LessonService{
		lessons:  lessons,
		subjects: subjects,
		access:   access,
		logger:   logger,
	}
}

// Create создаёт урок в предмете. Доступ учителя к предмету проверяется
// в момент создания, а не при выборе предмета.
func (s *LessonService) Create(ctx context.Context, teacherID, subjectID int64, title string) (*model.Lesson, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyInput
	}

	subject, err := s.subjects.GetByID(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}
	if subject == nil {
		return nil, ErrSubjectNotFound
	}

	ok, err := s.access.HasAccess(ctx, teacherID, subjectID)
	if err != nil {
		return nil, fmt.Errorf("check access: %w", err)
	}
	if !ok {
		return nil, ErrNoSubjectAccess
	}

	lesson := &model.Lesson{
		Title:     title,
		TeacherID: teacherID,
		SubjectID: subjectID,
	}
	if err := s.lessons.Create(ctx, lesson); err != nil {
		return nil, fmt.Errorf("create lesson: %w", err)
	}

	s.logger.Info("Lesson created",
		zap.Int64("lesson_id", lesson.ID),
		zap.Int64("subject_id", subjectID),
		zap.Int64("teacher_id", teacherID))

	return lesson, nil
}

// Get получает урок по ID; nil если урока нет
func (s *LessonService) Get(ctx context.Context, id int64) (*model.Lesson, error) {
	return s.lessons.GetByID(ctx, id)
}

// ListBySubject возвращает уроки предмета
func (s *LessonService) ListBySubject(ctx context.Context, subjectID int64) ([]*model.Lesson, error) {
	return s.lessons.ListBySubject(ctx, subjectID)
}

// ListByTeacher возвращает уроки автора
func (s *LessonService) ListByTeacher(ctx context.Context, teacherID int64) ([]*model.Lesson, error) {
	return s.lessons.ListByTeacher(ctx, teacherID)
}

// Authored получает урок и проверяет, что учитель - его автор
func (s *LessonService) Authored(ctx context.Context, teacherID, lessonID int64) (*model.Lesson, error) {
	lesson, err := s.lessons.GetByID(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}
	if lesson == nil {
		return nil, ErrLessonNotFound
	}
	if lesson.TeacherID != teacherID {
		return nil, ErrNotLessonAuthor
	}
	return lesson, nil
}

// Rename меняет название урока
func (s *LessonService) Rename(ctx context.Context, teacherID, lessonID int64, title string) (*model.Lesson, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyInput
	}

	lesson, err := s.Authored(ctx, teacherID, lessonID)
	if err != nil {
		return nil, err
	}

	updated, err := s.lessons.UpdateTitle(ctx, lessonID, title)
	if err != nil {
		return nil, fmt.Errorf("rename lesson: %w", err)
	}
	if !updated {
		return nil, ErrLessonNotFound
	}

	lesson.Title = title
	return lesson, nil
}

// Delete удаляет урок вместе с карточками
func (s *LessonService) Delete(ctx context.Context, teacherID, lessonID int64) (*model.Lesson, error) {
	lesson, err := s.Authored(ctx, teacherID, lessonID)
	if err != nil {
		return nil, err
	}

	deleted, err := s.lessons.Delete(ctx, lessonID)
	if err != nil {
		return nil, fmt.Errorf("delete lesson: %w", err)
	}
	if !deleted {
		return nil, ErrLessonNotFound
	}

	s.logger.Info("Lesson deleted",
		zap.Int64("lesson_id", lessonID),
		zap.Int64("teacher_id", teacherID))

	return lesson, nil
}
