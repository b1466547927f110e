package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_bot/internal/model"
	"go.uber.org/zap"
)

// GrantResult - результат выдачи доступа
type GrantResult int

const (
	GrantCreated GrantResult = iota
	GrantAlreadyExists
)

// RevokeResult - результат отзыва доступа
type RevokeResult int

const (
	RevokeDone RevokeResult = iota
	RevokeMissing
)

// AccessService управляет доступом учителей к предметам
type AccessService struct {
	access   AccessStore
	teachers TeacherStore
	subjects SubjectStore
	logger   *zap.Logger
}

func NewAccessService(access AccessStore, teachers TeacherStore, subjects SubjectStore, logger *zap.Logger) *AccessService {
	return &AccessService{
		access:   access,
		teachers: teachers,
		subjects: subjects,
		logger:   logger,
	}
}

// Grant выдаёт доступ. Повторная выдача не создаёт дубликата.
func (s *AccessService) Grant(ctx context.Context, teacherID, subjectID int64) (GrantResult, error) {
	created, err := s.access.Grant(ctx, teacherID, subjectID)
	if err != nil {
		return 0, fmt.Errorf("grant access: %w", err)
	}

	if !created {
		return GrantAlreadyExists, nil
	}

	s.logger.Info("Subject access granted",
		zap.Int64("teacher_id", teacherID),
		zap.Int64("subject_id", subjectID))

	return GrantCreated, nil
}

// Revoke отзывает доступ
func (s *AccessService) Revoke(ctx context.Context, teacherID, subjectID int64) (RevokeResult, error) {
	deleted, err := s.access.Revoke(ctx, teacherID, subjectID)
	if err != nil {
		return 0, fmt.Errorf("revoke access: %w", err)
	}

	if !deleted {
		return RevokeMissing, nil
	}

	s.logger.Info("Subject access revoked",
		zap.Int64("teacher_id", teacherID),
		zap.Int64("subject_id", subjectID))

	return RevokeDone, nil
}

// HasAccess проверяет доступ учителя к предмету
func (s *AccessService) HasAccess(ctx context.Context, teacherID, subjectID int64) (bool, error) {
	return s.access.HasAccess(ctx, teacherID, subjectID)
}

// SubjectsOf возвращает предметы учителя
func (s *AccessService) SubjectsOf(ctx context.Context, teacherID int64) ([]*model.Subject, error) {
	return s.access.SubjectsOfTeacher(ctx, teacherID)
}

// SubjectsWithout возвращает предметы, к которым у учителя ещё нет доступа
func (s *AccessService) SubjectsWithout(ctx context.Context, teacherID int64) ([]*model.Subject, error) {
	all, err := s.subjects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	granted, err := s.access.SubjectsOfTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}

	has := make(map[int64]struct{}, len(granted))
	for _, subject := range granted {
		has[subject.ID] = struct{}{}
	}

	var result []*model.Subject
	for _, subject := range all {
		if _, ok := has[subject.ID]; !ok {
			result = append(result, subject)
		}
	}
	return result, nil
}

// TeachersOf возвращает учителей с доступом к предмету
func (s *AccessService) TeachersOf(ctx context.Context, subjectID int64) ([]*model.Teacher, error) {
	return s.access.TeachersOfSubject(ctx, subjectID)
}

// Overview собирает доступы всех учителей
func (s *AccessService) Overview(ctx context.Context) ([]model.TeacherAccess, error) {
	teachers, err := s.teachers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}

	overview := make([]model.TeacherAccess, 0, len(teachers))
	for _, teacher := range teachers {
		subjects, err := s.access.SubjectsOfTeacher(ctx, teacher.ID)
		if err != nil {
			return nil, fmt.Errorf("list teacher subjects: %w", err)
		}
		overview = append(overview, model.TeacherAccess{Teacher: teacher, Subjects: subjects})
	}
	return overview, nil
}

// SubjectOverview собирает учителей по каждому предмету
func (s *AccessService) SubjectOverview(ctx context.Context) ([]model.SubjectAccess, error) {
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	overview := make([]model.SubjectAccess, 0, len(subjects))
	for _, subject := range subjects {
		teachers, err := s.access.TeachersOfSubject(ctx, subject.ID)
		if err != nil {
			return nil, fmt.Errorf("list subject teachers: %w", err)
		}
		overview = append(overview, model.SubjectAccess{Subject: subject, Teachers: teachers})
	}
	return overview, nil
}
