package service

import (
	"context"

	"github.com/Freeeeeet/tutor_bot/internal/model"
)

// Интерфейсы хранилищ, которые используют сервисы.
// Реализуются pgx-репозиториями и in-memory хранилищем из servicetest.

type TeacherStore interface {
	Create(ctx context.Context, teacher *model.Teacher) error
	GetByID(ctx context.Context, id int64) (*model.Teacher, error)
	GetByUsername(ctx context.Context, username string) (*model.Teacher, error)
	List(ctx context.Context) ([]*model.Teacher, error)
}

type SubjectStore interface {
	Create(ctx context.Context, subject *model.Subject) error
	GetByID(ctx context.Context, id int64) (*model.Subject, error)
	GetByName(ctx context.Context, name string) (*model.Subject, error)
	List(ctx context.Context) ([]*model.Subject, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type LessonStore interface {
	Create(ctx context.Context, lesson *model.Lesson) error
	GetByID(ctx context.Context, id int64) (*model.Lesson, error)
	ListBySubject(ctx context.Context, subjectID int64) ([]*model.Lesson, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]*model.Lesson, error)
	UpdateTitle(ctx context.Context, id int64, title string) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type CardStore interface {
	Create(ctx context.Context, card *model.Card) error
	GetByID(ctx context.Context, id int64) (*model.Card, error)
	ListByLesson(ctx context.Context, lessonID int64) ([]*model.Card, error)
	Update(ctx context.Context, card *model.Card) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type AccessStore interface {
	HasAccess(ctx context.Context, teacherID, subjectID int64) (bool, error)
	Grant(ctx context.Context, teacherID, subjectID int64) (bool, error)
	Revoke(ctx context.Context, teacherID, subjectID int64) (bool, error)
	SubjectsOfTeacher(ctx context.Context, teacherID int64) ([]*model.Subject, error)
	TeachersOfSubject(ctx context.Context, subjectID int64) ([]*model.Teacher, error)
}

type StatsStore interface {
	Counts(ctx context.Context) (*model.Stats, error)
}
