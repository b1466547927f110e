package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_bot/internal/model"
	"github.com/Freeeeeet/tutor_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type LessonRepository struct {
	db base.DB
}

func NewLessonRepository(db base.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

const lessonColumns = `id, title, content, teacher_id, subject_id, created_at`

func scanLesson(row pgx.Row) (*model.Lesson, error) {
	var lesson model.Lesson
	err := row.Scan(
		&lesson.ID,
		&lesson.Title,
		&lesson.Content,
		&lesson.TeacherID,
		&lesson.SubjectID,
		&lesson.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Create создаёт урок
func (r *LessonRepository) Create(ctx context.Context, lesson *model.Lesson) error {
	query := `
		INSERT INTO lessons (title, content, teacher_id, subject_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, lesson.Title, lesson.Content, lesson.TeacherID, lesson.SubjectID).
		Scan(&lesson.ID, &lesson.CreatedAt)
	if err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}

	return nil
}

// GetByID получает урок по ID
func (r *LessonRepository) GetByID(ctx context.Context, id int64) (*model.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`

	lesson, err := scanLesson(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lesson by id: %w", err)
	}

	return lesson, nil
}

// ListBySubject получает уроки предмета
func (r *LessonRepository) ListBySubject(ctx context.Context, subjectID int64) ([]*model.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE subject_id = $1 ORDER BY id`
	return r.list(ctx, query, subjectID)
}

// ListByTeacher получает уроки, созданные учителем
func (r *LessonRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]*model.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE teacher_id = $1 ORDER BY id`
	return r.list(ctx, query, teacherID)
}

func (r *LessonRepository) list(ctx context.Context, query string, arg int64) ([]*model.Lesson, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	var lessons []*model.Lesson
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		lessons = append(lessons, lesson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}

	return lessons, nil
}

// UpdateTitle переименовывает урок
func (r *LessonRepository) UpdateTitle(ctx context.Context, id int64, title string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE lessons SET title = $2 WHERE id = $1`, id, title)
	if err != nil {
		return false, fmt.Errorf("update lesson title: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete удаляет урок вместе с карточками
func (r *LessonRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete lesson: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
