package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_bot/internal/model"
	"github.com/Freeeeeet/tutor_bot/internal/repository/base"
)

type AccessRepository struct {
	db base.DB
}

func NewAccessRepository(db base.DB) *AccessRepository {
	return &AccessRepository{db: db}
}

// HasAccess проверяет, есть ли у учителя доступ к предмету
func (r *AccessRepository) HasAccess(ctx context.Context, teacherID, subjectID int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM teacher_subjects
			WHERE teacher_id = $1 AND subject_id = $2
		)
	`

	var exists bool
	err := r.db.QueryRow(ctx, query, teacherID, subjectID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check access: %w", err)
	}

	return exists, nil
}

// Grant предоставляет доступ учителю к предмету.
// Возвращает false, если доступ уже был.
func (r *AccessRepository) Grant(ctx context.Context, teacherID, subjectID int64) (bool, error) {
	query := `
		INSERT INTO teacher_subjects (teacher_id, subject_id)
		VALUES ($1, $2)
		ON CONFLICT (teacher_id, subject_id) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, teacherID, subjectID)
	if err != nil {
		return false, fmt.Errorf("grant access: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Revoke отзывает доступ учителя к предмету.
// Возвращает false, если доступа не было.
func (r *AccessRepository) Revoke(ctx context.Context, teacherID, subjectID int64) (bool, error) {
	query := `
		DELETE FROM teacher_subjects
		WHERE teacher_id = $1 AND subject_id = $2
	`

	tag, err := r.db.Exec(ctx, query, teacherID, subjectID)
	if err != nil {
		return false, fmt.Errorf("revoke access: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// SubjectsOfTeacher получает предметы, к которым у учителя есть доступ
func (r *AccessRepository) SubjectsOfTeacher(ctx context.Context, teacherID int64) ([]*model.Subject, error) {
	query := `
		SELECT s.id, s.name, s.description, s.created_at
		FROM subjects s
		JOIN teacher_subjects ts ON ts.subject_id = s.id
		WHERE ts.teacher_id = $1
		ORDER BY s.name
	`

	rows, err := r.db.Query(ctx, query, teacherID)
	if err != nil {
		return nil, fmt.Errorf("get teacher subjects: %w", err)
	}
	defer rows.Close()

	return collectSubjects(rows)
}

// TeachersOfSubject получает учителей с доступом к предмету
func (r *AccessRepository) TeachersOfSubject(ctx context.Context, subjectID int64) ([]*model.Teacher, error) {
	query := `
		SELECT t.id, t.username, t.password_hash, t.created_at
		FROM teachers t
		JOIN teacher_subjects ts ON ts.teacher_id = t.id
		WHERE ts.subject_id = $1
		ORDER BY t.username
	`

	rows, err := r.db.Query(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("get subject teachers: %w", err)
	}
	defer rows.Close()

	var teachers []*model.Teacher
	for rows.Next() {
		var teacher model.Teacher
		if err := rows.Scan(&teacher.ID, &teacher.Username, &teacher.PasswordHash, &teacher.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan teacher: %w", err)
		}
		teachers = append(teachers, &teacher)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teachers: %w", err)
	}

	return teachers, nil
}
