package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_bot/internal/model"
	"github.com/Freeeeeet/tutor_bot/internal/repository/base"
)

type TeacherRepository struct {
	db base.DB
}

func NewTeacherRepository(db base.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// Create создаёт нового учителя
func (r *TeacherRepository) Create(ctx context.Context, teacher *model.Teacher) error {
	query := `
		INSERT INTO teachers (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, teacher.Username, teacher.PasswordHash).
		Scan(&teacher.ID, &teacher.CreatedAt)
	if err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}

	return nil
}

// GetByID получает учителя по ID
func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*model.Teacher, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM teachers
		WHERE id = $1
	`

	var teacher model.Teacher
	err := r.db.QueryRow(ctx, query, id).Scan(
		&teacher.ID,
		&teacher.Username,
		&teacher.PasswordHash,
		&teacher.CreatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get teacher by id: %w", err)
	}

	return &teacher, nil
}

// GetByUsername получает учителя по имени пользователя
func (r *TeacherRepository) GetByUsername(ctx context.Context, username string) (*model.Teacher, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM teachers
		WHERE username = $1
	`

	var teacher model.Teacher
	err := r.db.QueryRow(ctx, query, username).Scan(
		&teacher.ID,
		&teacher.Username,
		&teacher.PasswordHash,
		&teacher.CreatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil // Учитель не найден
		}
		return nil, fmt.Errorf("get teacher by username: %w", err)
	}

	return &teacher, nil
}

// List получает всех учителей
func (r *TeacherRepository) List(ctx context.Context) ([]*model.Teacher, error) {
	query := `
		SELECT id, username, password_hash, created_at
		FROM teachers
		ORDER BY username
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
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
