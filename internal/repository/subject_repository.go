package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_bot/internal/model"
	"github.com/Freeeeeet/tutor_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type SubjectRepository struct {
	db     base.DB
	logger *zap.Logger
}

func NewSubjectRepository(db base.DB, logger *zap.Logger) *SubjectRepository {
	return &SubjectRepository{
		db:     db,
		logger: logger,
	}
}

const subjectColumns = `id, name, description, created_at`

func scanSubject(row pgx.Row) (*model.Subject, error) {
	var subject model.Subject
	err := row.Scan(
		&subject.ID,
		&subject.Name,
		&subject.Description,
		&subject.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

// Create создаёт новый предмет
func (r *SubjectRepository) Create(ctx context.Context, subject *model.Subject) error {
	query := `
		INSERT INTO subjects (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, subject.Name, subject.Description).
		Scan(&subject.ID, &subject.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert subject into DB",
			zap.String("name", subject.Name),
			zap.Error(err))
		return fmt.Errorf("create subject: %w", err)
	}

	r.logger.Info("Subject inserted successfully",
		zap.Int64("subject_id", subject.ID),
		zap.String("name", subject.Name))

	return nil
}

// GetByID получает предмет по ID
func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*model.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE id = $1`

	subject, err := scanSubject(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subject by id: %w", err)
	}

	return subject, nil
}

// GetByName ищет предмет по названию без учёта регистра
func (r *SubjectRepository) GetByName(ctx context.Context, name string) (*model.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE lower(name) = lower($1)`

	subject, err := scanSubject(r.db.QueryRow(ctx, query, strings.TrimSpace(name)))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subject by name: %w", err)
	}

	return subject, nil
}

// List получает все предметы
func (r *SubjectRepository) List(ctx context.Context) ([]*model.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	return collectSubjects(rows)
}

// Delete удаляет предмет; уроки и карточки удаляются каскадно
func (r *SubjectRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete subject: %w", err)
	}

	r.logger.Info("Subject deleted",
		zap.Int64("subject_id", id),
		zap.Int64("rows", tag.RowsAffected()))

	return tag.RowsAffected() > 0, nil
}

func collectSubjects(rows pgx.Rows) ([]*model.Subject, error) {
	var subjects []*model.Subject
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects = append(subjects, subject)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subjects: %w", err)
	}

	return subjects, nil
}
