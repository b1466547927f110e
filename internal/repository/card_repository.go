package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_bot/internal/model"
	"github.com/Freeeeeet/tutor_bot/internal/repository/base"
)

type CardRepository struct {
	*base.Repository
	db base.DB
}

func NewCardRepository(db base.DB) *CardRepository {
	return &CardRepository{
		Repository: base.NewRepository(db),
		db:         db,
	}
}

// Create добавляет карточку к уроку
func (r *CardRepository) Create(ctx context.Context, card *model.Card) error {
	query := `
		INSERT INTO cards (question, answer, lesson_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, card.Question, card.Answer, card.LessonID).
		Scan(&card.ID, &card.CreatedAt)
	if err != nil {
		return fmt.Errorf("create card: %w", err)
	}

	return nil
}

// GetByID получает карточку по ID
func (r *CardRepository) GetByID(ctx context.Context, id int64) (*model.Card, error) {
	query := `
		SELECT id, question, answer, lesson_id, created_at
		FROM cards
		WHERE id = $1
	`

	var card model.Card
	err := r.db.QueryRow(ctx, query, id).Scan(
		&card.ID,
		&card.Question,
		&card.Answer,
		&card.LessonID,
		&card.CreatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get card by id: %w", err)
	}

	return &card, nil
}

// ListByLesson получает карточки урока.
// Порядок по id задаёт сквозную нумерацию карточек в интерфейсе.
func (r *CardRepository) ListByLesson(ctx context.Context, lessonID int64) ([]*model.Card, error) {
	query := `
		SELECT id, question, answer, lesson_id, created_at
		FROM cards
		WHERE lesson_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []*model.Card
	for rows.Next() {
		var card model.Card
		if err := rows.Scan(&card.ID, &card.Question, &card.Answer, &card.LessonID, &card.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, &card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}

	return cards, nil
}

// Update меняет вопрос и ответ карточки
func (r *CardRepository) Update(ctx context.Context, card *model.Card) (bool, error) {
	query := `UPDATE cards SET question = $2, answer = $3 WHERE id = $1`

	affected, err := r.ExecAffected(ctx, query, card.ID, card.Question, card.Answer)
	if err != nil {
		return false, fmt.Errorf("update card: %w", err)
	}
	return affected > 0, nil
}

// Delete удаляет карточку
func (r *CardRepository) Delete(ctx context.Context, id int64) (bool, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete card: %w", err)
	}
	return affected > 0, nil
}
