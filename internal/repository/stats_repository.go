package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_bot/internal/model"
	"github.com/Freeeeeet/tutor_bot/internal/repository/base"
)

type StatsRepository struct {
	*base.Repository
}

func NewStatsRepository(db base.DB) *StatsRepository {
	return &StatsRepository{Repository: base.NewRepository(db)}
}

// Counts считает учителей, предметы, уроки и карточки одним запросом
func (r *StatsRepository) Counts(ctx context.Context) (*model.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM teachers),
			(SELECT COUNT(*) FROM subjects),
			(SELECT COUNT(*) FROM lessons),
			(SELECT COUNT(*) FROM cards)
	`

	var stats model.Stats
	err := r.DB().QueryRow(ctx, query).Scan(
		&stats.Teachers,
		&stats.Subjects,
		&stats.Lessons,
		&stats.Cards,
	)
	if err != nil {
		return nil, fmt.Errorf("count stats: %w", err)
	}

	return &stats, nil
}
