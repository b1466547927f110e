package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_bot/internal/model"
)

type StatsService struct {
	stats StatsStore
}

func NewStatsService(stats StatsStore) *StatsService {
	return &StatsService{stats: stats}
}

// Counts возвращает счётчики сущностей
func (s *StatsService) Counts(ctx context.Context) (*model.Stats, error) {
	stats, err := s.stats.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return stats, nil
}
