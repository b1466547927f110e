package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Supervisor перезапускает задачу, если она упала или завершилась раньше
// отмены контекста
type Supervisor struct {
	name   string
	delay  time.Duration
	logger *zap.Logger
}

// NewSupervisor создаёт супервизор с паузой delay между перезапусками
func NewSupervisor(name string, delay time.Duration, logger *zap.Logger) *Supervisor {
	return &Supervisor{
		name:   name,
		delay:  delay,
		logger: logger,
	}
}

// Run выполняет run до отмены ctx
func (s *Supervisor) Run(ctx context.Context, run func(ctx context.Context) error) error {
	for {
		err := s.runOnce(ctx, run)
		if ctx.Err() != nil {
			s.logger.Info("Task stopped", zap.String("task", s.name))
			return nil
		}

		s.logger.Error("Task exited, restarting",
			zap.String("task", s.name),
			zap.Duration("delay", s.delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			s.logger.Info("Task stopped", zap.String("task", s.name))
			return nil
		case <-time.After(s.delay):
		}
	}
}

func (s *Supervisor) runOnce(ctx context.Context, run func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	if err := run(ctx); err != nil {
		return err
	}
	return fmt.Errorf("%s returned before shutdown", s.name)
}
