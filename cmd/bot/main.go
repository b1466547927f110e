package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/tutor_bot/internal/app"
	"github.com/Freeeeeet/tutor_bot/internal/config"
	"github.com/Freeeeeet/tutor_bot/internal/controller"
	"github.com/Freeeeeet/tutor_bot/internal/controller/handlers"
	"github.com/Freeeeeet/tutor_bot/internal/repository"
	"github.com/Freeeeeet/tutor_bot/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting tutor bot",
		zap.String("environment", cfg.Environment),
		zap.Bool("admin_enabled", cfg.AdminID != 0))

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	logger.Info("✅ Connected to database")

	migrator, err := app.NewMigrator(pool, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		migrator.Close()
		return err
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Failed to close migrator", zap.Error(err))
	}

	// Репозитории
	teacherRepo := repository.NewTeacherRepository(pool)
	subjectRepo := repository.NewSubjectRepository(pool, logger)
	lessonRepo := repository.NewLessonRepository(pool)
	cardRepo := repository.NewCardRepository(pool)
	accessRepo := repository.NewAccessRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)

	// Сервисы
	lessonService := service.NewLessonService(lessonRepo, subjectRepo, accessRepo, logger)
	services := handlers.Services{
		Auth:     service.NewAuthService(teacherRepo, logger),
		Subjects: service.NewSubjectService(subjectRepo, accessRepo, logger),
		Lessons:  lessonService,
		Cards:    service.NewCardService(cardRepo, lessonService, logger),
		Access:   service.NewAccessService(accessRepo, teacherRepo, subjectRepo, logger),
		Stats:    service.NewStatsService(statsRepo),
	}

	metrics := app.NewMetrics()

	botController, err := controller.NewBotController(cfg.TelegramToken, services, cfg.AdminID, metrics, logger)
	if err != nil {
		return err
	}

	if err := botController.RegisterCommands(ctx); err != nil {
		logger.Warn("Failed to set bot commands", zap.Error(err))
	}

	g, ctx := errgroup.WithContext(ctx)

	supervisor := app.NewSupervisor("telegram polling", cfg.RestartDelay, logger)
	g.Go(func() error {
		return supervisor.Run(ctx, func(ctx context.Context) error {
			botController.Start(ctx)
			return nil
		})
	})

	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(ctx, cfg.MetricsAddr, logger)
		})
	}

	err = g.Wait()
	logger.Info("Bot stopped")
	return err
}
