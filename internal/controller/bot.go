package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_bot/internal/controller/handlers"
	"github.com/Freeeeeet/tutor_bot/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Recorder принимает метрики обработки сообщений
type Recorder interface {
	ObserveMessage(route string, duration time.Duration)
	SetSessions(count int)
}

type BotController struct {
	bot          *bot.Bot
	handlers     *handlers.Handlers
	stateManager *state.Manager
	metrics      Recorder
	logger       *zap.Logger
}

func NewBotController(
	token string,
	services handlers.Services,
	adminID int64,
	metrics Recorder,
	logger *zap.Logger,
) (*BotController, error) {
	c := &BotController{
		stateManager: state.NewManager(),
		metrics:      metrics,
		logger:       logger,
	}

	// Обновления обрабатываются по одному: сессии не делятся между горутинами
	botInstance, err := bot.New(token,
		bot.WithDefaultHandler(c.handleUpdate),
		bot.WithMiddlewares(c.loggingMiddleware, c.recoverMiddleware),
		bot.WithErrorsHandler(c.handleError),
		bot.WithNotAsyncHandlers(),
	)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	c.bot = botInstance

	c.handlers = handlers.NewHandlers(
		services,
		c.stateManager,
		&telegramSender{bot: botInstance},
		adminID,
		logger,
	)

	if adminID == 0 {
		logger.Warn("ADMIN_ID is not set, admin panel is disabled")
	}

	return c, nil
}

// handleUpdate передаёт текстовые сообщения диспетчеру; остальные обновления игнорируются
func (c *BotController) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}

	started := time.Now()
	route := c.handlers.Handle(ctx, handlers.Message{
		UserID:   update.Message.From.ID,
		ChatID:   update.Message.Chat.ID,
		Text:     update.Message.Text,
		Username: update.Message.From.Username,
	})

	c.metrics.ObserveMessage(route, time.Since(started))
	c.metrics.SetSessions(c.stateManager.Count())
}

// handleError логирует ошибки получения обновлений
func (c *BotController) handleError(err error) {
	c.logger.Error("Telegram polling error", zap.Error(err))
}

// RegisterCommands устанавливает меню команд
func (c *BotController) RegisterCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Главное меню"},
		{Command: "admin", Description: "🔧 Панель администратора"},
		{Command: "logout", Description: "🚪 Выйти"},
		{Command: "cancel", Description: "❌ Отменить текущее действие"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		return fmt.Errorf("set bot commands: %w", err)
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает long polling и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}
