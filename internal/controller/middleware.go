package controller

import (
	"context"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type traceIDKey struct{}

// TraceID возвращает идентификатор обработки обновления
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// recoverMiddleware не даёт панике в обработчике остановить бота
func (c *BotController) recoverMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("Panic in update handler",
					zap.String("trace_id", TraceID(ctx)),
					zap.Int64("update_id", update.ID),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
			}
		}()
		next(ctx, b, update)
	}
}

// loggingMiddleware назначает обновлению trace_id и логирует его получение
func (c *BotController) loggingMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		traceID := uuid.NewString()
		ctx = context.WithValue(ctx, traceIDKey{}, traceID)

		if update.Message != nil && update.Message.From != nil {
			c.logger.Debug("Update received",
				zap.String("trace_id", traceID),
				zap.Int64("update_id", update.ID),
				zap.Int64("telegram_id", update.Message.From.ID),
				zap.Int64("chat_id", update.Message.Chat.ID))
		}

		next(ctx, b, update)
	}
}
