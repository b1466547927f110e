package controller

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// telegramSender отправляет ответы диспетчера через Bot API
type telegramSender struct {
	bot *bot.Bot
}

func (s *telegramSender) Send(ctx context.Context, chatID int64, text string, kb models.ReplyMarkup) error {
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: kb,
	})
	return err
}
