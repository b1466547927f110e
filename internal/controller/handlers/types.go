package handlers

import (
	"context"

	"github.com/Freeeeeet/tutor_bot/internal/controller/state"
	"github.com/Freeeeeet/tutor_bot/internal/service"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Message - входящее текстовое сообщение
type Message struct {
	UserID   int64
	ChatID   int64
	Text     string
	Username string
}

// Sender отправляет ответ в чат. kb может быть nil.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string, kb models.ReplyMarkup) error
}

// Services - доменные сервисы, с которыми работают обработчики
type Services struct {
	Auth     *service.AuthService
	Subjects *service.SubjectService
	Lessons  *service.LessonService
	Cards    *service.CardService
	Access   *service.AccessService
	Stats    *service.StatsService
}

// Handlers содержит все зависимости для обработки сообщений
type Handlers struct {
	authService    *service.AuthService
	subjectService *service.SubjectService
	lessonService  *service.LessonService
	cardService    *service.CardService
	accessService  *service.AccessService
	statsService   *service.StatsService
	stateManager   *state.Manager
	sender         Sender
	adminID        int64
	logger         *zap.Logger

	globals  map[string]handlerFunc
	states   map[state.UserState]stateRoute
	entities []entityRoute
	statics  map[string]staticRoute
}

// NewHandlers создаёт новый обработчик сообщений. adminID = 0 отключает панель администратора.
func NewHandlers(
	services Services,
	stateManager *state.Manager,
	sender Sender,
	adminID int64,
	logger *zap.Logger,
) *Handlers {
	h := &Handlers{
		authService:    services.Auth,
		subjectService: services.Subjects,
		lessonService:  services.Lessons,
		cardService:    services.Cards,
		accessService:  services.Access,
		statsService:   services.Stats,
		stateManager:   stateManager,
		sender:         sender,
		adminID:        adminID,
		logger:         logger,
	}
	h.registerRoutes()
	return h
}
