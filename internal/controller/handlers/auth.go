package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_bot/internal/controller/state"
	"github.com/Freeeeeet/tutor_bot/internal/service"
	"go.uber.org/zap"
)

// handleStart сбрасывает сессию и показывает главное меню
func (h *Handlers) handleStart(ctx context.Context, msg Message, _ state.Session) {
	h.stateManager.Clear(msg.UserID)
	h.stateManager.Touch(msg.UserID, msg.ChatID)

	h.send(ctx, msg.ChatID, msgWelcome, mainMenuKeyboard())
}

// handleLogout завершает сессию преподавателя
func (h *Handlers) handleLogout(ctx context.Context, msg Message, s state.Session) {
	h.stateManager.Clear(msg.UserID)
	h.stateManager.Touch(msg.UserID, msg.ChatID)

	if s.Authenticated {
		h.logger.Info("Teacher logged out",
			zap.Int64("telegram_id", msg.UserID),
			zap.Int64("teacher_id", s.TeacherID))
	}

	h.send(ctx, msg.ChatID, msgLoggedOut, mainMenuKeyboard())
}

// handleTeacherLogin начинает вход преподавателя
func (h *Handlers) handleTeacherLogin(ctx context.Context, msg Message, _ state.Session) {
	h.stateManager.Clear(msg.UserID)
	h.stateManager.Touch(msg.UserID, msg.ChatID)
	h.stateManager.SetState(msg.UserID, state.StateAwaitingUsername)

	h.send(ctx, msg.ChatID, "Введите имя пользователя:", cancelKeyboard())
}

// handleStudentLogin входит как ученик; данные прошлой роли удаляются
func (h *Handlers) handleStudentLogin(ctx context.Context, msg Message, _ state.Session) {
	h.stateManager.Clear(msg.UserID)
	h.stateManager.Touch(msg.UserID, msg.ChatID)
	h.stateManager.SetState(msg.UserID, state.StateStudentBrowsing)

	h.showSubjects(ctx, msg, 0)
}

func (h *Handlers) handleUsername(ctx context.Context, msg Message, _ state.Session) {
	username := strings.TrimSpace(msg.Text)
	if username == "" {
		h.send(ctx, msg.ChatID, "Введите имя пользователя:", cancelKeyboard())
		return
	}

	h.stateManager.Put(msg.UserID, state.KeyUsername, username)
	h.stateManager.SetState(msg.UserID, state.StateAwaitingPassword)

	h.send(ctx, msg.ChatID, "Введите пароль:", cancelKeyboard())
}

func (h *Handlers) handlePassword(ctx context.Context, msg Message, _ state.Session) {
	value, ok := h.stateManager.Take(msg.UserID, state.KeyUsername)
	username, _ := value.(string)
	if !ok || username == "" {
		h.stateManager.SetState(msg.UserID, state.StateAwaitingUsername)
		h.send(ctx, msg.ChatID, "Введите имя пользователя:", cancelKeyboard())
		return
	}

	teacher, err := h.authService.Login(ctx, username, msg.Text)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.logger.Warn("Failed login attempt",
			zap.Int64("telegram_id", msg.UserID),
			zap.String("username", username))
		h.stateManager.SetState(msg.UserID, state.StateAwaitingUsername)
		h.send(ctx, msg.ChatID, "Неверное имя пользователя или пароль. Попробуйте снова.", nil)
		h.send(ctx, msg.ChatID, "Введите имя пользователя:", cancelKeyboard())
		return
	}
	if err != nil {
		h.stateManager.SetState(msg.UserID, state.StateAwaitingUsername)
		h.sendInternalError(ctx, msg, "Failed to login", err)
		return
	}

	h.stateManager.Authenticate(msg.UserID, msg.ChatID, teacher.ID)
	h.stateManager.Reset(msg.UserID, state.StateTeacherBrowsing)

	h.logger.Info("Teacher logged in",
		zap.Int64("telegram_id", msg.UserID),
		zap.Int64("teacher_id", teacher.ID))

	h.send(ctx, msg.ChatID, fmt.Sprintf("👋 Здравствуйте, %s!", teacher.Username), nil)
	h.showSubjects(ctx, msg, 0)
}

// handleCancel прерывает текущий шаг: администратор возвращается в панель,
// пользователь в режиме просмотра - к текущему списку
func (h *Handlers) handleCancel(ctx context.Context, msg Message, s state.Session) {
	if s.State.IsAdmin() && h.isAdmin(msg.UserID) {
		h.stateManager.Reset(msg.UserID, state.StateAdminMenu)
		h.showAdminMenu(ctx, msg)
		return
	}

	if s.Authenticated || s.State == state.StateStudentBrowsing {
		h.stateManager.Reset(msg.UserID, browsingState(s), state.KeySubjectID)
		if subjectID, ok := s.Scratch[state.KeySubjectID].(int64); ok {
			h.showLessons(ctx, msg, subjectID, s.LessonsPage)
			return
		}
		h.showSubjects(ctx, msg, s.SubjectsPage)
		return
	}

	h.stateManager.Clear(msg.UserID)
	h.stateManager.Touch(msg.UserID, msg.ChatID)
	h.send(ctx, msg.ChatID, "Действие отменено. "+msgWelcome, mainMenuKeyboard())
}
