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

// handleAddCardStart начинает добавление карточек в выбранный урок,
// а если урок не выбран - предлагает выбрать один из уроков автора
func (h *Handlers) handleAddCardStart(ctx context.Context, msg Message, s state.Session) {
	if lessonID, ok := s.Scratch[state.KeyLessonID].(int64); ok {
		lesson, err := h.lessonService.Authored(ctx, s.TeacherID, lessonID)
		if h.lessonFailed(ctx, msg, s, err) {
			return
		}

		h.stateManager.Reset(msg.UserID, state.StateAwaitingCardQuestion, state.KeySubjectID, state.KeyLessonID)
		h.send(ctx, msg.ChatID,
			fmt.Sprintf("Введите вопрос и ответ для карточки по уроку '%s':\n\n%s", lesson.Title, msgCardPrompt),
			cancelKeyboard())
		return
	}

	h.stateManager.Reset(msg.UserID, state.StateAwaitingCardLessonChoice)
	h.cardLessonChoice(ctx, msg, s.TeacherID, 0)
}

func (h *Handlers) cardLessonChoice(ctx context.Context, msg Message, teacherID int64, page int) {
	lessons, err := h.lessonService.ListByTeacher(ctx, teacherID)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to list lessons", err)
		return
	}
	if len(lessons) == 0 {
		h.stateManager.Reset(msg.UserID, state.StateTeacherBrowsing)
		h.send(ctx, msg.ChatID, "У вас пока нет уроков. Сначала создайте урок.", nil)
		h.showSubjects(ctx, msg, 0)
		return
	}

	h.renderChoice(ctx, msg, state.ListChoiceLessons, state.KeyLessonsList,
		lessonRefs(lessons), page, "Выберите урок для добавления карточки:", BtnCancel)
}

func (h *Handlers) handleCardLessonChoice(ctx context.Context, msg Message, s state.Session) {
	if isPageControl(msg.Text) {
		h.cardLessonChoice(ctx, msg, s.TeacherID, shiftPage(s.LessonsPage, msg.Text))
		return
	}

	if !strings.HasPrefix(msg.Text, PrefixLesson) {
		h.send(ctx, msg.ChatID, msgChooseLesson, nil)
		return
	}

	refs, _ := s.Scratch[state.KeyLessonsList].([]state.Ref)
	ref, ok := state.FindRef(refs, msg.Text)
	if !ok {
		h.send(ctx, msg.ChatID, msgStaleLesson, nil)
		h.cardLessonChoice(ctx, msg, s.TeacherID, s.LessonsPage)
		return
	}

	lesson, err := h.lessonService.Authored(ctx, s.TeacherID, ref.ID)
	if errors.Is(err, service.ErrLessonNotFound) {
		h.send(ctx, msg.ChatID, msgLessonGone, nil)
		h.cardLessonChoice(ctx, msg, s.TeacherID, s.LessonsPage)
		return
	}
	if h.lessonFailed(ctx, msg, s, err) {
		return
	}

	h.stateManager.Put(msg.UserID, state.KeySubjectID, lesson.SubjectID)
	h.stateManager.Put(msg.UserID, state.KeyLessonID, lesson.ID)
	h.stateManager.SetState(msg.UserID, state.StateAwaitingCardQuestion)
	h.send(ctx, msg.ChatID,
		fmt.Sprintf("Введите вопрос для карточки урока '%s':\n\n%s", lesson.Title, msgCardPrompt),
		cancelKeyboard())
}

// handleCardQuestion принимает вопрос или сразу пакет карточек
func (h *Handlers) handleCardQuestion(ctx context.Context, msg Message, s state.Session) {
	lessonID, ok := s.Scratch[state.KeyLessonID].(int64)
	if !ok {
		h.stateManager.Reset(msg.UserID, state.StateTeacherBrowsing)
		h.send(ctx, msg.ChatID, msgSelectLesson, nil)
		h.showSubjects(ctx, msg, s.SubjectsPage)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if service.IsBatch(text) {
		added, err := h.cardService.AddBatch(ctx, s.TeacherID, lessonID, text)
		if errors.Is(err, service.ErrBadCardFormat) {
			h.logger.Warn("Card batch without cards",
				zap.Int64("telegram_id", msg.UserID),
				zap.Int64("lesson_id", lessonID))
			h.send(ctx, msg.ChatID, "Не удалось добавить ни одной карточки. Проверьте формат.\n\n"+msgCardPrompt, cancelKeyboard())
			return
		}
		if h.lessonFailed(ctx, msg, s, err) {
			return
		}

		h.stateManager.Reset(msg.UserID, state.StateTeacherBrowsing, state.KeySubjectID, state.KeyLessonID)
		h.send(ctx, msg.ChatID, fmt.Sprintf("Добавлено карточек: %d!", added), nil)
		h.showCards(ctx, msg, pageLast)
		return
	}

	if text == "" {
		h.send(ctx, msg.ChatID, "Вопрос не может быть пустым. Введите вопрос:", cancelKeyboard())
		return
	}

	h.stateManager.Put(msg.UserID, state.KeyCardQuestion, text)
	h.stateManager.SetState(msg.UserID, state.StateAwaitingCardAnswer)
	h.send(ctx, msg.ChatID, "Введите ответ для карточки:", cancelKeyboard())
}

func (h *Handlers) handleCardAnswer(ctx context.Context, msg Message, s state.Session) {
	lessonID, hasLesson := s.Scratch[state.KeyLessonID].(int64)
	value, _ := h.stateManager.Take(msg.UserID, state.KeyCardQuestion)
	question, hasQuestion := value.(string)

	h.stateManager.Reset(msg.UserID, state.StateTeacherBrowsing, state.KeySubjectID, state.KeyLessonID)

	if !hasLesson || !hasQuestion {
		h.send(ctx, msg.ChatID, "Ошибка: вопрос не найден. Начните заново.", nil)
		h.showCards(ctx, msg, s.CardsPage)
		return
	}

	_, err := h.cardService.Add(ctx, s.TeacherID, lessonID, question, msg.Text)
	if h.lessonFailed(ctx, msg, s, err) {
		return
	}

	h.send(ctx, msg.ChatID, "Карточка успешно добавлена!", nil)
	h.showCards(ctx, msg, pageLast)
}

// handleEditCardStart обрабатывает "✏️ Редактировать N": N - номер карточки
// в полном списке урока
func (h *Handlers) handleEditCardStart(ctx context.Context, msg Message, s state.Session) {
	lessonID, ok := s.Scratch[state.KeyLessonID].(int64)
	if !ok {
		h.send(ctx, msg.ChatID, msgSelectLesson, nil)
		return
	}

	index, ok := cardIndex(msg.Text, PrefixEditCard)
	if !ok {
		h.send(ctx, msg.ChatID, msgBadCardNumber, nil)
		return
	}

	if _, err := h.lessonService.Authored(ctx, s.TeacherID, lessonID); h.lessonFailed(ctx, msg, s, err) {
		return
	}

	card, err := h.cardService.At(ctx, lessonID, index)
	if errors.Is(err, service.ErrCardIndex) {
		h.send(ctx, msg.ChatID, msgBadCardNumber, nil)
		return
	}
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to get card", err)
		return
	}

	h.stateManager.Reset(msg.UserID, state.StateAwaitingCardEdit, state.KeySubjectID, state.KeyLessonID)
	h.stateManager.Put(msg.UserID, state.KeyEditCardID, card.ID)
	h.send(ctx, msg.ChatID,
		fmt.Sprintf("Введите новый вопрос и ответ для карточки %d (формат: Вопрос%%Ответ):\nТекущее значение:\n%s - %s",
			index, card.Question, card.Answer),
		cancelKeyboard())
}

func (h *Handlers) handleCardEdit(ctx context.Context, msg Message, s state.Session) {
	cardID, ok := s.Scratch[state.KeyEditCardID].(int64)
	if !ok {
		h.stateManager.Reset(msg.UserID, state.StateTeacherBrowsing, state.KeySubjectID, state.KeyLessonID)
		h.send(ctx, msg.ChatID, "Ошибка: карточка не выбрана.", nil)
		h.showCards(ctx, msg, s.CardsPage)
		return
	}

	_, err := h.cardService.Edit(ctx, s.TeacherID, cardID, msg.Text)
	switch {
	case errors.Is(err, service.ErrBadCardFormat):
		h.send(ctx, msg.ChatID, "Неверный формат. Введите в формате: Вопрос%Ответ", cancelKeyboard())
		return
	case errors.Is(err, service.ErrCardNotFound):
		h.stateManager.Reset(msg.UserID, state.StateTeacherBrowsing, state.KeySubjectID, state.KeyLessonID)
		h.send(ctx, msg.ChatID, "Ошибка: карточка не найдена.", nil)
		h.showCards(ctx, msg, s.CardsPage)
		return
	}
	if h.lessonFailed(ctx, msg, s, err) {
		return
	}

	h.stateManager.Reset(msg.UserID, state.StateTeacherBrowsing, state.KeySubjectID, state.KeyLessonID)
	h.send(ctx, msg.ChatID, "Карточка успешно отредактирована!", nil)
	h.showCards(ctx, msg, s.CardsPage)
}

// handleDeleteCard обрабатывает "🗑️ Удалить N"; номер сквозной, поэтому
// страница, на которой нажата кнопка, не важна
func (h *Handlers) handleDeleteCard(ctx context.Context, msg Message, s state.Session) {
	lessonID, ok := s.Scratch[state.KeyLessonID].(int64)
	if !ok {
		h.send(ctx, msg.ChatID, msgSelectLesson, nil)
		return
	}

	index, ok := cardIndex(msg.Text, PrefixDeleteCard)
	if !ok {
		h.send(ctx, msg.ChatID, msgBadCardNumber, nil)
		return
	}

	_, err := h.cardService.DeleteAt(ctx, s.TeacherID, lessonID, index)
	if errors.Is(err, service.ErrCardIndex) || errors.Is(err, service.ErrCardNotFound) {
		h.send(ctx, msg.ChatID, msgBadCardNumber, nil)
		return
	}
	if h.lessonFailed(ctx, msg, s, err) {
		return
	}

	h.logger.Info("Card deleted by index",
		zap.Int64("telegram_id", msg.UserID),
		zap.Int64("lesson_id", lessonID),
		zap.Int("index", index))

	h.send(ctx, msg.ChatID, "Карточка успешно удалена!", nil)
	h.showCards(ctx, msg, s.CardsPage)
}
