package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/tutor_bot/internal/controller/state"
	"github.com/Freeeeeet/tutor_bot/internal/service"
	"go.uber.org/zap"
)

// lessonFailed обрабатывает ошибки работы с уроком и возвращает true,
// если ответ пользователю уже отправлен
func (h *Handlers) lessonFailed(ctx context.Context, msg Message, s state.Session, err error) bool {
	if err == nil {
		return false
	}

	h.stateManager.Reset(msg.UserID, state.StateTeacherBrowsing,
		state.KeySubjectID, state.KeyLessonID, state.KeySubjectsList, state.KeyLessonsList)

	switch {
	case errors.Is(err, service.ErrLessonNotFound):
		h.stateManager.Delete(msg.UserID, state.KeyLessonID)
		h.send(ctx, msg.ChatID, msgLessonGone, nil)
		h.backToLessons(ctx, msg, s)
	case errors.Is(err, service.ErrNotLessonAuthor):
		h.logger.Warn("Lesson change by non-author",
			zap.Int64("telegram_id", msg.UserID),
			zap.Int64("teacher_id", s.TeacherID))
		h.send(ctx, msg.ChatID, msgNotAuthor, nil)
	default:
		h.sendInternalError(ctx, msg, "Lesson operation failed", err)
	}
	return true
}

// handleAddLessonStart начинает создание урока. Ничего не создаётся,
// пока не введено название.
func (h *Handlers) handleAddLessonStart(ctx context.Context, msg Message, s state.Session) {
	if subjectID, ok := s.Scratch[state.KeySubjectID].(int64); ok {
		subject, err := h.subjectService.Get(ctx, subjectID)
		if err != nil {
			h.sendInternalError(ctx, msg, "Failed to get subject", err)
			return
		}
		if subject == nil {
			h.send(ctx, msg.ChatID, msgSubjectGone, nil)
			h.showSubjects(ctx, msg, s.SubjectsPage)
			return
		}

		hasAccess, err := h.accessService.HasAccess(ctx, s.TeacherID, subjectID)
		if err != nil {
			h.sendInternalError(ctx, msg, "Failed to check access", err)
			return
		}
		if !hasAccess {
			h.send(ctx, msg.ChatID, "У вас нет доступа к этому предмету.", nil)
			return
		}

		h.stateManager.Reset(msg.UserID, state.StateAwaitingLessonTitle, state.KeySubjectID)
		h.send(ctx, msg.ChatID,
			fmt.Sprintf("Введите название урока для предмета '%s':", subject.Name),
			keyboard.Static([]string{BtnBackToLessons}))
		return
	}

	h.stateManager.Reset(msg.UserID, state.StateAwaitingLessonSubjectChoice)
	h.lessonSubjectChoice(ctx, msg, s.TeacherID, 0)
}

func (h *Handlers) lessonSubjectChoice(ctx context.Context, msg Message, teacherID int64, page int) {
	subjects, err := h.subjectService.ListForTeacher(ctx, teacherID)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to list subjects", err)
		return
	}
	if len(subjects) == 0 {
		h.stateManager.Reset(msg.UserID, state.StateTeacherBrowsing)
		h.send(ctx, msg.ChatID, msgNoTeacherAccess, keyboard.Static([]string{BtnSubjects}))
		return
	}

	h.renderChoice(ctx, msg, state.ListChoiceSubjects, state.KeySubjectsList,
		subjectRefs(subjects), page, "Выберите предмет для урока:", BtnCancel)
}

func (h *Handlers) handleLessonSubjectChoice(ctx context.Context, msg Message, s state.Session) {
	if isPageControl(msg.Text) {
		h.lessonSubjectChoice(ctx, msg, s.TeacherID, shiftPage(s.SubjectsPage, msg.Text))
		return
	}

	if !strings.HasPrefix(msg.Text, PrefixSubject) {
		h.send(ctx, msg.ChatID, msgChooseSubject, nil)
		return
	}

	refs, _ := s.Scratch[state.KeySubjectsList].([]state.Ref)
	ref, ok := state.FindRef(refs, msg.Text)
	if !ok {
		h.send(ctx, msg.ChatID, msgStaleSubject, nil)
		h.lessonSubjectChoice(ctx, msg, s.TeacherID, s.SubjectsPage)
		return
	}

	h.stateManager.Put(msg.UserID, state.KeySubjectID, ref.ID)
	h.stateManager.SetState(msg.UserID, state.StateAwaitingLessonTitle)
	h.send(ctx, msg.ChatID, "Введите название урока:", keyboard.Static([]string{BtnBackToLessons}))
}

func (h *Handlers) handleLessonTitle(ctx context.Context, msg Message, s state.Session) {
	subjectID, hasSubject := s.Scratch[state.KeySubjectID].(int64)

	switch msg.Text {
	case BtnBackToSubjects, BtnBackToLessons, BtnAddLesson:
		h.stateManager.Reset(msg.UserID, state.StateTeacherBrowsing, state.KeySubjectID)
		if hasSubject {
			h.showLessons(ctx, msg, subjectID, s.LessonsPage)
			return
		}
		h.showSubjects(ctx, msg, s.SubjectsPage)
		return
	}

	if !hasSubject {
		h.stateManager.Reset(msg.UserID, state.StateTeacherBrowsing)
		h.send(ctx, msg.ChatID, "Ошибка: предмет не выбран.", nil)
		h.showSubjects(ctx, msg, 0)
		return
	}

	if tooLong(msg.Text, LessonTitleMaxLength) {
		h.send(ctx, msg.ChatID,
			fmt.Sprintf("❌ Название слишком длинное. Максимум %d символов.\n\nПопробуйте ещё раз:", LessonTitleMaxLength), nil)
		return
	}

	lesson, err := h.lessonService.Create(ctx, s.TeacherID, subjectID, msg.Text)
	switch {
	case errors.Is(err, service.ErrEmptyInput):
		h.send(ctx, msg.ChatID, "Название урока не может быть пустым. Введите название урока:", nil)
		return
	case errors.Is(err, service.ErrSubjectNotFound):
		h.stateManager.Reset(msg.UserID, state.StateTeacherBrowsing)
		h.send(ctx, msg.ChatID, "Ошибка: предмет не найден.", nil)
		h.showSubjects(ctx, msg, 0)
		return
	case errors.Is(err, service.ErrNoSubjectAccess):
		h.stateManager.Reset(msg.UserID, state.StateTeacherBrowsing)
		h.send(ctx, msg.ChatID, "Ошибка: у вас нет доступа к этому предмету.", nil)
		h.showSubjects(ctx, msg, 0)
		return
	case err != nil:
		h.stateManager.Reset(msg.UserID, state.StateTeacherBrowsing, state.KeySubjectID)
		h.sendInternalError(ctx, msg, "Failed to create lesson", err)
		return
	}

	h.send(ctx, msg.ChatID, fmt.Sprintf("Урок '%s' успешно добавлен!", lesson.Title), nil)
	h.stateManager.Reset(msg.UserID, state.StateTeacherBrowsing, state.KeySubjectID)
	h.showLessons(ctx, msg, subjectID, pageLast)
}

// handleEditLessonStart начинает переименование урока
func (h *Handlers) handleEditLessonStart(ctx context.Context, msg Message, s state.Session) {
	lessonID, ok := s.Scratch[state.KeyLessonID].(int64)
	if !ok {
		h.send(ctx, msg.ChatID, msgSelectLesson, nil)
		return
	}

	lesson, err := h.lessonService.Authored(ctx, s.TeacherID, lessonID)
	if h.lessonFailed(ctx, msg, s, err) {
		return
	}

	h.stateManager.Reset(msg.UserID, state.StateAwaitingLessonEditTitle, state.KeySubjectID, state.KeyLessonID)
	h.send(ctx, msg.ChatID,
		fmt.Sprintf("Введите новое название для урока '%s':", lesson.Title),
		keyboard.Static([]string{BtnBackToLessons}))
}

func (h *Handlers) handleLessonEditTitle(ctx context.Context, msg Message, s state.Session) {
	lessonID, ok := s.Scratch[state.KeyLessonID].(int64)
	if !ok || msg.Text == BtnBackToLessons {
		h.stateManager.Reset(msg.UserID, state.StateTeacherBrowsing, state.KeySubjectID)
		h.backToLessons(ctx, msg, s)
		return
	}

	if tooLong(msg.Text, LessonTitleMaxLength) {
		h.send(ctx, msg.ChatID,
			fmt.Sprintf("❌ Название слишком длинное. Максимум %d символов.\n\nПопробуйте ещё раз:", LessonTitleMaxLength), nil)
		return
	}

	lesson, err := h.lessonService.Rename(ctx, s.TeacherID, lessonID, msg.Text)
	if errors.Is(err, service.ErrEmptyInput) {
		h.send(ctx, msg.ChatID, "Название урока не может быть пустым. Введите название урока:", nil)
		return
	}
	if h.lessonFailed(ctx, msg, s, err) {
		return
	}

	h.logger.Info("Lesson renamed",
		zap.Int64("telegram_id", msg.UserID),
		zap.Int64("lesson_id", lesson.ID))

	h.stateManager.Reset(msg.UserID, state.StateTeacherBrowsing, state.KeySubjectID)
	h.send(ctx, msg.ChatID, fmt.Sprintf("✅ Урок переименован: '%s'.", lesson.Title), nil)
	h.showLessonMenu(ctx, msg, lesson)
}

// handleDeleteLesson удаляет урок вместе с карточками
func (h *Handlers) handleDeleteLesson(ctx context.Context, msg Message, s state.Session) {
	lessonID, ok := s.Scratch[state.KeyLessonID].(int64)
	if !ok {
		h.send(ctx, msg.ChatID, msgSelectLesson, nil)
		return
	}

	lesson, err := h.lessonService.Delete(ctx, s.TeacherID, lessonID)
	if h.lessonFailed(ctx, msg, s, err) {
		return
	}

	h.stateManager.Delete(msg.UserID, state.KeyLessonID)
	h.send(ctx, msg.ChatID, fmt.Sprintf("🗑️ Урок '%s' удалён вместе с карточками.", lesson.Title), nil)
	h.showLessons(ctx, msg, lesson.SubjectID, s.LessonsPage)
}
