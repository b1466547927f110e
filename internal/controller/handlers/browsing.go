package handlers

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/tutor_bot/internal/controller/state"
	"github.com/Freeeeeet/tutor_bot/internal/model"
	"go.uber.org/zap"
)

// showSubjects показывает предметы: преподавателю - доступные ему, ученику - все
func (h *Handlers) showSubjects(ctx context.Context, msg Message, page int) {
	s := h.stateManager.Get(msg.UserID)

	var (
		subjects []*model.Subject
		err      error
	)
	if s.Authenticated {
		subjects, err = h.subjectService.ListForTeacher(ctx, s.TeacherID)
	} else {
		subjects, err = h.subjectService.List(ctx)
	}
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to list subjects", err)
		return
	}

	h.stateManager.Reset(msg.UserID, browsingState(s))

	extra := BtnMainMenu
	if s.Authenticated {
		extra = BtnLogout
	}

	refs := subjectRefs(subjects)
	page = clampPage(keyboard.Lists, page, len(refs))
	h.stateManager.Put(msg.UserID, state.KeySubjectsList, pageRefs(keyboard.Lists, refs, page))
	h.stateManager.SetPage(msg.UserID, state.ListSubjects, page)

	text := "Выберите предмет:"
	if len(refs) == 0 {
		text = msgNoSubjects
		if s.Authenticated {
			text = msgNoTeacherAccess
		}
	}

	h.send(ctx, msg.ChatID, text, keyboard.Markup(keyboard.Lists.Render(refItems(refs), page, extra)))
}

// showLessons показывает уроки предмета
func (h *Handlers) showLessons(ctx context.Context, msg Message, subjectID int64, page int) {
	subject, err := h.subjectService.Get(ctx, subjectID)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to get subject", err)
		return
	}
	if subject == nil {
		h.send(ctx, msg.ChatID, msgSubjectGone, nil)
		h.showSubjects(ctx, msg, h.stateManager.Get(msg.UserID).SubjectsPage)
		return
	}

	h.renderLessons(ctx, msg, subject, page)
}

func (h *Handlers) renderLessons(ctx context.Context, msg Message, subject *model.Subject, page int) {
	lessons, err := h.lessonService.ListBySubject(ctx, subject.ID)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to list lessons", err)
		return
	}

	s := h.stateManager.Get(msg.UserID)
	h.stateManager.Reset(msg.UserID, browsingState(s), state.KeySubjectsList)
	h.stateManager.Put(msg.UserID, state.KeySubjectID, subject.ID)

	extra := []string{BtnBackToSubjects}
	if s.Authenticated {
		extra = []string{BtnAddLesson, BtnBackToSubjects}
	}

	refs := lessonRefs(lessons)
	page = clampPage(keyboard.Lists, page, len(refs))
	h.stateManager.Put(msg.UserID, state.KeyLessonsList, pageRefs(keyboard.Lists, refs, page))
	h.stateManager.SetPage(msg.UserID, state.ListLessons, page)

	text := fmt.Sprintf("Уроки предмета '%s':", subject.Name)
	if len(refs) == 0 {
		text = fmt.Sprintf("В предмете '%s' пока нет уроков.", subject.Name)
	}
	if subject.Description != nil {
		text = fmt.Sprintf("📝 %s\n\n%s", *subject.Description, text)
	}

	h.send(ctx, msg.ChatID, text, keyboard.Markup(keyboard.Lists.Render(refItems(refs), page, extra...)))
}

// backToLessons возвращает к урокам выбранного предмета, а без него - к предметам
func (h *Handlers) backToLessons(ctx context.Context, msg Message, s state.Session) {
	if subjectID, ok := s.Scratch[state.KeySubjectID].(int64); ok {
		h.showLessons(ctx, msg, subjectID, s.LessonsPage)
		return
	}
	h.showSubjects(ctx, msg, s.SubjectsPage)
}

// showLessonMenu показывает действия с уроком; править урок может только автор
func (h *Handlers) showLessonMenu(ctx context.Context, msg Message, lesson *model.Lesson) {
	s := h.stateManager.Get(msg.UserID)
	h.stateManager.Put(msg.UserID, state.KeyLessonID, lesson.ID)
	h.stateManager.SetActiveList(msg.UserID, state.ListNone)

	b := keyboard.NewBuilder().Row(BtnCards)
	if s.Authenticated && lesson.TeacherID == s.TeacherID {
		b.Row(BtnEditLesson, BtnDeleteLesson)
	}
	b.Row(BtnBackToLessons)

	h.send(ctx, msg.ChatID, fmt.Sprintf("Выбран урок: %s. Выберите действие:", lesson.Title), b.Build())
}

// showCards показывает карточки выбранного урока. Кнопки правки и удаления
// несут сквозной номер карточки, а не номер на странице.
func (h *Handlers) showCards(ctx context.Context, msg Message, page int) {
	s := h.stateManager.Get(msg.UserID)

	lessonID, ok := s.Scratch[state.KeyLessonID].(int64)
	if !ok {
		h.send(ctx, msg.ChatID, msgSelectLesson, nil)
		return
	}

	lesson, err := h.lessonService.Get(ctx, lessonID)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to get lesson", err)
		return
	}
	if lesson == nil {
		h.stateManager.Delete(msg.UserID, state.KeyLessonID)
		h.send(ctx, msg.ChatID, msgLessonGone, nil)
		h.backToLessons(ctx, msg, s)
		return
	}

	cards, err := h.cardService.List(ctx, lesson.ID)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to list cards", err)
		return
	}

	parts := []string{fmt.Sprintf("В уроке '%s' пока нет карточек.", lesson.Title)}
	if len(cards) > 0 {
		lines := make([]string, 0, len(cards)+1)
		lines = append(lines, "Вот карточки этого урока:")
		for i, card := range cards {
			answer := card.Answer
			if answer == "" {
				answer = "(нет ответа)"
			}
			lines = append(lines, fmt.Sprintf("%d. %s - %s", i+1, card.Question, answer))
		}
		parts = splitLines(lines)
	}

	var items []keyboard.Item
	actions := 0
	if s.Authenticated && lesson.TeacherID == s.TeacherID {
		items = append(items, keyboard.Item{Label: BtnAddCard})
		for i := range cards {
			items = append(items, keyboard.Entities(
				fmt.Sprintf("%s%d", PrefixEditCard, i+1),
				fmt.Sprintf("%s%d", PrefixDeleteCard, i+1),
			)...)
		}
		actions = 2 * len(cards)
	}

	page = clampPage(keyboard.CardActions, page, actions)
	h.stateManager.SetPage(msg.UserID, state.ListCards, page)

	// Длинный список уходит несколькими сообщениями, клавиатура - с последним
	for _, part := range parts[:len(parts)-1] {
		h.send(ctx, msg.ChatID, part, nil)
	}
	h.send(ctx, msg.ChatID, parts[len(parts)-1],
		keyboard.Markup(keyboard.CardActions.Render(items, page, BtnBackToLessons)))
}

func (h *Handlers) handleSelectSubject(ctx context.Context, msg Message, s state.Session) {
	refs, _ := h.stateManager.PeekRefs(msg.UserID, state.KeySubjectsList)
	ref, ok := state.FindRef(refs, msg.Text)
	if !ok {
		h.logger.Warn("Subject is not on the shown page",
			zap.Int64("telegram_id", msg.UserID),
			zap.String("text", msg.Text))
		h.send(ctx, msg.ChatID, msgStaleSubject, nil)
		h.showSubjects(ctx, msg, s.SubjectsPage)
		return
	}

	subject, err := h.subjectService.Get(ctx, ref.ID)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to get subject", err)
		return
	}
	if subject == nil {
		h.send(ctx, msg.ChatID, msgSubjectGone, nil)
		h.showSubjects(ctx, msg, s.SubjectsPage)
		return
	}

	h.renderLessons(ctx, msg, subject, 0)
}

func (h *Handlers) handleSelectLesson(ctx context.Context, msg Message, s state.Session) {
	refs, _ := h.stateManager.PeekRefs(msg.UserID, state.KeyLessonsList)
	ref, ok := state.FindRef(refs, msg.Text)
	if !ok {
		h.logger.Warn("Lesson is not on the shown page",
			zap.Int64("telegram_id", msg.UserID),
			zap.String("text", msg.Text))
		h.send(ctx, msg.ChatID, msgStaleLesson, nil)
		h.backToLessons(ctx, msg, s)
		return
	}

	lesson, err := h.lessonService.Get(ctx, ref.ID)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to get lesson", err)
		return
	}
	if lesson == nil {
		h.send(ctx, msg.ChatID, msgLessonGone, nil)
		h.backToLessons(ctx, msg, s)
		return
	}

	h.showLessonMenu(ctx, msg, lesson)
}

func (h *Handlers) handleTeacherSubjects(ctx context.Context, msg Message, _ state.Session) {
	h.showSubjects(ctx, msg, 0)
}

func (h *Handlers) handleBackToSubjects(ctx context.Context, msg Message, s state.Session) {
	h.showSubjects(ctx, msg, s.SubjectsPage)
}

func (h *Handlers) handleBackToLessons(ctx context.Context, msg Message, s state.Session) {
	h.stateManager.Delete(msg.UserID, state.KeyLessonID)
	h.backToLessons(ctx, msg, s)
}

func (h *Handlers) handleShowCards(ctx context.Context, msg Message, _ state.Session) {
	h.showCards(ctx, msg, 0)
}

// handlePageControl листает список, который сейчас показан пользователю
func (h *Handlers) handlePageControl(ctx context.Context, msg Message, s state.Session) {
	switch s.ActiveList {
	case state.ListSubjects:
		if h.allowed(ctx, guardBrowsing, msg, s) {
			h.showSubjects(ctx, msg, shiftPage(s.SubjectsPage, msg.Text))
		}
	case state.ListLessons:
		if h.allowed(ctx, guardBrowsing, msg, s) {
			subjectID, ok := s.Scratch[state.KeySubjectID].(int64)
			if !ok {
				h.showSubjects(ctx, msg, s.SubjectsPage)
				return
			}
			h.showLessons(ctx, msg, subjectID, shiftPage(s.LessonsPage, msg.Text))
		}
	case state.ListCards:
		if h.allowed(ctx, guardBrowsing, msg, s) {
			h.showCards(ctx, msg, shiftPage(s.CardsPage, msg.Text))
		}
	case state.ListTeachers:
		if h.allowed(ctx, guardAdmin, msg, s) {
			h.showTeachers(ctx, msg, shiftPage(s.TeachersPage, msg.Text))
		}
	default:
		h.logger.Debug("Page control without active list, ignoring",
			zap.Int64("telegram_id", msg.UserID),
			zap.String("state", string(s.State)))
	}
}
