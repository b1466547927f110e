package handlers

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Freeeeeet/tutor_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/tutor_bot/internal/controller/state"
	"github.com/Freeeeeet/tutor_bot/internal/model"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// maxMessageLength - предел длины текста с запасом: Telegram считает длину в UTF-16
const maxMessageLength = 4000

// pageLast - курсор, который clampPage сводит к последней странице
const pageLast = math.MaxInt32

// send отправляет сообщение и логирует если не удалось
func (h *Handlers) send(ctx context.Context, chatID int64, text string, kb *models.ReplyKeyboardMarkup) {
	var markup models.ReplyMarkup
	if kb != nil {
		markup = kb
	}

	if err := h.sender.Send(ctx, chatID, fitMessage(text), markup); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// splitLines собирает строки в сообщения не длиннее maxMessageLength.
// Строка целиком попадает в одно сообщение.
func splitLines(lines []string) []string {
	var (
		parts []string
		cur   strings.Builder
		size  int
	)
	for _, line := range lines {
		n := utf8.RuneCountInString(line) + 1
		if size > 0 && size+n > maxMessageLength {
			parts = append(parts, cur.String())
			cur.Reset()
			size = 0
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
		size += n
	}
	if size > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

// fitMessage обрезает слишком длинный текст
func fitMessage(text string) string {
	if utf8.RuneCountInString(text) <= maxMessageLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxMessageLength-1]) + "…"
}

// renderChoice показывает список для выбора внутри шага диалога и
// сохраняет снимок страницы для проверки выбора
func (h *Handlers) renderChoice(ctx context.Context, msg Message, kind state.ListKind, key string, refs []state.Ref, page int, text string, extra ...string) {
	page = clampPage(keyboard.Lists, page, len(refs))
	h.stateManager.Put(msg.UserID, key, pageRefs(keyboard.Lists, refs, page))
	h.stateManager.SetPage(msg.UserID, kind, page)

	h.send(ctx, msg.ChatID, text, keyboard.Markup(keyboard.Lists.Render(refItems(refs), page, extra...)))
}

// sendInternalError логирует ошибку хранилища и сообщает пользователю
func (h *Handlers) sendInternalError(ctx context.Context, msg Message, op string, err error) {
	h.logger.Error(op,
		zap.Int64("telegram_id", msg.UserID),
		zap.Error(err))
	h.send(ctx, msg.ChatID, msgInternalError, nil)
}

// browsingState возвращает состояние просмотра для роли пользователя
func browsingState(s state.Session) state.UserState {
	if s.Authenticated {
		return state.StateTeacherBrowsing
	}
	return state.StateStudentBrowsing
}

// isPageControl сообщает, что текст - кнопка перехода между страницами
func isPageControl(text string) bool {
	return text == keyboard.NextPage || text == keyboard.PrevPage
}

// shiftPage сдвигает курсор по кнопке перехода
func shiftPage(page int, text string) int {
	if text == keyboard.NextPage {
		return page + 1
	}
	if page > 0 {
		return page - 1
	}
	return 0
}

// clampPage ограничивает курсор последней непустой страницей
func clampPage(p keyboard.Paginator, page, count int) int {
	if page < 0 {
		return 0
	}
	if last := p.LastPage(count); page > last {
		return last
	}
	return page
}

func subjectRefs(subjects []*model.Subject) []state.Ref {
	refs := make([]state.Ref, 0, len(subjects))
	for _, subject := range subjects {
		refs = append(refs, state.Ref{ID: subject.ID, Label: PrefixSubject + subject.Name})
	}
	return refs
}

func teacherRefs(teachers []*model.Teacher) []state.Ref {
	refs := make([]state.Ref, 0, len(teachers))
	for _, teacher := range teachers {
		refs = append(refs, state.Ref{ID: teacher.ID, Label: PrefixTeacher + teacher.Username})
	}
	return refs
}

// lessonRefs строит подписи уроков. Названия уникальны только внутри пары
// (предмет, автор), поэтому повторяющимся названиям добавляется номер урока.
func lessonRefs(lessons []*model.Lesson) []state.Ref {
	seen := make(map[string]int, len(lessons))
	for _, lesson := range lessons {
		seen[lesson.Title]++
	}

	refs := make([]state.Ref, 0, len(lessons))
	for _, lesson := range lessons {
		label := PrefixLesson + lesson.Title
		if seen[lesson.Title] > 1 {
			label = fmt.Sprintf("%s #%d", label, lesson.ID)
		}
		refs = append(refs, state.Ref{ID: lesson.ID, Label: label})
	}
	return refs
}

// pageRefs возвращает снимок только тех кнопок, что попали на страницу page:
// выбор проверяется по тому, что пользователь видел на экране
func pageRefs(p keyboard.Paginator, refs []state.Ref, page int) []state.Ref {
	start, end := p.Window(page, len(refs))
	shown := make([]state.Ref, end-start)
	copy(shown, refs[start:end])
	return shown
}

func refItems(refs []state.Ref) []keyboard.Item {
	items := make([]keyboard.Item, 0, len(refs))
	for _, ref := range refs {
		items = append(items, keyboard.Item{Label: ref.Label, Entity: true})
	}
	return items
}

// cardIndex разбирает номер карточки из кнопки "✏️ Редактировать N"
func cardIndex(text, prefix string) (int, bool) {
	index, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(text, prefix)))
	if err != nil || index < 1 {
		return 0, false
	}
	return index, true
}

func tooLong(text string, limit int) bool {
	return utf8.RuneCountInString(text) > limit
}

func mainMenuKeyboard() *models.ReplyKeyboardMarkup {
	return keyboard.Static([]string{BtnTeacherLogin, BtnStudentLogin})
}

func cancelKeyboard() *models.ReplyKeyboardMarkup {
	return keyboard.Static([]string{BtnCancel})
}
