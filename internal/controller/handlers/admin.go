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

// handleAdmin открывает панель администратора
func (h *Handlers) handleAdmin(ctx context.Context, msg Message, _ state.Session) {
	if !h.isAdmin(msg.UserID) {
		h.logger.Warn("Admin panel requested by non-admin",
			zap.Int64("telegram_id", msg.UserID))
		h.send(ctx, msg.ChatID, msgNoAdminPanel, nil)
		return
	}

	h.stateManager.Reset(msg.UserID, state.StateAdminMenu)
	h.showAdminMenu(ctx, msg)
}

func (h *Handlers) showAdminMenu(ctx context.Context, msg Message) {
	h.stateManager.SetActiveList(msg.UserID, state.ListNone)

	kb := keyboard.Static(
		[]string{BtnAddTeacher, BtnTeacherList},
		[]string{BtnAddSubject, BtnDeleteSubject},
		[]string{BtnAccess, BtnStats},
		[]string{BtnMainMenu},
	)
	h.send(ctx, msg.ChatID, "🔧 Панель администратора\nВыберите действие:", kb)
}

func (h *Handlers) toAdminMenu(ctx context.Context, msg Message) {
	h.stateManager.Reset(msg.UserID, state.StateAdminMenu)
	h.showAdminMenu(ctx, msg)
}

// adminCancelled возвращает в панель, если вместо данных нажата кнопка панели
func (h *Handlers) adminCancelled(ctx context.Context, msg Message) bool {
	if _, ok := adminMenuLabels[msg.Text]; !ok {
		return false
	}
	h.toAdminMenu(ctx, msg)
	return true
}

func (h *Handlers) handleBackToAdmin(ctx context.Context, msg Message, _ state.Session) {
	h.toAdminMenu(ctx, msg)
}

// handleAddSubjectStart только переводит в ожидание названия предмета
func (h *Handlers) handleAddSubjectStart(ctx context.Context, msg Message, _ state.Session) {
	h.stateManager.Reset(msg.UserID, state.StateAwaitingSubjectName)
	h.send(ctx, msg.ChatID,
		"Введите название предмета:\n(описание можно добавить через %: Название%Описание)",
		keyboard.Static([]string{BtnBackToAdmin}))
}

func (h *Handlers) handleSubjectName(ctx context.Context, msg Message, _ state.Session) {
	if h.adminCancelled(ctx, msg) {
		return
	}

	name, description := service.ParseSubjectInput(msg.Text)
	if tooLong(name, SubjectNameMaxLength) {
		h.send(ctx, msg.ChatID,
			fmt.Sprintf("❌ Название слишком длинное. Максимум %d символов.\n\nПопробуйте ещё раз:", SubjectNameMaxLength), nil)
		return
	}
	if _, reserved := h.statics[PrefixSubject+name]; reserved {
		h.send(ctx, msg.ChatID, "Это название совпадает с кнопкой меню. Введите другое название:", nil)
		return
	}

	subject, err := h.subjectService.Create(ctx, name, description)
	switch {
	case errors.Is(err, service.ErrEmptyInput):
		h.send(ctx, msg.ChatID, "Название предмета не может быть пустым. Введите название предмета:", nil)
		return
	case errors.Is(err, service.ErrSubjectExists):
		h.send(ctx, msg.ChatID, fmt.Sprintf("Предмет '%s' уже существует.", name), nil)
	case err != nil:
		h.sendInternalError(ctx, msg, "Failed to create subject", err)
	default:
		h.send(ctx, msg.ChatID, fmt.Sprintf("Предмет '%s' успешно добавлен!", subject.Name), nil)
	}

	h.toAdminMenu(ctx, msg)
}

// handleDeleteSubjectStart показывает предметы для удаления
func (h *Handlers) handleDeleteSubjectStart(ctx context.Context, msg Message, _ state.Session) {
	h.stateManager.Reset(msg.UserID, state.StateAwaitingSubjectDeleteChoice)
	h.subjectDeleteChoice(ctx, msg, 0)
}

func (h *Handlers) subjectDeleteChoice(ctx context.Context, msg Message, page int) {
	subjects, err := h.subjectService.List(ctx)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to list subjects", err)
		return
	}
	if len(subjects) == 0 {
		h.send(ctx, msg.ChatID, msgNoSubjects, nil)
		h.toAdminMenu(ctx, msg)
		return
	}

	h.renderChoice(ctx, msg, state.ListChoiceSubjects, state.KeySubjectsList, subjectRefs(subjects), page,
		"Выберите предмет для удаления. Уроки и карточки предмета тоже будут удалены.", BtnBackToAdmin)
}

func (h *Handlers) handleSubjectDeleteChoice(ctx context.Context, msg Message, s state.Session) {
	if h.adminCancelled(ctx, msg) {
		return
	}
	if isPageControl(msg.Text) {
		h.subjectDeleteChoice(ctx, msg, shiftPage(s.SubjectsPage, msg.Text))
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
		h.subjectDeleteChoice(ctx, msg, s.SubjectsPage)
		return
	}

	err := h.subjectService.Delete(ctx, ref.ID)
	switch {
	case errors.Is(err, service.ErrSubjectNotFound):
		h.send(ctx, msg.ChatID, "Предмет уже удалён.", nil)
	case err != nil:
		h.sendInternalError(ctx, msg, "Failed to delete subject", err)
	default:
		h.send(ctx, msg.ChatID,
			fmt.Sprintf("🗑️ Предмет '%s' удалён.", strings.TrimPrefix(ref.Label, PrefixSubject)), nil)
	}

	h.toAdminMenu(ctx, msg)
}

func (h *Handlers) handleAddTeacherStart(ctx context.Context, msg Message, _ state.Session) {
	h.stateManager.Reset(msg.UserID, state.StateAwaitingNewTeacherUsername)
	h.send(ctx, msg.ChatID, "Введите имя пользователя для нового преподавателя:",
		keyboard.Static([]string{BtnBackToAdmin}))
}

func (h *Handlers) handleNewTeacherUsername(ctx context.Context, msg Message, _ state.Session) {
	if h.adminCancelled(ctx, msg) {
		return
	}

	username := strings.TrimSpace(msg.Text)
	if username == "" {
		h.send(ctx, msg.ChatID, "Имя пользователя не может быть пустым. Введите имя пользователя:", nil)
		return
	}
	if tooLong(username, UsernameMaxLength) {
		h.send(ctx, msg.ChatID,
			fmt.Sprintf("❌ Имя слишком длинное. Максимум %d символов.\n\nПопробуйте ещё раз:", UsernameMaxLength), nil)
		return
	}

	existing, err := h.authService.GetByUsername(ctx, username)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to check teacher", err)
		h.toAdminMenu(ctx, msg)
		return
	}
	if existing != nil {
		h.send(ctx, msg.ChatID, fmt.Sprintf("Преподаватель с именем %s уже существует.", username), nil)
		h.toAdminMenu(ctx, msg)
		return
	}

	h.stateManager.Put(msg.UserID, state.KeyNewTeacherUsername, username)
	h.stateManager.SetState(msg.UserID, state.StateAwaitingNewTeacherPassword)
	h.send(ctx, msg.ChatID, fmt.Sprintf("Введите пароль для преподавателя %s:", username), nil)
}

func (h *Handlers) handleNewTeacherPassword(ctx context.Context, msg Message, _ state.Session) {
	if h.adminCancelled(ctx, msg) {
		return
	}

	username, ok := h.stateManager.PeekString(msg.UserID, state.KeyNewTeacherUsername)
	if !ok {
		h.send(ctx, msg.ChatID, "Ошибка: имя пользователя не найдено. Попробуйте снова.", nil)
		h.toAdminMenu(ctx, msg)
		return
	}

	password := strings.TrimSpace(msg.Text)
	if password == "" {
		h.send(ctx, msg.ChatID, "Пароль не может быть пустым. Введите пароль:", nil)
		return
	}

	teacher, err := h.authService.CreateTeacher(ctx, username, password)
	switch {
	case errors.Is(err, service.ErrTeacherExists):
		h.send(ctx, msg.ChatID, fmt.Sprintf("Преподаватель с именем %s уже существует.", username), nil)
	case err != nil:
		h.sendInternalError(ctx, msg, "Failed to create teacher", err)
	default:
		h.logger.Info("Teacher created by admin",
			zap.Int64("telegram_id", msg.UserID),
			zap.Int64("teacher_id", teacher.ID))
		h.send(ctx, msg.ChatID, fmt.Sprintf("Преподаватель %s успешно добавлен!", teacher.Username), nil)
	}

	h.toAdminMenu(ctx, msg)
}

func (h *Handlers) handleTeacherList(ctx context.Context, msg Message, _ state.Session) {
	h.showTeachers(ctx, msg, 0)
}

// showTeachers показывает список преподавателей; кнопка преподавателя
// открывает его доступы
func (h *Handlers) showTeachers(ctx context.Context, msg Message, page int) {
	teachers, err := h.authService.ListTeachers(ctx)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to list teachers", err)
		return
	}
	if len(teachers) == 0 {
		h.send(ctx, msg.ChatID, msgNoTeachers, keyboard.Static([]string{BtnBackToAdmin}))
		return
	}

	var text strings.Builder
	text.WriteString("📋 Список преподавателей:\n\n")
	for _, teacher := range teachers {
		fmt.Fprintf(&text, "👤 %s (ID: %d)\n", teacher.Username, teacher.ID)
	}

	h.renderChoice(ctx, msg, state.ListTeachers, state.KeyTeachersList, teacherRefs(teachers), page,
		text.String(), BtnBackToAdmin)
}

func (h *Handlers) handleSelectTeacher(ctx context.Context, msg Message, s state.Session) {
	refs, _ := s.Scratch[state.KeyTeachersList].([]state.Ref)
	ref, ok := state.FindRef(refs, msg.Text)
	if !ok {
		h.send(ctx, msg.ChatID, msgStaleTeacher, nil)
		h.showTeachers(ctx, msg, s.TeachersPage)
		return
	}

	teacher, err := h.authService.GetTeacher(ctx, ref.ID)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to get teacher", err)
		return
	}
	if teacher == nil {
		h.send(ctx, msg.ChatID, msgTeacherGone, nil)
		h.showTeachers(ctx, msg, s.TeachersPage)
		return
	}

	subjects, err := h.accessService.SubjectsOf(ctx, teacher.ID)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to list teacher subjects", err)
		return
	}

	var text strings.Builder
	fmt.Fprintf(&text, "👤 %s (ID: %d)\nДобавлен: %s\n\nДоступ к предметам:\n",
		teacher.Username, teacher.ID, teacher.CreatedAt.Format("02.01.2006"))
	if len(subjects) == 0 {
		text.WriteString("  ❌ Нет доступа к предметам\n")
	}
	for _, subject := range subjects {
		fmt.Fprintf(&text, "  ✅ %s\n", subject.Name)
	}

	// Клавиатура не меняется: на экране остаётся та же страница списка
	h.send(ctx, msg.ChatID, text.String(), nil)
}

func (h *Handlers) handleStats(ctx context.Context, msg Message, _ state.Session) {
	stats, err := h.statsService.Counts(ctx)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to count stats", err)
		return
	}

	text := fmt.Sprintf("📊 Статистика:\n\n"+
		"👥 Преподавателей: %d\n"+
		"📚 Предметов: %d\n"+
		"📖 Уроков: %d\n"+
		"📝 Карточек: %d",
		stats.Teachers, stats.Subjects, stats.Lessons, stats.Cards)

	h.send(ctx, msg.ChatID, text, keyboard.Static([]string{BtnBackToAdmin}))
}
