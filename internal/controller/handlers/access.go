package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/tutor_bot/internal/controller/state"
	"github.com/Freeeeeet/tutor_bot/internal/model"
	"github.com/Freeeeeet/tutor_bot/internal/service"
	"go.uber.org/zap"
)

const (
	promptGrantTeacher  = "Выберите преподавателя для предоставления доступа:"
	promptRevokeTeacher = "Выберите преподавателя для отзыва доступа:"
)

func (h *Handlers) handleAccessMenu(ctx context.Context, msg Message, _ state.Session) {
	h.stateManager.Reset(msg.UserID, state.StateAdminMenu)
	h.showAccessMenu(ctx, msg)
}

func (h *Handlers) showAccessMenu(ctx context.Context, msg Message) {
	h.stateManager.SetActiveList(msg.UserID, state.ListNone)

	kb := keyboard.Static(
		[]string{BtnGrant, BtnRevoke},
		[]string{BtnTeacherAccesses, BtnSubjectAccesses},
		[]string{BtnBackToAdmin},
	)
	h.send(ctx, msg.ChatID, "🔐 Управление доступом к предметам\nВыберите действие:", kb)
}

// finishAccessChange завершает выдачу или отзыв доступа при любом исходе
func (h *Handlers) finishAccessChange(ctx context.Context, msg Message) {
	h.stateManager.Reset(msg.UserID, state.StateAdminMenu)
	h.showAccessMenu(ctx, msg)
}

// notifyTeacher сообщает преподавателю об изменении доступа, если он сейчас в боте
func (h *Handlers) notifyTeacher(ctx context.Context, teacherID int64, text string) {
	chats := h.stateManager.TeacherChats(teacherID)
	if len(chats) == 0 {
		h.logger.Info("Teacher has no active session, notification skipped",
			zap.Int64("teacher_id", teacherID))
		return
	}
	for _, chatID := range chats {
		h.send(ctx, chatID, text, nil)
	}
}

func (h *Handlers) teacherChoice(ctx context.Context, msg Message, page int, prompt string) {
	teachers, err := h.authService.ListTeachers(ctx)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to list teachers", err)
		h.finishAccessChange(ctx, msg)
		return
	}
	if len(teachers) == 0 {
		h.send(ctx, msg.ChatID, "Нет доступных преподавателей.", nil)
		h.finishAccessChange(ctx, msg)
		return
	}

	h.renderChoice(ctx, msg, state.ListTeachers, state.KeyTeachersList, teacherRefs(teachers), page, prompt, BtnBackToAdmin)
}

// pickTeacher проверяет выбор преподавателя по снимку показанной страницы
func (h *Handlers) pickTeacher(ctx context.Context, msg Message, s state.Session, prompt string) (*model.Teacher, bool) {
	if !strings.HasPrefix(msg.Text, PrefixTeacher) {
		h.send(ctx, msg.ChatID, msgChooseTeacher, nil)
		return nil, false
	}

	refs, _ := s.Scratch[state.KeyTeachersList].([]state.Ref)
	ref, ok := state.FindRef(refs, msg.Text)
	if !ok {
		h.send(ctx, msg.ChatID, msgStaleTeacher, nil)
		h.teacherChoice(ctx, msg, s.TeachersPage, prompt)
		return nil, false
	}

	teacher, err := h.authService.GetTeacher(ctx, ref.ID)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to get teacher", err)
		h.finishAccessChange(ctx, msg)
		return nil, false
	}
	if teacher == nil {
		h.send(ctx, msg.ChatID, msgTeacherGone, nil)
		h.teacherChoice(ctx, msg, s.TeachersPage, prompt)
		return nil, false
	}
	return teacher, true
}

// pickSubject проверяет выбор предмета по снимку; rerender показывает список заново
func (h *Handlers) pickSubject(ctx context.Context, msg Message, s state.Session, rerender func()) (state.Ref, bool) {
	if !strings.HasPrefix(msg.Text, PrefixSubject) {
		h.send(ctx, msg.ChatID, msgChooseSubject, nil)
		return state.Ref{}, false
	}

	refs, _ := s.Scratch[state.KeySubjectsList].([]state.Ref)
	ref, ok := state.FindRef(refs, msg.Text)
	if !ok {
		h.send(ctx, msg.ChatID, msgStaleSubject, nil)
		rerender()
		return state.Ref{}, false
	}
	return ref, true
}

// accessTarget загружает преподавателя и предмет для выдачи или отзыва.
// При ошибке сообщение администратору уже отправлено.
func (h *Handlers) accessTarget(ctx context.Context, msg Message, s state.Session, subjectID int64) (*model.Teacher, *model.Subject, bool) {
	teacherID, ok := s.Scratch[state.KeyTeacherID].(int64)
	if !ok {
		h.send(ctx, msg.ChatID, "❌ Не удалось определить преподавателя. Начните процедуру заново.", nil)
		return nil, nil, false
	}

	teacher, err := h.authService.GetTeacher(ctx, teacherID)
	if err != nil {
		h.send(ctx, msg.ChatID, fmt.Sprintf("❌ Произошла ошибка: %v", err), nil)
		return nil, nil, false
	}
	if teacher == nil {
		h.send(ctx, msg.ChatID, "❌ Преподаватель не найден.", nil)
		return nil, nil, false
	}

	subject, err := h.subjectService.Get(ctx, subjectID)
	if err != nil {
		h.send(ctx, msg.ChatID, fmt.Sprintf("❌ Произошла ошибка: %v", err), nil)
		return nil, nil, false
	}
	if subject == nil {
		h.send(ctx, msg.ChatID, "❌ Предмет не найден.", nil)
		return nil, nil, false
	}

	return teacher, subject, true
}

func (h *Handlers) handleGrantStart(ctx context.Context, msg Message, _ state.Session) {
	h.stateManager.Reset(msg.UserID, state.StateAwaitingGrantTeacherChoice)
	h.teacherChoice(ctx, msg, 0, promptGrantTeacher)
}

func (h *Handlers) handleGrantTeacherChoice(ctx context.Context, msg Message, s state.Session) {
	if h.adminCancelled(ctx, msg) {
		return
	}
	if isPageControl(msg.Text) {
		h.teacherChoice(ctx, msg, shiftPage(s.TeachersPage, msg.Text), promptGrantTeacher)
		return
	}

	teacher, ok := h.pickTeacher(ctx, msg, s, promptGrantTeacher)
	if !ok {
		return
	}

	h.stateManager.Put(msg.UserID, state.KeyTeacherID, teacher.ID)
	h.stateManager.SetState(msg.UserID, state.StateAwaitingGrantSubjectChoice)
	h.grantSubjectChoice(ctx, msg, teacher, 0)
}

func (h *Handlers) grantSubjectChoice(ctx context.Context, msg Message, teacher *model.Teacher, page int) {
	subjects, err := h.accessService.SubjectsWithout(ctx, teacher.ID)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to list subjects", err)
		h.finishAccessChange(ctx, msg)
		return
	}
	if len(subjects) == 0 {
		h.send(ctx, msg.ChatID, fmt.Sprintf("У преподавателя %s уже есть доступ ко всем предметам.", teacher.Username), nil)
		h.finishAccessChange(ctx, msg)
		return
	}

	h.renderChoice(ctx, msg, state.ListChoiceSubjects, state.KeySubjectsList, subjectRefs(subjects), page,
		fmt.Sprintf("Выберите предмет для предоставления доступа преподавателю %s:", teacher.Username), BtnBackToAdmin)
}

// handleGrantSubjectChoice выдаёт доступ. После выбора предмета состояние
// всегда возвращается в панель, даже если выдача не удалась.
func (h *Handlers) handleGrantSubjectChoice(ctx context.Context, msg Message, s state.Session) {
	if h.adminCancelled(ctx, msg) {
		return
	}

	rerender := func(page int) {
		teacherID, _ := s.Scratch[state.KeyTeacherID].(int64)
		teacher, err := h.authService.GetTeacher(ctx, teacherID)
		if err != nil || teacher == nil {
			h.send(ctx, msg.ChatID, "❌ Преподаватель не найден.", nil)
			h.finishAccessChange(ctx, msg)
			return
		}
		h.grantSubjectChoice(ctx, msg, teacher, page)
	}

	if isPageControl(msg.Text) {
		rerender(shiftPage(s.SubjectsPage, msg.Text))
		return
	}

	ref, ok := h.pickSubject(ctx, msg, s, func() { rerender(s.SubjectsPage) })
	if !ok {
		return
	}

	defer h.finishAccessChange(ctx, msg)

	teacher, subject, ok := h.accessTarget(ctx, msg, s, ref.ID)
	if !ok {
		return
	}

	result, err := h.accessService.Grant(ctx, teacher.ID, subject.ID)
	if err != nil {
		h.logger.Error("Failed to grant access",
			zap.Int64("teacher_id", teacher.ID),
			zap.Int64("subject_id", subject.ID),
			zap.Error(err))
		h.send(ctx, msg.ChatID, fmt.Sprintf("❌ Произошла ошибка: %v", err), nil)
		return
	}

	switch result {
	case service.GrantCreated:
		h.send(ctx, msg.ChatID,
			fmt.Sprintf("✅ Доступ к предмету '%s' предоставлен преподавателю %s!", subject.Name, teacher.Username), nil)
		h.notifyTeacher(ctx, teacher.ID,
			fmt.Sprintf("🎉 Вам предоставлен доступ к предмету '%s'! Используйте кнопку '%s' для просмотра.", subject.Name, BtnSubjects))
	case service.GrantAlreadyExists:
		h.send(ctx, msg.ChatID,
			fmt.Sprintf("❌ У преподавателя %s уже есть доступ к предмету '%s'.", teacher.Username, subject.Name), nil)
	}
}

func (h *Handlers) handleRevokeStart(ctx context.Context, msg Message, _ state.Session) {
	h.stateManager.Reset(msg.UserID, state.StateAwaitingRevokeTeacherChoice)
	h.teacherChoice(ctx, msg, 0, promptRevokeTeacher)
}

func (h *Handlers) handleRevokeTeacherChoice(ctx context.Context, msg Message, s state.Session) {
	if h.adminCancelled(ctx, msg) {
		return
	}
	if isPageControl(msg.Text) {
		h.teacherChoice(ctx, msg, shiftPage(s.TeachersPage, msg.Text), promptRevokeTeacher)
		return
	}

	teacher, ok := h.pickTeacher(ctx, msg, s, promptRevokeTeacher)
	if !ok {
		return
	}

	h.stateManager.Put(msg.UserID, state.KeyTeacherID, teacher.ID)
	h.stateManager.SetState(msg.UserID, state.StateAwaitingRevokeSubjectChoice)
	h.revokeSubjectChoice(ctx, msg, teacher, 0)
}

func (h *Handlers) revokeSubjectChoice(ctx context.Context, msg Message, teacher *model.Teacher, page int) {
	subjects, err := h.accessService.SubjectsOf(ctx, teacher.ID)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to list teacher subjects", err)
		h.finishAccessChange(ctx, msg)
		return
	}
	if len(subjects) == 0 {
		h.send(ctx, msg.ChatID, fmt.Sprintf("У преподавателя %s нет доступа ни к одному предмету.", teacher.Username), nil)
		h.finishAccessChange(ctx, msg)
		return
	}

	h.renderChoice(ctx, msg, state.ListChoiceSubjects, state.KeySubjectsList, subjectRefs(subjects), page,
		fmt.Sprintf("Выберите предмет для отзыва доступа у преподавателя %s:", teacher.Username), BtnBackToAdmin)
}

// handleRevokeSubjectChoice отзывает доступ; состояние сбрасывается при любом исходе
func (h *Handlers) handleRevokeSubjectChoice(ctx context.Context, msg Message, s state.Session) {
	if h.adminCancelled(ctx, msg) {
		return
	}

	rerender := func(page int) {
		teacherID, _ := s.Scratch[state.KeyTeacherID].(int64)
		teacher, err := h.authService.GetTeacher(ctx, teacherID)
		if err != nil || teacher == nil {
			h.send(ctx, msg.ChatID, "❌ Преподаватель не найден.", nil)
			h.finishAccessChange(ctx, msg)
			return
		}
		h.revokeSubjectChoice(ctx, msg, teacher, page)
	}

	if isPageControl(msg.Text) {
		rerender(shiftPage(s.SubjectsPage, msg.Text))
		return
	}

	ref, ok := h.pickSubject(ctx, msg, s, func() { rerender(s.SubjectsPage) })
	if !ok {
		return
	}

	defer h.finishAccessChange(ctx, msg)

	teacher, subject, ok := h.accessTarget(ctx, msg, s, ref.ID)
	if !ok {
		return
	}

	result, err := h.accessService.Revoke(ctx, teacher.ID, subject.ID)
	if err != nil {
		h.logger.Error("Failed to revoke access",
			zap.Int64("teacher_id", teacher.ID),
			zap.Int64("subject_id", subject.ID),
			zap.Error(err))
		h.send(ctx, msg.ChatID, fmt.Sprintf("❌ Произошла ошибка: %v", err), nil)
		return
	}

	switch result {
	case service.RevokeDone:
		h.send(ctx, msg.ChatID,
			fmt.Sprintf("✅ Доступ к предмету '%s' отозван у преподавателя %s!", subject.Name, teacher.Username), nil)
		h.notifyTeacher(ctx, teacher.ID,
			fmt.Sprintf("⚠️ У вас отозван доступ к предмету '%s'.", subject.Name))
	case service.RevokeMissing:
		h.send(ctx, msg.ChatID,
			fmt.Sprintf("❌ У преподавателя %s нет доступа к предмету '%s'.", teacher.Username, subject.Name), nil)
	}
}

// handleTeacherAccesses показывает доступы всех преподавателей
func (h *Handlers) handleTeacherAccesses(ctx context.Context, msg Message, _ state.Session) {
	overview, err := h.accessService.Overview(ctx)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to build access overview", err)
		return
	}
	if len(overview) == 0 {
		h.send(ctx, msg.ChatID, "Нет доступных преподавателей.", keyboard.Static([]string{BtnBackToAdmin}))
		return
	}

	var text strings.Builder
	text.WriteString("👥 Доступы преподавателей:\n\n")
	for _, entry := range overview {
		fmt.Fprintf(&text, "👤 %s:\n", entry.Teacher.Username)
		if len(entry.Subjects) == 0 {
			text.WriteString("  ❌ Нет доступа к предметам\n")
		}
		for _, subject := range entry.Subjects {
			fmt.Fprintf(&text, "  ✅ %s\n", subject.Name)
		}
		text.WriteString("\n")
	}

	h.send(ctx, msg.ChatID, text.String(), keyboard.Static([]string{BtnBackToAdmin}))
}

// handleSubjectAccesses показывает преподавателей каждого предмета
func (h *Handlers) handleSubjectAccesses(ctx context.Context, msg Message, _ state.Session) {
	overview, err := h.accessService.SubjectOverview(ctx)
	if err != nil {
		h.sendInternalError(ctx, msg, "Failed to build access overview", err)
		return
	}
	if len(overview) == 0 {
		h.send(ctx, msg.ChatID, msgNoSubjects, keyboard.Static([]string{BtnBackToAdmin}))
		return
	}

	var text strings.Builder
	text.WriteString("📚 Доступы предметов:\n\n")
	for _, entry := range overview {
		fmt.Fprintf(&text, "📚 %s:\n", entry.Subject.Name)
		if len(entry.Teachers) == 0 {
			text.WriteString("  ❌ Нет преподавателей\n")
		}
		for _, teacher := range entry.Teachers {
			fmt.Fprintf(&text, "  👤 %s\n", teacher.Username)
		}
		text.WriteString("\n")
	}

	h.send(ctx, msg.ChatID, text.String(), keyboard.Static([]string{BtnBackToAdmin}))
}
