package handlers

import (
	"context"
	"strings"

	"github.com/Freeeeeet/tutor_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/tutor_bot/internal/controller/state"
	"go.uber.org/zap"
)

// Маршруты, по которым прошло сообщение; используются в метриках
const (
	RouteGlobal  = "global"
	RouteState   = "state"
	RouteEntity  = "entity"
	RouteStatic  = "static"
	RouteDenied  = "denied"
	RouteIgnored = "ignored"
)

type handlerFunc func(ctx context.Context, msg Message, s state.Session)

// guard проверяет, доступно ли действие в текущей сессии.
// При отказе возвращает текст для пользователя.
type guard func(h *Handlers, msg Message, s state.Session) (string, bool)

type stateRoute struct {
	handle handlerFunc
	// adminOnly - шаг панели администратора: не-администратор игнорируется молча
	adminOnly bool
}

type entityRoute struct {
	prefix string
	guard  guard
	handle handlerFunc
}

type staticRoute struct {
	guard  guard
	handle handlerFunc
}

func guardAny(*Handlers, Message, state.Session) (string, bool) {
	return "", true
}

func guardBrowsing(_ *Handlers, _ Message, s state.Session) (string, bool) {
	if s.State == state.StateStudentBrowsing || s.State == state.StateTeacherBrowsing {
		return "", true
	}
	return msgLoginFirst, false
}

func guardTeacher(_ *Handlers, _ Message, s state.Session) (string, bool) {
	if s.Authenticated && !s.State.IsAdmin() {
		return "", true
	}
	return msgTeacherFirst, false
}

func guardAdmin(h *Handlers, msg Message, s state.Session) (string, bool) {
	if h.isAdmin(msg.UserID) && s.State.IsAdmin() {
		return "", true
	}
	return msgNoAccess, false
}

func (h *Handlers) isAdmin(userID int64) bool {
	return h.adminID != 0 && userID == h.adminID
}

func (h *Handlers) registerRoutes() {
	h.globals = map[string]handlerFunc{
		CmdStart:        h.handleStart,
		BtnMainMenu:     h.handleStart,
		CmdAdmin:        h.handleAdmin,
		CmdLogout:       h.handleLogout,
		CmdCancel:       h.handleCancel,
		BtnCancel:       h.handleCancel,
		BtnTeacherLogin: h.handleTeacherLogin,
		BtnStudentLogin: h.handleStudentLogin,
	}

	h.states = map[state.UserState]stateRoute{
		state.StateAwaitingUsername: {handle: h.handleUsername},
		state.StateAwaitingPassword: {handle: h.handlePassword},

		state.StateAwaitingLessonSubjectChoice: {handle: h.handleLessonSubjectChoice},
		state.StateAwaitingLessonTitle:         {handle: h.handleLessonTitle},
		state.StateAwaitingLessonEditTitle:     {handle: h.handleLessonEditTitle},
		state.StateAwaitingCardLessonChoice:    {handle: h.handleCardLessonChoice},
		state.StateAwaitingCardQuestion:        {handle: h.handleCardQuestion},
		state.StateAwaitingCardAnswer:          {handle: h.handleCardAnswer},
		state.StateAwaitingCardEdit:            {handle: h.handleCardEdit},

		state.StateAwaitingSubjectName:         {handle: h.handleSubjectName, adminOnly: true},
		state.StateAwaitingSubjectDeleteChoice: {handle: h.handleSubjectDeleteChoice, adminOnly: true},
		state.StateAwaitingNewTeacherUsername:  {handle: h.handleNewTeacherUsername, adminOnly: true},
		state.StateAwaitingNewTeacherPassword:  {handle: h.handleNewTeacherPassword, adminOnly: true},
		state.StateAwaitingGrantTeacherChoice:  {handle: h.handleGrantTeacherChoice, adminOnly: true},
		state.StateAwaitingGrantSubjectChoice:  {handle: h.handleGrantSubjectChoice, adminOnly: true},
		state.StateAwaitingRevokeTeacherChoice: {handle: h.handleRevokeTeacherChoice, adminOnly: true},
		state.StateAwaitingRevokeSubjectChoice: {handle: h.handleRevokeSubjectChoice, adminOnly: true},
	}

	h.entities = []entityRoute{
		{prefix: PrefixSubject, guard: guardBrowsing, handle: h.handleSelectSubject},
		{prefix: PrefixLesson, guard: guardBrowsing, handle: h.handleSelectLesson},
		{prefix: PrefixTeacher, guard: guardAdmin, handle: h.handleSelectTeacher},
		{prefix: PrefixEditCard, guard: guardTeacher, handle: h.handleEditCardStart},
		{prefix: PrefixDeleteCard, guard: guardTeacher, handle: h.handleDeleteCard},
	}

	h.statics = map[string]staticRoute{
		BtnLogout:         {guard: guardAny, handle: h.handleLogout},
		keyboard.NextPage: {guard: guardAny, handle: h.handlePageControl},
		keyboard.PrevPage: {guard: guardAny, handle: h.handlePageControl},

		BtnSubjects:       {guard: guardTeacher, handle: h.handleTeacherSubjects},
		BtnBackToSubjects: {guard: guardBrowsing, handle: h.handleBackToSubjects},
		BtnBackToLessons:  {guard: guardBrowsing, handle: h.handleBackToLessons},
		BtnCards:          {guard: guardBrowsing, handle: h.handleShowCards},

		BtnAddLesson:    {guard: guardTeacher, handle: h.handleAddLessonStart},
		BtnEditLesson:   {guard: guardTeacher, handle: h.handleEditLessonStart},
		BtnDeleteLesson: {guard: guardTeacher, handle: h.handleDeleteLesson},
		BtnAddCard:      {guard: guardTeacher, handle: h.handleAddCardStart},

		BtnBackToAdmin:     {guard: guardAdmin, handle: h.handleBackToAdmin},
		BtnAddSubject:      {guard: guardAdmin, handle: h.handleAddSubjectStart},
		BtnDeleteSubject:   {guard: guardAdmin, handle: h.handleDeleteSubjectStart},
		BtnAddTeacher:      {guard: guardAdmin, handle: h.handleAddTeacherStart},
		BtnTeacherList:     {guard: guardAdmin, handle: h.handleTeacherList},
		BtnStats:           {guard: guardAdmin, handle: h.handleStats},
		BtnAccess:          {guard: guardAdmin, handle: h.handleAccessMenu},
		BtnGrant:           {guard: guardAdmin, handle: h.handleGrantStart},
		BtnRevoke:          {guard: guardAdmin, handle: h.handleRevokeStart},
		BtnTeacherAccesses: {guard: guardAdmin, handle: h.handleTeacherAccesses},
		BtnSubjectAccesses: {guard: guardAdmin, handle: h.handleSubjectAccesses},
	}
}

// Handle направляет сообщение ровно одному обработчику и возвращает имя маршрута.
// Порядок: глобальная команда, шаг диалога, кнопка сущности, статическая кнопка.
// Сообщение, для которого нет обработчика, молча игнорируется.
func (h *Handlers) Handle(ctx context.Context, msg Message) string {
	msg.Text = strings.TrimSpace(msg.Text)
	if msg.Text == "" {
		return RouteIgnored
	}

	h.stateManager.Touch(msg.UserID, msg.ChatID)
	s := h.stateManager.Get(msg.UserID)

	if handle, ok := h.globals[msg.Text]; ok {
		handle(ctx, msg, s)
		return RouteGlobal
	}

	if route, ok := h.states[s.State]; ok {
		if route.adminOnly && !h.isAdmin(msg.UserID) {
			h.logger.Warn("Admin step from non-admin ignored",
				zap.Int64("telegram_id", msg.UserID),
				zap.String("state", string(s.State)))
			return RouteIgnored
		}
		route.handle(ctx, msg, s)
		return RouteState
	}

	if _, static := h.statics[msg.Text]; !static {
		for _, route := range h.entities {
			if !strings.HasPrefix(msg.Text, route.prefix) {
				continue
			}
			if !h.allowed(ctx, route.guard, msg, s) {
				return RouteDenied
			}
			route.handle(ctx, msg, s)
			return RouteEntity
		}
	}

	if route, ok := h.statics[msg.Text]; ok {
		if !h.allowed(ctx, route.guard, msg, s) {
			return RouteDenied
		}
		route.handle(ctx, msg, s)
		return RouteStatic
	}

	h.logger.Debug("No handler for message, ignoring",
		zap.Int64("telegram_id", msg.UserID),
		zap.String("state", string(s.State)))
	return RouteIgnored
}

func (h *Handlers) allowed(ctx context.Context, g guard, msg Message, s state.Session) bool {
	text, ok := g(h, msg, s)
	if ok {
		return true
	}

	h.logger.Warn("Action denied",
		zap.Int64("telegram_id", msg.UserID),
		zap.String("state", string(s.State)),
		zap.String("text", msg.Text))
	h.send(ctx, msg.ChatID, text, nil)
	return false
}
