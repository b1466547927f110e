package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/Freeeeeet/tutor_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/tutor_bot/internal/controller/state"
	"github.com/Freeeeeet/tutor_bot/internal/model"
	"github.com/Freeeeeet/tutor_bot/internal/service/servicetest"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	adminUserID   int64 = 1
	teacherUserID int64 = 100
	studentUserID int64 = 200
)

type sentMessage struct {
	ChatID  int64
	Text    string
	Buttons []string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (r *recordingSender) Send(_ context.Context, chatID int64, text string, kb models.ReplyMarkup) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msg := sentMessage{ChatID: chatID, Text: text}
	if markup, ok := kb.(*models.ReplyKeyboardMarkup); ok {
		for _, row := range markup.Keyboard {
			for _, button := range row {
				msg.Buttons = append(msg.Buttons, button.Text)
			}
		}
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingSender) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}

func (r *recordingSender) last() sentMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return sentMessage{}
	}
	return r.sent[len(r.sent)-1]
}

func (r *recordingSender) texts(chatID int64) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var texts []string
	for _, msg := range r.sent {
		if msg.ChatID == chatID {
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

type fixture struct {
	t        *testing.T
	memory   *servicetest.Memory
	services *servicetest.Services
	states   *state.Manager
	sender   *recordingSender
	handlers *Handlers
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	memory := servicetest.NewMemory()
	services := servicetest.NewServices(memory)
	states := state.NewManager()
	sender := &recordingSender{}

	h := NewHandlers(Services{
		Auth:     services.Auth,
		Subjects: services.Subjects,
		Lessons:  services.Lessons,
		Cards:    services.Cards,
		Access:   services.Access,
		Stats:    services.Stats,
	}, states, sender, adminUserID, zap.NewNop())

	return &fixture{t: t, memory: memory, services: services, states: states, sender: sender, handlers: h}
}

func (f *fixture) send(userID int64, text string) string {
	return f.handlers.Handle(context.Background(), Message{UserID: userID, ChatID: userID, Text: text})
}

func (f *fixture) teacher(username string) *model.Teacher {
	f.t.Helper()
	teacher, err := f.services.Auth.CreateTeacher(context.Background(), username, "secret")
	require.NoError(f.t, err)
	return teacher
}

func (f *fixture) subject(name string) *model.Subject {
	f.t.Helper()
	subject, err := f.services.Subjects.Create(context.Background(), name, nil)
	require.NoError(f.t, err)
	return subject
}

func (f *fixture) grant(teacher *model.Teacher, subject *model.Subject) {
	f.t.Helper()
	_, err := f.services.Access.Grant(context.Background(), teacher.ID, subject.ID)
	require.NoError(f.t, err)
}

func (f *fixture) login(userID int64, username string) {
	f.t.Helper()
	f.send(userID, BtnTeacherLogin)
	f.send(userID, username)
	f.send(userID, "secret")
	require.Equal(f.t, state.StateTeacherBrowsing, f.states.GetState(userID))
}

func TestHandle_TeacherLogin(t *testing.T) {
	f := newFixture(t)
	anna := f.teacher("anna")
	math := f.subject("Math")
	f.subject("Physics")
	f.grant(anna, math)

	assert.Equal(t, RouteGlobal, f.send(teacherUserID, BtnTeacherLogin))
	assert.Equal(t, state.StateAwaitingUsername, f.states.GetState(teacherUserID))

	assert.Equal(t, RouteState, f.send(teacherUserID, "anna"))
	assert.Equal(t, state.StateAwaitingPassword, f.states.GetState(teacherUserID))

	f.send(teacherUserID, "secret")

	s := f.states.Get(teacherUserID)
	assert.True(t, s.Authenticated)
	assert.Equal(t, anna.ID, s.TeacherID)
	assert.Equal(t, state.StateTeacherBrowsing, s.State)
	assert.NotContains(t, s.Scratch, state.KeyUsername)

	last := f.sender.last()
	assert.Contains(t, last.Buttons, PrefixSubject+"Math")
	assert.NotContains(t, last.Buttons, PrefixSubject+"Physics")
	assert.Contains(t, last.Buttons, BtnLogout)
}

func TestHandle_WrongPasswordAsksUsernameAgain(t *testing.T) {
	f := newFixture(t)
	f.teacher("anna")

	f.send(teacherUserID, BtnTeacherLogin)
	f.send(teacherUserID, "anna")
	f.send(teacherUserID, "wrong")

	s := f.states.Get(teacherUserID)
	assert.False(t, s.Authenticated)
	assert.Equal(t, state.StateAwaitingUsername, s.State)
	assert.Contains(t, f.sender.texts(teacherUserID), "Неверное имя пользователя или пароль. Попробуйте снова.")
}

func TestHandle_LogoutClearsSession(t *testing.T) {
	f := newFixture(t)
	anna := f.teacher("anna")
	math := f.subject("Math")
	f.grant(anna, math)
	f.login(teacherUserID, "anna")
	f.send(teacherUserID, PrefixSubject+"Math")

	f.send(teacherUserID, BtnLogout)

	s := f.states.Get(teacherUserID)
	assert.False(t, s.Authenticated)
	assert.Zero(t, s.TeacherID)
	assert.Equal(t, state.StateUnauthenticated, s.State)
	assert.Empty(t, s.Scratch)

	assert.Empty(t, f.states.TeacherChats(anna.ID))
}

func TestHandle_StaleSubjectSelection(t *testing.T) {
	f := newFixture(t)
	math := f.subject("Math")
	f.subject("Physics")

	f.send(studentUserID, BtnStudentLogin)
	require.Contains(t, f.sender.last().Buttons, PrefixSubject+"Math")

	require.NoError(t, f.services.Subjects.Delete(context.Background(), math.ID))
	f.sender.reset()

	assert.Equal(t, RouteEntity, f.send(studentUserID, PrefixSubject+"Math"))

	texts := f.sender.texts(studentUserID)
	require.Len(t, texts, 2)
	assert.Equal(t, msgSubjectGone, texts[0])

	last := f.sender.last()
	assert.NotContains(t, last.Buttons, PrefixSubject+"Math")
	assert.Contains(t, last.Buttons, PrefixSubject+"Physics")

	s := f.states.Get(studentUserID)
	assert.Equal(t, state.StateStudentBrowsing, s.State)
	assert.NotContains(t, s.Scratch, state.KeySubjectID)
}

func TestHandle_SubjectNotOnShownPage(t *testing.T) {
	f := newFixture(t)
	f.subject("Math")

	f.send(studentUserID, BtnStudentLogin)
	f.subject("Chemistry")
	f.sender.reset()

	f.send(studentUserID, PrefixSubject+"Chemistry")

	texts := f.sender.texts(studentUserID)
	require.NotEmpty(t, texts)
	assert.Equal(t, msgStaleSubject, texts[0])
	assert.Contains(t, f.sender.last().Buttons, PrefixSubject+"Chemistry")
}

func TestHandle_StudentBrowsesLessonsAndCards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anna := f.teacher("anna")
	math := f.subject("Math")
	f.grant(anna, math)
	lesson, err := f.services.Lessons.Create(ctx, anna.ID, math.ID, "Fractions")
	require.NoError(t, err)
	_, err = f.services.Cards.AddBatch(ctx, anna.ID, lesson.ID, "1/2+1/2%1;2/4")
	require.NoError(t, err)

	f.send(studentUserID, BtnStudentLogin)
	f.send(studentUserID, PrefixSubject+"Math")
	assert.Contains(t, f.sender.last().Buttons, PrefixLesson+"Fractions")
	assert.NotContains(t, f.sender.last().Buttons, BtnAddLesson)

	f.send(studentUserID, PrefixLesson+"Fractions")
	assert.NotContains(t, f.sender.last().Buttons, BtnEditLesson)

	f.send(studentUserID, BtnCards)
	last := f.sender.last()
	assert.Contains(t, last.Text, "1. 1/2+1/2 - 1")
	assert.Contains(t, last.Text, "2. 2/4 - (нет ответа)")
	assert.NotContains(t, last.Buttons, BtnAddCard)

	assert.Equal(t, RouteDenied, f.send(studentUserID, PrefixDeleteCard+"1"))
	cards, err := f.services.Cards.List(ctx, lesson.ID)
	require.NoError(t, err)
	assert.Len(t, cards, 2)
}

func TestHandle_DuplicateLessonTitlesGetIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anna := f.teacher("anna")
	boris := f.teacher("boris")
	math := f.subject("Math")
	f.grant(anna, math)
	f.grant(boris, math)

	first, err := f.services.Lessons.Create(ctx, anna.ID, math.ID, "Intro")
	require.NoError(t, err)
	second, err := f.services.Lessons.Create(ctx, boris.ID, math.ID, "Intro")
	require.NoError(t, err)

	f.send(studentUserID, BtnStudentLogin)
	f.send(studentUserID, PrefixSubject+"Math")

	buttons := f.sender.last().Buttons
	assert.Contains(t, buttons, fmt.Sprintf("%sIntro #%d", PrefixLesson, first.ID))
	assert.Contains(t, buttons, fmt.Sprintf("%sIntro #%d", PrefixLesson, second.ID))

	f.send(studentUserID, fmt.Sprintf("%sIntro #%d", PrefixLesson, second.ID))
	lessonID, ok := f.states.PeekInt64(studentUserID, state.KeyLessonID)
	require.True(t, ok)
	assert.Equal(t, second.ID, lessonID)
}

func TestHandle_PageControls(t *testing.T) {
	f := newFixture(t)
	for i := 1; i <= 8; i++ {
		f.subject(fmt.Sprintf("S%d", i))
	}

	f.send(studentUserID, BtnStudentLogin)
	first := f.sender.last().Buttons
	assert.Contains(t, first, keyboard.NextPage)
	assert.NotContains(t, first, keyboard.PrevPage)
	assert.Contains(t, first, PrefixSubject+"S6")
	assert.NotContains(t, first, PrefixSubject+"S7")

	assert.Equal(t, RouteStatic, f.send(studentUserID, keyboard.NextPage))
	second := f.sender.last().Buttons
	assert.NotContains(t, second, keyboard.NextPage)
	assert.Contains(t, second, keyboard.PrevPage)
	assert.Contains(t, second, PrefixSubject+"S7")
	assert.Contains(t, second, PrefixSubject+"S8")
	assert.Equal(t, 1, f.states.Get(studentUserID).SubjectsPage)

	// Снимок страницы обновился: S1 больше не на экране
	f.sender.reset()
	f.send(studentUserID, PrefixSubject+"S1")
	assert.Equal(t, msgStaleSubject, f.sender.texts(studentUserID)[0])
}

func TestHandle_SilentDrop(t *testing.T) {
	f := newFixture(t)
	f.subject("Math")

	assert.Equal(t, RouteIgnored, f.send(studentUserID, "привет"))
	assert.Empty(t, f.sender.texts(studentUserID))

	f.send(studentUserID, BtnStudentLogin)
	f.sender.reset()

	assert.Equal(t, RouteIgnored, f.send(studentUserID, "какой-то текст"))
	assert.Empty(t, f.sender.texts(studentUserID))
	assert.Equal(t, state.StateStudentBrowsing, f.states.GetState(studentUserID))

	assert.Equal(t, RouteIgnored, f.send(studentUserID, "   "))
	assert.Empty(t, f.sender.texts(studentUserID))
}

func TestHandle_NonAdminDenied(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, RouteGlobal, f.send(studentUserID, CmdAdmin))
	assert.Equal(t, msgNoAdminPanel, f.sender.last().Text)
	assert.Equal(t, state.StateUnauthenticated, f.states.GetState(studentUserID))

	assert.Equal(t, RouteDenied, f.send(studentUserID, BtnStats))
	assert.Equal(t, msgNoAccess, f.sender.last().Text)

	// Админский шаг у обычного пользователя молча игнорируется
	f.states.SetState(studentUserID, state.StateAwaitingSubjectName)
	f.sender.reset()

	assert.Equal(t, RouteIgnored, f.send(studentUserID, "Physics"))
	assert.Empty(t, f.sender.texts(studentUserID))

	subject, err := f.services.Subjects.GetByName(context.Background(), "Physics")
	require.NoError(t, err)
	assert.Nil(t, subject)
}

func TestHandle_AdminDisabledWithoutID(t *testing.T) {
	f := newFixture(t)
	f.handlers.adminID = 0

	f.send(0, CmdAdmin)
	assert.Equal(t, msgNoAdminPanel, f.sender.last().Text)
}

func TestHandle_AdminCreatesSubjectAndTeacher(t *testing.T) {
	f := newFixture(t)

	f.send(adminUserID, CmdAdmin)
	assert.Equal(t, state.StateAdminMenu, f.states.GetState(adminUserID))

	f.send(adminUserID, BtnAddSubject)
	assert.Equal(t, state.StateAwaitingSubjectName, f.states.GetState(adminUserID))
	f.send(adminUserID, "Math%Алгебра")
	assert.Contains(t, f.sender.texts(adminUserID), "Предмет 'Math' успешно добавлен!")
	assert.Equal(t, state.StateAdminMenu, f.states.GetState(adminUserID))

	subject, err := f.services.Subjects.GetByName(context.Background(), "Math")
	require.NoError(t, err)
	require.NotNil(t, subject)
	require.NotNil(t, subject.Description)
	assert.Equal(t, "Алгебра", *subject.Description)

	f.send(adminUserID, BtnAddSubject)
	f.send(adminUserID, "math")
	assert.Contains(t, f.sender.texts(adminUserID), "Предмет 'math' уже существует.")

	f.send(adminUserID, BtnAddTeacher)
	f.send(adminUserID, "anna")
	f.send(adminUserID, "secret")
	assert.Contains(t, f.sender.texts(adminUserID), "Преподаватель anna успешно добавлен!")

	_, err = f.services.Auth.Login(context.Background(), "anna", "secret")
	assert.NoError(t, err)
}

func TestHandle_AdminMenuButtonCancelsStep(t *testing.T) {
	f := newFixture(t)

	f.send(adminUserID, CmdAdmin)
	f.send(adminUserID, BtnAddSubject)
	f.send(adminUserID, BtnStats)

	assert.Equal(t, state.StateAdminMenu, f.states.GetState(adminUserID))
	subjects, err := f.services.Subjects.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, subjects)
}

func TestHandle_GrantAccessNotifiesTeacher(t *testing.T) {
	f := newFixture(t)
	anna := f.teacher("anna")
	math := f.subject("Math")
	f.login(teacherUserID, "anna")

	f.send(adminUserID, CmdAdmin)
	f.send(adminUserID, BtnAccess)
	f.send(adminUserID, BtnGrant)
	assert.Contains(t, f.sender.last().Buttons, PrefixTeacher+"anna")

	f.send(adminUserID, PrefixTeacher+"anna")
	assert.Equal(t, state.StateAwaitingGrantSubjectChoice, f.states.GetState(adminUserID))
	assert.Contains(t, f.sender.last().Buttons, PrefixSubject+"Math")

	assert.Equal(t, RouteState, f.send(adminUserID, PrefixSubject+"Math"))
	assert.Contains(t, f.sender.texts(adminUserID), "✅ Доступ к предмету 'Math' предоставлен преподавателю anna!")
	assert.Equal(t, state.StateAdminMenu, f.states.GetState(adminUserID))

	notified := false
	for _, text := range f.sender.texts(teacherUserID) {
		if strings.HasPrefix(text, "🎉 Вам предоставлен доступ к предмету 'Math'") {
			notified = true
		}
	}
	assert.True(t, notified)

	has, err := f.services.Access.HasAccess(context.Background(), anna.ID, math.ID)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestHandle_GrantTwiceKeepsOneRow(t *testing.T) {
	f := newFixture(t)
	anna := f.teacher("anna")
	math := f.subject("Math")

	f.send(adminUserID, CmdAdmin)
	f.send(adminUserID, BtnGrant)
	f.send(adminUserID, PrefixTeacher+"anna")

	// Доступ выдан, пока администратор смотрит на список предметов
	f.grant(anna, math)

	f.send(adminUserID, PrefixSubject+"Math")
	assert.Contains(t, f.sender.texts(adminUserID), "❌ У преподавателя anna уже есть доступ к предмету 'Math'.")
	assert.Equal(t, 1, f.memory.GrantCount())
	assert.Equal(t, state.StateAdminMenu, f.states.GetState(adminUserID))

	f.send(adminUserID, BtnGrant)
	f.send(adminUserID, PrefixTeacher+"anna")
	assert.Contains(t, f.sender.texts(adminUserID), "У преподавателя anna уже есть доступ ко всем предметам.")
	assert.Equal(t, state.StateAdminMenu, f.states.GetState(adminUserID))
}

func TestHandle_GrantErrorResetsToAdminMenu(t *testing.T) {
	f := newFixture(t)
	f.teacher("anna")
	f.subject("Math")

	f.send(adminUserID, CmdAdmin)
	f.send(adminUserID, BtnGrant)
	f.send(adminUserID, PrefixTeacher+"anna")

	f.memory.AccessErr = errors.New("connection reset")
	f.send(adminUserID, PrefixSubject+"Math")

	failed := false
	for _, text := range f.sender.texts(adminUserID) {
		if strings.HasPrefix(text, "❌ Произошла ошибка:") {
			failed = true
		}
	}
	assert.True(t, failed)
	assert.Equal(t, state.StateAdminMenu, f.states.GetState(adminUserID))
	assert.NotContains(t, f.states.Get(adminUserID).Scratch, state.KeyTeacherID)
}

func TestHandle_RevokeAccess(t *testing.T) {
	f := newFixture(t)
	anna := f.teacher("anna")
	math := f.subject("Math")
	f.grant(anna, math)
	f.login(teacherUserID, "anna")

	f.send(adminUserID, CmdAdmin)
	f.send(adminUserID, BtnRevoke)
	f.send(adminUserID, PrefixTeacher+"anna")
	f.send(adminUserID, PrefixSubject+"Math")

	assert.Contains(t, f.sender.texts(adminUserID), "✅ Доступ к предмету 'Math' отозван у преподавателя anna!")
	assert.Contains(t, f.sender.texts(teacherUserID), "⚠️ У вас отозван доступ к предмету 'Math'.")
	assert.Equal(t, 0, f.memory.GrantCount())
}

func TestHandle_AccessOverview(t *testing.T) {
	f := newFixture(t)
	anna := f.teacher("anna")
	f.teacher("boris")
	math := f.subject("Math")
	f.grant(anna, math)

	f.send(adminUserID, CmdAdmin)
	f.send(adminUserID, BtnTeacherAccesses)

	text := f.sender.last().Text
	assert.Contains(t, text, "👤 anna:\n  ✅ Math")
	assert.Contains(t, text, "👤 boris:\n  ❌ Нет доступа к предметам")
}

type cardsFixture struct {
	*fixture
	lesson *model.Lesson
}

func newCardsFixture(t *testing.T, cards int) cardsFixture {
	t.Helper()
	f := newFixture(t)
	ctx := context.Background()

	anna := f.teacher("anna")
	math := f.subject("Math")
	f.grant(anna, math)
	lesson, err := f.services.Lessons.Create(ctx, anna.ID, math.ID, "Fractions")
	require.NoError(t, err)
	for i := 1; i <= cards; i++ {
		_, err := f.services.Cards.Add(ctx, anna.ID, lesson.ID, fmt.Sprintf("Q%d", i), fmt.Sprintf("A%d", i))
		require.NoError(t, err)
	}

	f.login(teacherUserID, "anna")
	f.send(teacherUserID, PrefixSubject+"Math")
	f.send(teacherUserID, PrefixLesson+"Fractions")
	f.send(teacherUserID, BtnCards)

	return cardsFixture{fixture: f, lesson: lesson}
}

func TestHandle_DeleteCardByAbsoluteIndex(t *testing.T) {
	f := newCardsFixture(t, 10)

	first := f.sender.last().Buttons
	assert.Contains(t, first, BtnAddCard)
	assert.Contains(t, first, PrefixDeleteCard+"2")
	assert.NotContains(t, first, PrefixDeleteCard+"3")

	f.send(teacherUserID, keyboard.NextPage)
	f.send(teacherUserID, keyboard.NextPage)
	assert.Equal(t, 2, f.states.Get(teacherUserID).CardsPage)
	assert.Contains(t, f.sender.last().Buttons, PrefixDeleteCard+"5")

	assert.Equal(t, RouteEntity, f.send(teacherUserID, PrefixDeleteCard+"7"))
	assert.Contains(t, f.sender.texts(teacherUserID), "Карточка успешно удалена!")

	cards, err := f.services.Cards.List(context.Background(), f.lesson.ID)
	require.NoError(t, err)
	require.Len(t, cards, 9)
	for _, card := range cards {
		assert.NotEqual(t, "Q7", card.Question)
	}

	f.send(teacherUserID, PrefixDeleteCard+"10")
	assert.Contains(t, f.sender.texts(teacherUserID), msgBadCardNumber)
}

func TestHandle_EditCard(t *testing.T) {
	f := newCardsFixture(t, 3)

	f.send(teacherUserID, PrefixEditCard+"3")
	assert.Equal(t, state.StateAwaitingCardEdit, f.states.GetState(teacherUserID))

	f.send(teacherUserID, "без разделителя")
	assert.Equal(t, state.StateAwaitingCardEdit, f.states.GetState(teacherUserID))

	f.send(teacherUserID, "Новый%Ответ")
	assert.Equal(t, state.StateTeacherBrowsing, f.states.GetState(teacherUserID))

	card, err := f.services.Cards.At(context.Background(), f.lesson.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "Новый", card.Question)
	assert.Equal(t, "Ответ", card.Answer)
}

func TestHandle_AddCardsInBatch(t *testing.T) {
	f := newCardsFixture(t, 0)

	f.send(teacherUserID, BtnAddCard)
	assert.Equal(t, state.StateAwaitingCardQuestion, f.states.GetState(teacherUserID))

	f.send(teacherUserID, "Q1%A1;Q2%A2")
	assert.Contains(t, f.sender.texts(teacherUserID), "Добавлено карточек: 2!")
	assert.Equal(t, state.StateTeacherBrowsing, f.states.GetState(teacherUserID))

	f.send(teacherUserID, BtnAddCard)
	f.send(teacherUserID, ";;")
	assert.True(t, strings.HasPrefix(f.sender.last().Text, "Не удалось добавить ни одной карточки."))
	assert.Equal(t, state.StateAwaitingCardQuestion, f.states.GetState(teacherUserID))

	f.send(teacherUserID, "Сколько будет 2+2?")
	assert.Equal(t, state.StateAwaitingCardAnswer, f.states.GetState(teacherUserID))
	f.send(teacherUserID, "4")
	assert.Contains(t, f.sender.texts(teacherUserID), "Карточка успешно добавлена!")

	cards, err := f.services.Cards.List(context.Background(), f.lesson.ID)
	require.NoError(t, err)
	assert.Len(t, cards, 3)
}

func TestHandle_OnlyAuthorSeesLessonActions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anna := f.teacher("anna")
	boris := f.teacher("boris")
	math := f.subject("Math")
	f.grant(anna, math)
	f.grant(boris, math)
	_, err := f.services.Lessons.Create(ctx, anna.ID, math.ID, "Fractions")
	require.NoError(t, err)

	f.login(teacherUserID, "boris")
	f.send(teacherUserID, PrefixSubject+"Math")
	f.send(teacherUserID, PrefixLesson+"Fractions")
	assert.NotContains(t, f.sender.last().Buttons, BtnDeleteLesson)

	f.send(teacherUserID, BtnDeleteLesson)
	assert.Contains(t, f.sender.texts(teacherUserID), msgNotAuthor)

	lessons, err := f.services.Lessons.ListBySubject(ctx, math.ID)
	require.NoError(t, err)
	assert.Len(t, lessons, 1)
}

func TestHandle_CreateLesson(t *testing.T) {
	f := newFixture(t)
	anna := f.teacher("anna")
	math := f.subject("Math")
	f.grant(anna, math)
	f.login(teacherUserID, "anna")

	f.send(teacherUserID, PrefixSubject+"Math")
	f.send(teacherUserID, BtnAddLesson)
	assert.Equal(t, state.StateAwaitingLessonTitle, f.states.GetState(teacherUserID))

	f.send(teacherUserID, "Fractions")
	assert.Contains(t, f.sender.texts(teacherUserID), "Урок 'Fractions' успешно добавлен!")
	assert.Contains(t, f.sender.last().Buttons, PrefixLesson+"Fractions")

	lessons, err := f.services.Lessons.ListBySubject(context.Background(), math.ID)
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, anna.ID, lessons[0].TeacherID)
}

func TestHandle_CancelReturnsToLessons(t *testing.T) {
	f := newFixture(t)
	anna := f.teacher("anna")
	math := f.subject("Math")
	f.grant(anna, math)
	f.login(teacherUserID, "anna")

	f.send(teacherUserID, PrefixSubject+"Math")
	f.send(teacherUserID, BtnAddLesson)
	assert.Equal(t, RouteGlobal, f.send(teacherUserID, CmdCancel))

	assert.Equal(t, state.StateTeacherBrowsing, f.states.GetState(teacherUserID))
	assert.Equal(t, "В предмете 'Math' пока нет уроков.", f.sender.last().Text)

	lessons, err := f.services.Lessons.ListBySubject(context.Background(), math.ID)
	require.NoError(t, err)
	assert.Empty(t, lessons)
}

func TestHandle_OffPageSelectionIsStale(t *testing.T) {
	ctx := context.Background()

	subjects := func(f *fixture) []*model.Subject {
		var list []*model.Subject
		for i := 1; i <= 8; i++ {
			list = append(list, f.subject(fmt.Sprintf("S%d", i)))
		}
		return list
	}
	teacherLessons := func(f *fixture) {
		anna := f.teacher("anna")
		math := f.subject("Math")
		f.grant(anna, math)
		for i := 1; i <= 8; i++ {
			_, err := f.services.Lessons.Create(ctx, anna.ID, math.ID, fmt.Sprintf("L%d", i))
			require.NoError(f.t, err)
		}
	}

	tests := []struct {
		name    string
		userID  int64
		setup   func(f *fixture)
		open    []string
		offPage string
		onPage  string
		stale   string
		check   func(t *testing.T, f *fixture)
	}{
		{
			name:    "student subjects",
			userID:  studentUserID,
			setup:   func(f *fixture) { subjects(f) },
			open:    []string{BtnStudentLogin},
			offPage: PrefixSubject + "S1",
			onPage:  PrefixSubject + "S7",
			stale:   msgStaleSubject,
			check: func(t *testing.T, f *fixture) {
				assert.NotContains(t, f.states.Get(studentUserID).Scratch, state.KeySubjectID)
			},
		},
		{
			name:   "lessons",
			userID: studentUserID,
			setup: func(f *fixture) {
				teacherLessons(f)
			},
			open:    []string{BtnStudentLogin, PrefixSubject + "Math"},
			offPage: PrefixLesson + "L1",
			onPage:  PrefixLesson + "L8",
			stale:   msgStaleLesson,
			check: func(t *testing.T, f *fixture) {
				assert.NotContains(t, f.states.Get(studentUserID).Scratch, state.KeyLessonID)
			},
		},
		{
			name:   "teacher list",
			userID: adminUserID,
			setup: func(f *fixture) {
				for i := 1; i <= 8; i++ {
					f.teacher(fmt.Sprintf("t%d", i))
				}
			},
			open:    []string{CmdAdmin, BtnTeacherList},
			offPage: PrefixTeacher + "t1",
			onPage:  PrefixTeacher + "t7",
			stale:   msgStaleTeacher,
		},
		{
			name:   "grant teacher choice",
			userID: adminUserID,
			setup: func(f *fixture) {
				f.subject("Math")
				for i := 1; i <= 8; i++ {
					f.teacher(fmt.Sprintf("t%d", i))
				}
			},
			open:    []string{CmdAdmin, BtnGrant},
			offPage: PrefixTeacher + "t1",
			onPage:  PrefixTeacher + "t8",
			stale:   msgStaleTeacher,
			check: func(t *testing.T, f *fixture) {
				assert.Equal(t, state.StateAwaitingGrantTeacherChoice, f.states.GetState(adminUserID))
				assert.NotContains(t, f.states.Get(adminUserID).Scratch, state.KeyTeacherID)
			},
		},
		{
			name:   "grant subject choice",
			userID: adminUserID,
			setup: func(f *fixture) {
				f.teacher("anna")
				subjects(f)
			},
			open:    []string{CmdAdmin, BtnGrant, PrefixTeacher + "anna"},
			offPage: PrefixSubject + "S1",
			onPage:  PrefixSubject + "S7",
			stale:   msgStaleSubject,
			check: func(t *testing.T, f *fixture) {
				assert.Equal(t, state.StateAwaitingGrantSubjectChoice, f.states.GetState(adminUserID))
				assert.Equal(t, 0, f.memory.GrantCount())
			},
		},
		{
			name:   "revoke subject choice",
			userID: adminUserID,
			setup: func(f *fixture) {
				anna := f.teacher("anna")
				for _, subject := range subjects(f) {
					f.grant(anna, subject)
				}
			},
			open:    []string{CmdAdmin, BtnRevoke, PrefixTeacher + "anna"},
			offPage: PrefixSubject + "S1",
			onPage:  PrefixSubject + "S7",
			stale:   msgStaleSubject,
			check: func(t *testing.T, f *fixture) {
				assert.Equal(t, state.StateAwaitingRevokeSubjectChoice, f.states.GetState(adminUserID))
				assert.Equal(t, 8, f.memory.GrantCount())
			},
		},
		{
			name:    "delete subject choice",
			userID:  adminUserID,
			setup:   func(f *fixture) { subjects(f) },
			open:    []string{CmdAdmin, BtnDeleteSubject},
			offPage: PrefixSubject + "S1",
			onPage:  PrefixSubject + "S7",
			stale:   msgStaleSubject,
			check: func(t *testing.T, f *fixture) {
				subject, err := f.services.Subjects.GetByName(ctx, "S1")
				require.NoError(t, err)
				assert.NotNil(t, subject)
			},
		},
		{
			name:   "lesson subject choice",
			userID: teacherUserID,
			setup: func(f *fixture) {
				anna := f.teacher("anna")
				for _, subject := range subjects(f) {
					f.grant(anna, subject)
				}
				f.login(teacherUserID, "anna")
			},
			open:    []string{BtnAddLesson},
			offPage: PrefixSubject + "S1",
			onPage:  PrefixSubject + "S7",
			stale:   msgStaleSubject,
			check: func(t *testing.T, f *fixture) {
				assert.Equal(t, state.StateAwaitingLessonSubjectChoice, f.states.GetState(teacherUserID))
			},
		},
		{
			name:   "card lesson choice",
			userID: teacherUserID,
			setup: func(f *fixture) {
				teacherLessons(f)
				f.login(teacherUserID, "anna")
			},
			open:    []string{BtnAddCard},
			offPage: PrefixLesson + "L1",
			onPage:  PrefixLesson + "L8",
			stale:   msgStaleLesson,
			check: func(t *testing.T, f *fixture) {
				assert.Equal(t, state.StateAwaitingCardLessonChoice, f.states.GetState(teacherUserID))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f)
			for _, text := range tt.open {
				f.send(tt.userID, text)
			}
			require.Contains(t, f.sender.last().Buttons, tt.offPage)

			f.send(tt.userID, keyboard.NextPage)
			shown := f.sender.last().Buttons
			require.Contains(t, shown, tt.onPage)
			require.NotContains(t, shown, tt.offPage)

			f.sender.reset()
			f.send(tt.userID, tt.offPage)
			texts := f.sender.texts(tt.userID)
			require.NotEmpty(t, texts)
			assert.Equal(t, tt.stale, texts[0])
			assert.Contains(t, f.sender.last().Buttons, tt.onPage)
			if tt.check != nil {
				tt.check(t, f)
			}

			f.sender.reset()
			f.send(tt.userID, tt.onPage)
			assert.NotContains(t, f.sender.texts(tt.userID), tt.stale)
		})
	}
}

func TestSplitLines(t *testing.T) {
	long := strings.Repeat("я", 1500)
	lines := []string{"Вот карточки этого урока:", long, long, long}

	parts := splitLines(lines)
	require.Len(t, parts, 2)
	assert.Equal(t, lines[0]+"\n"+long+"\n"+long+"\n", parts[0])
	assert.Equal(t, long+"\n", parts[1])
	for _, part := range parts {
		assert.LessOrEqual(t, utf8.RuneCountInString(part), maxMessageLength)
	}

	assert.Equal(t, []string{"a\nb\n"}, splitLines([]string{"a", "b"}))
	assert.Empty(t, splitLines(nil))
}

func TestHandle_LongCardListIsSplit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anna := f.teacher("anna")
	math := f.subject("Math")
	f.grant(anna, math)
	lesson, err := f.services.Lessons.Create(ctx, anna.ID, math.ID, "Fractions")
	require.NoError(t, err)
	for i := 1; i <= 12; i++ {
		question := fmt.Sprintf("Q%d %s", i, strings.Repeat("x", 500))
		_, err := f.services.Cards.Add(ctx, anna.ID, lesson.ID, question, fmt.Sprintf("A%d", i))
		require.NoError(t, err)
	}

	f.login(teacherUserID, "anna")
	f.send(teacherUserID, PrefixSubject+"Math")
	f.send(teacherUserID, PrefixLesson+"Fractions")
	f.sender.reset()
	f.send(teacherUserID, BtnCards)

	texts := f.sender.texts(teacherUserID)
	require.Greater(t, len(texts), 1)
	joined := strings.Join(texts, "")
	for i := 1; i <= 12; i++ {
		assert.Contains(t, joined, fmt.Sprintf("%d. Q%d ", i, i))
	}
	assert.Contains(t, joined, "12. Q12 "+strings.Repeat("x", 500)+" - A12")
	for _, text := range texts {
		assert.LessOrEqual(t, utf8.RuneCountInString(text), maxMessageLength)
	}
	assert.Contains(t, f.sender.last().Buttons, BtnBackToLessons)
}
