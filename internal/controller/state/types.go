package state

// UserState представляет текущее состояние пользователя в диалоге
type UserState string

const (
	StateUnauthenticated UserState = "unauthenticated" // Нет активного состояния

	// Вход учителя
	StateAwaitingUsername UserState = "awaiting_username"
	StateAwaitingPassword UserState = "awaiting_password"

	// Просмотр предметов, уроков и карточек
	StateStudentBrowsing UserState = "student_browsing"
	StateTeacherBrowsing UserState = "teacher_browsing"

	// Создание урока
	StateAwaitingLessonSubjectChoice UserState = "awaiting_lesson_subject_choice"
	StateAwaitingLessonTitle         UserState = "awaiting_lesson_title"
	StateAwaitingLessonEditTitle     UserState = "awaiting_lesson_edit_title"

	// Карточки
	StateAwaitingCardLessonChoice UserState = "awaiting_card_lesson_choice"
	StateAwaitingCardQuestion     UserState = "awaiting_card_question"
	StateAwaitingCardAnswer       UserState = "awaiting_card_answer"
	StateAwaitingCardEdit         UserState = "awaiting_card_edit"

	// Панель администратора
	StateAdminMenu                   UserState = "admin_menu"
	StateAwaitingSubjectName         UserState = "awaiting_subject_name"
	StateAwaitingSubjectDeleteChoice UserState = "awaiting_subject_delete_choice"
	StateAwaitingNewTeacherUsername  UserState = "awaiting_new_teacher_username"
	StateAwaitingNewTeacherPassword  UserState = "awaiting_new_teacher_password"
	StateAwaitingGrantTeacherChoice  UserState = "awaiting_grant_teacher_choice"
	StateAwaitingGrantSubjectChoice  UserState = "awaiting_grant_subject_choice"
	StateAwaitingRevokeTeacherChoice UserState = "awaiting_revoke_teacher_choice"
	StateAwaitingRevokeSubjectChoice UserState = "awaiting_revoke_subject_choice"
)

// IsAdmin сообщает, что состояние относится к панели администратора
func (s UserState) IsAdmin() bool {
	switch s {
	case StateAdminMenu,
		StateAwaitingSubjectName,
		StateAwaitingSubjectDeleteChoice,
		StateAwaitingNewTeacherUsername,
		StateAwaitingNewTeacherPassword,
		StateAwaitingGrantTeacherChoice,
		StateAwaitingGrantSubjectChoice,
		StateAwaitingRevokeTeacherChoice,
		StateAwaitingRevokeSubjectChoice:
		return true
	}
	return false
}

// ListKind - какой список сейчас показан пользователю; по нему работают
// кнопки перехода между страницами
type ListKind string

const (
	ListNone           ListKind = ""
	ListSubjects       ListKind = "subjects"
	ListLessons        ListKind = "lessons"
	ListCards          ListKind = "cards"
	ListTeachers       ListKind = "teachers"
	ListChoiceSubjects ListKind = "choice_subjects"
	ListChoiceLessons  ListKind = "choice_lessons"
)

// Ключи временных данных
const (
	KeyUsername           = "username"
	KeyNewTeacherUsername = "new_teacher_username"
	KeySubjectID          = "subject_id"
	KeyLessonID           = "lesson_id"
	KeyTeacherID          = "selected_teacher_id"
	KeyCardQuestion       = "card_question"
	KeyEditCardID         = "edit_card_id"

	// Снимки показанных списков
	KeySubjectsList = "subjects_list"
	KeyLessonsList  = "lessons_list"
	KeyTeachersList = "teachers_list"
)

// Ref - элемент снимка страницы: подпись кнопки и ID сущности
type Ref struct {
	ID    int64
	Label string
}

// FindRef ищет элемент снимка по подписи
func FindRef(refs []Ref, label string) (Ref, bool) {
	for _, ref := range refs {
		if ref.Label == label {
			return ref, true
		}
	}
	return Ref{}, false
}

// Session хранит состояние диалога одного пользователя
type Session struct {
	ChatID        int64
	Authenticated bool
	TeacherID     int64
	State         UserState
	Scratch       map[string]interface{} // Временные данные для текущего диалога

	SubjectsPage int
	LessonsPage  int
	CardsPage    int
	TeachersPage int
	ActiveList   ListKind
}

// Page возвращает курсор для списка
func (s Session) Page(kind ListKind) int {
	switch kind {
	case ListSubjects, ListChoiceSubjects:
		return s.SubjectsPage
	case ListLessons, ListChoiceLessons:
		return s.LessonsPage
	case ListCards:
		return s.CardsPage
	case ListTeachers:
		return s.TeachersPage
	}
	return 0
}

func (s *Session) setPage(kind ListKind, page int) {
	switch kind {
	case ListSubjects, ListChoiceSubjects:
		s.SubjectsPage = page
	case ListLessons, ListChoiceLessons:
		s.LessonsPage = page
	case ListCards:
		s.CardsPage = page
	case ListTeachers:
		s.TeachersPage = page
	}
}

func newSession() *Session {
	return &Session{
		State:   StateUnauthenticated,
		Scratch: make(map[string]interface{}),
	}
}
