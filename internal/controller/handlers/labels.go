package handlers

// Команды
const (
	CmdStart  = "/start"
	CmdAdmin  = "/admin"
	CmdLogout = "/logout"
	CmdCancel = "/cancel"
)

// Главное меню
const (
	BtnTeacherLogin = "👨‍🏫 Войти как преподаватель"
	BtnStudentLogin = "👨‍🎓 Войти как ученик"
	BtnMainMenu     = "◀️ В главное меню"
	BtnCancel       = "❌ Отмена"
	BtnLogout       = "Выйти"
)

// Просмотр предметов, уроков и карточек
const (
	BtnSubjects       = "📚 Предметы"
	BtnAddLesson      = "Добавить урок"
	BtnBackToSubjects = "◀️ Назад к предметам"
	BtnCards          = "📝 Карточки"
	BtnEditLesson     = "✏️ Редактировать урок"
	BtnDeleteLesson   = "🗑️ Удалить урок"
	BtnBackToLessons  = "◀️ Назад к урокам"
	BtnAddCard        = "Добавить карточку"
)

// Панель администратора
const (
	BtnAddTeacher      = "👥 Добавить преподавателя"
	BtnTeacherList     = "📋 Список преподавателей"
	BtnAddSubject      = "📚 Добавить предмет"
	BtnDeleteSubject   = "🗑️ Удалить предмет"
	BtnAccess          = "🔐 Управление доступом"
	BtnStats           = "📊 Статистика"
	BtnGrant           = "➕ Предоставить доступ"
	BtnRevoke          = "➖ Отозвать доступ"
	BtnTeacherAccesses = "👥 Доступы преподавателей"
	BtnSubjectAccesses = "📚 Доступы предметов"
	BtnBackToAdmin     = "◀️ В админ-панель"
)

// Префиксы кнопок сущностей
const (
	PrefixSubject    = "📚 "
	PrefixLesson     = "📖 "
	PrefixTeacher    = "👤 "
	PrefixEditCard   = "✏️ Редактировать "
	PrefixDeleteCard = "🗑️ Удалить "
)

// adminMenuLabels - кнопки панели администратора; ввод такой кнопки
// в текстовом шаге отменяет шаг
var adminMenuLabels = map[string]struct{}{
	BtnAddTeacher:      {},
	BtnTeacherList:     {},
	BtnAddSubject:      {},
	BtnDeleteSubject:   {},
	BtnAccess:          {},
	BtnStats:           {},
	BtnGrant:           {},
	BtnRevoke:          {},
	BtnTeacherAccesses: {},
	BtnSubjectAccesses: {},
	BtnBackToAdmin:     {},
}

// Тексты
const (
	msgWelcome         = "Добро пожаловать! Выберите, как вы хотите войти:"
	msgLoggedOut       = "Вы вышли из системы. Выберите, как вы хотите войти:"
	msgInternalError   = "❌ Произошла ошибка. Попробуйте позже."
	msgNoAccess        = "У вас нет доступа к этой функции."
	msgNoAdminPanel    = "У вас нет доступа к панели администратора."
	msgLoginFirst      = "Пожалуйста, сначала войдите в систему."
	msgTeacherFirst    = "Пожалуйста, сначала войдите в систему как преподаватель."
	msgSelectLesson    = "Пожалуйста, сначала выберите урок."
	msgChooseSubject   = "Пожалуйста, выберите предмет из списка."
	msgChooseLesson    = "Пожалуйста, выберите урок из списка."
	msgChooseTeacher   = "Пожалуйста, выберите преподавателя из списка."
	msgStaleSubject    = "Предмет не найден (возможно, устарела страница). Пожалуйста, выберите предмет заново."
	msgStaleLesson     = "Урок не найден (возможно, устарела страница). Пожалуйста, выберите урок заново."
	msgStaleTeacher    = "Преподаватель не найден (возможно, устарела страница). Пожалуйста, выберите преподавателя заново."
	msgSubjectGone     = "Предмет больше не существует. Список обновлён."
	msgLessonGone      = "Урок больше не существует. Список обновлён."
	msgTeacherGone     = "Преподаватель больше не существует. Список обновлён."
	msgBadCardNumber   = "Некорректный номер карточки."
	msgNotAuthor       = "Это может сделать только автор урока."
	msgNoTeacherAccess = "У вас нет доступа ни к одному предмету. Обратитесь к администратору."
	msgNoSubjects      = "Пока нет доступных предметов."
	msgNoTeachers      = "Нет зарегистрированных преподавателей."
	msgCardPrompt      = "- Для одной карточки: Вопрос%Ответ\n" +
		"- Для нескольких: Вопрос1%Ответ1;Вопрос2%Ответ2\n" +
		"(вопрос и ответ разделяются %, карточки разделяются ;)\n" +
		"Или отправьте только вопрос, ответ спрошу следующим сообщением."
)
