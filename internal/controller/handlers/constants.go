package handlers

// Ограничения длины, совпадают с размерами колонок в БД
const (
	UsernameMaxLength    = 50
	SubjectNameMaxLength = 100
	LessonTitleMaxLength = 100
)
