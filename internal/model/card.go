package model

import "time"

type Card struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"` // пустая строка - ответа нет
	LessonID  int64     `json:"lesson_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CardDraft - карточка, разобранная из пользовательского ввода, но ещё не сохранённая
type CardDraft struct {
	Question string
	Answer   string
}
