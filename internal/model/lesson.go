package model

import "time"

// Lesson принадлежит одному предмету и одному автору-учителю.
// Названия могут повторяться даже в одном предмете, поэтому после выбора урок
// всегда адресуется по ID.
type Lesson struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	TeacherID int64     `json:"teacher_id"`
	SubjectID int64     `json:"subject_id"`
	CreatedAt time.Time `json:"created_at"`
}
