package model

import "time"

// TeacherSubject represents a grant: the teacher may manage lessons of the subject.
// At most one row per (teacher, subject) pair.
type TeacherSubject struct {
	ID        int64     `json:"id"`
	TeacherID int64     `json:"teacher_id"`
	SubjectID int64     `json:"subject_id"`
	GrantedAt time.Time `json:"granted_at"`
}

// TeacherAccess - учитель и предметы, к которым у него есть доступ
type TeacherAccess struct {
	Teacher  *Teacher
	Subjects []*Subject
}

// SubjectAccess - предмет и учителя, у которых есть к нему доступ
type SubjectAccess struct {
	Subject  *Subject
	Teachers []*Teacher
}
