package service

import "errors"

var (
	ErrEmptyInput         = errors.New("empty input")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTeacherExists      = errors.New("teacher already exists")
	ErrTeacherNotFound    = errors.New("teacher not found")
	ErrSubjectExists      = errors.New("subject already exists")
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrNoSubjectAccess    = errors.New("teacher has no access to subject")
	ErrNotLessonAuthor    = errors.New("teacher is not the lesson author")
	ErrCardNotFound       = errors.New("card not found")
	ErrCardIndex          = errors.New("card index out of range")
	ErrBadCardFormat      = errors.New("bad card format")
)
