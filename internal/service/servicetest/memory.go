// Package servicetest содержит in-memory реализации хранилищ для тестов
// сервисов и обработчиков.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Freeeeeet/tutor_bot/internal/model"
	"github.com/Freeeeeet/tutor_bot/internal/service"
	"go.uber.org/zap"
)

type grantKey struct {
	teacherID int64
	subjectID int64
}

// Memory - общее хранилище с каскадным удалением subject -> lesson -> card
type Memory struct {
	mu       sync.Mutex
	nextID   int64
	teachers map[int64]*model.Teacher
	subjects map[int64]*model.Subject
	lessons  map[int64]*model.Lesson
	cards    map[int64]*model.Card
	grants   map[grantKey]time.Time

	// AccessErr, если задан, возвращается всеми операциями с доступами
	AccessErr error
}

func NewMemory() *Memory {
	return &Memory{
		teachers: make(map[int64]*model.Teacher),
		subjects: make(map[int64]*model.Subject),
		lessons:  make(map[int64]*model.Lesson),
		cards:    make(map[int64]*model.Card),
		grants:   make(map[grantKey]time.Time),
	}
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

// GrantCount возвращает число строк доступа
func (m *Memory) GrantCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.grants)
}

// Services собирает все сервисы поверх хранилища
type Services struct {
	Auth     *service.AuthService
	Subjects *service.SubjectService
	Lessons  *service.LessonService
	Cards    *service.CardService
	Access   *service.AccessService
	Stats    *service.StatsService
}

// NewServices создаёт сервисы поверх in-memory хранилища
func NewServices(m *Memory) *Services {
	logger := zap.NewNop()
	teachers := &Teachers{m}
	subjects := &Subjects{m}
	access := &Access{m}
	lessons := service.NewLessonService(&Lessons{m}, subjects, access, logger)

	return &Services{
		Auth:     service.NewAuthService(teachers, logger),
		Subjects: service.NewSubjectService(subjects, access, logger),
		Lessons:  lessons,
		Cards:    service.NewCardService(&Cards{m}, lessons, logger),
		Access:   service.NewAccessService(access, teachers, subjects, logger),
		Stats:    service.NewStatsService(&Stats{m}),
	}
}

func copyOf[T any](v *T) *T {
	c := *v
	return &c
}

// Teachers реализует service.TeacherStore
type Teachers struct{ m *Memory }

func (r *Teachers) Create(_ context.Context, teacher *model.Teacher) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	teacher.ID = r.m.id()
	teacher.CreatedAt = time.Now()
	r.m.teachers[teacher.ID] = copyOf(teacher)
	return nil
}

func (r *Teachers) GetByID(_ context.Context, id int64) (*model.Teacher, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if t, ok := r.m.teachers[id]; ok {
		return copyOf(t), nil
	}
	return nil, nil
}

func (r *Teachers) GetByUsername(_ context.Context, username string) (*model.Teacher, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, t := range r.m.teachers {
		if t.Username == username {
			return copyOf(t), nil
		}
	}
	return nil, nil
}

func (r *Teachers) List(_ context.Context) ([]*model.Teacher, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var list []*model.Teacher
	for _, t := range r.m.teachers {
		list = append(list, copyOf(t))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	return list, nil
}

// Subjects реализует service.SubjectStore
type Subjects struct{ m *Memory }

func (r *Subjects) Create(_ context.Context, subject *model.Subject) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	subject.ID = r.m.id()
	subject.CreatedAt = time.Now()
	r.m.subjects[subject.ID] = copyOf(subject)
	return nil
}

func (r *Subjects) GetByID(_ context.Context, id int64) (*model.Subject, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if s, ok := r.m.subjects[id]; ok {
		return copyOf(s), nil
	}
	return nil, nil
}

func (r *Subjects) GetByName(_ context.Context, name string) (*model.Subject, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, s := range r.m.subjects {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return copyOf(s), nil
		}
	}
	return nil, nil
}

func (r *Subjects) List(_ context.Context) ([]*model.Subject, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.m.sortedSubjects(func(*model.Subject) bool { return true }), nil
}

func (r *Subjects) Delete(_ context.Context, id int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.subjects[id]; !ok {
		return false, nil
	}
	delete(r.m.subjects, id)
	for lessonID, l := range r.m.lessons {
		if l.SubjectID == id {
			r.m.deleteLesson(lessonID)
		}
	}
	for key := range r.m.grants {
		if key.subjectID == id {
			delete(r.m.grants, key)
		}
	}
	return true, nil
}

func (m *Memory) sortedSubjects(keep func(*model.Subject) bool) []*model.Subject {
	var list []*model.Subject
	for _, s := range m.subjects {
		if keep(s) {
			list = append(list, copyOf(s))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

func (m *Memory) deleteLesson(id int64) {
	delete(m.lessons, id)
	for cardID, c := range m.cards {
		if c.LessonID == id {
			delete(m.cards, cardID)
		}
	}
}

// Lessons реализует service.LessonStore
type Lessons struct{ m *Memory }

func (r *Lessons) Create(_ context.Context, lesson *model.Lesson) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	lesson.ID = r.m.id()
	lesson.CreatedAt = time.Now()
	r.m.lessons[lesson.ID] = copyOf(lesson)
	return nil
}

func (r *Lessons) GetByID(_ context.Context, id int64) (*model.Lesson, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if l, ok := r.m.lessons[id]; ok {
		return copyOf(l), nil
	}
	return nil, nil
}

func (r *Lessons) ListBySubject(_ context.Context, subjectID int64) ([]*model.Lesson, error) {
	return r.list(func(l *model.Lesson) bool { return l.SubjectID == subjectID }), nil
}

func (r *Lessons) ListByTeacher(_ context.Context, teacherID int64) ([]*model.Lesson, error) {
	return r.list(func(l *model.Lesson) bool { return l.TeacherID == teacherID }), nil
}

func (r *Lessons) list(keep func(*model.Lesson) bool) []*model.Lesson {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var list []*model.Lesson
	for _, l := range r.m.lessons {
		if keep(l) {
			list = append(list, copyOf(l))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (r *Lessons) UpdateTitle(_ context.Context, id int64, title string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	l, ok := r.m.lessons[id]
	if !ok {
		return false, nil
	}
	l.Title = title
	return true, nil
}

func (r *Lessons) Delete(_ context.Context, id int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.lessons[id]; !ok {
		return false, nil
	}
	r.m.deleteLesson(id)
	return true, nil
}

// Cards реализует service.CardStore
type Cards struct{ m *Memory }

func (r *Cards) Create(_ context.Context, card *model.Card) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	card.ID = r.m.id()
	card.CreatedAt = time.Now()
	r.m.cards[card.ID] = copyOf(card)
	return nil
}

func (r *Cards) GetByID(_ context.Context, id int64) (*model.Card, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if c, ok := r.m.cards[id]; ok {
		return copyOf(c), nil
	}
	return nil, nil
}

func (r *Cards) ListByLesson(_ context.Context, lessonID int64) ([]*model.Card, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var list []*model.Card
	for _, c := range r.m.cards {
		if c.LessonID == lessonID {
			list = append(list, copyOf(c))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *Cards) Update(_ context.Context, card *model.Card) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.cards[card.ID]
	if !ok {
		return false, nil
	}
	c.Question = card.Question
	c.Answer = card.Answer
	return true, nil
}

func (r *Cards) Delete(_ context.Context, id int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.cards[id]; !ok {
		return false, nil
	}
	delete(r.m.cards, id)
	return true, nil
}

// Access реализует service.AccessStore
type Access struct{ m *Memory }

func (r *Access) HasAccess(_ context.Context, teacherID, subjectID int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.AccessErr != nil {
		return false, r.m.AccessErr
	}
	_, ok := r.m.grants[grantKey{teacherID, subjectID}]
	return ok, nil
}

func (r *Access) Grant(_ context.Context, teacherID, subjectID int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.AccessErr != nil {
		return false, r.m.AccessErr
	}
	key := grantKey{teacherID, subjectID}
	if _, ok := r.m.grants[key]; ok {
		return false, nil
	}
	r.m.grants[key] = time.Now()
	return true, nil
}

func (r *Access) Revoke(_ context.Context, teacherID, subjectID int64) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.AccessErr != nil {
		return false, r.m.AccessErr
	}
	key := grantKey{teacherID, subjectID}
	if _, ok := r.m.grants[key]; !ok {
		return false, nil
	}
	delete(r.m.grants, key)
	return true, nil
}

func (r *Access) SubjectsOfTeacher(_ context.Context, teacherID int64) ([]*model.Subject, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.AccessErr != nil {
		return nil, r.m.AccessErr
	}
	return r.m.sortedSubjects(func(s *model.Subject) bool {
		_, ok := r.m.grants[grantKey{teacherID, s.ID}]
		return ok
	}), nil
}

func (r *Access) TeachersOfSubject(_ context.Context, subjectID int64) ([]*model.Teacher, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.AccessErr != nil {
		return nil, r.m.AccessErr
	}
	var list []*model.Teacher
	for key := range r.m.grants {
		if key.subjectID == subjectID {
			if t, ok := r.m.teachers[key.teacherID]; ok {
				list = append(list, copyOf(t))
			}
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Username < list[j].Username })
	return list, nil
}

// Stats реализует service.StatsStore
type Stats struct{ m *Memory }

func (r *Stats) Counts(_ context.Context) (*model.Stats, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return &model.Stats{
		Teachers: int64(len(r.m.teachers)),
		Subjects: int64(len(r.m.subjects)),
		Lessons:  int64(len(r.m.lessons)),
		Cards:    int64(len(r.m.cards)),
	}, nil
}
