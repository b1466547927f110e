package state

import (
	"sort"
	"sync"
)

// Manager управляет состояниями пользователей.
// Одна таблица на процесс: обработчик может читать и менять сессию любого
// пользователя (нужно для уведомлений при выдаче доступа).
type Manager struct {
	mu           sync.RWMutex
	sessions     map[int64]*Session           // telegramID -> Session
	teacherUsers map[int64]map[int64]struct{} // teacherID -> telegramID всех открытых входов
}

// NewManager создаёт новый менеджер состояний
func NewManager() *Manager {
	return &Manager{
		sessions:     make(map[int64]*Session),
		teacherUsers: make(map[int64]map[int64]struct{}),
	}
}

// session возвращает сессию, создавая её при необходимости. Вызывать под mu.Lock.
func (sm *Manager) session(telegramID int64) *Session {
	s, ok := sm.sessions[telegramID]
	if !ok {
		s = newSession()
		sm.sessions[telegramID] = s
	}
	return s
}

// Get возвращает копию сессии или сессию по умолчанию
func (sm *Manager) Get(telegramID int64) Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	s, ok := sm.sessions[telegramID]
	if !ok {
		return *newSession()
	}

	c := *s
	c.Scratch = make(map[string]interface{}, len(s.Scratch))
	for k, v := range s.Scratch {
		c.Scratch[k] = v
	}
	return c
}

// Touch создаёт сессию при первом сообщении и запоминает чат
func (sm *Manager) Touch(telegramID, chatID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.session(telegramID).ChatID = chatID
}

// GetState получает текущее состояние пользователя
func (sm *Manager) GetState(telegramID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if s, exists := sm.sessions[telegramID]; exists {
		return s.State
	}
	return StateUnauthenticated
}

// SetState устанавливает состояние пользователя
func (sm *Manager) SetState(telegramID int64, state UserState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.session(telegramID).State = state
}

// Reset переводит пользователя в новое состояние и удаляет все временные
// данные, кроме перечисленных в keep
func (sm *Manager) Reset(telegramID int64, state UserState, keep ...string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	s := sm.session(telegramID)
	s.State = state

	kept := make(map[string]interface{}, len(keep))
	for _, key := range keep {
		if v, ok := s.Scratch[key]; ok {
			kept[key] = v
		}
	}
	s.Scratch = kept
}

// Put сохраняет временные данные пользователя
func (sm *Manager) Put(telegramID int64, key string, value interface{}) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.session(telegramID).Scratch[key] = value
}

// Peek читает временные данные без удаления
func (sm *Manager) Peek(telegramID int64, key string) (interface{}, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if s, exists := sm.sessions[telegramID]; exists {
		value, ok := s.Scratch[key]
		return value, ok
	}
	return nil, false
}

// Take читает и удаляет временные данные за один шаг
func (sm *Manager) Take(telegramID int64, key string) (interface{}, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	s, exists := sm.sessions[telegramID]
	if !exists {
		return nil, false
	}
	value, ok := s.Scratch[key]
	delete(s.Scratch, key)
	return value, ok
}

// Delete удаляет временные данные
func (sm *Manager) Delete(telegramID int64, keys ...string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if s, exists := sm.sessions[telegramID]; exists {
		for _, key := range keys {
			delete(s.Scratch, key)
		}
	}
}

// PeekInt64 читает временное значение как int64
func (sm *Manager) PeekInt64(telegramID int64, key string) (int64, bool) {
	value, ok := sm.Peek(telegramID, key)
	if !ok {
		return 0, false
	}
	v, ok := value.(int64)
	return v, ok
}

// PeekString читает временное значение как строку
func (sm *Manager) PeekString(telegramID int64, key string) (string, bool) {
	value, ok := sm.Peek(telegramID, key)
	if !ok {
		return "", false
	}
	v, ok := value.(string)
	return v, ok
}

// PeekRefs читает снимок показанного списка
func (sm *Manager) PeekRefs(telegramID int64, key string) ([]Ref, bool) {
	value, ok := sm.Peek(telegramID, key)
	if !ok {
		return nil, false
	}
	v, ok := value.([]Ref)
	return v, ok
}

// SetPage запоминает курсор списка и делает список активным
func (sm *Manager) SetPage(telegramID int64, kind ListKind, page int) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	s := sm.session(telegramID)
	s.setPage(kind, page)
	s.ActiveList = kind
}

// Authenticate отмечает вход учителя и обновляет обратную связь
// teacherID -> чаты для уведомлений. Один учитель может войти с нескольких
// аккаунтов Telegram.
func (sm *Manager) Authenticate(telegramID, chatID, teacherID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	s := sm.session(telegramID)
	if s.Authenticated && s.TeacherID != teacherID {
		sm.unlinkTeacher(s.TeacherID, telegramID)
	}
	s.ChatID = chatID
	s.Authenticated = true
	s.TeacherID = teacherID

	users, ok := sm.teacherUsers[teacherID]
	if !ok {
		users = make(map[int64]struct{})
		sm.teacherUsers[teacherID] = users
	}
	users[telegramID] = struct{}{}
}

// TeacherChats возвращает чаты всех открытых сессий учителя
func (sm *Manager) TeacherChats(teacherID int64) []int64 {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	var chats []int64
	for telegramID := range sm.teacherUsers[teacherID] {
		s, ok := sm.sessions[telegramID]
		if !ok || !s.Authenticated || s.TeacherID != teacherID {
			continue
		}
		chats = append(chats, s.ChatID)
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i] < chats[j] })
	return chats
}

// Clear очищает состояние, вход и данные пользователя
func (sm *Manager) Clear(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if s, ok := sm.sessions[telegramID]; ok && s.Authenticated {
		sm.unlinkTeacher(s.TeacherID, telegramID)
	}
	delete(sm.sessions, telegramID)
}

// unlinkTeacher убирает сессию из обратной связи. Вызывать под mu.Lock.
func (sm *Manager) unlinkTeacher(teacherID, telegramID int64) {
	users := sm.teacherUsers[teacherID]
	delete(users, telegramID)
	if len(users) == 0 {
		delete(sm.teacherUsers, teacherID)
	}
}

// Count возвращает количество активных сессий
func (sm *Manager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return len(sm.sessions)
}

// SetActiveList запоминает, какой список показан пользователю
func (sm *Manager) SetActiveList(telegramID int64, kind ListKind) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.session(telegramID).ActiveList = kind
}
