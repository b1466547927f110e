package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerGetDefault(t *testing.T) {
	m := NewManager()

	s := m.Get(42)
	assert.Equal(t, StateUnauthenticated, s.State)
	assert.False(t, s.Authenticated)
	assert.Zero(t, s.TeacherID)
	assert.Empty(t, s.Scratch)
	assert.Zero(t, s.SubjectsPage)
	assert.Equal(t, 0, m.Count())
}

func TestManagerTakeRemovesValue(t *testing.T) {
	m := NewManager()
	m.Put(1, KeyUsername, "anna")

	v, ok := m.Take(1, KeyUsername)
	require.True(t, ok)
	assert.Equal(t, "anna", v)

	_, ok = m.Take(1, KeyUsername)
	assert.False(t, ok)
}

func TestManagerGetReturnsCopy(t *testing.T) {
	m := NewManager()
	m.Put(1, KeySubjectID, int64(5))

	s := m.Get(1)
	s.Scratch[KeySubjectID] = int64(6)

	id, ok := m.PeekInt64(1, KeySubjectID)
	require.True(t, ok)
	assert.Equal(t, int64(5), id)
}

func TestManagerResetKeepsOnlyListedKeys(t *testing.T) {
	m := NewManager()
	m.Put(1, KeySubjectID, int64(3))
	m.Put(1, KeyCardQuestion, "stale")
	m.Put(1, KeyTeacherID, int64(9))

	m.Reset(1, StateAwaitingLessonTitle, KeySubjectID)

	s := m.Get(1)
	assert.Equal(t, StateAwaitingLessonTitle, s.State)
	assert.Equal(t, map[string]interface{}{KeySubjectID: int64(3)}, s.Scratch)
}

func TestManagerLogoutIsolation(t *testing.T) {
	m := NewManager()
	m.Authenticate(1, 100, 7)
	m.SetState(1, StateAwaitingCardQuestion)
	m.Put(1, KeyLessonID, int64(11))
	m.SetPage(1, ListCards, 3)

	m.Clear(1)

	s := m.Get(1)
	assert.False(t, s.Authenticated)
	assert.Zero(t, s.TeacherID)
	assert.Equal(t, StateUnauthenticated, s.State)
	assert.Empty(t, s.Scratch)
	assert.Zero(t, s.CardsPage)

	assert.Empty(t, m.TeacherChats(7))
}

func TestManagerTeacherChats(t *testing.T) {
	m := NewManager()
	assert.Empty(t, m.TeacherChats(7))

	m.Authenticate(1, 100, 7)
	assert.Equal(t, []int64{100}, m.TeacherChats(7))

	// второй аккаунт того же учителя
	m.Authenticate(2, 200, 7)
	assert.Equal(t, []int64{100, 200}, m.TeacherChats(7))

	// выход одного аккаунта не отключает уведомления другого
	m.Clear(2)
	assert.Equal(t, []int64{100}, m.TeacherChats(7))

	// вход под другим учителем убирает старую связь
	m.Authenticate(1, 100, 8)
	assert.Empty(t, m.TeacherChats(7))
	assert.Equal(t, []int64{100}, m.TeacherChats(8))
}

func TestManagerPages(t *testing.T) {
	m := NewManager()

	m.SetPage(1, ListChoiceSubjects, 2)
	s := m.Get(1)
	assert.Equal(t, 2, s.SubjectsPage)
	assert.Equal(t, ListChoiceSubjects, s.ActiveList)
	assert.Equal(t, 2, s.Page(ListSubjects))

	m.SetPage(1, ListCards, 1)
	assert.Equal(t, 1, m.Get(1).Page(ListCards))
	assert.Equal(t, ListCards, m.Get(1).ActiveList)

	m.SetActiveList(1, ListNone)
	assert.Equal(t, ListNone, m.Get(1).ActiveList)
}

func TestManagerPeekRefs(t *testing.T) {
	m := NewManager()
	refs := []Ref{{ID: 1, Label: "📚 Math"}, {ID: 2, Label: "📚 Physics"}}
	m.Put(1, KeySubjectsList, refs)

	got, ok := m.PeekRefs(1, KeySubjectsList)
	require.True(t, ok)

	ref, ok := FindRef(got, "📚 Physics")
	require.True(t, ok)
	assert.Equal(t, int64(2), ref.ID)

	_, ok = FindRef(got, "📚 Chemistry")
	assert.False(t, ok)
}

func TestUserStateIsAdmin(t *testing.T) {
	assert.True(t, StateAdminMenu.IsAdmin())
	assert.True(t, StateAwaitingRevokeSubjectChoice.IsAdmin())
	assert.False(t, StateTeacherBrowsing.IsAdmin())
	assert.False(t, StateUnauthenticated.IsAdmin())
}
