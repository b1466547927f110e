package keyboard

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(n int) []Item {
	labels := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		labels = append(labels, fmt.Sprintf("📚 S%d", i))
	}
	return Entities(labels...)
}

func TestPaginatorRenderBounds(t *testing.T) {
	p := Paginator{PageSize: 4, RowWidth: 2}
	items := numbered(10)

	first := p.Render(items, 0)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrev)
	assert.Equal(t, [][]string{{"📚 S1", "📚 S2"}, {"📚 S3", "📚 S4"}, {NextPage}}, first.Rows)

	middle := p.Render(items, 1)
	assert.True(t, middle.HasNext)
	assert.True(t, middle.HasPrev)
	assert.Equal(t, []string{NextPage, PrevPage}, middle.Rows[len(middle.Rows)-1])

	last := p.Render(items, 2)
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrev)
	assert.Equal(t, [][]string{{"📚 S9", "📚 S10"}, {PrevPage}}, last.Rows)
}

func TestPaginatorNeverOverflows(t *testing.T) {
	for n := 0; n <= 20; n++ {
		for size := 1; size <= 7; size++ {
			p := Paginator{PageSize: size, RowWidth: 3}
			for page := 0; page*size <= n+size; page++ {
				got := p.Render(numbered(n), page)
				if (page+1)*size >= n {
					assert.False(t, got.HasNext, "n=%d size=%d page=%d", n, size, page)
				}
				if page == 0 {
					assert.False(t, got.HasPrev, "n=%d size=%d page=%d", n, size, page)
				}
			}
		}
	}
}

func TestPaginatorEmptyList(t *testing.T) {
	got := Lists.Render(nil, 0, "◀️ Назад к предметам")

	assert.False(t, got.HasNext)
	assert.False(t, got.HasPrev)
	assert.Equal(t, [][]string{{"◀️ Назад к предметам"}}, got.Rows)

	assert.Empty(t, Lists.Render(nil, 0).Rows)
}

func TestPaginatorClampsPage(t *testing.T) {
	items := numbered(3)

	negative := Lists.Render(items, -5)
	assert.False(t, negative.HasPrev)
	assert.Equal(t, []string{"📚 S1", "📚 S2", "📚 S3"}, negative.Rows[0])

	past := Lists.Render(items, 4, "Назад")
	assert.True(t, past.HasPrev)
	assert.False(t, past.HasNext)
	assert.Equal(t, [][]string{{PrevPage, "Назад"}}, past.Rows)
}

func TestPaginatorPinsNonEntityItems(t *testing.T) {
	items := append([]Item{{Label: "Добавить карточку"}}, Entities("✏️ Редактировать 1", "🗑️ Удалить 1", "✏️ Редактировать 2", "🗑️ Удалить 2", "✏️ Редактировать 3", "🗑️ Удалить 3")...)

	second := CardActions.Render(items, 1, "◀️ Назад к урокам")
	require.Len(t, second.Rows, 3)
	assert.Equal(t, []string{"Добавить карточку"}, second.Rows[0])
	assert.Equal(t, []string{"✏️ Редактировать 3", "🗑️ Удалить 3"}, second.Rows[1])
	assert.Equal(t, []string{PrevPage, "◀️ Назад к урокам"}, second.Rows[2])
}

func TestPaginatorLastPage(t *testing.T) {
	assert.Equal(t, 0, Lists.LastPage(0))
	assert.Equal(t, 0, Lists.LastPage(6))
	assert.Equal(t, 1, Lists.LastPage(7))
}

func TestMarkup(t *testing.T) {
	kb := Markup(Lists.Render(numbered(4), 0, "Выйти"))

	assert.True(t, kb.ResizeKeyboard)
	require.Len(t, kb.Keyboard, 3)
	assert.Equal(t, "📚 S1", kb.Keyboard[0][0].Text)
	assert.Equal(t, "📚 S4", kb.Keyboard[1][0].Text)
	assert.Equal(t, "Выйти", kb.Keyboard[2][0].Text)
}

func TestPaginatorWindow(t *testing.T) {
	p := Paginator{PageSize: 6, RowWidth: 3}

	tests := []struct {
		page, count int
		start, end  int
	}{
		{page: 0, count: 8, start: 0, end: 6},
		{page: 1, count: 8, start: 6, end: 8},
		{page: 2, count: 8, start: 8, end: 8},
		{page: -1, count: 8, start: 0, end: 6},
		{page: 0, count: 0, start: 0, end: 0},
	}
	for _, tt := range tests {
		start, end := p.Window(tt.page, tt.count)
		assert.Equal(t, tt.start, start, "page %d of %d", tt.page, tt.count)
		assert.Equal(t, tt.end, end, "page %d of %d", tt.page, tt.count)
	}
}
