package keyboard

import "github.com/go-telegram/bot/models"

// Builder упрощает создание reply клавиатур
type Builder struct {
	rows [][]models.KeyboardButton
}

// NewBuilder создаёт новый builder клавиатуры
func NewBuilder() *Builder {
	return &Builder{
		rows: make([][]models.KeyboardButton, 0),
	}
}

// Row добавляет новый ряд кнопок
func (b *Builder) Row(labels ...string) *Builder {
	if len(labels) == 0 {
		return b
	}

	row := make([]models.KeyboardButton, 0, len(labels))
	for _, label := range labels {
		row = append(row, Button(label))
	}
	b.rows = append(b.rows, row)
	return b
}

// AddRows добавляет несколько рядов кнопок
func (b *Builder) AddRows(rows [][]string) *Builder {
	for _, row := range rows {
		b.Row(row...)
	}
	return b
}

// Button создаёт кнопку
func Button(label string) models.KeyboardButton {
	return models.KeyboardButton{Text: label}
}

// Build создаёт финальную клавиатуру
func (b *Builder) Build() *models.ReplyKeyboardMarkup {
	return &models.ReplyKeyboardMarkup{
		Keyboard:       b.rows,
		ResizeKeyboard: true,
	}
}

// Static собирает клавиатуру из готовых рядов
func Static(rows ...[]string) *models.ReplyKeyboardMarkup {
	return NewBuilder().AddRows(rows).Build()
}

// Markup превращает отрисованную страницу в клавиатуру
func Markup(page Page) *models.ReplyKeyboardMarkup {
	return Static(page.Rows...)
}
