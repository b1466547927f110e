package keyboard

// Кнопки перехода между страницами
const (
	NextPage = "➡️ Следующая страница"
	PrevPage = "⬅️ Предыдущая страница"
)

// Item - кнопка списка. Кнопки сущностей (Entity) режутся на страницы,
// остальные закрепляются над сеткой на каждой странице.
type Item struct {
	Label  string
	Entity bool
}

// Entities превращает подписи в кнопки сущностей
func Entities(labels ...string) []Item {
	items := make([]Item, 0, len(labels))
	for _, label := range labels {
		items = append(items, Item{Label: label, Entity: true})
	}
	return items
}

// Page - результат отрисовки одной страницы
type Page struct {
	Rows    [][]string
	HasNext bool
	HasPrev bool
}

// Paginator раскладывает список по страницам
type Paginator struct {
	PageSize int
	RowWidth int
}

var (
	// Lists - списки предметов, уроков и учителей: 2 ряда по 3
	Lists = Paginator{PageSize: 6, RowWidth: 3}

	// CardActions - пары "Редактировать/Удалить", по 2 карточки на странице
	CardActions = Paginator{PageSize: 4, RowWidth: 2}
)

// Render отрисовывает страницу page. Отрицательная страница считается нулевой,
// страница за концом списка даёт пустую сетку с кнопкой "назад".
func (p Paginator) Render(items []Item, page int, extra ...string) Page {
	if page < 0 {
		page = 0
	}

	var pinned, entities []string
	for _, item := range items {
		if item.Entity {
			entities = append(entities, item.Label)
		} else {
			pinned = append(pinned, item.Label)
		}
	}

	result := Page{
		HasPrev: page > 0,
		HasNext: (page+1)*p.PageSize < len(entities),
	}

	for _, label := range pinned {
		result.Rows = append(result.Rows, []string{label})
	}

	start, end := p.Window(page, len(entities))
	result.Rows = append(result.Rows, chunk(entities[start:end], p.RowWidth)...)

	var service []string
	if result.HasNext {
		service = append(service, NextPage)
	}
	if result.HasPrev {
		service = append(service, PrevPage)
	}
	service = append(service, extra...)
	if len(service) > 0 {
		result.Rows = append(result.Rows, service)
	}

	return result
}

// Window возвращает границы [start, end) кнопок сущностей страницы page
// в списке из count элементов
func (p Paginator) Window(page, count int) (int, int) {
	if page < 0 {
		page = 0
	}
	start := page * p.PageSize
	if start > count {
		start = count
	}
	end := start + p.PageSize
	if end > count {
		end = count
	}
	return start, end
}

// LastPage возвращает номер последней непустой страницы
func (p Paginator) LastPage(count int) int {
	if count <= 0 {
		return 0
	}
	return (count - 1) / p.PageSize
}

func chunk(labels []string, width int) [][]string {
	if width <= 0 {
		width = 1
	}

	var rows [][]string
	for i := 0; i < len(labels); i += width {
		end := i + width
		if end > len(labels) {
			end = len(labels)
		}
		rows = append(rows, labels[i:end])
	}
	return rows
}
