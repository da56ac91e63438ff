// Пакет pages — страницы и HTMX-фрагменты UI.
// Шаблоны html/template встроены в бинарник и отдаются как templ-компоненты
// (templ.FromGoHTML). Переводы подставляются функциями t/tf по языку запроса.
package pages

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/a-h/templ"

	"github.com/tran-matt/room-doc-tracker/internal/domain/model"
	"github.com/tran-matt/room-doc-tracker/internal/domain/status"
	"github.com/tran-matt/room-doc-tracker/internal/ui/i18n"
	"github.com/tran-matt/room-doc-tracker/internal/ui/view"
)

//go:embed templates/*.html
var templateFS embed.FS

// Имена страниц.
const (
	PageRooms = "rooms"
	PageRoom  = "room"
)

// Имена фрагментов.
const (
	PartialRoomGrid     = "room-grid"
	PartialRoomSlot     = "room-slot"
	PartialRoomCard     = "room-card"
	PartialRoomDialog   = "room-dialog"
	PartialUploadDialog = "upload-dialog"
	PartialAlert        = "alert"
	PartialDialogClose  = "dialog-close"
)

// pageFiles — файлы шаблонов каждой страницы поверх общих layout и partials.
var pageFiles = map[string]string{
	PageRooms: "templates/rooms.html",
	PageRoom:  "templates/room.html",
}

// RoomsPageData — страница списка комнат.
type RoomsPageData struct {
	List    *view.RoomList
	Filters []FilterOption
}

// FilterOption — вариант фильтра по статусу.
type FilterOption struct {
	Value    status.Filter
	Selected bool
}

// FilterOptions возвращает варианты фильтра с отмеченным текущим.
func FilterOptions(current status.Filter) []FilterOption {
	all := []status.Filter{status.FilterAll, status.FilterExpired, status.FilterExpiring, status.FilterValid}
	out := make([]FilterOption, len(all))
	for i, f := range all {
		out[i] = FilterOption{Value: f, Selected: f == current}
	}
	return out
}

// RoomPageData — страница комнаты.
type RoomPageData struct {
	Card           *view.RoomCard
	WarnWindowDays int
}

// Renderer — набор разобранных шаблонов. Исходные шаблоны не исполняются:
// на каждый запрос берётся клон с функциями перевода нужного языка.
type Renderer struct {
	pages    map[string]*template.Template
	partials *template.Template
	bundle   *i18n.Bundle
}

// NewRenderer разбирает встроенные шаблоны.
func NewRenderer(bundle *i18n.Bundle) (*Renderer, error) {
	r := &Renderer{
		pages:  make(map[string]*template.Template, len(pageFiles)),
		bundle: bundle,
	}

	partials, err := template.New("partials").Funcs(baseFuncs()).
		ParseFS(templateFS, "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора фрагментов: %w", err)
	}
	r.partials = partials

	for name, file := range pageFiles {
		t, err := template.New(name).Funcs(baseFuncs()).
			ParseFS(templateFS, "templates/layout.html", "templates/partials.html", file)
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора страницы %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Page возвращает компонент полной страницы.
func (r *Renderer) Page(ctx context.Context, name string, data any) (templ.Component, error) {
	base, ok := r.pages[name]
	if !ok {
		return nil, fmt.Errorf("неизвестная страница %s", name)
	}
	return r.component(ctx, base, "layout", data)
}

// Partial возвращает компонент HTMX-фрагмента.
func (r *Renderer) Partial(ctx context.Context, name string, data any) (templ.Component, error) {
	return r.component(ctx, r.partials, name, data)
}

func (r *Renderer) component(ctx context.Context, base *template.Template, name string, data any) (templ.Component, error) {
	t, err := base.Clone()
	if err != nil {
		return nil, fmt.Errorf("ошибка клонирования шаблона: %w", err)
	}
	t.Funcs(r.langFuncs(i18n.LangFromContext(ctx)))

	entry := t.Lookup(name)
	if entry == nil {
		return nil, fmt.Errorf("шаблон %s не найден", name)
	}
	return templ.FromGoHTML(entry, data), nil
}

func (r *Renderer) langFuncs(lang string) template.FuncMap {
	return template.FuncMap{
		"t":    func(key string) string { return r.bundle.Translate(lang, key) },
		"tf":   func(key string, args ...any) string { return r.bundle.Translatef(lang, key, args...) },
		"lang": func() string { return lang },
	}
}

// baseFuncs — функции, доступные шаблонам при разборе.
// t, tf и lang переопределяются в клоне под язык запроса.
func baseFuncs() template.FuncMap {
	return template.FuncMap{
		"t":         func(key string) string { return key },
		"tf":        func(key string, _ ...any) string { return key },
		"lang":      func() string { return i18n.DefaultLanguage },
		"languages": func() []string { return i18n.Languages },
		"date":      formatDate,
		"abs": func(n int) int {
			if n < 0 {
				return -n
			}
			return n
		},
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}
