package model

import "time"

// DateLayout — формат календарных дат документов (без времени суток).
const DateLayout = "2006-01-02"

// Document — датированный документ, принадлежащий ровно одной комнате.
// Хранится в таблице documents.
type Document struct {
	// ID — UUID записи (назначается БД)
	ID string
	// RoomID — UUID комнаты-владельца, неизменяем после создания
	RoomID string
	// Name — устаревшее отображаемое имя (fallback для Title)
	Name string
	// Title — основное отображаемое имя
	Title string
	// EffectiveDate — дата вступления в силу (полночь UTC)
	EffectiveDate time.Time
	// ExpirationDate — дата истечения (полночь UTC)
	ExpirationDate time.Time
	// FileURL — публичный URL загруженного файла (nil до загрузки)
	FileURL *string
	// ObjectKey — ключ объекта в хранилище
	ObjectKey *string
	// ThumbnailKey — ключ миниатюры (только для изображений)
	ThumbnailKey *string
	// ContentType — MIME-тип загруженного файла
	ContentType string
	// CreatedAt — время создания записи
	CreatedAt time.Time
}

// DisplayTitle возвращает Title, а если он пуст — Name.
func (d *Document) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

// HasFile сообщает, есть ли у документа разрешимая ссылка на файл.
func (d *Document) HasFile() bool {
	return d.FileURL != nil && *d.FileURL != ""
}

// DocumentPatch — частичное обновление документа.
// nil-поля не изменяются. RoomID не обновляется.
type DocumentPatch struct {
	Title          *string
	Name           *string
	EffectiveDate  *time.Time
	ExpirationDate *time.Time
	FileURL        *string
}

// IsEmpty сообщает, что патч не содержит ни одного поля.
func (p DocumentPatch) IsEmpty() bool {
	return p.Title == nil && p.Name == nil && p.EffectiveDate == nil &&
		p.ExpirationDate == nil && p.FileURL == nil
}

// ParseDate разбирает календарную дату YYYY-MM-DD в полночь UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// TruncateDate приводит момент времени к полуночи UTC того же календарного дня.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
