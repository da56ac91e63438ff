// Пакет view — модели состояния страниц UI: список комнат, карточка
// комнаты и диалоги создания комнаты и загрузки документа.
// Модели не зависят от HTTP: обработчики UI заполняют их на каждый
// запрос и передают в шаблоны.
package view

import (
	"context"
	"time"

	"github.com/tran-matt/room-doc-tracker/internal/domain/model"
	"github.com/tran-matt/room-doc-tracker/internal/domain/status"
	"github.com/tran-matt/room-doc-tracker/internal/service"
)

// Ключи сообщений об ошибках (каталоги internal/ui/i18n).
const (
	MsgRoomNameRequired   = "error.room_name_required"
	MsgRoomCreateFailed   = "error.room_create_failed"
	MsgUploadFieldsNeeded = "error.upload_fields_required"
	MsgInvalidDate        = "error.invalid_date"
	MsgUploadFailed       = "error.upload_failed"
	MsgRoomsLoadFailed    = "error.rooms_load_failed"
	MsgDocumentsFailed    = "error.documents_load_failed"
	MsgRoomDeleteFailed   = "error.room_delete_failed"
)

// PlaceholderImage — изображение для документов без файла и без миниатюры.
const PlaceholderImage = "/static/img/placeholder.svg"

// RoomStore — операции над комнатами, нужные UI.
type RoomStore interface {
	List(ctx context.Context) ([]*model.Room, error)
	Create(ctx context.Context, name, location string) (*model.Room, error)
	Delete(ctx context.Context, id string) error
}

// DocumentSource — чтение документов комнаты и их классификация.
type DocumentSource interface {
	ListByRoom(ctx context.Context, roomID string) ([]*model.Document, error)
	Classify(doc *model.Document, now time.Time) status.Status
	Now() time.Time
}

// DocumentUploader — загрузка документа с файлом.
type DocumentUploader interface {
	Upload(ctx context.Context, in service.UploadInput) (*model.Document, error)
}

// ThumbnailURL возвращает адрес изображения документа в карточке.
func ThumbnailURL(doc *model.Document) string {
	if doc.HasFile() {
		return "/ui/documents/" + doc.ID + "/thumbnail"
	}
	return PlaceholderImage
}
