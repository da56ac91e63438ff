// dto.go — представления ресурсов JSON API.
package handlers

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/tran-matt/room-doc-tracker/internal/domain/model"
	"github.com/tran-matt/room-doc-tracker/internal/domain/status"
	"github.com/tran-matt/room-doc-tracker/internal/service"
)

// roomInput — тело создания и обновления комнаты.
type roomInput struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// roomResponse — комната.
type roomResponse struct {
	ID        openapi_types.UUID `json:"id"`
	Name      string             `json:"name"`
	Location  string             `json:"location"`
	CreatedAt time.Time          `json:"created_at"`
}

type roomListResponse struct {
	Items []roomResponse `json:"items"`
}

// documentPatchInput — тело частичного обновления документа.
type documentPatchInput struct {
	Title          *string             `json:"title,omitempty"`
	Name           *string             `json:"name,omitempty"`
	EffectiveDate  *openapi_types.Date `json:"effective_date,omitempty"`
	ExpirationDate *openapi_types.Date `json:"expiration_date,omitempty"`
	FileURL        *string             `json:"file_url,omitempty"`
}

// toPatch переводит тело запроса в model.DocumentPatch.
func (in documentPatchInput) toPatch() model.DocumentPatch {
	patch := model.DocumentPatch{
		Title:   in.Title,
		Name:    in.Name,
		FileURL: in.FileURL,
	}
	if in.EffectiveDate != nil {
		d := model.TruncateDate(in.EffectiveDate.Time)
		patch.EffectiveDate = &d
	}
	if in.ExpirationDate != nil {
		d := model.TruncateDate(in.ExpirationDate.Time)
		patch.ExpirationDate = &d
	}
	return patch
}

// documentResponse — документ со статусом на момент запроса.
type documentResponse struct {
	ID                  openapi_types.UUID `json:"id"`
	RoomID              openapi_types.UUID `json:"room_id"`
	Name                string             `json:"name"`
	Title               string             `json:"title"`
	EffectiveDate       openapi_types.Date `json:"effective_date"`
	ExpirationDate      openapi_types.Date `json:"expiration_date"`
	FileURL             *string            `json:"file_url"`
	ContentType         string             `json:"content_type,omitempty"`
	HasThumbnail        bool               `json:"has_thumbnail"`
	Status              status.Status      `json:"status"`
	DaysUntilExpiration int                `json:"days_until_expiration"`
	CreatedAt           time.Time          `json:"created_at"`
}

type documentListResponse struct {
	Items []documentResponse `json:"items"`
}

// roomStatusResponse — агрегированный статус комнаты.
type roomStatusResponse struct {
	RoomID         openapi_types.UUID `json:"room_id"`
	Status         status.Status      `json:"status"`
	Total          int                `json:"total"`
	Expired        int                `json:"expired"`
	ExpiringSoon   int                `json:"expiring_soon"`
	Valid          int                `json:"valid"`
	WarnWindowDays int                `json:"warn_window_days"`
}

// toUUID переводит строковый идентификатор из БД в UUID.
func toUUID(s string) openapi_types.UUID {
	id, _ := uuid.Parse(s)
	return id
}

func toRoomResponse(r *model.Room) roomResponse {
	return roomResponse{
		ID:        toUUID(r.ID),
		Name:      r.Name,
		Location:  r.Location,
		CreatedAt: r.CreatedAt,
	}
}

func toDocumentResponse(d *model.Document, st status.Status, now time.Time) documentResponse {
	return documentResponse{
		ID:                  toUUID(d.ID),
		RoomID:              toUUID(d.RoomID),
		Name:                d.Name,
		Title:               d.DisplayTitle(),
		EffectiveDate:       openapi_types.Date{Time: d.EffectiveDate},
		ExpirationDate:      openapi_types.Date{Time: d.ExpirationDate},
		FileURL:             d.FileURL,
		ContentType:         d.ContentType,
		HasThumbnail:        d.ThumbnailKey != nil && *d.ThumbnailKey != "",
		Status:              st,
		DaysUntilExpiration: status.DaysUntil(d.ExpirationDate, now),
		CreatedAt:           d.CreatedAt,
	}
}

func toRoomStatusResponse(roomID string, s service.RoomStatusSummary, warnWindow int) roomStatusResponse {
	return roomStatusResponse{
		RoomID:         toUUID(roomID),
		Status:         s.Status,
		Total:          s.Total,
		Expired:        s.Expired,
		ExpiringSoon:   s.ExpiringSoon,
		Valid:          s.Valid,
		WarnWindowDays: warnWindow,
	}
}
