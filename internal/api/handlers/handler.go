// handler.go — основной обработчик JSON API (/api/v1).
// Делегирует запросы в сервисный слой и переводит ошибки сервисов
// в стандартный формат ответа.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/tran-matt/room-doc-tracker/internal/api/errors"
	"github.com/tran-matt/room-doc-tracker/internal/domain/model"
	"github.com/tran-matt/room-doc-tracker/internal/domain/status"
	"github.com/tran-matt/room-doc-tracker/internal/service"
)

// RoomService — операции над комнатами, нужные API.
// Реализуется service.RoomService.
type RoomService interface {
	List(ctx context.Context) ([]*model.Room, error)
	Get(ctx context.Context, id string) (*model.Room, error)
	Create(ctx context.Context, name, location string) (*model.Room, error)
	Update(ctx context.Context, id, name, location string) (*model.Room, error)
	Delete(ctx context.Context, id string) error
}

// DocumentService — операции над документами, нужные API.
// Реализуется service.DocumentService.
type DocumentService interface {
	ListByRoom(ctx context.Context, roomID string) ([]*model.Document, error)
	Upload(ctx context.Context, in service.UploadInput) (*model.Document, error)
	Update(ctx context.Context, id string, patch model.DocumentPatch) (*model.Document, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, keyword string) ([]*model.Document, error)
	RoomStatus(ctx context.Context, roomID string, now time.Time) (service.RoomStatusSummary, error)
	Classify(doc *model.Document, now time.Time) status.Status
	WarnWindowDays() int
	Now() time.Time
}

// APIHandler — основной обработчик JSON API.
type APIHandler struct {
	rooms         RoomService
	docs          DocumentService
	maxUploadSize int64
	logger        *slog.Logger
}

// NewAPIHandler создаёт обработчик JSON API.
func NewAPIHandler(rooms RoomService, docs DocumentService, maxUploadSize int64, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		rooms:         rooms,
		docs:          docs,
		maxUploadSize: maxUploadSize,
		logger:        logger.With(slog.String("component", "api_handler")),
	}
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// parseID проверяет, что идентификатор пути — UUID.
func parseID(w http.ResponseWriter, raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		apierrors.ValidationError(w, "Некорректный идентификатор: ожидается UUID")
		return "", false
	}
	return id.String(), true
}

// writeServiceError переводит ошибку сервисного слоя в HTTP-ответ.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		h.logError(r, err)
		apierrors.StorageUnavailable(w, "Объектное хранилище недоступно")
	case errors.Is(err, service.ErrStoreUnavailable):
		h.logError(r, err)
		apierrors.StoreUnavailable(w, "База данных недоступна")
	default:
		h.logError(r, err)
		apierrors.InternalError(w, "Внутренняя ошибка сервера")
	}
}

func (h *APIHandler) logError(r *http.Request, err error) {
	h.logger.Error("Ошибка обработки запроса",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
}
