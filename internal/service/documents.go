// documents.go — операции над документами: список по комнате,
// двухфазная загрузка (файл → запись), обновление, удаление, поиск
// и агрегированный статус комнаты.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tran-matt/room-doc-tracker/internal/domain/model"
	"github.com/tran-matt/room-doc-tracker/internal/domain/status"
	"github.com/tran-matt/room-doc-tracker/internal/objectstore"
	"github.com/tran-matt/room-doc-tracker/internal/repository"
)

// Результат загрузки документа для метрик.
var uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rt_document_uploads_total",
	Help: "Количество загрузок документов по результату.",
}, []string{"result"})

// UploadInput — данные формы загрузки документа.
type UploadInput struct {
	RoomID         string
	Title          string
	EffectiveDate  time.Time
	ExpirationDate time.Time
	// Filename — исходное имя файла пользователя
	Filename    string
	ContentType string
	// Body — содержимое файла; размер ограничивает вызывающий
	Body io.Reader
}

// validate проверяет, что заполнены все поля, включая файл.
func (in *UploadInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.RoomID == "" || in.Title == "" || in.Filename == "" || in.Body == nil ||
		in.EffectiveDate.IsZero() || in.ExpirationDate.IsZero() {
		return validationError(MsgUploadFieldsMissing)
	}
	return nil
}

// RoomStatusSummary — агрегированный статус комнаты и разбивка по документам.
type RoomStatusSummary struct {
	Status       status.Status
	Total        int
	Expired      int
	ExpiringSoon int
	Valid        int
}

// DocumentService — сервис документов.
type DocumentService struct {
	docs       repository.DocumentRepository
	storage    ObjectStorage
	cache      *DocumentCache
	thumbs     *Thumbnailer
	warnWindow int
	clock      status.Clock
	logger     *slog.Logger
}

// NewDocumentService создаёт сервис документов.
// warnWindowDays — окно «скоро истекает», clock — источник текущего времени.
func NewDocumentService(
	docs repository.DocumentRepository,
	storage ObjectStorage,
	cache *DocumentCache,
	thumbs *Thumbnailer,
	warnWindowDays int,
	clock status.Clock,
	logger *slog.Logger,
) *DocumentService {
	if clock == nil {
		clock = status.SystemClock
	}
	return &DocumentService{
		docs:       docs,
		storage:    storage,
		cache:      cache,
		thumbs:     thumbs,
		warnWindow: warnWindowDays,
		clock:      clock,
		logger:     logger.With(slog.String("component", "document_service")),
	}
}

// WarnWindowDays возвращает окно предупреждения.
func (s *DocumentService) WarnWindowDays() int {
	return s.warnWindow
}

// Now возвращает текущее время по часам сервиса.
func (s *DocumentService) Now() time.Time {
	return s.clock()
}

// Classify возвращает статус документа на момент now.
func (s *DocumentService) Classify(doc *model.Document, now time.Time) status.Status {
	return status.Classify(doc.ExpirationDate, now, s.warnWindow)
}

// ListByRoom возвращает документы комнаты по возрастанию даты истечения.
func (s *DocumentService) ListByRoom(ctx context.Context, roomID string) ([]*model.Document, error) {
	if docs, ok := s.cache.Get(roomID); ok {
		return docs, nil
	}

	docs, err := s.docs.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, storeError("список документов комнаты", err)
	}
	s.cache.Set(roomID, docs)
	return docs, nil
}

// Get возвращает документ по ID.
func (s *DocumentService) Get(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, storeError("получение документа", err)
	}
	return doc, nil
}

// Upload загружает файл и создаёт запись документа.
//
// Порядок: файл в хранилище → публичный URL → запись в БД.
// Если URL или запись получить не удалось, загруженный файл
// (и миниатюра) удаляются и возвращается ErrUploadIncomplete.
// Для изображений строится миниатюра; её ошибки не прерывают загрузку.
func (s *DocumentService) Upload(ctx context.Context, in UploadInput) (*model.Document, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла: %w", err)
	}

	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	uploadedAt := s.clock()
	key := objectstore.ObjectKey(in.RoomID, in.Filename, uploadedAt)

	if err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		uploadsTotal.WithLabelValues("storage_error").Inc()
		return nil, storageError("загрузка файла", err)
	}

	thumbKey := s.storeThumbnail(ctx, in, data, contentType, uploadedAt)

	url, err := s.storage.PublicURL(key)
	if err != nil {
		s.compensate(ctx, key, thumbKey)
		uploadsTotal.WithLabelValues("incomplete").Inc()
		return nil, fmt.Errorf("%w: %w", ErrUploadIncomplete, storageError("публичный URL", err))
	}

	doc := &model.Document{
		RoomID:         in.RoomID,
		Name:           in.Title,
		Title:          in.Title,
		EffectiveDate:  model.TruncateDate(in.EffectiveDate),
		ExpirationDate: model.TruncateDate(in.ExpirationDate),
		FileURL:        &url,
		ObjectKey:      &key,
		ThumbnailKey:   thumbKey,
		ContentType:    contentType,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		s.compensate(ctx, key, thumbKey)
		uploadsTotal.WithLabelValues("incomplete").Inc()
		return nil, fmt.Errorf("%w: %w", ErrUploadIncomplete, storeError("создание документа", err))
	}

	s.cache.Invalidate(in.RoomID)
	uploadsTotal.WithLabelValues("ok").Inc()

	s.logger.Info("Документ загружен",
		slog.String("document_id", doc.ID),
		slog.String("room_id", doc.RoomID),
		slog.String("key", key),
		slog.Int("size", len(data)),
	)
	return doc, nil
}

// storeThumbnail строит и сохраняет миниатюру изображения.
// Возвращает ключ или nil, если миниатюры нет.
func (s *DocumentService) storeThumbnail(ctx context.Context, in UploadInput, data []byte, contentType string, at time.Time) *string {
	if s.thumbs == nil || !s.thumbs.Supports(contentType) {
		return nil
	}

	thumb, err := s.thumbs.Make(data)
	if err != nil {
		s.logger.Warn("Не удалось построить миниатюру",
			slog.String("room_id", in.RoomID),
			slog.String("filename", in.Filename),
			slog.String("error", err.Error()),
		)
		return nil
	}

	key := objectstore.ThumbnailKey(in.RoomID, in.Filename, at)
	if err := s.storage.Put(ctx, key, bytes.NewReader(thumb), int64(len(thumb)), "image/jpeg"); err != nil {
		s.logger.Warn("Не удалось сохранить миниатюру",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return nil
	}
	return &key
}

// compensate удаляет объекты незавершённой загрузки.
// Используется собственный контекст: исходный мог быть отменён.
func (s *DocumentService) compensate(ctx context.Context, key string, thumbKey *string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	keys := []string{key}
	if thumbKey != nil {
		keys = append(keys, *thumbKey)
	}
	for _, k := range keys {
		if err := s.storage.Remove(cleanupCtx, k); err != nil {
			s.logger.Error("Не удалось удалить файл незавершённой загрузки",
				slog.String("key", k),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Update применяет частичное обновление документа.
func (s *DocumentService) Update(ctx context.Context, id string, patch model.DocumentPatch) (*model.Document, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, validationError("title must not be empty")
		}
		patch.Title = &title
	}
	if patch.EffectiveDate != nil {
		d := model.TruncateDate(*patch.EffectiveDate)
		patch.EffectiveDate = &d
	}
	if patch.ExpirationDate != nil {
		d := model.TruncateDate(*patch.ExpirationDate)
		patch.ExpirationDate = &d
	}

	doc, err := s.docs.Update(ctx, id, patch)
	if err != nil {
		return nil, storeError("обновление документа", err)
	}
	s.cache.Invalidate(doc.RoomID)
	return doc, nil
}

// Delete удаляет запись документа, затем его файл и миниатюру.
// Ошибки удаления файлов логируются.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.docs.Delete(ctx, id)
	if err != nil {
		return storeError("удаление документа", err)
	}
	s.cache.Invalidate(doc.RoomID)

	for _, key := range []*string{doc.ObjectKey, doc.ThumbnailKey} {
		if key == nil || *key == "" {
			continue
		}
		if err := s.storage.Remove(ctx, *key); err != nil {
			s.logger.Error("Не удалось удалить файл документа",
				slog.String("document_id", id),
				slog.String("key", *key),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.Info("Документ удалён",
		slog.String("document_id", id),
		slog.String("room_id", doc.RoomID),
	)
	return nil
}

// Search ищет документы всех комнат по подстроке заголовка без учёта регистра.
func (s *DocumentService) Search(ctx context.Context, keyword string) ([]*model.Document, error) {
	docs, err := s.docs.SearchByTitle(ctx, strings.TrimSpace(keyword))
	if err != nil {
		return nil, storeError("поиск документов", err)
	}
	return docs, nil
}

// RoomStatus классифицирует документы комнаты на момент now
// и возвращает агрегированный статус.
func (s *DocumentService) RoomStatus(ctx context.Context, roomID string, now time.Time) (RoomStatusSummary, error) {
	docs, err := s.ListByRoom(ctx, roomID)
	if err != nil {
		return RoomStatusSummary{}, err
	}

	summary := RoomStatusSummary{Total: len(docs)}
	statuses := make([]status.Status, 0, len(docs))
	for _, d := range docs {
		st := s.Classify(d, now)
		statuses = append(statuses, st)
		switch st {
		case status.Expired:
			summary.Expired++
		case status.ExpiringSoon:
			summary.ExpiringSoon++
		default:
			summary.Valid++
		}
	}
	summary.Status = status.Aggregate(statuses...)
	return summary, nil
}

// Thumbnail открывает миниатюру документа.
// ErrNotFound, если миниатюры нет; вызывающий показывает заглушку.
func (s *DocumentService) Thumbnail(ctx context.Context, id string) (io.ReadCloser, string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if doc.ThumbnailKey == nil || *doc.ThumbnailKey == "" {
		return nil, "", fmt.Errorf("миниатюра документа %s: %w", id, ErrNotFound)
	}

	rc, contentType, err := s.storage.Get(ctx, *doc.ThumbnailKey)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			return nil, "", fmt.Errorf("миниатюра документа %s: %w", id, ErrNotFound)
		}
		return nil, "", storageError("чтение миниатюры", err)
	}
	return rc, contentType, nil
}
