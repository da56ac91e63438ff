// rooms.go — операции над комнатами: список, создание, получение,
// обновление и удаление (вместе с файлами документов в хранилище).
package service

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/tran-matt/room-doc-tracker/internal/domain/model"
	"github.com/tran-matt/room-doc-tracker/internal/objectstore"
	"github.com/tran-matt/room-doc-tracker/internal/repository"
)

// RoomRemover удаляет комнату и возвращает ключи объектов её документов.
// Реализуется repository.RoomRemover.
type RoomRemover interface {
	Delete(ctx context.Context, id string) ([]string, error)
}

// ObjectStorage — операции объектного хранилища, нужные сервисам.
// Реализуется objectstore.Store.
type ObjectStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Remove(ctx context.Context, key string) error
	RemovePrefix(ctx context.Context, prefix string) (int, error)
	PublicURL(key string) (string, error)
}

// RoomService — сервис комнат.
type RoomService struct {
	rooms   repository.RoomRepository
	remover RoomRemover
	storage ObjectStorage
	cache   *DocumentCache
	logger  *slog.Logger
}

// NewRoomService создаёт сервис комнат.
func NewRoomService(
	rooms repository.RoomRepository,
	remover RoomRemover,
	storage ObjectStorage,
	cache *DocumentCache,
	logger *slog.Logger,
) *RoomService {
	return &RoomService{
		rooms:   rooms,
		remover: remover,
		storage: storage,
		cache:   cache,
		logger:  logger.With(slog.String("component", "room_service")),
	}
}

// List возвращает все комнаты, новые первыми.
func (s *RoomService) List(ctx context.Context) ([]*model.Room, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, storeError("список комнат", err)
	}
	return rooms, nil
}

// Get возвращает комнату по ID.
func (s *RoomService) Get(ctx context.Context, id string) (*model.Room, error) {
	room, err := s.rooms.Get(ctx, id)
	if err != nil {
		return nil, storeError("получение комнаты", err)
	}
	return room, nil
}

// Create создаёт комнату. Имя обязательно, пробелы по краям обрезаются.
func (s *RoomService) Create(ctx context.Context, name, location string) (*model.Room, error) {
	room := &model.Room{
		Name:     strings.TrimSpace(name),
		Location: strings.TrimSpace(location),
	}
	if room.Name == "" {
		return nil, validationError(MsgRoomNameRequired)
	}

	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, storeError("создание комнаты", err)
	}

	s.logger.Info("Комната создана",
		slog.String("room_id", room.ID),
		slog.String("name", room.Name),
	)
	return room, nil
}

// Update заменяет имя и местоположение комнаты.
func (s *RoomService) Update(ctx context.Context, id, name, location string) (*model.Room, error) {
	room := &model.Room{
		ID:       id,
		Name:     strings.TrimSpace(name),
		Location: strings.TrimSpace(location),
	}
	if room.Name == "" {
		return nil, validationError(MsgRoomNameRequired)
	}

	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, storeError("обновление комнаты", err)
	}
	return room, nil
}

// Delete удаляет комнату. Документы удаляются каскадно в БД,
// затем из хранилища убираются файлы комнаты. Ошибка очистки
// хранилища логируется и не возвращается: комната уже удалена.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	keys, err := s.remover.Delete(ctx, id)
	if err != nil {
		return storeError("удаление комнаты", err)
	}
	s.cache.Invalidate(id)

	prefix := objectstore.RoomPrefix(id)
	removed, err := s.storage.RemovePrefix(ctx, prefix)
	if err != nil {
		s.logger.Error("Не удалось очистить файлы комнаты",
			slog.String("room_id", id),
			slog.String("error", err.Error()),
		)
	}

	// Ключи вне префикса комнаты удаляются поштучно
	for _, key := range keys {
		if strings.HasPrefix(key, prefix) {
			continue
		}
		if err := s.storage.Remove(ctx, key); err != nil {
			s.logger.Error("Не удалось удалить файл документа",
				slog.String("room_id", id),
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
			continue
		}
		removed++
	}

	s.logger.Info("Комната удалена",
		slog.String("room_id", id),
		slog.Int("documents_files", len(keys)),
		slog.Int("objects_removed", removed),
	)
	return nil
}
