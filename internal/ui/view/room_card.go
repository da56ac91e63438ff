package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tran-matt/room-doc-tracker/internal/domain/model"
	"github.com/tran-matt/room-doc-tracker/internal/domain/status"
)

// DocumentItem — документ в карточке комнаты.
type DocumentItem struct {
	Doc          *model.Document
	Title        string
	Status       status.Status
	DaysLeft     int
	ThumbnailURL string
}

// RoomCard — состояние карточки (и страницы) комнаты.
// Запросы документов помечаются комнатой и номером поколения:
// ответ на устаревший запрос отбрасывается.
type RoomCard struct {
	mu sync.Mutex

	// Room — отображаемая комната
	Room *model.Room
	// Documents — документы по возрастанию даты истечения
	Documents []DocumentItem
	// Status — сводный статус комнаты
	Status status.Status
	// LoadErr — ошибка последней загрузки документов
	LoadErr error

	// OnDelete — удаление комнаты, делегируется списку комнат.
	OnDelete func(ctx context.Context, id string, confirmed bool) error

	generation uint64
	docs       DocumentSource
	logger     *slog.Logger
}

// NewRoomCard создаёт пустую карточку.
func NewRoomCard(docs DocumentSource, logger *slog.Logger) *RoomCard {
	return &RoomCard{
		Status: status.Valid,
		docs:   docs,
		logger: logger.With(slog.String("component", "ui.room_card")),
	}
}

// SetRoom переключает карточку на комнату и загружает её документы.
func (c *RoomCard) SetRoom(ctx context.Context, room *model.Room) {
	c.mu.Lock()
	c.Room = room
	c.Documents = nil
	c.Status = status.Valid
	c.LoadErr = nil
	c.mu.Unlock()

	c.Refresh(ctx)
}

// Refresh повторно загружает документы текущей комнаты.
func (c *RoomCard) Refresh(ctx context.Context) {
	c.mu.Lock()
	if c.Room == nil {
		c.mu.Unlock()
		return
	}
	c.generation++
	gen := c.generation
	roomID := c.Room.ID
	c.mu.Unlock()

	docs, err := c.docs.ListByRoom(ctx, roomID)

	c.mu.Lock()
	defer c.mu.Unlock()

	// Пока шёл запрос, карточку переключили или запросили заново
	if gen != c.generation || c.Room == nil || c.Room.ID != roomID {
		c.logger.Debug("Устаревший ответ отброшен",
			slog.String("room_id", roomID),
			slog.Uint64("generation", gen),
		)
		return
	}

	if err != nil {
		c.logger.Error("Ошибка загрузки документов комнаты",
			slog.String("room_id", roomID),
			slog.String("error", err.Error()),
		)
		c.Documents = nil
		c.Status = status.Valid
		c.LoadErr = err
		return
	}

	c.LoadErr = nil
	c.apply(docs)
}

// apply классифицирует документы на один момент времени. Вызывается под mu.
func (c *RoomCard) apply(docs []*model.Document) {
	now := c.docs.Now()
	items := make([]DocumentItem, 0, len(docs))
	statuses := make([]status.Status, 0, len(docs))
	for _, d := range docs {
		st := c.docs.Classify(d, now)
		statuses = append(statuses, st)
		items = append(items, DocumentItem{
			Doc:          d,
			Title:        d.DisplayTitle(),
			Status:       st,
			DaysLeft:     status.DaysUntil(d.ExpirationDate, now),
			ThumbnailURL: ThumbnailURL(d),
		})
	}
	c.Documents = items
	c.Status = status.Aggregate(statuses...)
}

// Uploaded — завершение загрузки документа: список загружается заново.
func (c *RoomCard) Uploaded(ctx context.Context) error {
	c.Refresh(ctx)
	return nil
}

// Delete передаёт удаление комнаты родительскому списку.
func (c *RoomCard) Delete(ctx context.Context, confirmed bool) error {
	c.mu.Lock()
	room := c.Room
	c.mu.Unlock()

	if room == nil || c.OnDelete == nil {
		return nil
	}
	return c.OnDelete(ctx, room.ID, confirmed)
}
