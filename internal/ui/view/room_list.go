package view

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tran-matt/room-doc-tracker/internal/domain/model"
	"github.com/tran-matt/room-doc-tracker/internal/domain/status"
)

// ErrNotConfirmed — удаление не подтверждено пользователем.
var ErrNotConfirmed = errors.New("удаление не подтверждено")

// DefaultFilterConcurrency — число параллельных запросов документов при фильтрации.
const DefaultFilterConcurrency = 8

// RoomList — состояние страницы списка комнат.
type RoomList struct {
	// Rooms — загруженные комнаты, новые первыми
	Rooms []*model.Room
	// Search — строка поиска по имени комнаты
	Search string
	// Filter — фильтр по статусу документов
	Filter status.Filter
	// Filtered — комнаты после поиска и фильтра, порядок Rooms сохраняется
	Filtered []*model.Room
	// LoadErr — ошибка загрузки комнат (показывается как уведомление)
	LoadErr error

	rooms       RoomStore
	docs        DocumentSource
	concurrency int
	logger      *slog.Logger
}

// NewRoomList создаёт модель списка комнат.
// concurrency ограничивает параллельные запросы документов при фильтрации.
func NewRoomList(rooms RoomStore, docs DocumentSource, concurrency int, logger *slog.Logger) *RoomList {
	if concurrency <= 0 {
		concurrency = DefaultFilterConcurrency
	}
	return &RoomList{
		Filter:      status.FilterAll,
		rooms:       rooms,
		docs:        docs,
		concurrency: concurrency,
		logger:      logger.With(slog.String("component", "ui.room_list")),
	}
}

// Load загружает комнаты. При ошибке список остаётся пустым,
// ошибка сохраняется в LoadErr и логируется.
func (l *RoomList) Load(ctx context.Context) {
	rooms, err := l.rooms.List(ctx)
	if err != nil {
		l.logger.Error("Ошибка загрузки комнат", slog.String("error", err.Error()))
		l.Rooms = nil
		l.LoadErr = err
		l.Filtered = nil
		return
	}
	l.Rooms = rooms
	l.LoadErr = nil
	l.Filtered = slices.Clone(rooms)
}

// SetSearch задаёт строку поиска. Результат пересчитывает Recompute.
func (l *RoomList) SetSearch(s string) {
	l.Search = s
}

// SetFilter задаёт фильтр по статусу. Результат пересчитывает Recompute.
func (l *RoomList) SetFilter(f status.Filter) {
	l.Filter = f
}

// Recompute пересчитывает Filtered: подстрока имени без учёта регистра,
// затем (для фильтров кроме all) — наличие хотя бы одного документа
// с нужным статусом. Комнаты без документов проходят только фильтр all.
// Комната, документы которой не удалось получить, исключается.
func (l *RoomList) Recompute(ctx context.Context) {
	needle := strings.ToLower(strings.TrimSpace(l.Search))

	candidates := make([]*model.Room, 0, len(l.Rooms))
	for _, r := range l.Rooms {
		if needle == "" || strings.Contains(strings.ToLower(r.Name), needle) {
			candidates = append(candidates, r)
		}
	}

	if _, ok := l.Filter.Status(); !ok {
		l.Filtered = candidates
		return
	}

	keep := make([]bool, len(candidates))
	now := l.docs.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, room := range candidates {
		g.Go(func() error {
			docs, err := l.docs.ListByRoom(gctx, room.ID)
			if err != nil {
				l.logger.Error("Ошибка загрузки документов комнаты",
					slog.String("room_id", room.ID),
					slog.String("error", err.Error()),
				)
				return nil
			}
			statuses := make([]status.Status, len(docs))
			for j, d := range docs {
				statuses[j] = l.docs.Classify(d, now)
			}
			keep[i] = l.Filter.MatchesAny(statuses)
			return nil
		})
	}
	_ = g.Wait()

	filtered := make([]*model.Room, 0, len(candidates))
	for i, room := range candidates {
		if keep[i] {
			filtered = append(filtered, room)
		}
	}
	l.Filtered = filtered
}

// Delete удаляет комнату после подтверждения. Локальное состояние
// меняется только после успешного удаления в хранилище.
func (l *RoomList) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := l.rooms.Delete(ctx, id); err != nil {
		l.logger.Error("Ошибка удаления комнаты",
			slog.String("room_id", id),
			slog.String("error", err.Error()),
		)
		return err
	}

	l.Rooms = slices.DeleteFunc(l.Rooms, func(r *model.Room) bool { return r.ID == id })
	l.Filtered = slices.DeleteFunc(l.Filtered, func(r *model.Room) bool { return r.ID == id })
	return nil
}

// RoomCreated добавляет созданную комнату в начало списка без повторной
// загрузки и пересчитывает Filtered.
func (l *RoomList) RoomCreated(ctx context.Context, room *model.Room) {
	l.Rooms = append([]*model.Room{room}, l.Rooms...)
	l.Recompute(ctx)
}
