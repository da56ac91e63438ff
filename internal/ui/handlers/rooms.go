// rooms.go — список комнат, карточка комнаты, создание и удаление.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tran-matt/room-doc-tracker/internal/domain/model"
	"github.com/tran-matt/room-doc-tracker/internal/domain/status"
	"github.com/tran-matt/room-doc-tracker/internal/service"
	"github.com/tran-matt/room-doc-tracker/internal/ui/pages"
	"github.com/tran-matt/room-doc-tracker/internal/ui/view"
)

// HandleRooms обрабатывает GET /ui/rooms — страница списка комнат.
func (h *Handler) HandleRooms(w http.ResponseWriter, r *http.Request) {
	list := h.roomList(r)
	h.renderPage(w, r, pages.PageRooms, pages.RoomsPageData{
		List:    list,
		Filters: pages.FilterOptions(list.Filter),
	})
}

// HandleRoomGrid обрабатывает GET /ui/partials/room-grid — сетка комнат
// после изменения поиска или фильтра.
func (h *Handler) HandleRoomGrid(w http.ResponseWriter, r *http.Request) {
	h.renderPartial(w, r, pages.PartialRoomGrid, h.roomList(r))
}

// roomList загружает комнаты и применяет поиск и фильтр из запроса.
// Неизвестный фильтр трактуется как all.
func (h *Handler) roomList(r *http.Request) *view.RoomList {
	list := view.NewRoomList(h.rooms, h.docs, h.filterConcurrency, h.logger)
	list.Load(r.Context())
	h.applyQuery(r, list)
	list.Recompute(r.Context())
	return list
}

func (h *Handler) applyQuery(r *http.Request, list *view.RoomList) {
	list.SetSearch(r.FormValue("q"))
	filter, err := status.ParseFilter(r.FormValue("filter"))
	if err != nil {
		h.logger.Warn("Неизвестный фильтр", slog.String("error", err.Error()))
	}
	list.SetFilter(filter)
}

// HandleRoomCard обрабатывает GET /ui/partials/rooms/{id}/card — карточка комнаты.
func (h *Handler) HandleRoomCard(w http.ResponseWriter, r *http.Request) {
	card, ok := h.roomCard(w, r)
	if !ok {
		return
	}
	h.renderPartial(w, r, pages.PartialRoomCard, card)
}

// HandleRoom обрабатывает GET /ui/rooms/{id} — страница комнаты.
func (h *Handler) HandleRoom(w http.ResponseWriter, r *http.Request) {
	card, ok := h.roomCard(w, r)
	if !ok {
		return
	}
	h.renderPage(w, r, pages.PageRoom, pages.RoomPageData{
		Card:           card,
		WarnWindowDays: h.docs.WarnWindowDays(),
	})
}

// roomCard загружает комнату и её документы. Несуществующая комната — 404.
func (h *Handler) roomCard(w http.ResponseWriter, r *http.Request) (*view.RoomCard, bool) {
	room, err := h.rooms.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			http.NotFound(w, r)
			return nil, false
		}
		h.logger.Error("Ошибка получения комнаты",
			slog.String("room_id", chi.URLParam(r, "id")),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Комната недоступна", http.StatusBadGateway)
		return nil, false
	}

	card := view.NewRoomCard(h.docs, h.logger)
	card.SetRoom(r.Context(), room)
	return card, true
}

// HandleNewRoom обрабатывает GET /ui/rooms/new — открытый диалог создания комнаты.
func (h *Handler) HandleNewRoom(w http.ResponseWriter, r *http.Request) {
	dialog := view.NewRoomDialog(h.rooms, h.logger)
	dialog.Open()
	h.renderPartial(w, r, pages.PartialRoomDialog, dialog)
}

// HandleCreateRoom обрабатывает POST /ui/rooms.
// Успех: диалог закрывается, новая карточка добавляется в начало сетки,
// если проходит текущие поиск и фильтр. Ошибка: диалог с сообщением.
func (h *Handler) HandleCreateRoom(w http.ResponseWriter, r *http.Request) {
	dialog := view.NewRoomDialog(h.rooms, h.logger)
	dialog.Open()
	dialog.Name = r.FormValue("name")
	dialog.Location = r.FormValue("location")

	// Список без загрузки: нужен только для проверки поиска и фильтра
	list := view.NewRoomList(h.rooms, h.docs, h.filterConcurrency, h.logger)
	h.applyQuery(r, list)

	var created *model.Room
	dialog.OnCreated = func(room *model.Room) {
		created = room
		list.RoomCreated(r.Context(), room)
	}

	if err := dialog.Submit(r.Context()); err != nil {
		h.renderPartial(w, r, pages.PartialRoomDialog, dialog)
		return
	}

	h.logger.Info("Комната создана", slog.String("room_id", created.ID))

	if len(list.Filtered) == 0 {
		w.Header().Set("HX-Reswap", "none")
		h.renderPartial(w, r, pages.PartialDialogClose, nil)
		return
	}

	w.Header().Set("HX-Retarget", "#room-grid")
	w.Header().Set("HX-Reswap", "afterbegin")
	h.renderPartial(w, r, pages.PartialRoomSlot, created)
	h.renderPartial(w, r, pages.PartialDialogClose, nil)
}

// HandleDeleteRoom обрабатывает DELETE /ui/rooms/{id}?confirmed=true.
// Успех: карточка удаляется (пустой ответ со swap outerHTML); со страницы
// комнаты — переход к списку. Ошибка: сообщение в #alerts.
func (h *Handler) HandleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	list := view.NewRoomList(h.rooms, h.docs, h.filterConcurrency, h.logger)
	card := view.NewRoomCard(h.docs, h.logger)
	card.OnDelete = list.Delete
	card.Room = &model.Room{ID: id}

	err := card.Delete(r.Context(), r.FormValue("confirmed") == "true")
	switch {
	case errors.Is(err, view.ErrNotConfirmed):
		w.Header().Set("HX-Reswap", "none")
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		h.renderAlert(w, r, view.MsgRoomDeleteFailed)
		return
	}

	h.logger.Info("Комната удалена", slog.String("room_id", id))

	if r.FormValue("from") == "detail" {
		w.Header().Set("HX-Redirect", "/ui/rooms")
	}
	w.WriteHeader(http.StatusOK)
}
