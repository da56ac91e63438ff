// rooms.go — обработчики /api/v1/rooms.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/tran-matt/room-doc-tracker/internal/api/errors"
)

// ListRooms — GET /api/v1/rooms.
func (h *APIHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := roomListResponse{Items: make([]roomResponse, 0, len(rooms))}
	for _, room := range rooms {
		resp.Items = append(resp.Items, toRoomResponse(room))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateRoom — POST /api/v1/rooms.
func (h *APIHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req roomInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	room, err := h.rooms.Create(r.Context(), req.Name, req.Location)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoomResponse(room))
}

// GetRoom — GET /api/v1/rooms/{id}.
func (h *APIHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	room, err := h.rooms.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomResponse(room))
}

// UpdateRoom — PUT /api/v1/rooms/{id}.
func (h *APIHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req roomInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	room, err := h.rooms.Update(r.Context(), id, req.Name, req.Location)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomResponse(room))
}

// DeleteRoom — DELETE /api/v1/rooms/{id}.
// Документы комнаты и их файлы удаляются вместе с ней.
func (h *APIHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.rooms.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRoomStatus — GET /api/v1/rooms/{id}/status.
func (h *APIHandler) GetRoomStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Несуществующая комната — 404, а не пустой valid
	if _, err := h.rooms.Get(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	summary, err := h.docs.RoomStatus(r.Context(), id, h.docs.Now())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRoomStatusResponse(id, summary, h.docs.WarnWindowDays()))
}
