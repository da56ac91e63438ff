// documents.go — обработчики документов:
// /api/v1/rooms/{id}/documents, /api/v1/documents, /api/v1/documents/{id}.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	apierrors "github.com/tran-matt/room-doc-tracker/internal/api/errors"
	"github.com/tran-matt/room-doc-tracker/internal/api/openapi"
	"github.com/tran-matt/room-doc-tracker/internal/domain/model"
	"github.com/tran-matt/room-doc-tracker/internal/service"
)

// multipartMemory — часть multipart-формы, удерживаемая в памяти.
const multipartMemory = 8 << 20

// ListRoomDocuments — GET /api/v1/rooms/{id}/documents.
func (h *APIHandler) ListRoomDocuments(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	docs, err := h.docs.ListByRoom(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.documentList(docs))
}

// UploadDocument — POST /api/v1/rooms/{id}/documents (multipart/form-data).
// Поля: title, effective_date, expiration_date (YYYY-MM-DD), file.
func (h *APIHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	// Запас сверх размера файла — на поля формы и заголовки частей
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apierrors.PayloadTooLarge(w, "Файл превышает допустимый размер")
			return
		}
		apierrors.ValidationError(w, "Некорректная multipart-форма: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // временные файлы формы

	in := service.UploadInput{
		RoomID: roomID,
		Title:  r.FormValue("title"),
	}

	var err error
	if in.EffectiveDate, err = parseFormDate(r.FormValue("effective_date")); err != nil {
		apierrors.ValidationError(w, "Некорректная дата effective_date: ожидается YYYY-MM-DD")
		return
	}
	if in.ExpirationDate, err = parseFormDate(r.FormValue("expiration_date")); err != nil {
		apierrors.ValidationError(w, "Некорректная дата expiration_date: ожидается YYYY-MM-DD")
		return
	}

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		if header.Size > h.maxUploadSize {
			apierrors.PayloadTooLarge(w, "Файл превышает допустимый размер")
			return
		}
		in.Filename = header.Filename
		in.ContentType = header.Header.Get("Content-Type")
		in.Body = file
	}

	doc, err := h.docs.Upload(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	now := h.docs.Now()
	writeJSON(w, http.StatusCreated, toDocumentResponse(doc, h.docs.Classify(doc, now), now))
}

// parseFormDate разбирает дату формы. Пустое значение — нулевое время
// (отсутствие поля проверяет сервис).
func parseFormDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return model.ParseDate(s)
}

// SearchDocuments — GET /api/v1/documents?q=.
func (h *APIHandler) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	var q string
	if err := runtime.BindQueryParameter("form", true, true, "q", r.URL.Query(), &q); err != nil {
		apierrors.ValidationError(w, "Некорректный параметр q: "+err.Error())
		return
	}

	docs, err := h.docs.Search(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.documentList(docs))
}

// UpdateDocument — PATCH /api/v1/documents/{id}.
func (h *APIHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req documentPatchInput
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	patch := req.toPatch()
	if patch.IsEmpty() {
		apierrors.ValidationError(w, "Нет полей для обновления")
		return
	}

	doc, err := h.docs.Update(r.Context(), id, patch)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	now := h.docs.Now()
	writeJSON(w, http.StatusOK, toDocumentResponse(doc, h.docs.Classify(doc, now), now))
}

// DeleteDocument — DELETE /api/v1/documents/{id}.
// Удаляет запись, файл и миниатюру.
func (h *APIHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.docs.Delete(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// documentList строит ответ со статусами на один и тот же момент времени.
func (h *APIHandler) documentList(docs []*model.Document) documentListResponse {
	now := h.docs.Now()
	resp := documentListResponse{Items: make([]documentResponse, 0, len(docs))}
	for _, d := range docs {
		resp.Items = append(resp.Items, toDocumentResponse(d, h.docs.Classify(d, now), now))
	}
	return resp
}

// OpenAPISpec — GET /api/v1/openapi.json: контракт API.
func (h *APIHandler) OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	data, err := openapi.JSON()
	if err != nil {
		h.logError(r, err)
		apierrors.InternalError(w, "Контракт API недоступен")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
