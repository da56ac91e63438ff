// documents.go — диалог загрузки документа и миниатюры.
package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tran-matt/room-doc-tracker/internal/service"
	"github.com/tran-matt/room-doc-tracker/internal/ui/pages"
	"github.com/tran-matt/room-doc-tracker/internal/ui/view"
)

// multipartMemory — часть формы загрузки, удерживаемая в памяти.
const multipartMemory = 8 << 20

// HandleNewDocument обрабатывает GET /ui/rooms/{id}/documents/new — диалог загрузки.
func (h *Handler) HandleNewDocument(w http.ResponseWriter, r *http.Request) {
	dialog := view.NewUploadDialog(chi.URLParam(r, "id"), h.docs, h.logger)
	dialog.Open()
	h.renderPartial(w, r, pages.PartialUploadDialog, dialog)
}

// HandleUploadDocument обрабатывает POST /ui/rooms/{id}/documents (multipart).
// Успех: диалог закрывается, карточка комнаты перерисовывается с заново
// загруженным списком документов. Ошибка: диалог с сообщением.
func (h *Handler) HandleUploadDocument(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	dialog := view.NewUploadDialog(roomID, h.docs, h.logger)
	dialog.Open()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			dialog.Error = "error.file_too_large"
		} else {
			dialog.Error = view.MsgUploadFailed
		}
		h.logger.Warn("Ошибка разбора формы загрузки",
			slog.String("room_id", roomID),
			slog.String("error", err.Error()),
		)
		h.renderPartial(w, r, pages.PartialUploadDialog, dialog)
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck // временные файлы формы

	dialog.Title = r.FormValue("title")
	dialog.EffectiveDate = r.FormValue("effective_date")
	dialog.ExpirationDate = r.FormValue("expiration_date")

	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		if header.Size > h.maxUploadSize {
			dialog.Error = "error.file_too_large"
			h.renderPartial(w, r, pages.PartialUploadDialog, dialog)
			return
		}
		dialog.File = &view.UploadFile{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		}
	}

	card := view.NewRoomCard(h.docs, h.logger)
	dialog.OnUploaded = func(ctx context.Context) error {
		room, err := h.rooms.Get(ctx, roomID)
		if err != nil {
			return err
		}
		card.Room = room
		return card.Uploaded(ctx)
	}

	if err := dialog.Submit(r.Context()); err != nil {
		h.renderPartial(w, r, pages.PartialUploadDialog, dialog)
		return
	}

	w.Header().Set("HX-Retarget", "#room-"+roomID)
	w.Header().Set("HX-Reswap", "outerHTML")
	h.renderPartial(w, r, pages.PartialRoomCard, card)
	h.renderPartial(w, r, pages.PartialDialogClose, nil)
}

// HandleThumbnail обрабатывает GET /ui/documents/{id}/thumbnail.
// Если миниатюры нет (не изображение, объект отсутствует, хранилище
// недоступно) — перенаправляет на заглушку.
func (h *Handler) HandleThumbnail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rc, contentType, err := h.docs.Thumbnail(r.Context(), id)
	if err != nil {
		if !errors.Is(err, service.ErrNotFound) {
			h.logger.Warn("Миниатюра недоступна",
				slog.String("document_id", id),
				slog.String("error", err.Error()),
			)
		}
		http.Redirect(w, r, view.PlaceholderImage, http.StatusFound)
		return
	}
	defer rc.Close()

	if contentType == "" {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=300")
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("Ошибка передачи миниатюры",
			slog.String("document_id", id),
			slog.String("error", err.Error()),
		)
	}
}
