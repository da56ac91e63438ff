// Пакет handlers — HTTP-обработчики UI: страницы и HTMX-фрагменты
// списка комнат, карточки комнаты и диалогов.
package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/tran-matt/room-doc-tracker/internal/domain/model"
	"github.com/tran-matt/room-doc-tracker/internal/ui/pages"
	"github.com/tran-matt/room-doc-tracker/internal/ui/view"
)

// RoomService — операции над комнатами, нужные UI.
type RoomService interface {
	view.RoomStore
	Get(ctx context.Context, id string) (*model.Room, error)
}

// DocumentService — операции над документами, нужные UI.
type DocumentService interface {
	view.DocumentSource
	view.DocumentUploader
	Thumbnail(ctx context.Context, id string) (io.ReadCloser, string, error)
	WarnWindowDays() int
}

// Handler — обработчик страниц UI.
type Handler struct {
	rooms             RoomService
	docs              DocumentService
	renderer          *pages.Renderer
	filterConcurrency int
	maxUploadSize     int64
	logger            *slog.Logger
}

// NewHandler создаёт обработчик UI.
func NewHandler(
	rooms RoomService,
	docs DocumentService,
	renderer *pages.Renderer,
	filterConcurrency int,
	maxUploadSize int64,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		rooms:             rooms,
		docs:              docs,
		renderer:          renderer,
		filterConcurrency: filterConcurrency,
		maxUploadSize:     maxUploadSize,
		logger:            logger.With(slog.String("component", "ui")),
	}
}

// renderPage рендерит полную страницу.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	c, err := h.renderer.Page(r.Context(), name, data)
	if err != nil {
		h.renderFailed(w, name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		h.logger.Error("Ошибка рендеринга страницы",
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
	}
}

// renderPartial рендерит HTMX-фрагмент.
func (h *Handler) renderPartial(w http.ResponseWriter, r *http.Request, name string, data any) {
	c, err := h.renderer.Partial(r.Context(), name, data)
	if err != nil {
		h.renderFailed(w, name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		h.logger.Error("Ошибка рендеринга фрагмента",
			slog.String("partial", name),
			slog.String("error", err.Error()),
		)
	}
}

// renderAlert выводит сообщение об ошибке в область #alerts.
func (h *Handler) renderAlert(w http.ResponseWriter, r *http.Request, key string) {
	w.Header().Set("HX-Retarget", "#alerts")
	w.Header().Set("HX-Reswap", "innerHTML")
	h.renderPartial(w, r, pages.PartialAlert, key)
}

func (h *Handler) renderFailed(w http.ResponseWriter, name string, err error) {
	h.logger.Error("Ошибка подготовки шаблона",
		slog.String("template", name),
		slog.String("error", err.Error()),
	)
	http.Error(w, "Ошибка рендеринга страницы", http.StatusInternalServerError)
}
