// Пакет server — HTTP-сервер учёта документов с graceful shutdown.
// Один процесс обслуживает UI (/ui), JSON API (/api/v1), health и metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tran-matt/room-doc-tracker/internal/api/handlers"
	"github.com/tran-matt/room-doc-tracker/internal/api/middleware"
	"github.com/tran-matt/room-doc-tracker/internal/config"
	uihandlers "github.com/tran-matt/room-doc-tracker/internal/ui/handlers"
	"github.com/tran-matt/room-doc-tracker/internal/ui/i18n"
	"github.com/tran-matt/room-doc-tracker/internal/ui/static"
)

// Handlers — обработчики, которые монтирует сервер.
type Handlers struct {
	API    *handlers.APIHandler
	Health *handlers.HealthHandler
	// Validator проверяет запросы /api/v1 по контракту OpenAPI (nil — без проверки)
	Validator *middleware.OpenAPIValidator
	// UI — страницы UI (nil, если UI отключён)
	UI *uihandlers.Handler
}

// Server — HTTP-сервер.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с настроенными маршрутами и middleware.
func New(cfg *config.Config, logger *slog.Logger, h Handlers) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(logger, h),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает маршруты сервера.
func NewRouter(logger *slog.Logger, h Handlers) http.Handler {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	router.Get("/health/live", h.Health.HealthLive)
	router.Get("/health/ready", h.Health.HealthReady)
	router.Get("/metrics", h.Health.GetMetrics)

	router.Route("/api/v1", func(r chi.Router) {
		if h.Validator != nil {
			r.Use(h.Validator.Middleware())
		}

		r.Get("/openapi.json", h.API.OpenAPISpec)

		r.Get("/rooms", h.API.ListRooms)
		r.Post("/rooms", h.API.CreateRoom)
		r.Get("/rooms/{id}", h.API.GetRoom)
		r.Put("/rooms/{id}", h.API.UpdateRoom)
		r.Delete("/rooms/{id}", h.API.DeleteRoom)
		r.Get("/rooms/{id}/status", h.API.GetRoomStatus)
		r.Get("/rooms/{id}/documents", h.API.ListRoomDocuments)
		r.Post("/rooms/{id}/documents", h.API.UploadDocument)

		r.Get("/documents", h.API.SearchDocuments)
		r.Patch("/documents/{id}", h.API.UpdateDocument)
		r.Delete("/documents/{id}", h.API.DeleteDocument)
	})

	if h.UI != nil {
		mountUI(router, h.UI)
	}

	return router
}

// mountUI регистрирует страницы UI, HTMX-фрагменты и статику.
func mountUI(router chi.Router, ui *uihandlers.Handler) {
	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui/rooms", http.StatusFound)
	})

	router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(static.FileSystem())))

	router.Route("/ui", func(r chi.Router) {
		r.Use(i18n.Middleware())

		r.Get("/rooms", ui.HandleRooms)
		r.Post("/rooms", ui.HandleCreateRoom)
		r.Get("/rooms/new", ui.HandleNewRoom)
		r.Get("/rooms/{id}", ui.HandleRoom)
		r.Delete("/rooms/{id}", ui.HandleDeleteRoom)
		r.Get("/rooms/{id}/documents/new", ui.HandleNewDocument)
		r.Post("/rooms/{id}/documents", ui.HandleUploadDocument)
		r.Get("/documents/{id}/thumbnail", ui.HandleThumbnail)

		r.Get("/partials/room-grid", ui.HandleRoomGrid)
		r.Get("/partials/rooms/{id}/card", ui.HandleRoomCard)

		r.Post("/set-language", uihandlers.HandleSetLanguage)
	})
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
