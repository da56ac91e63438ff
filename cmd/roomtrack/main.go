// Точка входа roomtrack — учёт документов по помещениям и сроков их действия.
// Загружает конфигурацию, применяет миграции, подключается к PostgreSQL
// и объектному хранилищу, собирает сервисный слой, JSON API и HTMX UI,
// запускает topologymetrics и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/tran-matt/room-doc-tracker/internal/api/handlers"
	"github.com/tran-matt/room-doc-tracker/internal/api/middleware"
	"github.com/tran-matt/room-doc-tracker/internal/api/openapi"
	"github.com/tran-matt/room-doc-tracker/internal/config"
	"github.com/tran-matt/room-doc-tracker/internal/database"
	"github.com/tran-matt/room-doc-tracker/internal/domain/status"
	"github.com/tran-matt/room-doc-tracker/internal/objectstore"
	"github.com/tran-matt/room-doc-tracker/internal/repository"
	"github.com/tran-matt/room-doc-tracker/internal/server"
	"github.com/tran-matt/room-doc-tracker/internal/service"
	uihandlers "github.com/tran-matt/room-doc-tracker/internal/ui/handlers"
	"github.com/tran-matt/room-doc-tracker/internal/ui/i18n"
	"github.com/tran-matt/room-doc-tracker/internal/ui/pages"
)

const serviceID = "roomtrack"

func main() {
	// 1. Загрузка конфигурации из переменных окружения (и .env, если есть)
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("roomtrack запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	if os.Getenv("RT_DEPHEALTH_GROUP") == "" {
		logger.Warn("RT_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics.
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Объектное хранилище (MinIO / S3)
	minioClient, err := objectstore.NewClient(cfg.StorageEndpoint, cfg.StorageAccessKey, cfg.StorageSecretKey, cfg.StorageUseSSL)
	if err != nil {
		logger.Error("Ошибка создания клиента объектного хранилища", slog.String("error", err.Error()))
		os.Exit(1)
	}
	store := objectstore.New(minioClient, cfg.StorageBucket, cfg.StoragePublicURL, logger)
	if err := store.EnsureBucket(ctx); err != nil {
		logger.Error("Ошибка подготовки бакета",
			slog.String("bucket", cfg.StorageBucket),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// 6. Репозитории
	roomRepo := repository.NewRoomRepository(pool)
	docRepo := repository.NewDocumentRepository(pool)
	remover := repository.NewRoomRemover(repository.NewTxRunner(pool))

	// 7. Сервисный слой
	cache := service.NewDocumentCache(cfg.CacheSize, cfg.CacheTTL)
	roomSvc := service.NewRoomService(roomRepo, remover, store, cache, logger)
	docSvc := service.NewDocumentService(
		docRepo,
		store,
		cache,
		service.NewThumbnailer(),
		cfg.WarnWindowDays,
		status.SystemClock,
		logger,
	)

	// 8. API handlers и валидация запросов по OpenAPI
	spec, err := openapi.Spec()
	if err != nil {
		logger.Error("Ошибка загрузки OpenAPI спецификации", slog.String("error", err.Error()))
		os.Exit(1)
	}
	validator, err := middleware.NewOpenAPIValidator(spec, logger)
	if err != nil {
		logger.Error("Ошибка создания OpenAPI валидатора", slog.String("error", err.Error()))
		os.Exit(1)
	}

	h := server.Handlers{
		API:       handlers.NewAPIHandler(roomSvc, docSvc, cfg.MaxUploadSize, logger),
		Health:    handlers.NewHealthHandler(database.NewReadinessChecker(pool), store),
		Validator: validator,
	}

	// 9. Web UI (опционально)
	if cfg.UIEnabled {
		bundle := i18n.NewBundle(logger)
		if err := i18n.LoadFromEmbedFS(bundle, logger); err != nil {
			logger.Error("Ошибка загрузки переводов", slog.String("error", err.Error()))
			os.Exit(1)
		}
		renderer, err := pages.NewRenderer(bundle)
		if err != nil {
			logger.Error("Ошибка подготовки шаблонов UI", slog.String("error", err.Error()))
			os.Exit(1)
		}
		h.UI = uihandlers.NewHandler(roomSvc, docSvc, renderer, cfg.FilterConcurrency, cfg.MaxUploadSize, logger)
		logger.Info("Web UI включён")
	} else {
		logger.Info("Web UI отключён (RT_UI_ENABLED=false)")
	}

	// 10. topologymetrics — мониторинг PostgreSQL и объектного хранилища
	dephealthSvc, dephealthErr := service.NewDephealthService(service.DephealthConfig{
		ServiceID:        serviceID,
		Group:            cfg.DephealthGroup,
		DB:               pgDB,
		PGConnURL:        cfg.DatabaseURL(),
		StorageHealthURL: cfg.StorageHealthURL(),
		CheckInterval:    cfg.DephealthCheckInterval,
	}, logger)
	if dephealthErr != nil {
		logger.Warn("topologymetrics не инициализирован, метрики зависимостей недоступны",
			slog.String("error", dephealthErr.Error()),
		)
		dephealthSvc = nil
	} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
		logger.Warn("topologymetrics не запущен",
			slog.String("error", startErr.Error()),
		)
		dephealthSvc = nil
	} else {
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	// 11. HTTP-сервер с graceful shutdown
	srv := server.New(cfg, logger, h)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка HTTP сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}
	logger.Info("roomtrack остановлен")
}
