// Пакет config — загрузка и валидация конфигурации Room Tracker
// из переменных окружения (и необязательного .env файла).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации Room Tracker.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Включён ли серверный UI (/ui/...)
	UIEnabled bool

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- Объектное хранилище (S3/MinIO) ---

	// Endpoint хранилища в формате host:port
	StorageEndpoint string
	// Access key
	StorageAccessKey string
	// Secret key
	StorageSecretKey string
	// Бакет для документов комнат
	StorageBucket string
	// Использовать TLS при подключении к хранилищу
	StorageUseSSL bool
	// Базовый публичный URL бакета (авто-вычисляется из endpoint, если не задан)
	StoragePublicURL string

	// --- Документы ---

	// Окно предупреждения (дней до истечения, когда документ «скоро истекает»)
	WarnWindowDays int
	// Максимальный размер загружаемого файла в байтах
	MaxUploadSize int64

	// --- Кэш и фильтрация ---

	// Максимальное количество комнат в кэше списков документов
	CacheSize int
	// Время жизни записи кэша
	CacheTTL time.Duration
	// Количество параллельных запросов документов при фильтрации по статусу
	FilterConcurrency int

	// --- topologymetrics ---

	// Группа в метриках зависимостей
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
// Перед чтением окружения подгружается .env файл (RT_ENV_FILE, по умолчанию .env),
// если он существует. Уже заданные переменные окружения не перезаписываются.
func Load() (*Config, error) {
	if err := loadEnvFile(getEnvDefault("RT_ENV_FILE", ".env")); err != nil {
		return nil, fmt.Errorf("RT_ENV_FILE: %w", err)
	}

	cfg := &Config{}
	var err error

	// --- Сервер ---

	// RT_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("RT_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("RT_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("RT_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// RT_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("RT_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("RT_LOG_LEVEL: %w", err)
	}

	// RT_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("RT_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("RT_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// RT_UI_ENABLED — серверный UI (по умолчанию true)
	cfg.UIEnabled, err = getEnvBool("RT_UI_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("RT_UI_ENABLED: %w", err)
	}

	// --- PostgreSQL ---

	cfg.DBHost, err = getEnvRequired("RT_DB_HOST")
	if err != nil {
		return nil, err
	}

	cfg.DBPort, err = getEnvInt("RT_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("RT_DB_PORT: %w", err)
	}

	cfg.DBName, err = getEnvRequired("RT_DB_NAME")
	if err != nil {
		return nil, err
	}

	cfg.DBUser, err = getEnvRequired("RT_DB_USER")
	if err != nil {
		return nil, err
	}

	cfg.DBPassword, err = getEnvRequired("RT_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	cfg.DBSSLMode = getEnvDefault("RT_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("RT_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- Объектное хранилище ---

	cfg.StorageEndpoint, err = getEnvRequired("RT_STORAGE_ENDPOINT")
	if err != nil {
		return nil, err
	}
	// minio-go ожидает host:port без схемы
	cfg.StorageEndpoint = strings.TrimPrefix(strings.TrimPrefix(cfg.StorageEndpoint, "http://"), "https://")
	cfg.StorageEndpoint = strings.TrimRight(cfg.StorageEndpoint, "/")

	cfg.StorageAccessKey, err = getEnvRequired("RT_STORAGE_ACCESS_KEY")
	if err != nil {
		return nil, err
	}

	cfg.StorageSecretKey, err = getEnvRequired("RT_STORAGE_SECRET_KEY")
	if err != nil {
		return nil, err
	}

	cfg.StorageBucket = getEnvDefault("RT_STORAGE_BUCKET", "room-documents")

	cfg.StorageUseSSL, err = getEnvBool("RT_STORAGE_USE_SSL", false)
	if err != nil {
		return nil, fmt.Errorf("RT_STORAGE_USE_SSL: %w", err)
	}

	// RT_STORAGE_PUBLIC_URL — авто-вычисляется из endpoint и бакета, если не задан
	scheme := "http"
	if cfg.StorageUseSSL {
		scheme = "https"
	}
	cfg.StoragePublicURL = strings.TrimRight(getEnvDefault("RT_STORAGE_PUBLIC_URL",
		fmt.Sprintf("%s://%s/%s", scheme, cfg.StorageEndpoint, cfg.StorageBucket)), "/")
	if _, err := url.ParseRequestURI(cfg.StoragePublicURL); err != nil {
		return nil, fmt.Errorf("RT_STORAGE_PUBLIC_URL: некорректный URL %q", cfg.StoragePublicURL)
	}

	// --- Документы ---

	cfg.WarnWindowDays, err = getEnvInt("RT_WARN_WINDOW_DAYS", 30)
	if err != nil {
		return nil, fmt.Errorf("RT_WARN_WINDOW_DAYS: %w", err)
	}
	if cfg.WarnWindowDays < 0 {
		return nil, fmt.Errorf("RT_WARN_WINDOW_DAYS: значение %d не может быть отрицательным", cfg.WarnWindowDays)
	}

	maxUpload, err := getEnvInt("RT_MAX_UPLOAD_SIZE", 20*1024*1024)
	if err != nil {
		return nil, fmt.Errorf("RT_MAX_UPLOAD_SIZE: %w", err)
	}
	if maxUpload < 1 {
		return nil, fmt.Errorf("RT_MAX_UPLOAD_SIZE: значение %d должно быть положительным", maxUpload)
	}
	cfg.MaxUploadSize = int64(maxUpload)

	// --- Кэш и фильтрация ---

	cfg.CacheSize, err = getEnvInt("RT_CACHE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("RT_CACHE_SIZE: %w", err)
	}
	if cfg.CacheSize < 1 {
		return nil, fmt.Errorf("RT_CACHE_SIZE: значение %d должно быть положительным", cfg.CacheSize)
	}

	cfg.CacheTTL, err = getEnvDuration("RT_CACHE_TTL", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RT_CACHE_TTL: %w", err)
	}

	cfg.FilterConcurrency, err = getEnvInt("RT_FILTER_CONCURRENCY", 8)
	if err != nil {
		return nil, fmt.Errorf("RT_FILTER_CONCURRENCY: %w", err)
	}
	if cfg.FilterConcurrency < 1 || cfg.FilterConcurrency > 64 {
		return nil, fmt.Errorf("RT_FILTER_CONCURRENCY: значение %d вне допустимого диапазона 1-64", cfg.FilterConcurrency)
	}

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("RT_DEPHEALTH_GROUP", "roomtrack")

	cfg.DephealthCheckInterval, err = getEnvDuration("RT_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RT_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("RT_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("RT_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL PostgreSQL без пароля (для лейблов метрик).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s@%s:%d/%s", c.DBUser, c.DBHost, c.DBPort, c.DBName)
}

// StorageHealthURL возвращает URL liveness endpoint объектного хранилища.
func (c *Config) StorageHealthURL() string {
	scheme := "http"
	if c.StorageUseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/minio/health/live", scheme, c.StorageEndpoint)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// loadEnvFile подгружает переменные из .env файла, если он существует.
// Отсутствие файла ошибкой не считается.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("ошибка чтения %s: %w", path, err)
	}
	return nil
}

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
