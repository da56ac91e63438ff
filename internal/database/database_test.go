package database

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tran-matt/room-doc-tracker/internal/config"
)

// setupTestDB запускает PostgreSQL в Docker-контейнере через testcontainers.
// Возвращает конфиг, указывающий на контейнер.
func setupTestDB(t *testing.T) *config.Config {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("roomtrack_test"),
		postgres.WithUsername("roomtrack"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	t.Setenv("RT_ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))
	t.Setenv("RT_DB_HOST", host)
	t.Setenv("RT_DB_PORT", port.Port())
	t.Setenv("RT_DB_NAME", "roomtrack_test")
	t.Setenv("RT_DB_USER", "roomtrack")
	t.Setenv("RT_DB_PASSWORD", "test-password")
	t.Setenv("RT_DB_SSL_MODE", "disable")
	t.Setenv("RT_STORAGE_ENDPOINT", "localhost:9000")
	t.Setenv("RT_STORAGE_ACCESS_KEY", "test")
	t.Setenv("RT_STORAGE_SECRET_KEY", "test-secret")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// TestConnect проверяет подключение к PostgreSQL через pgxpool.
func TestConnect(t *testing.T) {
	cfg := setupTestDB(t)
	ctx := context.Background()

	pool, err := Connect(ctx, cfg, testLogger())
	if err != nil {
		t.Fatalf("Connect() вернул ошибку: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("pool.Ping() вернул ошибку: %v", err)
	}
}

// TestMigrate проверяет применение миграций и каскадное удаление документов.
func TestMigrate(t *testing.T) {
	cfg := setupTestDB(t)
	logger := testLogger()

	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Migrate() вернул ошибку: %v", err)
	}

	// Повторное применение — должно быть без ошибки (ErrNoChange)
	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Повторный Migrate() вернул ошибку: %v", err)
	}

	ctx := context.Background()
	pool, err := Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Connect() вернул ошибку: %v", err)
	}
	defer pool.Close()

	for _, table := range []string{"rooms", "documents"} {
		var exists bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)`, table).Scan(&exists)
		if err != nil {
			t.Fatalf("Ошибка проверки таблицы %s: %v", table, err)
		}
		if !exists {
			t.Errorf("Таблица %s не создана", table)
		}
	}

	var roomID string
	err = pool.QueryRow(ctx,
		`INSERT INTO rooms (name, location) VALUES ('Lab 1', 'B2') RETURNING id`).Scan(&roomID)
	if err != nil {
		t.Fatalf("Ошибка вставки комнаты: %v", err)
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO documents (room_id, name, effective_date, expiration_date)
		 VALUES ($1, 'permit.pdf', '2026-01-01', '2027-01-01')`, roomID)
	if err != nil {
		t.Fatalf("Ошибка вставки документа: %v", err)
	}

	if _, err := pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, roomID); err != nil {
		t.Fatalf("Ошибка удаления комнаты: %v", err)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM documents`).Scan(&count); err != nil {
		t.Fatalf("Ошибка подсчёта документов: %v", err)
	}
	if count != 0 {
		t.Errorf("После удаления комнаты осталось %d документов, ожидали 0", count)
	}
}

// TestReadinessChecker_Integration проверяет ReadinessChecker на живом PostgreSQL.
func TestReadinessChecker_Integration(t *testing.T) {
	cfg := setupTestDB(t)
	ctx := context.Background()

	pool, err := Connect(ctx, cfg, testLogger())
	if err != nil {
		t.Fatalf("Connect() вернул ошибку: %v", err)
	}
	defer pool.Close()

	status, msg := NewReadinessChecker(pool).CheckReady()
	if status != "ok" {
		t.Errorf("CheckReady() status = %q, message = %q; ожидали status = %q",
			status, msg, "ok")
	}
}

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestReadinessChecker(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status string
	}{
		{"доступен", nil, "ok"},
		{"недоступен", errors.New("connection refused"), "fail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := NewReadinessChecker(fakePinger{err: tt.err}).CheckReady()
			if status != tt.status {
				t.Errorf("CheckReady() status = %q (%s), ожидали %q", status, msg, tt.status)
			}
		})
	}
}

func TestMigrateURL(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db.local",
		DBPort:     5433,
		DBName:     "roomtrack",
		DBUser:     "rt",
		DBPassword: "p@ss/word",
		DBSSLMode:  "require",
	}

	raw := migrateURL(cfg)
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q) ошибка: %v", raw, err)
	}
	if u.Scheme != "pgx5" {
		t.Errorf("scheme = %q, ожидали pgx5", u.Scheme)
	}
	if pw, _ := u.User.Password(); pw != "p@ss/word" {
		t.Errorf("password = %q, ожидали исходный пароль", pw)
	}
	if u.Host != "db.local:5433" || u.Path != "/roomtrack" {
		t.Errorf("host=%q path=%q", u.Host, u.Path)
	}
	if u.Query().Get("sslmode") != "require" {
		t.Errorf("sslmode = %q, ожидали require", u.Query().Get("sslmode"))
	}
}
