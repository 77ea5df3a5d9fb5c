package database

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bigkaa/boxstore/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sqliteConfig — конфигурация с файлом SQLite во временном каталоге.
func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "test.db"),
	}
}

var boxTables = []string{
	"box_ids", "images", "box_contents", "background_images", "texts", "spotify_songs",
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{"sqlite без изменений", DialectSQLite, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{"postgres нумерация", DialectPostgres, "INSERT INTO t (a, b) VALUES (?, ?)", "INSERT INTO t (a, b) VALUES ($1, $2)"},
		{"postgres литерал не трогаем", DialectPostgres, "SELECT '?' FROM t WHERE a = ?", "SELECT '?' FROM t WHERE a = $1"},
		{"postgres без плейсхолдеров", DialectPostgres, "SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rebind(tt.dialect, tt.query); got != tt.want {
				t.Errorf("rebind() = %q, хотели %q", got, tt.want)
			}
		})
	}
}

// TestMigrateSQLite проверяет, что миграции применяются идемпотентно и создают все таблицы.
func TestMigrateSQLite(t *testing.T) {
	cfg := sqliteConfig(t)
	logger := testLogger()

	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Migrate() вернул ошибку: %v", err)
	}
	// Повторное применение — должно быть без ошибки (ErrNoChange)
	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Повторный Migrate() вернул ошибку: %v", err)
	}

	db, err := Open(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("Open() вернул ошибку: %v", err)
	}
	defer db.Close()

	for _, table := range boxTables {
		var name string
		err := db.QueryRowContext(context.Background(),
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("Таблица %s не найдена: %v", table, err)
		}
	}
}

func TestIsUniqueViolation_SQLite(t *testing.T) {
	cfg := sqliteConfig(t)
	logger := testLogger()
	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Migrate() вернул ошибку: %v", err)
	}
	db, err := Open(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("Open() вернул ошибку: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "INSERT INTO box_ids (id) VALUES (?)", "b1"); err != nil {
		t.Fatalf("Первая вставка: %v", err)
	}
	_, err = db.ExecContext(ctx, "INSERT INTO box_ids (id) VALUES (?)", "b1")
	if err == nil {
		t.Fatal("Ожидалась ошибка при повторной вставке")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, хотели true", err)
	}

	if IsUniqueViolation(errors.New("другая ошибка")) {
		t.Error("IsUniqueViolation() = true для произвольной ошибки")
	}
	if IsUniqueViolation(nil) {
		t.Error("IsUniqueViolation(nil) = true")
	}
}

func TestRunInTx_Rollback(t *testing.T) {
	cfg := sqliteConfig(t)
	logger := testLogger()
	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Migrate() вернул ошибку: %v", err)
	}
	db, err := Open(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("Open() вернул ошибку: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	errBoom := errors.New("boom")

	err = db.RunInTx(ctx, func(tx Querier) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO box_ids (id) VALUES (?)", "rolled-back"); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("RunInTx() = %v, хотели %v", err, errBoom)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM box_ids").Scan(&count); err != nil {
		t.Fatalf("COUNT: %v", err)
	}
	if count != 0 {
		t.Errorf("После отката в box_ids %d строк, хотели 0", count)
	}

	// Успешная транзакция коммитится
	err = db.RunInTx(ctx, func(tx Querier) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO box_ids (id) VALUES (?)", "committed")
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx() вернул ошибку: %v", err)
	}
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM box_ids").Scan(&count); err != nil {
		t.Fatalf("COUNT: %v", err)
	}
	if count != 1 {
		t.Errorf("После коммита в box_ids %d строк, хотели 1", count)
	}
}

func TestReadinessChecker(t *testing.T) {
	cfg := sqliteConfig(t)
	db, err := Open(context.Background(), cfg, testLogger())
	if err != nil {
		t.Fatalf("Open() вернул ошибку: %v", err)
	}

	checker := NewReadinessChecker(db)
	if status, msg := checker.CheckReady(); status != "ok" {
		t.Errorf("CheckReady() = %q (%s), хотели ok", status, msg)
	}

	_ = db.Close()
	if status, _ := checker.CheckReady(); status != "fail" {
		t.Errorf("CheckReady() после Close = %q, хотели fail", status)
	}
}

// TestMigratePostgres — интеграционный тест миграций на PostgreSQL через testcontainers.
func TestMigratePostgres(t *testing.T) {
	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("boxstore_test"),
		postgres.WithUsername("boxstore"),
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

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Не удалось получить DSN контейнера: %v", err)
	}

	cfg := &config.Config{DBDriver: config.DriverPostgres, DBDSN: dsn}
	logger := testLogger()

	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Migrate() вернул ошибку: %v", err)
	}
	if err := Migrate(cfg, logger); err != nil {
		t.Fatalf("Повторный Migrate() вернул ошибку: %v", err)
	}

	db, err := Open(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Open() вернул ошибку: %v", err)
	}
	defer db.Close()

	for _, table := range boxTables {
		var exists bool
		err := db.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = ?)", table,
		).Scan(&exists)
		if err != nil {
			t.Fatalf("Ошибка проверки таблицы %s: %v", table, err)
		}
		if !exists {
			t.Errorf("Таблица %s не создана", table)
		}
	}

	// Нарушение первичного ключа распознаётся и для PostgreSQL
	if _, err := db.ExecContext(ctx, "INSERT INTO box_ids (id) VALUES (?)", "pg-box"); err != nil {
		t.Fatalf("Первая вставка: %v", err)
	}
	_, err = db.ExecContext(ctx, "INSERT INTO box_ids (id) VALUES (?)", "pg-box")
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation(%v) = false, хотели true", err)
	}
}
