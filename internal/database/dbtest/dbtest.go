// Пакет dbtest — вспомогательные функции для тестов, работающих с БД.
package dbtest

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/bigkaa/boxstore/internal/config"
	"github.com/bigkaa/boxstore/internal/database"
)

// Logger возвращает логгер, отбрасывающий вывод.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewSQLite создаёт файловую SQLite БД во временном каталоге теста,
// применяет миграции и возвращает подключение. Закрывается через t.Cleanup.
func NewSQLite(t *testing.T) *database.DB {
	t.Helper()

	cfg := &config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "boxstore_test.db"),
	}
	logger := Logger()

	if err := database.Migrate(cfg, logger); err != nil {
		t.Fatalf("Ошибка миграций: %v", err)
	}

	db, err := database.Open(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("Ошибка подключения: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}
