// Пакет repository — слой доступа к данным boxstore (SQLite или PostgreSQL).
// Все запросы — чистый SQL через database/sql, без ORM.
// Плейсхолдеры "?" переписываются под диалект в пакете database.
package repository

import (
	"context"
	"errors"

	"github.com/bigkaa/boxstore/internal/database"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict — конфликт уникальности (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт — запись уже существует")
)

// DBTX — интерфейс для выполнения SQL-запросов.
// Реализуется как *database.DB, так и *database.Tx, что позволяет
// использовать репозитории как внутри, так и вне транзакций.
type DBTX = database.Querier

// TxRunner позволяет выполнять операции в транзакции.
// Реализуется *database.DB.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx database.Querier) error) error
}

// isUniqueViolation проверяет, является ли ошибка нарушением уникальности.
func isUniqueViolation(err error) bool {
	return database.IsUniqueViolation(err)
}
