// Пакет database — подключение к SQLite (modernc) или PostgreSQL (pgx stdlib),
// применение миграций (golang-migrate) и проверка готовности.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // драйвер "pgx" для database/sql
	_ "modernc.org/sqlite"             // драйвер "sqlite" для database/sql

	"github.com/bigkaa/boxstore/internal/config"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Dialect — диалект SQL, определяет плейсхолдеры и набор миграций.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Querier — интерфейс выполнения SQL-запросов.
// Реализуется как *DB, так и *Tx, что позволяет
// использовать репозитории как внутри, так и вне транзакций.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB — обёртка над *sql.DB с учётом диалекта.
// Запросы пишутся с плейсхолдерами "?", для PostgreSQL они
// переписываются в "$1, $2, ...".
type DB struct {
	sql     *sql.DB
	dialect Dialect
}

// Open открывает подключение к БД согласно конфигурации и выполняет ping.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DB, error) {
	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)

	switch cfg.DBDriver {
	case config.DriverPostgres:
		dialect = DialectPostgres
		db, err = sql.Open("pgx", cfg.DBDSN)
	default:
		dialect = DialectSQLite
		db, err = sql.Open("sqlite", sqliteDSN(cfg.DBPath))
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия БД: %w", err)
	}

	if dialect == DialectSQLite {
		// SQLite допускает одного писателя на файл.
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ошибка подключения к БД (%s): %w", dialect, err)
	}

	logger.Info("Подключение к БД установлено",
		slog.String("dialect", string(dialect)),
		slog.String("path", cfg.DBPath),
	)

	return &DB{sql: db, dialect: dialect}, nil
}

// sqliteDSN формирует DSN modernc.org/sqlite с необходимыми pragma.
func sqliteDSN(path string) string {
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
}

// Dialect возвращает диалект подключения.
func (d *DB) Dialect() Dialect {
	return d.dialect
}

// Close закрывает подключение.
func (d *DB) Close() error {
	return d.sql.Close()
}

// PingContext проверяет доступность БД.
func (d *DB) PingContext(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

func (d *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.sql.ExecContext(ctx, rebind(d.dialect, query), args...)
}

func (d *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.sql.QueryContext(ctx, rebind(d.dialect, query), args...)
}

func (d *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.sql.QueryRowContext(ctx, rebind(d.dialect, query), args...)
}

// Tx — транзакция с тем же переписыванием плейсхолдеров.
type Tx struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, rebind(t.dialect, query), args...)
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, rebind(t.dialect, query), args...)
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, rebind(t.dialect, query), args...)
}

// RunInTx выполняет fn внутри транзакции.
// При ошибке fn — транзакция откатывается.
// При успехе — коммитится.
func (d *DB) RunInTx(ctx context.Context, fn func(tx Querier) error) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // откат после коммита — no-op

	if err := fn(&Tx{tx: tx, dialect: d.dialect}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка коммита транзакции: %w", err)
	}
	return nil
}

// rebind переписывает плейсхолдеры "?" в "$n" для PostgreSQL.
// Знаки вопроса внутри строковых литералов не трогаются.
func rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Migrate применяет SQL-миграции из embedded FS к базе данных.
// Открывает отдельное подключение: golang-migrate закрывает его в m.Close().
func Migrate(cfg *config.Config, logger *slog.Logger) error {
	dialect := DialectSQLite
	if cfg.DBDriver == config.DriverPostgres {
		dialect = DialectPostgres
	}

	source, err := iofs.New(migrationsFS, "migrations/"+string(dialect))
	if err != nil {
		return fmt.Errorf("ошибка создания источника миграций: %w", err)
	}

	var (
		db     *sql.DB
		driver database.Driver
	)
	switch dialect {
	case DialectPostgres:
		db, err = sql.Open("pgx", cfg.DBDSN)
		if err != nil {
			return fmt.Errorf("ошибка открытия БД для миграций: %w", err)
		}
		driver, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	default:
		db, err = sql.Open("sqlite", sqliteDSN(cfg.DBPath))
		if err != nil {
			return fmt.Errorf("ошибка открытия БД для миграций: %w", err)
		}
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	}
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("ошибка инициализации драйвера миграций: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, string(dialect), driver)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("ошибка инициализации миграций: %w", err)
	}
	defer m.Close()

	// Применяем все миграции
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("ошибка применения миграций: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("Миграции применены",
		slog.String("dialect", string(dialect)),
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)

	return nil
}

// ReadinessChecker — проверка готовности БД для health endpoint.
// Реализует интерфейс handlers.ReadinessChecker.
type ReadinessChecker struct {
	db *DB
}

// NewReadinessChecker создаёт проверку готовности БД.
func NewReadinessChecker(db *DB) *ReadinessChecker {
	return &ReadinessChecker{db: db}
}

// CheckReady проверяет подключение к БД через ping.
// Возвращает статус ("ok", "fail") и сообщение.
func (c *ReadinessChecker) CheckReady() (status string, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := c.db.PingContext(ctx); err != nil {
		return "fail", fmt.Sprintf("БД недоступна: %v", err)
	}
	return "ok", "подключение активно"
}

// SQL возвращает исходный *sql.DB (для внешних health checker'ов).
func (d *DB) SQL() *sql.DB {
	return d.sql
}
