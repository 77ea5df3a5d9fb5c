// dephealth.go — интеграция с topologymetrics SDK для мониторинга зависимостей.
//
// boxstore мониторит:
//   - внешний каталог — HTTP checker к BOX_DEPHEALTH_CATALOG_URL (non-critical:
//     без каталога работают все операции, кроме треков)
//   - PostgreSQL — SQL checker через существующий *sql.DB (только при BOX_DB_DRIVER=postgres, critical)
//
// Метрики доступны на /metrics вместе с остальными Prometheus-метриками:
//   - app_dependency_health — состояние зависимости (1 = ok, 0 = fail)
//   - app_dependency_latency_seconds — задержка проверки
package service

import (
	"context"
	"database/sql"
	"log/slog"
	"net/url"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // регистрация HTTP checker factory
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"
	"github.com/prometheus/client_golang/prometheus"
)

// DephealthTargets — зависимости для мониторинга.
type DephealthTargets struct {
	// CatalogURL — URL health-проверки каталога; путь URL используется как health path
	CatalogURL string
	// PostgresDB — *sql.DB для проверки PostgreSQL (nil — не мониторится)
	PostgresDB *sql.DB
	// PostgresURL — URL PostgreSQL для лейблов метрик (не для подключения)
	PostgresURL string
}

// DephealthService — сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
// Метрики регистрируются в глобальном Prometheus registry.
func NewDephealthService(
	serviceID string,
	group string,
	targets DephealthTargets,
	checkInterval time.Duration,
	logger *slog.Logger,
) (*DephealthService, error) {
	return newDephealthService(serviceID, group, targets, checkInterval, logger)
}

// NewDephealthServiceWithRegisterer создаёт сервис с указанным Prometheus registerer.
// Используется в тестах для изоляции метрик.
func NewDephealthServiceWithRegisterer(
	serviceID string,
	group string,
	targets DephealthTargets,
	checkInterval time.Duration,
	logger *slog.Logger,
	registerer prometheus.Registerer,
) (*DephealthService, error) {
	return newDephealthService(serviceID, group, targets, checkInterval, logger,
		dephealth.WithRegisterer(registerer))
}

func newDephealthService(
	serviceID string,
	group string,
	targets DephealthTargets,
	checkInterval time.Duration,
	logger *slog.Logger,
	extraOpts ...dephealth.Option,
) (*DephealthService, error) {
	opts := make([]dephealth.Option, 0, 3+len(extraOpts))
	opts = append(opts, dephealth.WithLogger(logger))

	if targets.CatalogURL != "" {
		healthPath := "/"
		catalogOpts := []dephealth.DependencyOption{
			dephealth.FromURL(targets.CatalogURL),
			dephealth.CheckInterval(checkInterval),
			dephealth.Critical(false),
		}
		if parsed, err := url.Parse(targets.CatalogURL); err == nil {
			if parsed.Path != "" {
				healthPath = parsed.Path
			}
			if parsed.Scheme == "https" {
				catalogOpts = append(catalogOpts, dephealth.WithHTTPTLSSkipVerify(false))
			}
		}
		catalogOpts = append(catalogOpts, dephealth.WithHTTPHealthPath(healthPath))
		opts = append(opts, dephealth.HTTP("spotify", catalogOpts...))
	}

	if targets.PostgresDB != nil {
		opts = append(opts, dephealth.AddDependency("postgresql", dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(targets.PostgresDB)),
			dephealth.FromURL(targets.PostgresURL),
			dephealth.CheckInterval(checkInterval),
			dephealth.Critical(true),
		))
	}

	opts = append(opts, extraOpts...)

	dh, err := dephealth.New(serviceID, group, opts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен")
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ — имя зависимости, значение — true если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}
