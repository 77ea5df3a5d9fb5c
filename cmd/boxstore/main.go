// main.go — точка входа boxstore.
// Инициализирует: config, logger, БД и миграции, клиент каталога, сервисы,
// topologymetrics, HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bigkaa/boxstore/internal/api/handlers"
	"github.com/bigkaa/boxstore/internal/api/middleware"
	"github.com/bigkaa/boxstore/internal/api/openapi"
	"github.com/bigkaa/boxstore/internal/catalog"
	"github.com/bigkaa/boxstore/internal/config"
	"github.com/bigkaa/boxstore/internal/database"
	"github.com/bigkaa/boxstore/internal/repository"
	"github.com/bigkaa/boxstore/internal/server"
	"github.com/bigkaa/boxstore/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения (.env как fallback)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// 2. Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("boxstore запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("db_driver", cfg.DBDriver),
	)

	ctx := context.Background()

	// 3. Миграции и подключение к БД
	if err := database.Migrate(cfg, logger); err != nil {
		log.Fatalf("Ошибка применения миграций: %v", err)
	}

	db, err := database.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Ошибка подключения к БД: %v", err)
	}

	// 4. Репозитории
	boxRepo := repository.NewBoxRepository(db)
	imageRepo := repository.NewImageRepository(db, db)
	backgroundRepo := repository.NewBackgroundRepository(db)
	textRepo := repository.NewTextRepository(db)
	trackRepo := repository.NewTrackRepository(db)

	// 5. Клиент каталога. Токен запрашивается заранее; при ошибке — при первом запросе.
	catalogClient := catalog.New(catalog.Config{
		TokenURL:     cfg.SpotifyTokenURL,
		APIURL:       cfg.SpotifyAPIURL,
		ClientID:     cfg.SpotifyClientID,
		ClientSecret: cfg.SpotifyClientSecret,
	}, &http.Client{Timeout: cfg.SpotifyTimeout}, logger)

	authCtx, cancel := context.WithTimeout(ctx, cfg.SpotifyTimeout)
	if err := catalogClient.Authenticate(authCtx); err != nil {
		logger.Warn("Не удалось получить токен каталога при старте",
			slog.String("error", err.Error()),
		)
	}
	cancel()

	// 6. Сервисы
	metadataCache := service.NewMetadataCache(cfg.MetadataCacheSize, cfg.MetadataCacheTTL)
	svc := handlers.Services{
		Boxes:  service.NewBoxService(boxRepo, logger),
		Images: service.NewImageService(imageRepo, backgroundRepo, service.DefaultDetector(), metadataCache, logger),
		Texts:  service.NewTextService(textRepo, logger),
		Tracks: service.NewTrackService(trackRepo, catalogClient, logger),
	}

	// 7. topologymetrics — мониторинг зависимостей (каталог и PostgreSQL)
	dephealthSvc := startDephealth(ctx, cfg, db, logger)

	// 8. Контракт API
	openapiDoc, err := openapi.JSON(ctx)
	if err != nil {
		log.Fatalf("Ошибка загрузки OpenAPI: %v", err)
	}

	// 9. Handlers
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(db))
	apiHandler := handlers.NewAPIHandler(healthHandler, openapiDoc, svc, cfg.MaxUploadSize, logger)

	// 10. HTTP-сервер
	srv := server.New(cfg, logger, apiHandler,
		chimw.RequestID,
		middleware.RequestLogger(logger),
		middleware.MetricsMiddleware(),
		chimw.Recoverer,
		middleware.CORS(),
	)

	// 11. Запуск сервера (блокирующий вызов с graceful shutdown)
	runErr := srv.Run()
	if runErr != nil {
		logger.Error("Ошибка сервера", slog.String("error", runErr.Error()))
	}

	// --- Остановка фоновых процессов и закрытие БД ---
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}
	if err := db.Close(); err != nil {
		logger.Warn("Ошибка закрытия БД", slog.String("error", err.Error()))
	}

	if runErr != nil {
		os.Exit(1)
	}
	logger.Info("boxstore остановлен")
}

// startDephealth запускает мониторинг зависимостей, если есть что мониторить.
// Ошибки не фатальны: сервис работает и без мониторинга.
func startDephealth(ctx context.Context, cfg *config.Config, db *database.DB, logger *slog.Logger) *service.DephealthService {
	targets := service.DephealthTargets{CatalogURL: cfg.DephealthCatalogURL}
	if cfg.DBDriver == config.DriverPostgres {
		targets.PostgresDB = db.SQL()
		targets.PostgresURL = cfg.DBDSN
	}
	if targets.CatalogURL == "" && targets.PostgresDB == nil {
		return nil
	}

	ds, err := service.NewDephealthService("boxstore", cfg.DephealthGroup, targets, cfg.DephealthCheckInterval, logger)
	if err != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", err.Error()),
		)
		return nil
	}
	if err := ds.Start(ctx); err != nil {
		logger.Warn("Ошибка запуска topologymetrics", slog.String("error", err.Error()))
		return nil
	}

	logger.Info("topologymetrics запущен",
		slog.String("catalog_url", cfg.DephealthCatalogURL),
		slog.String("check_interval", cfg.DephealthCheckInterval.String()),
	)
	return ds
}
