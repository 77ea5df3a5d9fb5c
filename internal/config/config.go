// Пакет config — загрузка и валидация конфигурации boxstore
// из переменных окружения (с fallback на локальный .env файл).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Поддерживаемые драйверы БД.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Адреса Spotify Web API по умолчанию.
const (
	DefaultSpotifyTokenURL = "https://accounts.spotify.com/api/token"
	DefaultSpotifyAPIURL   = "https://api.spotify.com/v1"
)

// Config содержит все параметры конфигурации boxstore.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера (PORT, по умолчанию 8080)
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration

	// --- База данных ---

	// DBDriver — sqlite (по умолчанию) или postgres
	DBDriver string
	// DBPath — путь к файлу SQLite
	DBPath string
	// DBDSN — строка подключения PostgreSQL (только для driver=postgres)
	DBDSN string

	// --- Загрузка файлов ---

	// MaxUploadSize — максимальный размер загружаемого файла в байтах.
	// Payload целиком держится в памяти.
	MaxUploadSize int64

	// --- Кэш метаданных изображений ---

	MetadataCacheSize int
	MetadataCacheTTL  time.Duration

	// --- Spotify (внешний каталог) ---

	SpotifyClientID     string
	SpotifyClientSecret string //nolint:gosec // G101: поле структуры, не содержит секрет напрямую
	SpotifyTokenURL     string
	SpotifyAPIURL       string
	SpotifyTimeout      time.Duration

	// --- topologymetrics ---

	// DephealthCatalogURL — URL health-проверки каталога (пустая строка — мониторинг выключен)
	DephealthCatalogURL    string
	DephealthGroup         string
	DephealthCheckInterval time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Перед чтением подгружается .env из рабочей директории (если есть);
// уже заданные переменные окружения имеют приоритет над .env.
func Load() (*Config, error) {
	return LoadWithDotenv(".env")
}

// LoadWithDotenv — то же, что Load, но с явным путём к .env файлу.
func LoadWithDotenv(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("чтение %s: %w", dotenvPath, err)
		}
	}

	cfg := &Config{}
	var err error

	// --- Сервер ---

	cfg.Port, err = getEnvInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT: значение %d вне диапазона 1-65535", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("BOX_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("BOX_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("BOX_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("BOX_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	cfg.HTTPReadTimeout, err = getEnvDuration("BOX_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BOX_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("BOX_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BOX_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("BOX_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BOX_HTTP_IDLE_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout, err = getEnvDuration("BOX_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BOX_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- База данных ---

	cfg.DBDriver = strings.ToLower(getEnvDefault("BOX_DB_DRIVER", DriverSQLite))
	switch cfg.DBDriver {
	case DriverSQLite:
		cfg.DBPath = getEnvDefault("BOX_DB_PATH", "boxstore.db")
	case DriverPostgres:
		cfg.DBDSN, err = getEnvRequired("BOX_DB_DSN")
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("BOX_DB_DRIVER: недопустимый драйвер %q, допустимые: sqlite, postgres", cfg.DBDriver)
	}

	// --- Загрузка файлов ---

	maxUpload, err := getEnvInt("BOX_MAX_UPLOAD_SIZE", 10<<20)
	if err != nil {
		return nil, fmt.Errorf("BOX_MAX_UPLOAD_SIZE: %w", err)
	}
	if maxUpload <= 0 {
		return nil, fmt.Errorf("BOX_MAX_UPLOAD_SIZE: значение должно быть > 0")
	}
	cfg.MaxUploadSize = int64(maxUpload)

	// --- Кэш ---

	cfg.MetadataCacheSize, err = getEnvInt("BOX_METADATA_CACHE_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("BOX_METADATA_CACHE_SIZE: %w", err)
	}
	if cfg.MetadataCacheSize <= 0 {
		return nil, fmt.Errorf("BOX_METADATA_CACHE_SIZE: значение должно быть > 0")
	}
	cfg.MetadataCacheTTL, err = getEnvDuration("BOX_METADATA_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("BOX_METADATA_CACHE_TTL: %w", err)
	}

	// --- Spotify ---

	cfg.SpotifyClientID, err = getEnvRequired("SPOTIFY_CLIENT_ID")
	if err != nil {
		return nil, err
	}
	cfg.SpotifyClientSecret, err = getEnvRequired("SPOTIFY_CLIENT_SECRET")
	if err != nil {
		return nil, err
	}
	cfg.SpotifyTokenURL = getEnvDefault("SPOTIFY_TOKEN_URL", DefaultSpotifyTokenURL)
	cfg.SpotifyAPIURL = strings.TrimRight(getEnvDefault("SPOTIFY_API_URL", DefaultSpotifyAPIURL), "/")
	cfg.SpotifyTimeout, err = getEnvDuration("SPOTIFY_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SPOTIFY_TIMEOUT: %w", err)
	}

	// --- topologymetrics ---

	cfg.DephealthCatalogURL = getEnvDefault("BOX_DEPHEALTH_CATALOG_URL", "")
	cfg.DephealthGroup = getEnvDefault("BOX_DEPHEALTH_GROUP", "boxstore")
	cfg.DephealthCheckInterval, err = getEnvDuration("BOX_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("BOX_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	return cfg, nil
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
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
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
