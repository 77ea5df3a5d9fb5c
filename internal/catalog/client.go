// client.go — HTTP-клиент к Spotify Web API.
// Получает токен через Client Credentials flow (HTTP Basic), хранит его в памяти
// и при ответе 401 один раз переавторизуется и повторяет исходный запрос.
// Операции: Authenticate, Search, GetByID.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ошибки клиента каталога.
var (
	// ErrAuth — каталог отклонил учётные данные при запросе токена.
	ErrAuth = errors.New("ошибка авторизации в каталоге")
	// ErrRequest — каталог вернул неуспешный статус (в том числе повторный 401).
	ErrRequest = errors.New("ошибка запроса к каталогу")
	// ErrShape — ответ каталога не соответствует ожидаемой структуре.
	ErrShape = errors.New("неожиданный формат ответа каталога")
)

// Prometheus-метрики клиента каталога.
var (
	catalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boxstore_catalog_requests_total",
			Help: "Общее количество запросов к внешнему каталогу.",
		},
		[]string{"operation", "status"},
	)
	catalogTokenRefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boxstore_catalog_token_refresh_total",
			Help: "Общее количество запросов токена каталога.",
		},
		[]string{"result"},
	)
)

// Config — параметры подключения к каталогу.
type Config struct {
	// TokenURL — endpoint получения токена
	TokenURL string
	// APIURL — базовый URL Web API (без trailing slash)
	APIURL       string
	ClientID     string
	ClientSecret string //nolint:gosec // G101: поле структуры, не содержит секрет напрямую
}

// Client — HTTP-клиент к каталогу. Безопасен для конкурентного использования.
type Client struct {
	tokenURL     string
	apiURL       string
	clientID     string
	clientSecret string

	httpClient *http.Client
	logger     *slog.Logger

	// mu защищает token и сериализует переавторизацию
	mu    sync.Mutex
	token *Token
}

// New создаёт клиент каталога.
// httpClient — HTTP-клиент (nil — клиент с таймаутом 10s).
func New(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Client{
		tokenURL:     cfg.TokenURL,
		apiURL:       strings.TrimRight(cfg.APIURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   httpClient,
		logger:       logger.With(slog.String("component", "catalog_client")),
	}
}

// --- Аутентификация ---

// Authenticate запрашивает новый токен и заменяет текущий.
func (c *Client) Authenticate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.authenticateLocked(ctx)
	return err
}

// currentToken возвращает текущий токен, при его отсутствии выполняет авторизацию.
func (c *Client) currentToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil {
		return c.token.AccessToken, nil
	}
	return c.authenticateLocked(ctx)
}

// refresh заменяет протухший токен stale.
// Если другой запрос уже успел его заменить — возвращает новый токен без повторной авторизации.
func (c *Client) refresh(ctx context.Context, stale string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil && c.token.AccessToken != stale {
		return c.token.AccessToken, nil
	}
	return c.authenticateLocked(ctx)
}

// authenticateLocked выполняет Client Credentials flow. Вызывается под c.mu.
func (c *Client) authenticateLocked(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("создание запроса токена: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		catalogTokenRefreshTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: запрос токена: %v", ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		catalogTokenRefreshTotal.WithLabelValues("rejected").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: статус %d: %s", ErrAuth, resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		catalogTokenRefreshTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: декодирование токена: %v", ErrAuth, err)
	}
	if tr.AccessToken == "" {
		catalogTokenRefreshTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: пустой access_token", ErrAuth)
	}

	c.token = &Token{AccessToken: tr.AccessToken, AcquiredAt: time.Now().UTC()}
	catalogTokenRefreshTotal.WithLabelValues("success").Inc()
	c.logger.Debug("Токен каталога обновлён",
		slog.Int("expires_in", tr.ExpiresIn),
	)

	return c.token.AccessToken, nil
}

// --- Операции ---

// Search ищет треки по строке запроса.
// Возвращает элементы tracks.items без изменений.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]json.RawMessage, error) {
	params := url.Values{
		"q":     {query},
		"type":  {"track"},
		"limit": {strconv.Itoa(limit)},
	}

	body, err := c.get(ctx, "search", "/search?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShape, err)
	}
	if sr.Tracks == nil {
		return nil, fmt.Errorf("%w: отсутствует поле tracks", ErrShape)
	}
	if sr.Tracks.Items == nil {
		return []json.RawMessage{}, nil
	}
	return sr.Tracks.Items, nil
}

// GetByID возвращает трек по идентификатору каталога.
func (c *Client) GetByID(ctx context.Context, remoteID string) (*Track, error) {
	body, err := c.get(ctx, "get_track", "/tracks/"+url.PathEscape(remoteID))
	if err != nil {
		return nil, err
	}

	var track Track
	if err := json.Unmarshal(body, &track); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShape, err)
	}
	track.Raw = json.RawMessage(body)
	return &track, nil
}

// --- HTTP helpers ---

// get выполняет авторизованный GET к Web API.
// При 401 переавторизуется и повторяет запрос ровно один раз.
func (c *Client) get(ctx context.Context, operation, path string) ([]byte, error) {
	token, err := c.currentToken(ctx)
	if err != nil {
		return nil, err
	}

	status, body, err := c.doGet(ctx, path, token)
	if err != nil {
		catalogRequestsTotal.WithLabelValues(operation, "error").Inc()
		return nil, err
	}

	if status == http.StatusUnauthorized {
		catalogRequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
		c.logger.Info("Токен каталога отклонён, повторная авторизация",
			slog.String("operation", operation),
		)

		token, err = c.refresh(ctx, token)
		if err != nil {
			return nil, err
		}
		status, body, err = c.doGet(ctx, path, token)
		if err != nil {
			catalogRequestsTotal.WithLabelValues(operation, "error").Inc()
			return nil, err
		}
	}

	catalogRequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()

	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: %s вернул статус %d: %s", ErrRequest, operation, status, truncate(body, 512))
	}
	return body, nil
}

// doGet отправляет один GET-запрос с Bearer-токеном и читает тело ответа.
func (c *Client) doGet(ctx context.Context, path, token string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: создание запроса: %v", ErrRequest, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: чтение ответа: %v", ErrRequest, err)
	}
	return resp.StatusCode, body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
