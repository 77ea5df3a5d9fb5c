// metrics.go — Prometheus HTTP метрики boxstore.
// Регистрирует метрики: boxstore_http_requests_total, boxstore_http_request_duration_seconds.
// Нормализация путей предотвращает взрывной рост кардинальности.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boxstore_http_requests_total",
			Help: "Общее количество HTTP-запросов к boxstore",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "boxstore_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к boxstore в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newMetricsResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			status := strconv.Itoa(wrapped.statusCode)
			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(time.Since(start).Seconds())
		})
	}
}

// metricsResponseWriter — обёртка для перехвата статус-кода.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// staticPaths — пути без параметров, попадают в лейбл как есть.
var staticPaths = map[string]struct{}{
	"/health/live":                  {},
	"/health/ready":                 {},
	"/metrics":                      {},
	"/api/openapi.json":             {},
	"/api/images/boxes":             {},
	"/api/images/upload":            {},
	"/api/images/background/upload": {},
	"/api/text/save":                {},
	"/api/spotify/search":           {},
	"/api/spotify/save":             {},
}

// paramPrefixes — префиксы путей с одним параметром; порядок важен (длинные первыми).
var paramPrefixes = []struct {
	prefix, template string
}{
	{"/api/images/background/", "/api/images/background/{boxId}"},
	{"/api/text/box/", "/api/text/box/{boxId}"},
	{"/api/text/", "/api/text/{id}"},
	{"/api/spotify/song/", "/api/spotify/song/{id}"},
	{"/api/spotify/box/", "/api/spotify/box/{boxId}"},
}

// normalizePath заменяет параметры пути шаблонами.
// /api/images/a1b2c3d4-... → /api/images/{id}
// /api/images/a1b2c3d4-.../metadata → /api/images/{id}/metadata
// Неизвестные пути сводятся к "other".
func normalizePath(path string) string {
	if _, ok := staticPaths[path]; ok {
		return path
	}

	for _, p := range paramPrefixes {
		if rest, ok := strings.CutPrefix(path, p.prefix); ok && rest != "" && !strings.Contains(rest, "/") {
			return p.template
		}
	}

	if rest, ok := strings.CutPrefix(path, "/api/images/"); ok && rest != "" {
		id, suffix, _ := strings.Cut(rest, "/")
		switch {
		case id == "":
		case suffix == "":
			return "/api/images/{id}"
		case suffix == "metadata":
			return "/api/images/{id}/metadata"
		}
	}

	return "other"
}
