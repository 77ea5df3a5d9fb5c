// logging.go — журнал HTTP-запросов boxstore через slog.
// Кроме статуса и длительности пишет шаблон маршрута chi и бокс,
// к которому относится запрос (из пути или из тела, см. SetBoxID).
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// responseWriter — обёртка для перехвата статус-кода ответа.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap позволяет http.ResponseController получить доступ к оригинальному ResponseWriter.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

type boxIDKey struct{}

// boxRef — изменяемая ячейка в контексте запроса: обработчик узнаёт boxId
// только после разбора тела, а логгер читает его после next.ServeHTTP.
type boxRef struct {
	id string
}

// SetBoxID сообщает логгеру запроса идентификатор бокса из тела запроса.
// Вне RequestLogger вызов ничего не делает.
func SetBoxID(ctx context.Context, boxID string) {
	if ref, ok := ctx.Value(boxIDKey{}).(*boxRef); ok {
		ref.id = boxID
	}
}

// requestBoxID — boxId из параметра пути имеет приоритет над SetBoxID.
func requestBoxID(r *http.Request, ref *boxRef) string {
	if id := chi.URLParam(r, "boxId"); id != "" {
		return id
	}
	return ref.id
}

// routePattern — шаблон маршрута ("/api/images/{id}") или "unmatched".
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// RequestLogger возвращает middleware, логирующий каждый HTTP-запрос.
// Уровень зависит от статус-кода: INFO (1xx-3xx), WARN (4xx), ERROR (5xx).
// Запросы к /health/* и /metrics пишутся на DEBUG, чтобы проверки Kubernetes не засоряли журнал.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)
			ref := &boxRef{}
			r = r.WithContext(context.WithValue(r.Context(), boxIDKey{}, ref))

			next.ServeHTTP(wrapped, r)

			route := routePattern(r)
			level := slog.LevelInfo
			switch {
			case wrapped.statusCode >= 500:
				level = slog.LevelError
			case wrapped.statusCode >= 400:
				level = slog.LevelWarn
			case isHealthRoute(route):
				level = slog.LevelDebug
			}

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", wrapped.written),
				slog.String("request_id", chimw.GetReqID(r.Context())),
			}
			if boxID := requestBoxID(r, ref); boxID != "" {
				attrs = append(attrs, slog.String("box_id", boxID))
			}
			logger.LogAttrs(r.Context(), level, "HTTP запрос", attrs...)
		})
	}
}

func isHealthRoute(route string) bool {
	switch route {
	case "/health/live", "/health/ready", "/metrics":
		return true
	}
	return false
}
