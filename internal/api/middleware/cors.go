// cors.go — CORS middleware на go-chi/cors. Разрешены любые источники.
package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS возвращает middleware, разрешающий запросы с любого origin.
func CORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Length", "X-Request-Id"},
		MaxAge:         300,
	})
}
