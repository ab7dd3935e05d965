package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// Cors lets the registration frontend at FE_URL call the API with its
// session cookie.
func (m *Middleware) Cors(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{strings.TrimRight(m.Config.Server.FEURL, "/")},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", AdminKeyHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           600,
	})(next)
}
