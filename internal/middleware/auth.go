package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/Jidetireni/firstcare-registration/pkg/token"
)

const AdminKeyHeader = "X-Admin-Key"

// RequireSession accepts the session token as a bearer token or as the
// session cookie set when the wizard was started.
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := ""

		authHeader := r.Header.Get("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenString == "" {
			if cookie, err := r.Cookie(token.SessionCookieName); err == nil {
				tokenString = cookie.Value
			}
		}

		if tokenString == "" {
			m.apiError(w, "Unauthorized: No session token provided", http.StatusUnauthorized)
			return
		}

		id, err := m.Sessions.Authenticate(tokenString)
		if err != nil {
			m.apiError(w, "Unauthorized: Invalid or expired session", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(NewContextWithSession(r.Context(), id)))
	})
}

func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(AdminKeyHeader)
		expected := m.Config.Server.AdminAPIKey

		if key == "" || expected == "" || subtle.ConstantTimeCompare([]byte(key), []byte(expected)) != 1 {
			m.apiError(w, "Forbidden: Invalid admin key", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
