package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// LoggerMiddleware logs each request with its chi request id and, behind
// RequireSession, the wizard session.
func (m *Middleware) LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		// RequireSession runs further down the chain, so the session id is
		// read from the request it hands on.
		var sessionID string
		next.ServeHTTP(ww, r.WithContext(withSessionRecorder(r.Context(), &sessionID)))

		m.Logger.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("ip", r.RemoteAddr).
			Str("session_id", sessionID).
			Msg("incoming_request")
	})
}
