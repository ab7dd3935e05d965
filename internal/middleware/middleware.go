package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/Jidetireni/firstcare-registration/internal/config"
	"github.com/Jidetireni/firstcare-registration/internal/services/sessions"
	"github.com/Jidetireni/firstcare-registration/pkg/logger"
	"github.com/google/uuid"
)

var _ Authenticator = (*sessions.Session)(nil)

// Authenticator resolves a session token to the session it was issued for.
type Authenticator interface {
	Authenticate(token string) (uuid.UUID, error)
}

type Middleware struct {
	Config   *config.Config
	Sessions Authenticator
	Logger   *logger.Logger
}

func New(cfg *config.Config, sessionSvc Authenticator, log *logger.Logger) *Middleware {
	return &Middleware{
		Config:   cfg,
		Sessions: sessionSvc,
		Logger:   log,
	}
}

func (m *Middleware) apiError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message": message,
		"status":  code,
	})
}
