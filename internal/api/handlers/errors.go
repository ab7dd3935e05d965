package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	svc "github.com/Jidetireni/firstcare-registration/internal/services"
)

func (h *Handlers) logError(r *http.Request, err error, status int) {
	event := h.factory.Logger.Error()
	if status < http.StatusInternalServerError {
		event = h.factory.Logger.Debug()
	}
	event.Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Msg("request failed")
}

// errorResponse writes err in the error envelope. Only *services.APIError
// messages reach the client; anything else is an internal error.
func (h *Handlers) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	resp := map[string]any{
		"message": "The server encountered a problem and could not process your request",
		"status":  http.StatusInternalServerError,
	}

	status := http.StatusInternalServerError
	var apiErr *svc.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.Status
		resp["message"] = apiErr.Message
		resp["status"] = status
		if len(apiErr.Errors) > 0 {
			resp["errors"] = apiErr.Errors
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		h.logError(r, encErr, status)
		return
	}

	h.logError(r, err, status)
}
