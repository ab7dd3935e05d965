package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Jidetireni/firstcare-registration/internal/dto"
	"github.com/Jidetireni/firstcare-registration/internal/middleware"
	svc "github.com/Jidetireni/firstcare-registration/internal/services"
	"github.com/google/uuid"
)

type envelope map[string]any

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(map[string]any{
		"data":   data,
		"status": status,
	})
}

func (h *Handlers) writeFile(w http.ResponseWriter, contentType string, content []byte, headers http.Header) {
	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// sessionID is the session authenticated by RequireSession.
func (h *Handlers) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		h.errorResponse(w, r, svc.Unauthorized("Unauthorized: No session"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handlers) getPaginationParams(r *http.Request) dto.QueryOptions {
	// Default to 20, clamp to [1,100]
	q := dto.QueryOptions{Limit: 20}

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil && n > 0 {
			q.Limit = uint32(min(n, 100))
		}
	}

	if v := r.URL.Query().Get("cursor"); v != "" {
		q.Cursor = &v
	}
	if v := r.URL.Query().Get("sort"); v != "" {
		q.Sort = &v
	}

	return q
}

func (h *Handlers) getSubmissionFilters(r *http.Request) dto.SubmissionFilter {
	filters := dto.SubmissionFilter{}

	if v := r.URL.Query().Get("zone"); v != "" {
		filters.Zone = &v
	}
	if v := r.URL.Query().Get("lga"); v != "" {
		filters.LGA = &v
	}
	if v := r.URL.Query().Get("agent_code"); v != "" {
		filters.AgentCode = &v
	}

	return filters
}
