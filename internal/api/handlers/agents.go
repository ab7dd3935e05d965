package handlers

import (
	"net/http"

	"github.com/Jidetireni/firstcare-registration/internal/dto"
)

func (h *Handlers) LookupAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var input dto.AgentCodeInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	lookup, err := h.factory.Services.Agent.Lookup(r.Context(), id, input)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, lookup, nil)
}

func (h *Handlers) ContinueFromAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	state, err := h.factory.Services.Agent.Continue(r.Context(), id)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, state, nil)
}

func (h *Handlers) ChangeAgent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	state, err := h.factory.Services.Agent.Change(r.Context(), id)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, state, nil)
}
