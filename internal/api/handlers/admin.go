package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handlers) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	result, err := h.factory.Services.Admin.ListSubmissions(r.Context(), h.getSubmissionFilters(r), h.getPaginationParams(r))
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result, nil)
}

func (h *Handlers) SubmissionByRegistrationID(w http.ResponseWriter, r *http.Request) {
	submission, err := h.factory.Services.Admin.GetSubmission(r.Context(), chi.URLParam(r, "registration_id"))
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, submission, nil)
}

func (h *Handlers) SubmissionPayments(w http.ResponseWriter, r *http.Request) {
	result, err := h.factory.Services.Admin.Payments(r.Context(), chi.URLParam(r, "registration_id"), h.getPaginationParams(r))
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, result, nil)
}

func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.factory.Services.Admin.ListMembers(r.Context())
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, members, nil)
}

func (h *Handlers) MemberByRegistrationID(w http.ResponseWriter, r *http.Request) {
	member, err := h.factory.Services.Admin.GetMember(r.Context(), chi.URLParam(r, "registration_id"))
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, member, nil)
}
