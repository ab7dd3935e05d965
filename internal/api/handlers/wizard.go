package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/Jidetireni/firstcare-registration/internal/constants"
	"github.com/Jidetireni/firstcare-registration/internal/dto"
	svc "github.com/Jidetireni/firstcare-registration/internal/services"
	"github.com/Jidetireni/firstcare-registration/pkg/token"
)

const photoFormField = "file"

// StartWizard opens a session. The token is returned in the body and set as
// a cookie so browser clients need not handle it.
func (h *Handlers) StartWizard(w http.ResponseWriter, r *http.Request) {
	var input dto.StartWizardInput
	if !h.decode(w, r, &input, true) {
		return
	}

	session, err := h.factory.Services.Session.Start(r.Context(), input)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     token.SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   !h.config.IsDev,
		SameSite: http.SameSiteLaxMode,
	})

	h.writeJSON(w, http.StatusCreated, session, nil)
}

func (h *Handlers) WizardState(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	state, err := h.factory.Services.Session.State(r.Context(), id)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, state, nil)
}

func (h *Handlers) PreviousStep(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	state, err := h.factory.Services.Session.Previous(r.Context(), id)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, state, nil)
}

func (h *Handlers) ResetWizard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	state, err := h.factory.Services.Session.Reset(r.Context(), id)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, state, nil)
}

func (h *Handlers) SubmitPersonalInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var input dto.PersonalInfoInput
	if !h.decode(w, r, &input, false) {
		return
	}

	state, err := h.factory.Services.Session.SubmitPersonalInfo(r.Context(), id, input)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, state, nil)
}

// UploadPhoto takes the passport photo as multipart field "file".
func (h *Handlers) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxPhotoSize+maxBodyBytes)
	file, header, err := r.FormFile(photoFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorResponse(w, r, &svc.APIError{Status: http.StatusRequestEntityTooLarge, Message: "Photo is too large"})
			return
		}
		h.errorResponse(w, r, svc.BadRequest("A photo file is required in the \"file\" field"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, constants.MaxPhotoSize+1))
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	state, err := h.factory.Services.Session.UploadPhoto(r.Context(), id, header.Filename, content)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, state, nil)
}

func (h *Handlers) RemovePhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	state, err := h.factory.Services.Session.RemovePhoto(r.Context(), id)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, state, nil)
}

func (h *Handlers) ContinueFromPhoto(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	state, err := h.factory.Services.Session.ContinueFromPhoto(r.Context(), id)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, state, nil)
}

func (h *Handlers) SubmitLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var input dto.LocationInput
	if !h.decode(w, r, &input, false) {
		return
	}

	state, err := h.factory.Services.Session.SubmitLocation(r.Context(), id, input)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, state, nil)
}

func (h *Handlers) SubmitEmergencyContact(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var input dto.EmergencyContactInput
	if !h.decode(w, r, &input, false) {
		return
	}

	state, err := h.factory.Services.Session.SubmitEmergencyContact(r.Context(), id, input)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, state, nil)
}

func (h *Handlers) SubmitBeneficiaries(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var input dto.BeneficiariesInput
	if !h.decode(w, r, &input, false) {
		return
	}

	state, err := h.factory.Services.Session.SubmitBeneficiaries(r.Context(), id, input)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, state, nil)
}

func (h *Handlers) SubmitRegistration(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	state, err := h.factory.Services.Registration.Submit(r.Context(), id)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, state, nil)
}
