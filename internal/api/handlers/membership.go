package handlers

import (
	"fmt"
	"net/http"

	"github.com/Jidetireni/firstcare-registration/internal/dto"
)

func (h *Handlers) MakePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var input dto.PaymentInput
	if !h.decodeAndValidate(w, r, &input) {
		return
	}

	result, err := h.factory.Services.Membership.Pay(r.Context(), id, input)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, result, nil)
}

func (h *Handlers) QRData(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	data, err := h.factory.Services.Membership.QRData(r.Context(), id)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, data, nil)
}

func (h *Handlers) QRCode(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	png, err := h.factory.Services.Membership.QRCode(r.Context(), id)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeFile(w, "image/png", png, http.Header{"Cache-Control": []string{"no-store"}})
}

func (h *Handlers) IDCard(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	card, err := h.factory.Services.Membership.Card(r.Context(), id)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeFile(w, "application/pdf", card.Content, http.Header{
		"Content-Disposition": []string{fmt.Sprintf("attachment; filename=%q", card.Filename)},
	})
}
