package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	svc "github.com/Jidetireni/firstcare-registration/internal/services"
)

const maxBodyBytes = 1 << 20

// decode reads a JSON body into dst. An empty body leaves dst untouched when
// allowEmpty is set.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		h.errorResponse(w, r, svc.BadRequest(fmt.Sprintf("invalid request body: %v", err)))
		return false
	}

	return true
}

func (h *Handlers) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !h.decode(w, r, dst, false) {
		return false
	}

	fieldErrs, err := h.validator.Struct(dst)
	if err != nil {
		h.errorResponse(w, r, err)
		return false
	}
	if len(fieldErrs) > 0 {
		h.errorResponse(w, r, svc.BadRequest("Input validation failed", fieldErrs...))
		return false
	}

	return true
}
