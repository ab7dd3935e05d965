package services

import (
	"net/http"

	"github.com/Jidetireni/firstcare-registration/internal/wizard"
)

type APIError struct {
	Status  int                 `json:"status"`
	Message string              `json:"message"`
	Errors  []wizard.FieldError `json:"errors,omitempty"`
}

func (a *APIError) Error() string {
	return a.Message
}

func BadRequest(message string, errs ...wizard.FieldError) *APIError {
	return &APIError{Status: http.StatusBadRequest, Message: message, Errors: errs}
}

func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Message: message}
}

func Conflict(message string) *APIError {
	return &APIError{Status: http.StatusConflict, Message: message}
}

func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Message: message}
}
