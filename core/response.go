package core

import (
	"errors"
	"net/http"
)

type ResponseBase[T any] struct {
	Status  string `json:"status"`
	Content T      `json:"content"`
	Error   string `json:"error,omitempty"`
}

// Paged is a single page of a listing together with the total page count
type Paged[T any] struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Items []T `json:"items"`
}

// ErrorStatus maps a ledger error to the HTTP status the command layer answers with
func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrorNotFound{}):
		return http.StatusNotFound
	case errors.Is(err, ErrorAlreadyExists{}):
		return http.StatusConflict
	case errors.Is(err, ErrorInsufficientFunds{}):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrorInvalidArgument{}):
		return http.StatusBadRequest
	case errors.Is(err, ErrorPermissionDenied{}):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
