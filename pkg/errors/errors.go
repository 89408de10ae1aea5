package errors

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrBadRequest         = errors.New("bad request")
	ErrInternalServer     = errors.New("internal server error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")

	ErrChannelNotFound      = errors.New("channel not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrEmployeeNotFound     = errors.New("employee not found")
	ErrNotChannelMember     = errors.New("not a member of this channel")
	ErrNotMessageSender     = errors.New("you can only edit your own messages")
	ErrDeleteForbidden      = errors.New("you can only delete your own messages")
	ErrDefaultChannelDelete = errors.New("cannot delete the default channel")
	ErrDefaultChannelLeave  = errors.New("cannot leave the default channel")
)

type APIError struct {
	Message string `json:"error"`
	Code    int    `json:"code"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(message string, code int) *APIError {
	return &APIError{
		Message: message,
		Code:    code,
	}
}

// ValidationError — ошибка валидации входных данных, текст уходит клиенту как есть
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func HTTPStatusFromError(err error) int {
	if IsValidation(err) {
		return http.StatusBadRequest
	}

	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrChannelNotFound),
		errors.Is(err, ErrMessageNotFound),
		errors.Is(err, ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden),
		errors.Is(err, ErrNotChannelMember),
		errors.Is(err, ErrNotMessageSender),
		errors.Is(err, ErrDeleteForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, ErrDefaultChannelDelete),
		errors.Is(err, ErrDefaultChannelLeave):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
