package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrChannelNotFound, http.StatusNotFound},
		{ErrMessageNotFound, http.StatusNotFound},
		{ErrEmployeeNotFound, http.StatusNotFound},
		{ErrNotChannelMember, http.StatusForbidden},
		{ErrNotMessageSender, http.StatusForbidden},
		{ErrDeleteForbidden, http.StatusForbidden},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrTokenExpired, http.StatusUnauthorized},
		{ErrDefaultChannelDelete, http.StatusBadRequest},
		{ErrDefaultChannelLeave, http.StatusBadRequest},
		{NewValidationError("too short"), http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
		// Обернутые ошибки разворачиваются через errors.Is/As
		{fmt.Errorf("get channel: %w", ErrChannelNotFound), http.StatusNotFound},
		{fmt.Errorf("validate: %w", NewValidationError("bad")), http.StatusBadRequest},
	}

	for _, tt := range tests {
		if got := HTTPStatusFromError(tt.err); got != tt.want {
			t.Errorf("HTTPStatusFromError(%v)=%d want %d", tt.err, got, tt.want)
		}
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(NewValidationError("x")) {
		t.Fatal("direct validation error")
	}
	if IsValidation(ErrBadRequest) {
		t.Fatal("plain sentinel is not a validation error")
	}
}
