package goerror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"not found", NewBusiness("Invalid verification code. Please try again.", CodeNotFound), http.StatusNotFound, "Invalid verification code. Please try again."},
		{"too many", NewBusiness("Maximum attempts reached", CodeTooManyRequest), http.StatusTooManyRequests, "Maximum attempts reached"},
		{"server", NewServer(errors.New("dial tcp: refused")), http.StatusInternalServerError, "Internal server error"},
		{"invalid input", NewInvalidInput(nil, "code", "Please enter the complete 6-digit code"), http.StatusUnprocessableEntity, "Validation error"},
		{"invalid format", NewInvalidFormat(), http.StatusBadRequest, "Invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gerr *Error
			assert.True(t, errors.As(tt.err, &gerr))
			assert.Equal(t, tt.code, gerr.StatusCode())
			assert.Equal(t, tt.msg, gerr.Msg())
		})
	}
}

func TestHasCodeAndMessage(t *testing.T) {
	cause := errors.New("remote said 404")
	err := fmt.Errorf("verify: %w", WrapBusiness(cause, "Invalid verification code. Please try again.", CodeNotFound))

	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeInternal))
	assert.False(t, HasCode(cause, CodeNotFound))
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "Invalid verification code. Please try again.", Message(err, "fallback"))
	assert.Equal(t, "fallback", Message(cause, "fallback"))
}

func TestNewValidation(t *testing.T) {
	err := NewValidation("code", "Please enter the complete 6-digit code")

	var gerr *Error
	assert.True(t, errors.As(err, &gerr))
	assert.Equal(t, TypeValidation, gerr.Type())
	assert.Equal(t, http.StatusUnprocessableEntity, gerr.StatusCode())
	assert.Equal(t, "Please enter the complete 6-digit code", gerr.Error())
	assert.Equal(t, map[string]string{"code": "Please enter the complete 6-digit code"}, gerr.Fields())
}

func TestNewInvalidInput_Fields(t *testing.T) {
	var gerr *Error
	assert.True(t, errors.As(NewInvalidInput(nil, "phone_number", "required"), &gerr))
	assert.Equal(t, map[string]string{"phone_number": "required"}, gerr.Fields())

	assert.True(t, errors.As(NewInvalidInput(nil, "odd"), &gerr))
	assert.Equal(t, CodeInvalidFormat, gerr.Code())
}
